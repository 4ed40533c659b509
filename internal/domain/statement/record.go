package statement

import "regexp"

// Sign is an explicit direction known to a strategy from column, section or
// label information. It always wins over keyword heuristics.
type Sign int

const (
	SignUnknown Sign = iota
	SignDebit
	SignCredit
)

func (s Sign) String() string {
	switch s {
	case SignDebit:
		return "debit"
	case SignCredit:
		return "credit"
	default:
		return "unknown"
	}
}

// DateOrder tells the date parser which numeric form to try first
type DateOrder int

const (
	MonthFirst DateOrder = iota // US m/d/y before d/m/y
	DayFirst                    // d/m/y before m/d/y
)

// AccountContext drives the sign default when no other signal exists
type AccountContext int

const (
	ContextUnknown AccountContext = iota
	ContextChecking
	ContextCreditCard
)

// RawRecord is one candidate transaction as a strategy saw it, before any
// parsing. All tokens are verbatim.
type RawRecord struct {
	DateToken    string
	Description  string
	AmountToken  string
	BalanceToken string
	Category     string
	Page         int
	Sign         Sign

	// DefaultSign applies when neither the token nor keywords decide the
	// sign, e.g. a ledger line whose balance carries CR/DR but whose amount
	// does not.
	DefaultSign Sign

	// LowAmountConfidence marks amounts chosen positionally among several
	// monetary tokens without column information.
	LowAmountConfidence bool

	// Continuation pairs a record without amount with a following record
	// without date. Zero means no pairing.
	Continuation int
}

// SignKeywords extends the normalizer's keyword heuristic for one issuer
type SignKeywords struct {
	Debit  []string
	Credit []string
}

// Extraction is the raw output of a strategy run
type Extraction struct {
	Strategy  string
	Records   []RawRecord
	DateOrder DateOrder
	Context   AccountContext
	// OCR enables tolerant amount parsing (O->0, l->1, |->1, S->$).
	OCR          bool
	SignKeywords SignKeywords
	// Cleaners strip issuer-specific noise from descriptions.
	Cleaners []*regexp.Regexp
}
