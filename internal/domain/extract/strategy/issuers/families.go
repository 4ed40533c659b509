// Package issuers builds issuer specialized line strategies from four
// families: US line statements, UK CR/DR ledgers, AU/EU sectioned
// statements and credit card two-date statements.
package issuers

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Family is a statement layout shared by several issuers.
type Family int

const (
	FamilyUSLine Family = iota
	FamilyUKLedger
	FamilySectioned
	FamilyCreditCard
)

func (f Family) String() string {
	switch f {
	case FamilyUSLine:
		return "us-line"
	case FamilyUKLedger:
		return "uk-ledger"
	case FamilySectioned:
		return "sectioned"
	case FamilyCreditCard:
		return "credit-card"
	default:
		return "unknown"
	}
}

var (
	usCredits = regexp.MustCompile(`(?i)^\s*(?:deposits(?:\s+and\s+(?:other\s+)?(?:additions|credits))?|other\s+credits|additions|electronic\s+deposits)\b`)
	usDebits  = regexp.MustCompile(`(?i)^\s*(?:withdrawals(?:\s+and\s+(?:other\s+)?(?:subtractions|debits))?|checks\s+paid|atm\s+(?:&|and)\s+debit\s+card\s+(?:withdrawals|subtractions)|electronic\s+withdrawals|other\s+(?:debits|subtractions)|service\s+fees|fees)\b`)

	sectionCredits = regexp.MustCompile(`(?i)^\s*(?:credits|deposits|money\s+in|bij(?:schrijvingen)?)\s*:?\s*$`)
	sectionDebits  = regexp.MustCompile(`(?i)^\s*(?:debits|withdrawals|money\s+out|af(?:schrijvingen)?)\s*:?\s*$`)

	cardCredits = regexp.MustCompile(`(?i)^\s*(?:payments?(?:,)?\s+(?:and\s+)?(?:other\s+)?credits(?:\s+and\s+adjustments)?|payments\s+and\s+credits|credits)\b`)
	cardDebits  = regexp.MustCompile(`(?i)^\s*(?:(?:new\s+)?charges|purchases(?:\s+and\s+adjustments)?|transactions|fees(?:\s+charged)?|interest\s+charged(?:\s+on\s+purchases)?)\b`)

	cardCreditToken = regexp.MustCompile(`(?i)^\s*[$€£]?\s*[-\x{2212}(]|-\s*$|CR\s*$`)
)

// base returns the family defaults every specialization starts from.
func (f Family) base() strategy.LineOptions {
	switch f {
	case FamilyUSLine:
		return strategy.LineOptions{
			DateOrder: statement.MonthFirst,
			Context:   statement.ContextChecking,
			Parser: strategy.ParserConfig{Sections: []strategy.Section{
				{Re: usCredits, Sign: statement.SignCredit},
				{Re: usDebits, Sign: statement.SignDebit},
			}},
		}
	case FamilyUKLedger:
		return strategy.LineOptions{
			DateOrder: statement.DayFirst,
			Context:   statement.ContextChecking,
		}
	case FamilySectioned:
		return strategy.LineOptions{
			DateOrder: statement.DayFirst,
			Context:   statement.ContextChecking,
			Parser: strategy.ParserConfig{Sections: []strategy.Section{
				{Re: sectionCredits, Sign: statement.SignCredit},
				{Re: sectionDebits, Sign: statement.SignDebit},
			}},
		}
	default:
		return strategy.LineOptions{
			DateOrder: statement.MonthFirst,
			Context:   statement.ContextCreditCard,
			Parser: strategy.ParserConfig{Sections: []strategy.Section{
				{Re: cardCredits, Sign: statement.SignCredit},
				{Re: cardDebits, Sign: statement.SignDebit},
			}},
			Post: cardSign,
		}
	}
}

// cardSign applies the card convention: a negative or CR amount is a
// payment or refund, anything else is a charge.
func cardSign(rec *statement.RawRecord) {
	if rec.Sign != statement.SignUnknown || rec.AmountToken == "" {
		return
	}
	if cardCreditToken.MatchString(strings.TrimSpace(rec.AmountToken)) {
		rec.Sign = statement.SignCredit
		return
	}
	rec.Sign = statement.SignDebit
}
