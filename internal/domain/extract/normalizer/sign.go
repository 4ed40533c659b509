package normalizer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

var (
	debitWords  = regexp.MustCompile(`(?i)\b(?:payments?|withdrawals?|purchases?|fees?|charges?|atm|debit|pos)\b`)
	creditWords = regexp.MustCompile(`(?i)\b(?:deposits?|credit|refunds?|interest|salary|payroll|transfer in)\b`)
)

// KeywordSign applies the description keyword heuristic. Descriptions
// matching both lists, or neither, yield SignUnknown.
func KeywordSign(description string, extra statement.SignKeywords) statement.Sign {
	debit := debitWords.MatchString(description) || containsAny(description, extra.Debit)
	credit := creditWords.MatchString(description) || containsAny(description, extra.Credit)
	switch {
	case debit && !credit:
		return statement.SignDebit
	case credit && !debit:
		return statement.SignCredit
	default:
		return statement.SignUnknown
	}
}

// AssignSign decides the sign of a parsed amount. Column, section or label
// information from the strategy wins, then a sign printed on the token,
// then keywords, then the record's default, then the account context.
// Checking statements with no signal keep the printed magnitude and are
// flagged with low confidence.
func AssignSign(amt Amount, rec statement.RawRecord, description string, ext *statement.Extraction) (decimal.Decimal, statement.SignConfidence) {
	abs := amt.Value.Abs()
	if s := apply(abs, rec.Sign); s != nil {
		return *s, statement.SignConfidenceHigh
	}
	if amt.Explicit {
		return amt.Value, statement.SignConfidenceHigh
	}
	if s := apply(abs, KeywordSign(description, ext.SignKeywords)); s != nil {
		return *s, statement.SignConfidenceHigh
	}
	if s := apply(abs, rec.DefaultSign); s != nil {
		return *s, statement.SignConfidenceHigh
	}
	if ext.Context == statement.ContextCreditCard {
		return abs.Neg(), statement.SignConfidenceHigh
	}
	return abs, statement.SignConfidenceLow
}

func apply(abs decimal.Decimal, sign statement.Sign) *decimal.Decimal {
	var d decimal.Decimal
	switch sign {
	case statement.SignDebit:
		d = abs.Neg()
	case statement.SignCredit:
		d = abs
	default:
		return nil
	}
	return &d
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
