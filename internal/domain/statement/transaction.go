// Package statement holds the value types shared by every stage of the
// extraction core: transactions, strategy outputs, cohorts and diagnostics.
package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxAbsAmount is the largest absolute amount a transaction may carry.
var MaxAbsAmount = decimal.NewFromInt(1_000_000)

// SignConfidence records how the sign of an amount was decided
type SignConfidence string

const (
	SignConfidenceHigh SignConfidence = "high"
	SignConfidenceLow  SignConfidence = "low"
)

// AmountConfidence records how the transaction amount was picked among the
// monetary tokens of a source line.
type AmountConfidence string

const (
	AmountConfidenceHigh AmountConfidence = "high"
	AmountConfidenceLow  AmountConfidence = "low"
)

// Transaction is a single posted statement entry.
// Positive amounts are money into the account, negative amounts money out.
type Transaction struct {
	Date             *time.Time          `json:"date,omitempty"`
	DateString       string              `json:"date_string"`
	Description      string              `json:"description"`
	Amount           decimal.NullDecimal `json:"amount"`
	AmountString     string              `json:"amount_string"`
	Balance          decimal.NullDecimal `json:"balance"`
	Category         string              `json:"category,omitempty"`
	Page             int                 `json:"page,omitempty"` // 1-based, 0 when unknown
	SignConfidence   SignConfidence      `json:"sign_confidence,omitempty"`
	AmountConfidence AmountConfidence    `json:"amount_confidence,omitempty"`

	// ContinuationKey pairs the two halves of a record split across lines.
	ContinuationKey int `json:"-"`
}

// HasDate reports whether the transaction carries a parsed date
func (t Transaction) HasDate() bool {
	return t.Date != nil
}

// HasAmount reports whether the transaction carries a parsed amount
func (t Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// DateISO returns the date as YYYY-MM-DD, or "" when absent
func (t Transaction) DateISO() string {
	if t.Date == nil {
		return ""
	}
	return t.Date.Format(time.DateOnly)
}

// Key is the identity used for duplicate suppression: (date, description, amount).
func (t Transaction) Key() string {
	amount := ""
	if t.Amount.Valid {
		amount = t.Amount.Decimal.StringFixed(2)
	}
	return strings.Join([]string{t.DateISO(), t.Description, amount}, "\x1f")
}

// NewDate builds a date value at UTC midnight.
func NewDate(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
