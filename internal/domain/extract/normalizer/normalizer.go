// Package normalizer turns raw strategy records into validated
// transactions: dates, amounts, descriptions and signs.
package normalizer

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// MinDescriptionLen is the shortest description a record may keep unless
// it also carries both a date and an amount.
const MinDescriptionLen = 3

var (
	ErrEmptyRecord      = errors.New("record has neither description nor amount")
	ErrShortDescription = errors.New("description too short")
	ErrZeroUnlabeled    = errors.New("zero amount without description")
)

// Normalizer holds the statement year for one extraction. It keeps no
// other state, so a single value can normalize every strategy's output.
type Normalizer struct {
	year   int
	logger *slog.Logger
}

// New builds a normalizer that injects year into dates printed without one.
func New(year int, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{year: year, logger: logger}
}

// Year returns the year injected into year-less dates.
func (n *Normalizer) Year() int { return n.year }

// Normalize converts an extraction into a cohort. Rejected and duplicate
// records are counted in the diagnostics and dropped.
func (n *Normalizer) Normalize(ext *statement.Extraction) statement.Cohort {
	if ext == nil {
		return statement.EmptyCohort("")
	}
	cohort := statement.Cohort{
		Transactions: make([]statement.Transaction, 0, len(ext.Records)),
		Diagnostics: statement.CohortDiagnostics{
			Strategy: ext.Strategy,
			RawCount: len(ext.Records),
		},
	}

	seen := make(map[string]struct{}, len(ext.Records))
	for i, rec := range ext.Records {
		tx, err := n.Record(rec, ext)
		if err != nil {
			cohort.Diagnostics.RejectedCount++
			n.logger.Debug("record rejected",
				slog.String("strategy", ext.Strategy),
				slog.Int("index", i),
				slog.String("reason", err.Error()))
			continue
		}
		key := tx.Key()
		if _, dup := seen[key]; dup && tx.ContinuationKey == 0 {
			cohort.Diagnostics.RejectedCount++
			continue
		}
		seen[key] = struct{}{}
		cohort.Transactions = append(cohort.Transactions, tx)
	}
	return cohort
}

// Record normalizes a single raw record.
func (n *Normalizer) Record(rec statement.RawRecord, ext *statement.Extraction) (statement.Transaction, error) {
	tx := statement.Transaction{
		DateString:      strings.TrimSpace(rec.DateToken),
		AmountString:    strings.TrimSpace(rec.AmountToken),
		Description:     CleanDescription(rec.Description, ext.Cleaners),
		Category:        strings.TrimSpace(rec.Category),
		Page:            rec.Page,
		ContinuationKey: rec.Continuation,
	}

	if tx.DateString != "" {
		d, err := ParseDate(tx.DateString, ext.DateOrder, n.year)
		if err != nil {
			return statement.Transaction{}, fmt.Errorf("date: %w", err)
		}
		date := d.Date
		tx.Date = &date
	}

	if tx.AmountString != "" {
		amt, err := ParseAmount(tx.AmountString, ext.OCR)
		if err != nil {
			return statement.Transaction{}, fmt.Errorf("amount: %w", err)
		}
		value, conf := AssignSign(amt, rec, tx.Description, ext)
		tx.Amount = decimal.NewNullDecimal(value)
		tx.SignConfidence = conf
		tx.AmountConfidence = statement.AmountConfidenceHigh
		if rec.LowAmountConfidence {
			tx.AmountConfidence = statement.AmountConfidenceLow
		}
	}

	if tok := strings.TrimSpace(rec.BalanceToken); tok != "" {
		if bal, err := ParseAmount(tok, ext.OCR); err == nil {
			tx.Balance = decimal.NewNullDecimal(bal.Value)
		}
	}

	if err := Validate(tx); err != nil {
		return statement.Transaction{}, err
	}
	return tx, nil
}

// Validate checks a transaction against the record invariants. The two
// halves of a continuation pair are exempt from the length rule because
// the reconciler merges them later.
func Validate(tx statement.Transaction) error {
	if tx.Description == "" && !tx.HasAmount() {
		return ErrEmptyRecord
	}
	if tx.HasAmount() {
		if tx.Amount.Decimal.Abs().GreaterThan(statement.MaxAbsAmount) {
			return ErrAmountRange
		}
		if tx.Description == "" && tx.Amount.Decimal.IsZero() {
			return ErrZeroUnlabeled
		}
	}
	if tx.ContinuationKey == 0 && utf8.RuneCountInString(tx.Description) < MinDescriptionLen &&
		!(tx.HasDate() && tx.HasAmount()) {
		return ErrShortDescription
	}
	return nil
}
