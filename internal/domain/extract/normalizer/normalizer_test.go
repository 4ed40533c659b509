package normalizer

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/statementtest"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		ocr      bool
		want     string
		explicit bool
		wantErr  error
	}{
		{"plain", "24.50", false, "24.50", false, nil},
		{"us thousands", "4,125.67", false, "4125.67", false, nil},
		{"european", "-48,73 EUR", false, "-48.73", true, nil},
		{"european thousands", "1.234,56 EUR", false, "1234.56", false, nil},
		{"parentheses", "(75.00)", false, "-75.00", true, nil},
		{"currency symbol", "+$102,136.02", false, "102136.02", true, nil},
		{"pound", "£12.00", false, "12.00", false, nil},
		{"rupee", "₹1,500.00", false, "1500.00", false, nil},
		{"credit suffix", "4,935.74 CR", false, "4935.74", true, nil},
		{"debit suffix", "150.00DR", false, "-150.00", true, nil},
		{"trailing minus", "12.50-", false, "-12.50", true, nil},
		{"ocr digits", "1O5.l2", true, "105.12", false, nil},
		{"ocr pipe", "|,2O0.00", true, "1200.00", false, nil},
		{"ocr dollar", "S45.I0", true, "45.10", false, nil},
		{"ocr disabled", "1O5.l2", false, "", false, ErrAmountFormat},
		{"too large", "1,000,000.01", false, "", false, ErrAmountRange},
		{"limit", "1,000,000.00", false, "1000000.00", false, nil},
		{"garbage", "abc", false, "", false, ErrAmountFormat},
		{"empty", "  ", false, "", false, ErrAmountFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input, tt.ocr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got.Value), "got %s", got.Value)
			assert.Equal(t, tt.explicit, got.Explicit)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		order   statement.DateOrder
		want    string
		hasYear bool
		wantErr error
	}{
		{"us", "03/14/2024", statement.MonthFirst, "2024-03-14", true, nil},
		{"us falls back to european", "15/01/2024", statement.MonthFirst, "2024-01-15", true, nil},
		{"european preferred", "05/12/2024", statement.DayFirst, "2024-12-05", true, nil},
		{"dashed", "15-01-2024", statement.MonthFirst, "2024-01-15", true, nil},
		{"dotted", "01.07.2023", statement.DayFirst, "2023-07-01", true, nil},
		{"iso", "2024-02-29", statement.MonthFirst, "2024-02-29", true, nil},
		{"two digit year", "1/5/24", statement.MonthFirst, "2024-01-05", true, nil},
		{"day month", "1 February", statement.MonthFirst, "2025-02-01", false, nil},
		{"day month year", "01 Feb 2024", statement.MonthFirst, "2024-02-01", true, nil},
		{"ordinal", "12th Feb", statement.MonthFirst, "2025-02-12", false, nil},
		{"hyphenated", "01-Feb-2024", statement.MonthFirst, "2024-02-01", true, nil},
		{"month first", "Feb 1, 2024", statement.MonthFirst, "2024-02-01", true, nil},
		{"month first short", "Jul 04", statement.MonthFirst, "2025-07-04", false, nil},
		{"short us", "05/12", statement.MonthFirst, "2025-05-12", false, nil},
		{"short european", "05/12", statement.DayFirst, "2025-12-05", false, nil},
		{"phone", "1-800", statement.MonthFirst, "", false, ErrPhoneLike},
		{"phone three", "1-888", statement.DayFirst, "", false, ErrPhoneLike},
		{"invalid pair", "45-67", statement.MonthFirst, "", false, ErrDateFormat},
		{"feb 30", "02/30/2024", statement.MonthFirst, "", false, ErrDateFormat},
		{"not a month", "12 Foo", statement.MonthFirst, "", false, ErrDateFormat},
		{"word", "Call", statement.MonthFirst, "", false, ErrDateFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input, tt.order, 2025)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Date.Format(time.DateOnly))
			assert.Equal(t, tt.hasYear, got.HasYear)
		})
	}
}

func TestParseDateWithoutYearNeedsYear(t *testing.T) {
	_, err := ParseDate("05/12", statement.MonthFirst, 0)
	assert.ErrorIs(t, err, ErrNoYear)
}

func TestInferYear(t *testing.T) {
	clock := engine.FixedClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		text     string
		want     int
		explicit bool
	}{
		{"dotted period", "Statement 01.07.2023-30.07.2023\nTotal payments", 2023, true},
		{"slashed period", "Period: 12/28/2021 to 01/27/2022", 2022, true},
		{"text period", "July 1, 2023 - July 31, 2023", 2023, true},
		{"labeled", "Statement Period ending March 2022", 2022, true},
		{"clock", "no dates here", 2026, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, explicit := InferYear(tt.text, clock)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.explicit, explicit)
		})
	}
}

func TestFindPeriod(t *testing.T) {
	p, ok := FindPeriod("Home loan summary 01.07.2023-30.07.2023")
	require.True(t, ok)
	assert.Equal(t, "2023-07-01", p.Start.Format(time.DateOnly))
	assert.Equal(t, "2023-07-30", p.End.Format(time.DateOnly))

	_, ok = FindPeriod("nothing")
	assert.False(t, ok)
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapse", "  Card   payment -  Amazon  ", "Card payment - Amazon"},
		{"value date", "TRANSFER Value Date: 12/03/2024 ACME", "TRANSFER ACME"},
		{"long reference", "SEPA 12345678901234 Albert Heijn", "SEPA Albert Heijn"},
		{"keeps short numbers", "Store 1234", "Store 1234"},
		{"trailing time", "Coffee Shop 14:32", "Coffee Shop"},
		{"trailing time am", "Coffee Shop 9:05 AM", "Coffee Shop"},
		{"edge punctuation", "- Rent -", "Rent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.input, nil))
		})
	}

	extra := []*regexp.Regexp{regexp.MustCompile(`(?i)\bcard \d{4}\b`)}
	assert.Equal(t, "Tesco", CleanDescription("Tesco CARD 1234", extra))
}

func TestKeywordSign(t *testing.T) {
	assert.Equal(t, statement.SignDebit, KeywordSign("ATM withdrawal", statement.SignKeywords{}))
	assert.Equal(t, statement.SignCredit, KeywordSign("Salary ACME", statement.SignKeywords{}))
	assert.Equal(t, statement.SignCredit, KeywordSign("Transfer in from savings", statement.SignKeywords{}))
	assert.Equal(t, statement.SignUnknown, KeywordSign("Credit card payment", statement.SignKeywords{}))
	assert.Equal(t, statement.SignUnknown, KeywordSign("WORLDREMIT LTD", statement.SignKeywords{}))
	assert.Equal(t, statement.SignDebit, KeywordSign("Opname", statement.SignKeywords{Debit: []string{"opname"}}))
	assert.Equal(t, statement.SignUnknown, KeywordSign("Possible", statement.SignKeywords{}))
}

func TestAssignSign(t *testing.T) {
	plain := Amount{Value: decimal.RequireFromString("20.00")}
	negative := Amount{Value: decimal.RequireFromString("-20.00"), Explicit: true}
	checking := &statement.Extraction{Context: statement.ContextChecking}
	card := &statement.Extraction{Context: statement.ContextCreditCard}

	tests := []struct {
		name     string
		amt      Amount
		rec      statement.RawRecord
		desc     string
		ext      *statement.Extraction
		want     string
		wantConf statement.SignConfidence
	}{
		{"column wins over token", negative, statement.RawRecord{Sign: statement.SignCredit}, "Refund", checking, "20.00", statement.SignConfidenceHigh},
		{"column debit", plain, statement.RawRecord{Sign: statement.SignDebit}, "Salary", checking, "-20.00", statement.SignConfidenceHigh},
		{"token wins over keywords", negative, statement.RawRecord{}, "Salary", checking, "-20.00", statement.SignConfidenceHigh},
		{"keyword debit", plain, statement.RawRecord{}, "POS purchase", checking, "-20.00", statement.SignConfidenceHigh},
		{"keyword credit", plain, statement.RawRecord{}, "Interest paid", card, "20.00", statement.SignConfidenceHigh},
		{"record default", plain, statement.RawRecord{DefaultSign: statement.SignDebit}, "WORLDREMIT LTD", checking, "-20.00", statement.SignConfidenceHigh},
		{"credit card default", plain, statement.RawRecord{}, "Netflix", card, "-20.00", statement.SignConfidenceHigh},
		{"checking unsigned", plain, statement.RawRecord{}, "Netflix", checking, "20.00", statement.SignConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := AssignSign(tt.amt, tt.rec, tt.desc, tt.ext)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			assert.Equal(t, tt.wantConf, conf)
		})
	}
}

func TestNormalizeRejectsAndCounts(t *testing.T) {
	ext := &statement.Extraction{
		Strategy: "text-layout",
		Records: []statement.RawRecord{
			{DateToken: "05/12", Description: "Cable Bill", AmountToken: "(75.00)"},
			{DateToken: "1-800", Description: "Call us at for help", AmountToken: "1234.56"},
			{DateToken: "05/12", Description: "Cable Bill", AmountToken: "(75.00)"},
			{DateToken: "05/13", Description: "Yacht", AmountToken: "2,000,000.00"},
			{Description: "", AmountToken: ""},
			{DateToken: "05/14", Description: "ab"},
			{DateToken: "05/14", Description: "ab", AmountToken: "3.00"},
			{Description: "Opening balance carried", BalanceToken: "100.00"},
		},
	}

	cohort := New(2024, nil).Normalize(ext)
	assert.Equal(t, "text-layout", cohort.Diagnostics.Strategy)
	assert.Equal(t, 8, cohort.Diagnostics.RawCount)
	assert.Equal(t, 5, cohort.Diagnostics.RejectedCount)
	require.Len(t, cohort.Transactions, 3)

	first := cohort.Transactions[0]
	assert.Equal(t, "2024-05-12", first.DateISO())
	assert.Equal(t, "Cable Bill", first.Description)
	assert.Equal(t, "-75", first.Amount.Decimal.String())
	assert.Equal(t, "(75.00)", first.AmountString)

	short := cohort.Transactions[1]
	assert.Equal(t, "ab", short.Description)
	assert.True(t, short.HasDate() && short.HasAmount())

	info := cohort.Transactions[2]
	assert.False(t, info.HasAmount())
	assert.True(t, info.Balance.Valid)
}

func TestNormalizeAmountConfidence(t *testing.T) {
	ext := &statement.Extraction{Records: []statement.RawRecord{
		{DateToken: "01/02/2024", Description: "Coffee shop", AmountToken: "4.50", LowAmountConfidence: true},
	}}
	cohort := New(2024, nil).Normalize(ext)
	require.Len(t, cohort.Transactions, 1)
	assert.Equal(t, statement.AmountConfidenceLow, cohort.Transactions[0].AmountConfidence)
	assert.Equal(t, statement.SignConfidenceLow, cohort.Transactions[0].SignConfidence)
}

// Every emitted transaction stays within the amount bound and has a
// description or a non-zero amount.
func TestNormalizeProperties(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		gen := statementtest.NewGenerator(seed)
		entries := gen.Entries(2023, 40)
		records := statementtest.Records(entries, false)
		// Duplicate a slice of the input to exercise suppression.
		records = append(records, records[:10]...)
		records = append(records, statement.RawRecord{DateToken: "1-800", Description: "Call us", AmountToken: "5.00"})

		ext := &statement.Extraction{Strategy: "prop", Records: records, Context: statement.ContextChecking}
		cohort := New(2023, nil).Normalize(ext)

		seen := map[string]bool{}
		years := map[int]bool{}
		for _, tx := range cohort.Transactions {
			require.True(t, tx.HasAmount())
			assert.True(t, tx.Amount.Decimal.Abs().LessThanOrEqual(statement.MaxAbsAmount))
			assert.True(t, tx.Description != "" || !tx.Amount.Decimal.IsZero())
			assert.False(t, seen[tx.Key()], "duplicate %s", tx.Key())
			assert.NotEqual(t, "1-800", tx.DateString)
			seen[tx.Key()] = true
			years[tx.Date.Year()] = true
		}
		assert.Len(t, years, 1, "seed %d", seed)
		assert.True(t, years[2023])
		assert.GreaterOrEqual(t, cohort.Diagnostics.RejectedCount, 11)
	}
}
