package strategy_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine/enginetest"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/statementtest"
)

func run(t *testing.T, s strategy.Strategy, year int) statement.Cohort {
	t.Helper()
	ext, err := s.Extract(context.Background(), "statement.pdf", statement.Profile{PageCount: 1})
	require.NoError(t, err)
	require.NotNil(t, ext)
	assert.Equal(t, s.Name(), ext.Strategy)
	return normalizer.New(year, nil).Normalize(ext)
}

func mustRe(expr string) *regexp.Regexp { return regexp.MustCompile(expr) }

func assertTx(t *testing.T, tx statement.Transaction, date, desc, amount string) {
	t.Helper()
	assert.Equal(t, date, tx.DateISO())
	assert.Equal(t, desc, tx.Description)
	require.True(t, tx.Amount.Valid)
	assert.True(t, decimal.RequireFromString(amount).Equal(tx.Amount.Decimal), "amount %s", tx.Amount.Decimal)
}

func TestColumnStrategyAssignsByOffset(t *testing.T) {
	row := func(desc, out, in, bal string) string {
		return fmt.Sprintf("%-58s%-12s%-12s%s", desc, out, in, bal)
	}
	page := strings.Join([]string{
		"Your account statement",
		row("Date        Description", "Money out", "Money in", "Balance"),
		row("1 February   Card payment - Amazon", "24.50", "", "4,125.67"),
		row("             Salary ACME LTD", "", "2,000.00", "6,125.67"),
		row("3 February   Balance carried forward", "", "", "6,125.67"),
	}, "\n")
	s := strategy.NewColumn(enginetest.NewText(page), nil)

	cohort := run(t, s, 2025)

	require.Len(t, cohort.Transactions, 2)
	assertTx(t, cohort.Transactions[0], "2025-02-01", "Card payment - Amazon", "-24.50")
	assert.True(t, decimal.RequireFromString("4125.67").Equal(cohort.Transactions[0].Balance.Decimal))
	assertTx(t, cohort.Transactions[1], "2025-02-01", "Salary ACME LTD", "2000.00")
	assert.Equal(t, statement.SignConfidenceHigh, cohort.Transactions[1].SignConfidence)
}

func TestColumnStrategyKeepsRowsNamingHeaders(t *testing.T) {
	row := func(desc, out, in, bal string) string {
		return fmt.Sprintf("%-58s%-12s%-12s%s", desc, out, in, bal)
	}
	page := strings.Join([]string{
		row("Date        Description", "Money out", "Money in", "Balance"),
		row("1 February   Card payment - Amazon", "24.50", "", "4,125.67"),
		row("10 February  Interest credit to balance", "", "1.23", "4,126.90"),
		row("11 February  Tesco Stores", "12.00", "", "4,114.90"),
	}, "\n")

	cohort := run(t, strategy.NewColumn(enginetest.NewText(page), nil), 2025)

	require.Len(t, cohort.Transactions, 3)
	assertTx(t, cohort.Transactions[0], "2025-02-01", "Card payment - Amazon", "-24.50")
	assertTx(t, cohort.Transactions[1], "2025-02-10", "Interest credit to balance", "1.23")
	assertTx(t, cohort.Transactions[2], "2025-02-11", "Tesco Stores", "-12.00")
}

func TestFindColumns(t *testing.T) {
	assert.Len(t, strategy.FindColumns("Date   Description      Money out   Money in   Balance"), 3)
	assert.Len(t, strategy.FindColumns("Paid out    Balance"), 2)
	assert.Empty(t, strategy.FindColumns("Interest credit to balance"))
	assert.Empty(t, strategy.FindColumns("Balance brought forward"))
}

func TestColumnStrategyNeedsHeader(t *testing.T) {
	s := strategy.NewColumn(enginetest.NewText("1 February   Card payment   24.50   4,125.67"), nil)
	cohort := run(t, s, 2025)
	assert.Empty(t, cohort.Transactions)
}

func TestTextLayoutScenarios(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		year    int
		date    string
		desc    string
		amount  string
		balance string
	}{
		{"european amount", "15-01-2024  Albert Heijn  -48,73 EUR  1.234,56 EUR", 2024, "2024-01-15", "Albert Heijn", "-48.73", "1234.56"},
		{"cr balance ledger", "04 Jul   WORLDREMIT LTD       150.00   4,935.74 CR", 2023, "2023-07-04", "WORLDREMIT LTD", "-150.00", "4935.74"},
		{"parenthesized debit", "05/12  Cable Bill  (75.00)", 2024, "2024-05-12", "Cable Bill", "-75.00", ""},
		{"iso date", "2024-03-09  Refund Amazon  12.99", 2024, "2024-03-09", "Refund Amazon", "12.99", ""},
		{"ordinal month", "12th Feb  Coffee House  3.40-", 2024, "2024-02-12", "Coffee House", "-3.40", ""},
		{"month first", "Feb 1, 2024  Netflix  $15.49", 2024, "2024-02-01", "Netflix", "15.49", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := strategy.NewTextLayout(enginetest.NewText(tt.line), nil)
			cohort := run(t, s, tt.year)

			require.Len(t, cohort.Transactions, 1)
			tx := cohort.Transactions[0]
			assertTx(t, tx, tt.date, tt.desc, tt.amount)
			if tt.balance == "" {
				assert.False(t, tx.Balance.Valid)
			} else {
				assert.True(t, decimal.RequireFromString(tt.balance).Equal(tx.Balance.Decimal))
				assert.Equal(t, statement.AmountConfidenceLow, tx.AmountConfidence)
			}
		})
	}
}

func TestTextLayoutPhoneNumberIsNotADate(t *testing.T) {
	s := strategy.NewTextLayout(enginetest.NewText("Call us at 1-800 for help 1234.56\n1-800 HELPLINE 1234.56"), nil)
	cohort := run(t, s, 2024)
	assert.Empty(t, cohort.Transactions)
}

func TestTextLayoutUnsignedCheckingIsLowConfidence(t *testing.T) {
	s := strategy.NewTextLayout(enginetest.NewText("01/02  Corner Store  9.99"), nil)
	cohort := run(t, s, 2024)
	require.Len(t, cohort.Transactions, 1)
	assertTx(t, cohort.Transactions[0], "2024-01-02", "Corner Store", "9.99")
	assert.Equal(t, statement.SignConfidenceLow, cohort.Transactions[0].SignConfidence)
}

func TestTextLayoutCreditCardContextDefaultsToDebit(t *testing.T) {
	s := strategy.NewTextLayout(enginetest.NewText("01/02  Corner Store  9.99"), nil)
	ext, err := s.Extract(context.Background(), "card.pdf", statement.Profile{FirstPageText: "Minimum Payment Due $25.00"})
	require.NoError(t, err)
	assert.Equal(t, statement.ContextCreditCard, ext.Context)

	cohort := normalizer.New(2024, nil).Normalize(ext)
	require.Len(t, cohort.Transactions, 1)
	assertTx(t, cohort.Transactions[0], "2024-01-02", "Corner Store", "-9.99")
}

func TestLineParserContinuations(t *testing.T) {
	p := strategy.NewLineParser(strategy.ParserConfig{})
	page := strings.Join([]string{
		"01/03  AMAZON MKTP",
		"       US*2K4 SEATTLE",
		"                        12.99",
		"01/04  UBER TRIP        15.20",
		"       HELP.UBER.COM",
		"",
		"01/05  Statement closing date",
		"01/06  Opening balance  100.00",
		"Page 2 of 3",
	}, "\n")

	recs, err := p.Parse(context.Background(), []string{page})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "AMAZON MKTP US*2K4 SEATTLE", recs[0].Description)
	assert.Empty(t, recs[0].AmountToken)
	assert.Equal(t, "12.99", recs[1].AmountToken)
	assert.NotZero(t, recs[0].Continuation)
	assert.Equal(t, recs[0].Continuation, recs[1].Continuation)

	assert.Equal(t, "UBER TRIP HELP.UBER.COM", recs[2].Description)
	assert.Zero(t, recs[2].Continuation)
}

func TestLineParserStopsAtCancelledContext(t *testing.T) {
	p := strategy.NewLineParser(strategy.ParserConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Parse(ctx, []string{"01/02  Coffee  4.50"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLineParserSectionsAndDirections(t *testing.T) {
	p := strategy.NewLineParser(strategy.ParserConfig{
		Sections: []strategy.Section{{Re: mustRe(`(?i)^\s*deposits\b`), Sign: statement.SignCredit}},
		Extra: []strategy.LinePattern{{
			Name: "dir",
			Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})\s+(?P<dir>Af|Bij)\s*$`,
		}},
		DirSigns: map[string]statement.Sign{"Af": statement.SignDebit, "Bij": statement.SignCredit},
	})
	page := "01/02  Groceries  12.00  Af\nDeposits\n01/03  Payroll  900.00"
	recs, err := p.Parse(context.Background(), []string{page})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, statement.SignDebit, recs[0].Sign)
	assert.Equal(t, statement.SignCredit, recs[1].Sign)
}

func TestGuessDateOrder(t *testing.T) {
	day := []statement.RawRecord{{DateToken: "15/01"}, {DateToken: "03/02"}}
	month := []statement.RawRecord{{DateToken: "01/15"}}
	none := []statement.RawRecord{{DateToken: "01/02"}, {DateToken: "4 Feb"}}

	assert.Equal(t, statement.DayFirst, strategy.GuessDateOrder(day, statement.MonthFirst))
	assert.Equal(t, statement.MonthFirst, strategy.GuessDateOrder(month, statement.DayFirst))
	assert.Equal(t, statement.DayFirst, strategy.GuessDateOrder(none, statement.DayFirst))
}

func TestSummaryStrategy(t *testing.T) {
	page := strings.Join([]string{
		"Home Loan Summary",
		"Statement period 01.07.2023-30.07.2023",
		"Total payments                 +$102,136.02",
		"Total interest charged           $4,210.10",
		"Total payments                 +$102,136.02",
	}, "\n")
	s := strategy.NewSummary(enginetest.NewText(page), nil)

	cohort := run(t, s, 2023)

	require.Len(t, cohort.Transactions, 2)
	assertTx(t, cohort.Transactions[0], "2023-07-30", "Total payments", "102136.02")
	assertTx(t, cohort.Transactions[1], "2023-07-30", "Total interest charged", "-4210.10")
}

func TestTableStrategyWithHeaders(t *testing.T) {
	tables := &enginetest.Tables{Fixed: []engine.Table{{
		Page: 1,
		Rows: [][]string{
			{"Date", "Description", "Withdrawals", "Deposits", "Balance"},
			{"01/02/2024", "Coffee Shop", "4.50", "", "995.50"},
			{"", "Seattle WA", "", "", ""},
			{"", "Book Store", "20.00", "", "975.50"},
			{"01/05/2024", "Payroll", "", "1,000.00", "1,975.50"},
		},
	}}}
	s := strategy.NewTable(tables, nil)

	cohort := run(t, s, 2024)

	require.Len(t, cohort.Transactions, 3)
	assertTx(t, cohort.Transactions[0], "2024-01-02", "Coffee Shop Seattle WA", "-4.50")
	assertTx(t, cohort.Transactions[1], "2024-01-02", "Book Store", "-20.00")
	assertTx(t, cohort.Transactions[2], "2024-01-05", "Payroll", "1000.00")
	assert.Equal(t, statement.AmountConfidenceHigh, cohort.Transactions[0].AmountConfidence)
}

func TestTableStrategyPositionalFallback(t *testing.T) {
	tables := &enginetest.Tables{Fixed: []engine.Table{{
		Page: 2,
		Rows: [][]string{
			{"01/02", "Coffee Shop", "4.50", "995.50"},
			{"01/03", "Opening balance", "", "1,000.00"},
			{"notes", "nothing here", "", ""},
		},
	}}}
	s := strategy.NewTable(tables, nil)

	cohort := run(t, s, 2024)

	require.Len(t, cohort.Transactions, 1)
	tx := cohort.Transactions[0]
	assertTx(t, tx, "2024-01-02", "Coffee Shop", "4.50")
	assert.Equal(t, statement.AmountConfidenceLow, tx.AmountConfidence)
	assert.Equal(t, 2, tx.Page)
}

func TestClassifyHeaderFuzzy(t *testing.T) {
	roles := strategy.ClassifyHeader([]string{"Transaction Date", "Descrption", "Amt", "Bal."})
	assert.Equal(t, 0, roles[strategy.RoleDate])
	assert.Equal(t, 1, roles[strategy.RoleDescription])
	assert.Equal(t, 2, roles[strategy.RoleAmount])
	assert.Equal(t, 3, roles[strategy.RoleBalance])

	assert.Empty(t, strategy.ClassifyHeader([]string{"01/02", "Coffee", "4.50"}))
}

func TestOCRStrategy(t *testing.T) {
	raster := &enginetest.Rasterizer{}
	ocr := &enginetest.OCR{Pages: [][]engine.OCRWord{
		enginetest.OCRLine(1, "05/12  Cable Bill  (75.OO)", 45),
		enginetest.OCRLine(1, "05/14  Water Co  l2.5O", 92),
	}}
	s := strategy.NewOCR(&enginetest.Inspector{Result: engine.Inspection{PageCount: 2}}, raster, ocr, 0, nil)

	cohort := run(t, s, 2024)

	require.Len(t, cohort.Transactions, 2)
	assertTx(t, cohort.Transactions[0], "2024-05-12", "Cable Bill", "-75.00")
	assert.Equal(t, statement.AmountConfidenceLow, cohort.Transactions[0].AmountConfidence)
	assertTx(t, cohort.Transactions[1], "2024-05-14", "Water Co", "12.50")
	assert.Equal(t, statement.AmountConfidenceHigh, cohort.Transactions[1].AmountConfidence)
	assert.Equal(t, []int{1, 2}, raster.Rendered)
}

func TestOCRStrategyWithoutPages(t *testing.T) {
	s := strategy.NewOCR(&enginetest.Inspector{}, &enginetest.Rasterizer{}, &enginetest.OCR{}, 0, nil)
	_, err := s.Extract(context.Background(), "x.pdf", statement.Profile{})
	assert.ErrorIs(t, err, strategy.ErrNoPages)
}

func TestTextEngineErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	text := enginetest.NewText()
	text.Err = boom
	for _, s := range []strategy.Strategy{
		strategy.NewTextLayout(text, nil),
		strategy.NewColumn(text, nil),
		strategy.NewSummary(text, nil),
	} {
		_, err := s.Extract(context.Background(), "x.pdf", statement.Profile{})
		assert.ErrorIs(t, err, boom, s.Name())
	}
}

func TestTextLayoutGeneratedStatements(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		gen := statementtest.NewGenerator(seed)
		entries := gen.Entries(2023, 25)
		lines := make([]string, len(entries))
		want := make(map[string]statementtest.Entry)
		for i, e := range entries {
			lines[i] = statementtest.USLine(e)
			want[e.Date.Format(time.DateOnly)+"|"+e.Description+"|"+e.Amount.StringFixed(2)] = e
		}

		cohort := run(t, strategy.NewTextLayout(enginetest.NewText(strings.Join(lines, "\n")), nil), 2023)

		assert.Len(t, cohort.Transactions, len(want), "seed %d", seed)
		for _, tx := range cohort.Transactions {
			e, ok := want[tx.DateISO()+"|"+tx.Description+"|"+tx.Amount.Decimal.StringFixed(2)]
			require.True(t, ok, "seed %d: unexpected %s %q %s", seed, tx.DateISO(), tx.Description, tx.Amount.Decimal)
			assert.True(t, e.Balance.Equal(tx.Balance.Decimal))
		}
	}
}
