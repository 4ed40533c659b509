// Package statementtest generates realistic statement content for
// property-style tests.
package statementtest

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Generator produces statement lines and raw records from a seeded faker.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with a specific seed for reproducibility.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Entry is a generated transaction with the exact text printed for it.
type Entry struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
}

// Entries generates count entries in date order inside the given year.
func (g *Generator) Entries(year, count int) []Entry {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	balance := decimal.NewFromInt(int64(g.faker.Number(1000, 9000)))
	out := make([]Entry, count)
	day := 0
	for i := range out {
		day += g.faker.Number(0, 3)
		if day > 360 {
			day = 360
		}
		amount := g.Amount(5, 2500)
		if g.faker.Bool() {
			amount = amount.Neg()
		}
		balance = balance.Add(amount)
		out[i] = Entry{
			Date:        start.AddDate(0, 0, day),
			Description: g.Description(),
			Amount:      amount,
			Balance:     balance,
		}
	}
	return out
}

// Amount returns a positive two-decimal amount in [min, max].
func (g *Generator) Amount(min, max int) decimal.Decimal {
	cents := int64(g.faker.Number(min*100, max*100))
	return decimal.New(cents, -2)
}

// Description returns a merchant-style description without sign keywords.
func (g *Generator) Description() string {
	return fmt.Sprintf("%s %s", g.faker.RandomString(merchants), g.faker.RandomString(places))
}

// USLine prints an entry as "MM/DD  DESCRIPTION  AMOUNT  BALANCE".
func USLine(e Entry) string {
	return fmt.Sprintf("%s  %-30s %12s %12s", e.Date.Format("01/02"), e.Description, e.Amount.StringFixed(2), e.Balance.StringFixed(2))
}

// Records turns entries into raw records as a text strategy would emit them.
func Records(entries []Entry, withYear bool) []statement.RawRecord {
	out := make([]statement.RawRecord, len(entries))
	for i, e := range entries {
		date := e.Date.Format("01/02")
		if withYear {
			date = e.Date.Format("01/02/2006")
		}
		out[i] = statement.RawRecord{
			DateToken:    date,
			Description:  e.Description,
			AmountToken:  e.Amount.StringFixed(2),
			BalanceToken: e.Balance.StringFixed(2),
			Page:         1,
		}
	}
	return out
}

// Transactions turns entries into normalized transactions.
func Transactions(entries []Entry) []statement.Transaction {
	out := make([]statement.Transaction, len(entries))
	for i, e := range entries {
		d := e.Date
		out[i] = statement.Transaction{
			Date:             &d,
			DateString:       e.Date.Format("01/02/2006"),
			Description:      e.Description,
			Amount:           decimal.NewNullDecimal(e.Amount),
			AmountString:     e.Amount.StringFixed(2),
			Balance:          decimal.NewNullDecimal(e.Balance),
			Page:             1,
			SignConfidence:   statement.SignConfidenceHigh,
			AmountConfidence: statement.AmountConfidenceHigh,
		}
	}
	return out
}

var merchants = []string{
	"Amazon", "Walmart", "Target", "Costco", "Starbucks",
	"Uber", "Lyft", "Netflix", "Spotify", "Whole Foods",
	"Trader Joes", "CVS Pharmacy", "Walgreens", "Shell", "Chevron",
	"Delta Airlines", "Marriott", "Home Depot", "Best Buy", "IKEA",
}

var places = []string{
	"Seattle", "Portland", "Austin", "Denver", "Boston",
	"Chicago", "Online", "London", "Sydney", "Toronto",
}
