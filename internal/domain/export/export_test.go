package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sample() []statement.Transaction {
	return []statement.Transaction{
		{
			Date:        statement.NewDate(2023, time.March, 1),
			Description: `Bob's "Deli"`,
			Amount:      amount("-12.50"),
			Balance:     amount("987.50"),
		},
		{
			Date:        statement.NewDate(2023, time.March, 2),
			Description: "Salary, March",
			Amount:      amount("1234.56"),
		},
		{
			Description: "Undated fee",
			Amount:      amount("-1"),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(), Options{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Description,Amount,Balance", lines[0])
	assert.Equal(t, `2023-03-01,"Bob's ""Deli""",-12.50,987.50`, lines[1])
	assert.Equal(t, `2023-03-02,"Salary, March",1234.56,`, lines[2])
	assert.Equal(t, ",Undated fee,-1.00,", lines[3])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, Options{}))
	assert.Equal(t, "Date,Description,Amount,Balance\n", buf.String())
}

func TestRunningBalance(t *testing.T) {
	rows := Rows(sample(), Options{Opening: amount("100")})
	require.Len(t, rows, 3)
	assert.Equal(t, "87.50", rows[0].Balance)
	assert.Equal(t, "1322.06", rows[1].Balance)
	assert.Equal(t, "1321.06", rows[2].Balance)
}

func TestPrintedBalanceWithoutOpening(t *testing.T) {
	rows := Rows(sample(), Options{})
	assert.Equal(t, "987.50", rows[0].Balance)
	assert.Empty(t, rows[1].Balance)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample(), Options{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Balance"}, rows[0])
	assert.Equal(t, "2023-03-01", rows[1][0])
	assert.Equal(t, `Bob's "Deli"`, rows[1][1])
	assert.Equal(t, "-12.5", rows[1][2])
	assert.Equal(t, "1234.56", rows[2][2])
}

func TestMarkdown(t *testing.T) {
	txs := sample()
	txs[0].Description = "A|B"
	out := Markdown(txs, Options{})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "| Date | Description | Amount | Balance |", lines[0])
	assert.Contains(t, lines[2], `A\|B`)
	assert.Contains(t, lines[2], "$12.50")
	assert.Contains(t, lines[3], "$1,234.56")
}

func TestMarkdownCurrency(t *testing.T) {
	out := Markdown(sample()[1:2], Options{Currency: "GBP"})
	assert.Contains(t, out, "£1,234.56")
}
