// Package export writes extracted transactions as CSV, XLSX or a Markdown
// table.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

const sheet = "Transactions"

// Options controls the balance column and currency display.
type Options struct {
	// Opening, when valid, replaces the printed balances with a running
	// balance starting from it.
	Opening  decimal.NullDecimal
	Currency string
}

// Row is one exported transaction line.
type Row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Balance     string `csv:"Balance"`
}

type line struct {
	Row
	amount  decimal.NullDecimal
	balance decimal.NullDecimal
}

// Rows flattens transactions into export rows.
func Rows(txs []statement.Transaction, opts Options) []Row {
	lines := flatten(txs, opts)
	rows := make([]Row, len(lines))
	for i, l := range lines {
		rows[i] = l.Row
	}
	return rows
}

func flatten(txs []statement.Transaction, opts Options) []line {
	lines := make([]line, 0, len(txs))
	currency := currencyOf(opts)
	running := money.NewFromDecimal(opts.Opening.Decimal, currency)
	for _, tx := range txs {
		r := line{
			Row:    Row{Date: tx.DateISO(), Description: tx.Description},
			amount: tx.Amount,
		}
		if tx.Amount.Valid {
			r.Amount = tx.Amount.Decimal.StringFixed(2)
		}

		switch {
		case opts.Opening.Valid:
			if tx.Amount.Valid {
				// Same currency on both sides, so Add cannot fail.
				running, _ = running.Add(money.NewFromDecimal(tx.Amount.Decimal, currency))
			}
			r.balance = decimal.NewNullDecimal(running.ToDecimal())
		case tx.Balance.Valid:
			r.balance = tx.Balance
		}
		if r.balance.Valid {
			r.Balance = r.balance.Decimal.StringFixed(2)
		}
		lines = append(lines, r)
	}
	return lines
}

// WriteCSV writes Date, Description, Amount, Balance with a header row.
func WriteCSV(w io.Writer, txs []statement.Transaction, opts Options) error {
	rows := Rows(txs, opts)
	if len(rows) == 0 {
		_, err := io.WriteString(w, "Date,Description,Amount,Balance\n")
		return err
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Amounts are numeric cells.
func WriteXLSX(w io.Writer, txs []statement.Transaction, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	header := []any{"Date", "Description", "Amount", "Balance"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx header: %w", err)
	}

	for i, r := range flatten(txs, opts) {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{r.Date, r.Description, numeric(r.amount), numeric(r.balance)}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "D", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func numeric(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

// Markdown renders a table with amounts formatted in the given currency.
func Markdown(txs []statement.Transaction, opts Options) string {
	currency := currencyOf(opts)

	var b strings.Builder
	b.WriteString("| Date | Description | Amount | Balance |\n")
	b.WriteString("|---|---|---:|---:|\n")
	for _, r := range flatten(txs, opts) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.Date,
			strings.ReplaceAll(r.Description, "|", `\|`),
			display(r.amount, currency),
			display(r.balance, currency),
		)
	}
	return b.String()
}

func currencyOf(opts Options) string {
	if opts.Currency == "" {
		return money.USD
	}
	return opts.Currency
}

func display(d decimal.NullDecimal, currency string) string {
	if !d.Valid {
		return ""
	}
	return money.NewFromDecimal(d.Decimal, currency).Display()
}
