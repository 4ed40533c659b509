package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Role is what a table column holds.
type Role int

const (
	RoleNone Role = iota
	RoleDate
	RoleDescription
	RoleAmount
	RoleDebit
	RoleCredit
	RoleBalance
)

var roleSynonyms = map[Role][]string{
	RoleDate:        {"date", "transaction date", "trans date", "posting date", "post date", "value date", "booking date"},
	RoleDescription: {"description", "details", "transaction", "particulars", "narrative", "merchant", "payee", "memo", "transaction details"},
	RoleAmount:      {"amount", "value", "transaction amount"},
	RoleDebit:       {"debit", "debits", "withdrawal", "withdrawals", "money out", "paid out", "payments", "dr"},
	RoleCredit:      {"credit", "credits", "deposit", "deposits", "money in", "paid in", "receipts", "cr"},
	RoleBalance:     {"balance", "running balance"},
}

// headerThreshold is the minimum score for a cell to be read as a header.
const headerThreshold = 70

var (
	dateCell  = regexp.MustCompile(`^\s*` + DateFragment + `\s*$`)
	moneyCell = regexp.MustCompile(`^\s*` + MoneyFragment(false) + `\s*$`)
)

// headerScore rates how well a header cell matches a synonym, 0 to 100.
func headerScore(cell, synonym string) int {
	if cell == synonym {
		return 100
	}
	if len(synonym) <= 2 {
		return 0
	}
	if strings.Contains(cell, synonym) {
		return 75 + 25*len(synonym)/len(cell)
	}
	if strings.Contains(synonym, cell) && len(cell) >= 3 {
		return 75 + 25*len(cell)/len(synonym)
	}

	// OCR'd and abbreviated headers: edit distance or subsequence rank.
	maxLen := max(len(cell), len(synonym))
	score := 100 * (maxLen - fuzzy.LevenshteinDistance(cell, synonym)) / maxLen
	if rank := fuzzy.RankMatchNormalizedFold(cell, synonym); rank >= 0 && len(cell) >= 3 {
		if s := 60 + 20*len(cell)/len(synonym); s > score {
			score = s
		}
	}
	return score
}

// ClassifyHeader maps each cell of a candidate header row to a role. Each
// role is claimed by at most one column, the one scoring highest.
func ClassifyHeader(row []string) map[Role]int {
	type claim struct{ col, score int }
	best := make(map[Role]claim)
	for col, raw := range row {
		cell := strings.ToLower(strings.Join(strings.Fields(raw), " "))
		cell = strings.Trim(cell, " .:()$€£")
		if cell == "" {
			continue
		}
		role, score := RoleNone, 0
		for r, syns := range roleSynonyms {
			for _, syn := range syns {
				if s := headerScore(cell, syn); s > score || (s == score && r < role) {
					role, score = r, s
				}
			}
		}
		if score < headerThreshold {
			continue
		}
		if c, ok := best[role]; !ok || score > c.score {
			best[role] = claim{col: col, score: score}
		}
	}
	out := make(map[Role]int, len(best))
	for r, c := range best {
		out[r] = c.col
	}
	return out
}

func isHeader(roles map[Role]int) bool {
	_, date := roles[RoleDate]
	_, desc := roles[RoleDescription]
	_, amount := roles[RoleAmount]
	_, debit := roles[RoleDebit]
	_, credit := roles[RoleCredit]
	return (date || desc) && (amount || debit || credit)
}

// Table reads cell grids from the table engine and maps them by header.
type Table struct {
	tables engine.TableEngine
	logger *slog.Logger
}

func NewTable(tables engine.TableEngine, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{tables: tables, logger: logger}
}

func (s *Table) Name() string { return NameTable }

func (s *Table) Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error) {
	tables, err := s.tables.Tables(ctx, path, 0)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	var records []statement.RawRecord
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, TableRecords(t)...)
	}
	s.logger.Debug("tables parsed", slog.Int("tables", len(tables)), slog.Int("records", len(records)))
	return &statement.Extraction{
		Strategy:  NameTable,
		Records:   records,
		DateOrder: GuessDateOrder(records, statement.MonthFirst),
		Context:   GuessContext(profile.FirstPageText),
	}, nil
}

// TableRecords turns one grid into raw records. A header row within the
// first five rows drives column mapping; otherwise cells are classified
// by shape and the first and last monetary cells are read as amount and
// balance.
func TableRecords(t engine.Table) []statement.RawRecord {
	for i := 0; i < len(t.Rows) && i < 5; i++ {
		if roles := ClassifyHeader(t.Rows[i]); isHeader(roles) {
			return headerRecords(t.Page, t.Rows[i+1:], roles)
		}
	}
	return positionalRecords(t.Page, t.Rows)
}

func cellAt(row []string, roles map[Role]int, r Role) string {
	if col, ok := roles[r]; ok && col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

func headerRecords(page int, rows [][]string, roles map[Role]int) []statement.RawRecord {
	var (
		out      []statement.RawRecord
		lastDate string
		lines    int
	)
	for _, row := range rows {
		joined := strings.Join(row, " ")
		if balanceLine.MatchString(joined) {
			lastDate = cellAt(row, roles, RoleDate)
			continue
		}
		if roles := ClassifyHeader(row); isHeader(roles) {
			continue
		}

		date := cellAt(row, roles, RoleDate)
		desc := cellAt(row, roles, RoleDescription)
		if _, ok := roles[RoleDescription]; !ok {
			desc = unassigned(row, roles)
		}

		rec := statement.RawRecord{Page: page, Description: desc, BalanceToken: cellAt(row, roles, RoleBalance)}
		switch {
		case moneyCell.MatchString(cellAt(row, roles, RoleAmount)):
			rec.AmountToken = cellAt(row, roles, RoleAmount)
		case moneyCell.MatchString(cellAt(row, roles, RoleDebit)):
			rec.AmountToken = cellAt(row, roles, RoleDebit)
			rec.Sign = statement.SignDebit
		case moneyCell.MatchString(cellAt(row, roles, RoleCredit)):
			rec.AmountToken = cellAt(row, roles, RoleCredit)
			rec.Sign = statement.SignCredit
		}

		if rec.AmountToken == "" {
			// A money-less undated row continues the previous description.
			if date == "" && desc != "" && len(out) > 0 && lines < maxContinuationLines {
				out[len(out)-1].Description += " " + desc
				lines++
			}
			continue
		}
		if date != "" && !dateCell.MatchString(date) {
			continue
		}
		if date == "" {
			date = lastDate
		}
		lastDate = date
		rec.DateToken = date
		rec.DefaultSign = ledgerDefault(rec.AmountToken, rec.BalanceToken, false)
		out = append(out, rec)
		lines = 0
	}
	return out
}

func unassigned(row []string, roles map[Role]int) string {
	used := make(map[int]bool, len(roles))
	for _, col := range roles {
		used[col] = true
	}
	var parts []string
	for i, c := range row {
		if !used[i] && strings.TrimSpace(c) != "" {
			parts = append(parts, strings.TrimSpace(c))
		}
	}
	return strings.Join(parts, " ")
}

func positionalRecords(page int, rows [][]string) []statement.RawRecord {
	var out []statement.RawRecord
	for _, row := range rows {
		if balanceLine.MatchString(strings.Join(row, " ")) {
			continue
		}
		var (
			date  string
			money []string
			desc  []string
		)
		for _, c := range row {
			c = strings.TrimSpace(c)
			switch {
			case c == "":
			case date == "" && dateCell.MatchString(c):
				date = c
			case moneyCell.MatchString(c):
				money = append(money, c)
			default:
				desc = append(desc, c)
			}
		}
		if date == "" || len(money) == 0 {
			continue
		}
		rec := statement.RawRecord{
			DateToken:   date,
			Description: strings.Join(desc, " "),
			AmountToken: money[0],
			Page:        page,
		}
		if len(money) > 1 {
			rec.BalanceToken = money[len(money)-1]
			rec.LowAmountConfidence = true
		}
		rec.DefaultSign = ledgerDefault(rec.AmountToken, rec.BalanceToken, false)
		out = append(out, rec)
	}
	return out
}
