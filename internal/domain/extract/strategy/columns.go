package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

var columnHeaders = []struct {
	role Role
	re   *regexp.Regexp
}{
	{RoleDebit, regexp.MustCompile(`(?i)\b(?:money\s+out|paid\s+out|withdrawals?|debits?|payments)\b`)},
	{RoleCredit, regexp.MustCompile(`(?i)\b(?:money\s+in|paid\s+in|deposits?|credits?|receipts)\b`)},
	{RoleBalance, regexp.MustCompile(`(?i)\bbalance\b`)},
}

// column is a header span in rune offsets, [start, end).
type column struct {
	role       Role
	start, end int
}

func (c column) center() float64 { return float64(c.start+c.end) / 2 }

// FindColumns scans a line for money in, money out and balance headers.
// At least one of money in or money out plus one other header is needed,
// and neighbouring headers must sit in separate layout cells.
func FindColumns(line string) []column {
	var cols []column
	for _, h := range columnHeaders {
		loc := h.re.FindStringIndex(line)
		if loc == nil {
			continue
		}
		cols = append(cols, column{
			role:  h.role,
			start: utf8.RuneCountInString(line[:loc[0]]),
			end:   utf8.RuneCountInString(line[:loc[1]]),
		})
	}
	if len(cols) < 2 || (cols[0].role != RoleDebit && cols[0].role != RoleCredit) {
		return nil
	}
	sortColumns(cols)
	runes := []rune(line)
	for i := 1; i < len(cols); i++ {
		if cols[i].start < cols[i-1].end || !strings.Contains(string(runes[cols[i-1].end:cols[i].start]), "  ") {
			return nil
		}
	}
	return cols
}

// headerColumns re-anchors the columns only on lines that carry no date
// and no amount, so descriptions such as "Interest credit to balance"
// stay transactions.
func (s *Column) headerColumns(line string) []column {
	if leadingDate.MatchString(line) || len(s.parser.MoneyTokens(line)) > 0 {
		return nil
	}
	return FindColumns(line)
}

func sortColumns(cols []column) {
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j].start < cols[j-1].start; j-- {
			cols[j], cols[j-1] = cols[j-1], cols[j]
		}
	}
}

// assign returns the column whose region holds a token spanning runes
// [start, end). Regions are split at the midpoints between header
// centers; tokens ending well before the first header are not in any
// column.
func assign(cols []column, start, end int) (column, bool) {
	if len(cols) == 0 || end < cols[0].start-columnSlack {
		return column{}, false
	}
	mid := float64(start+end) / 2
	best := cols[0]
	for i := 1; i < len(cols); i++ {
		boundary := (cols[i-1].center() + cols[i].center()) / 2
		if mid >= boundary {
			best = cols[i]
		}
	}
	return best, true
}

// columnSlack lets left-aligned values start a little before the header.
const columnSlack = 4

// Column assigns monetary tokens to money in, money out and balance
// columns by their character offset under the header.
type Column struct {
	text   engine.TextEngine
	parser *LineParser
	logger *slog.Logger
}

func NewColumn(text engine.TextEngine, logger *slog.Logger) *Column {
	if logger == nil {
		logger = slog.Default()
	}
	return &Column{text: text, parser: NewLineParser(ParserConfig{}), logger: logger}
}

func (s *Column) Name() string { return NameColumnPosition }

func (s *Column) Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error) {
	pages, err := s.text.LayoutText(ctx, path, 0)
	if err != nil {
		return nil, fmt.Errorf("layout text: %w", err)
	}
	var (
		records []statement.RawRecord
		cols    []column
		date    string
		pending string // description of a dated line without money
		last    = -1
		lines   int
	)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, line := range strings.Split(page, "\n") {
			if c := s.headerColumns(line); c != nil {
				cols, last = c, -1
				continue
			}
			if cols == nil || strings.TrimSpace(line) == "" {
				last = -1
				continue
			}
			if s.parser.Skipped(line) {
				last = -1
				continue
			}
			rec, dated, ok := s.columnRecord(line, cols, i+1)
			if dated != "" {
				date, pending = dated, ""
			}
			if !ok {
				if dated != "" {
					pending = rec.Description
					continue
				}
				text := strings.TrimSpace(line)
				if last >= 0 && lines < maxContinuationLines &&
					utf8.RuneCountInString(text) <= maxContinuationLen && !headerLike.MatchString(text) {
					records[last].Description += " " + text
					lines++
				}
				continue
			}
			if date == "" {
				continue
			}
			rec.DateToken = date
			if dated == "" && pending != "" {
				rec.Description = strings.TrimSpace(pending + " " + rec.Description)
				pending = ""
			}
			records = append(records, rec)
			last, lines = len(records)-1, 0
		}
	}
	s.logger.Debug("columns parsed", slog.Int("pages", len(pages)), slog.Int("records", len(records)))
	return &statement.Extraction{
		Strategy:  NameColumnPosition,
		Records:   records,
		DateOrder: GuessDateOrder(records, statement.DayFirst),
		Context:   statement.ContextChecking,
	}, nil
}

var leadingDate = regexp.MustCompile(`^\s*(` + DateFragment + `)`)

// columnRecord reads one line. It returns the leading date token if any,
// and a record when a money token sits in the money in or out column.
func (s *Column) columnRecord(line string, cols []column, page int) (statement.RawRecord, string, bool) {
	var dateTok string
	body := line
	offset := 0
	if m := leadingDate.FindStringSubmatchIndex(line); m != nil {
		dateTok = line[m[2]:m[3]]
		body = line[m[1]:]
		offset = m[1]
	}

	rec := statement.RawRecord{Page: page}
	descEnd := len(body)
	found := false
	for _, loc := range s.parser.MoneyTokens(body) {
		start := utf8.RuneCountInString(line[:offset+loc[0]])
		end := utf8.RuneCountInString(line[:offset+loc[1]])
		col, ok := assign(cols, start, end)
		if !ok {
			continue
		}
		if loc[0] < descEnd {
			descEnd = loc[0]
		}
		tok := strings.TrimSpace(body[loc[0]:loc[1]])
		switch col.role {
		case RoleBalance:
			rec.BalanceToken = tok
		case RoleDebit, RoleCredit:
			if found {
				continue
			}
			rec.AmountToken = tok
			rec.Sign = statement.SignDebit
			if col.role == RoleCredit {
				rec.Sign = statement.SignCredit
			}
			found = true
		}
	}
	rec.Description = strings.TrimSpace(body[:descEnd])
	return rec, dateTok, found
}
