package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

var (
	totalLabel = regexp.MustCompile(`(?i)\btotal\s+(payments?|deposits?|credits?|withdrawals?|interest(?:\s+charged)?|fees?(?:\s+charged)?|debits?|purchases?|charges?)\b`)
	totalMoney = regexp.MustCompile(MoneyFragment(false))
)

// labelSigns maps the first word after "Total" to its sign.
var labelSigns = map[string]statement.Sign{
	"payment":    statement.SignCredit,
	"deposit":    statement.SignCredit,
	"credit":     statement.SignCredit,
	"withdrawal": statement.SignDebit,
	"interest":   statement.SignDebit,
	"fee":        statement.SignDebit,
	"debit":      statement.SignDebit,
	"purchase":   statement.SignDebit,
	"charge":     statement.SignDebit,
}

// Summary emits one pseudo-transaction per labeled period total, dated at
// the statement period end. It serves statements that disclose nothing
// but totals, such as loan summaries.
type Summary struct {
	text   engine.TextEngine
	logger *slog.Logger
}

func NewSummary(text engine.TextEngine, logger *slog.Logger) *Summary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summary{text: text, logger: logger}
}

func (s *Summary) Name() string { return NameSummary }

func (s *Summary) Extract(ctx context.Context, path string, profile statement.Profile) (*statement.Extraction, error) {
	pages, err := s.text.LayoutText(ctx, path, 0)
	if err != nil {
		return nil, fmt.Errorf("layout text: %w", err)
	}
	full := strings.Join(pages, "\n")

	var dateTok string
	if p, ok := normalizer.FindPeriod(full); ok {
		dateTok = p.End.Format("2006-01-02")
	}

	seen := make(map[string]bool)
	var records []statement.RawRecord
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, line := range strings.Split(page, "\n") {
			rec, ok := summaryRecord(line)
			if !ok || seen[strings.ToLower(rec.Description)] {
				continue
			}
			seen[strings.ToLower(rec.Description)] = true
			rec.DateToken = dateTok
			rec.Page = i + 1
			records = append(records, rec)
		}
	}
	s.logger.Debug("summary totals", slog.Int("totals", len(records)), slog.String("period_end", dateTok))
	return &statement.Extraction{
		Strategy:  NameSummary,
		Records:   records,
		DateOrder: statement.MonthFirst,
	}, nil
}

func summaryRecord(line string) (statement.RawRecord, bool) {
	loc := totalLabel.FindStringSubmatchIndex(line)
	if loc == nil {
		return statement.RawRecord{}, false
	}
	amount := totalMoney.FindString(line[loc[1]:])
	if amount == "" {
		return statement.RawRecord{}, false
	}
	label := strings.Join(strings.Fields(line[loc[0]:loc[1]]), " ")
	word := strings.ToLower(strings.Fields(line[loc[2]:loc[3]])[0])
	word = strings.TrimSuffix(word, "s")
	return statement.RawRecord{
		Description: label,
		AmountToken: strings.TrimSpace(amount),
		Sign:        labelSigns[word],
	}, true
}
