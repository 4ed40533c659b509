package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Period is a statement period found in the document text.
type Period struct {
	Start time.Time
	End   time.Time
}

var (
	// 01.07.2023-30.07.2023, 01/07/2023 to 30/07/2023
	numericPeriod = regexp.MustCompile(`(\d{1,2}[./\-]\d{1,2}[./\-]\d{4})\s*(?:-|–|to|through|until)\s*(\d{1,2}[./\-]\d{1,2}[./\-]\d{4})`)
	// 2023-07-01 to 2023-07-30
	isoPeriod = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:-|–|to|through)\s*(\d{4}-\d{2}-\d{2})`)
	// July 1, 2023 - July 30, 2023 / 1 July 2023 to 30 July 2023
	textPeriod = regexp.MustCompile(`(?i)((?:[A-Za-z]{3,9}\.? \d{1,2},? \d{4})|(?:\d{1,2} [A-Za-z]{3,9},? \d{4}))\s*(?:-|–|to|through|until)\s*((?:[A-Za-z]{3,9}\.? \d{1,2},? \d{4})|(?:\d{1,2} [A-Za-z]{3,9},? \d{4}))`)
	// Statement Period ... 2022, Statement date: ... 2022
	labeledYear = regexp.MustCompile(`(?i)statement\s+(?:period|date|ending|closing)[^\n]{0,60}?\b((?:19|20)\d{2})\b`)
)

// FindPeriod looks for an explicit statement period. Numeric periods are
// read day first, the dominant convention for dotted and dashed ranges.
func FindPeriod(text string) (Period, bool) {
	if m := isoPeriod.FindStringSubmatch(text); m != nil {
		if p, ok := period(m[1], m[2], statement.MonthFirst); ok {
			return p, true
		}
	}
	if m := numericPeriod.FindStringSubmatch(text); m != nil {
		order := statement.DayFirst
		if strings.Contains(m[1], "/") {
			order = guessOrder(m[1], m[2])
		}
		if p, ok := period(m[1], m[2], order); ok {
			return p, true
		}
	}
	if m := textPeriod.FindStringSubmatch(text); m != nil {
		if p, ok := period(m[1], m[2], statement.MonthFirst); ok {
			return p, true
		}
	}
	return Period{}, false
}

// guessOrder picks month-first for slashed ranges unless a component
// only makes sense as a day.
func guessOrder(a, b string) statement.DateOrder {
	for _, s := range []string{a, b} {
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' })
		if len(parts) > 0 {
			if n, _ := strconv.Atoi(parts[0]); n > 12 {
				return statement.DayFirst
			}
		}
	}
	return statement.MonthFirst
}

func period(a, b string, order statement.DateOrder) (Period, bool) {
	start, err := ParseDate(a, order, 0)
	if err != nil {
		return Period{}, false
	}
	end, err := ParseDate(b, order, 0)
	if err != nil {
		return Period{}, false
	}
	if end.Date.Before(start.Date) {
		return Period{}, false
	}
	return Period{Start: start.Date, End: end.Date}, true
}

// InferYear returns the statement year from an explicit period or labeled
// statement line, falling back to the clock. The second result reports
// whether the year was found in the text.
func InferYear(text string, clock engine.Clock) (int, bool) {
	if p, ok := FindPeriod(text); ok {
		return p.End.Year(), true
	}
	if m := labeledYear.FindStringSubmatch(text); m != nil {
		y, _ := strconv.Atoi(m[1])
		return y, true
	}
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return clock.Now().Year(), false
}
