package normalizer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

var (
	ErrDateFormat = errors.New("unrecognized date")
	ErrPhoneLike  = errors.New("phone number fragment")
	ErrNoYear     = errors.New("date has no year")
)

var (
	phoneFragment = regexp.MustCompile(`^1-\d{2,3}$`)
	numericDate   = regexp.MustCompile(`^(\d{1,4})[/.\-](\d{1,2})(?:[/.\-](\d{2,4}))?$`)
	dayFirstText  = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?[\s\-/]*([A-Za-z]{3,9})\.?,?(?:[\s\-/]+(\d{2,4}))?$`)
	monthFirstTxt = regexp.MustCompile(`^([A-Za-z]{3,9})\.?[\s\-]+(\d{1,2})(?:st|nd|rd|th)?,?(?:\s+(\d{4}))?$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// MonthByName resolves an English month name or abbreviation.
func MonthByName(s string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSuffix(s, "."))]
	return m, ok
}

// IsPhoneLike reports whether a date-shaped token is really a phone
// number fragment such as "1-800".
func IsPhoneLike(token string) bool {
	return phoneFragment.MatchString(strings.TrimSpace(token))
}

// ParsedDate is the outcome of ParseDate.
type ParsedDate struct {
	Date time.Time
	// HasYear is false when the year came from the inferred statement year.
	HasYear bool
}

// ParseDate reads a statement date. Formats are tried in a fixed order:
// ISO y-m-d, numeric with year (m/d/y then d/m/y, swapped for DayFirst),
// day-first with textual month, month-first textual, then short numeric
// m/d and d/m. Tokens without a year take year, which must be non-zero.
func ParseDate(token string, order statement.DateOrder, year int) (ParsedDate, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return ParsedDate{}, fmt.Errorf("%w: empty", ErrDateFormat)
	}
	if IsPhoneLike(s) {
		return ParsedDate{}, fmt.Errorf("%w: %q", ErrPhoneLike, s)
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		return parseNumeric(s, m, order, year)
	}
	if m := dayFirstText.FindStringSubmatch(s); m != nil {
		if month, ok := MonthByName(m[2]); ok {
			return build(s, m[3], month, m[1], year)
		}
	}
	if m := monthFirstTxt.FindStringSubmatch(s); m != nil {
		if month, ok := MonthByName(m[1]); ok {
			return build(s, m[3], month, m[2], year)
		}
	}
	return ParsedDate{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
}

func parseNumeric(s string, m []string, order statement.DateOrder, year int) (ParsedDate, error) {
	a, b, c := m[1], m[2], m[3]

	// y-m-d
	if len(a) == 4 {
		if c == "" {
			return ParsedDate{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
		}
		y, _ := strconv.Atoi(a)
		mo, _ := strconv.Atoi(b)
		d, _ := strconv.Atoi(c)
		t, ok := validDate(y, mo, d)
		if !ok {
			return ParsedDate{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
		}
		return ParsedDate{Date: t, HasYear: true}, nil
	}
	if len(a) > 2 {
		return ParsedDate{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}

	x, _ := strconv.Atoi(a)
	y, _ := strconv.Atoi(b)
	hasYear := c != ""
	yr := year
	if hasYear {
		yr = expandYear(c)
	} else if year == 0 {
		return ParsedDate{}, fmt.Errorf("%w: %q", ErrNoYear, s)
	}

	first, second := [2]int{x, y}, [2]int{y, x} // (month, day) candidates
	if order == statement.DayFirst {
		first, second = second, first
	}
	for _, md := range [][2]int{first, second} {
		if t, ok := validDate(yr, md[0], md[1]); ok {
			return ParsedDate{Date: t, HasYear: hasYear}, nil
		}
	}
	return ParsedDate{}, fmt.Errorf("%w: %q is not a valid month/day", ErrDateFormat, s)
}

func build(s, yearToken string, month time.Month, dayToken string, year int) (ParsedDate, error) {
	day, _ := strconv.Atoi(dayToken)
	hasYear := yearToken != ""
	yr := year
	if hasYear {
		yr = expandYear(yearToken)
	} else if year == 0 {
		return ParsedDate{}, fmt.Errorf("%w: %q", ErrNoYear, s)
	}
	t, ok := validDate(yr, int(month), day)
	if !ok {
		return ParsedDate{}, fmt.Errorf("%w: %q", ErrDateFormat, s)
	}
	return ParsedDate{Date: t, HasYear: hasYear}, nil
}

func expandYear(s string) int {
	y, _ := strconv.Atoi(s)
	if len(s) <= 2 {
		y += 2000
	}
	return y
}

// validDate builds a UTC date and rejects overflowing values like 31/02.
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 || year < 1900 || year > 2100 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
