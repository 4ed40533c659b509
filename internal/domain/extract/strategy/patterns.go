package strategy

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// MonthNames is the case-insensitive alternation of English month names.
const MonthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// DateFragment matches one printed date: ISO, numeric with or without a
// year, day-first with a textual month and month-first textual. Dotted
// numeric dates need a year so that amounts are never read as dates.
const DateFragment = `(?:\d{4}-\d{1,2}-\d{1,2}` +
	`|\d{1,2}[/\-]\d{1,2}(?:[/\-]\d{2,4})?` +
	`|\d{1,2}\.\d{1,2}\.\d{2,4}` +
	`|\d{1,2}(?:st|nd|rd|th)?[ \-]?(?i:` + MonthNames + `)(?:[ \-]\d{4})?` +
	`|(?i:` + MonthNames + `) \d{1,2}(?:st|nd|rd|th)?(?:,? \d{4})?)\b`

const currencyCodes = `(?:USD|EUR|GBP|AUD|CAD|NZD|CHF|JPY|INR)`

// MoneyFragment matches one printed amount with its optional sign,
// parentheses, currency symbol or code and CR/DR marker. The OCR variant
// also accepts the characters OCR confuses with digits and S for $.
func MoneyFragment(ocr bool) string {
	digit, symbol := `\d`, `[$€£¥₹]`
	if ocr {
		digit, symbol = `[\dOolI|]`, `[$€£¥₹S]`
	}
	return `[-+\x{2212}]?\(?(?:` + currencyCodes + ` ?)?` + symbol + `?[-+]?` +
		digit + `+(?:[,.]` + digit + `{3})*[.,]` + digit + `{2}\)?-?` +
		`(?: ?(?i:CR|DR))?(?: ` + currencyCodes + `)?`
}

// Catalog patterns, most specific first.
const (
	PatternTwoDate       = "two-date"
	PatternMultiAmount   = "multi-amount"
	PatternAmountBalance = "amount-balance"
	PatternAmount        = "amount"
	PatternDateOnly      = "date-only"
)

// LinePattern is one catalog entry. The expression may use the
// placeholders {date} and {money} and the named groups date, date2, desc,
// amount, balance, dir and category.
type LinePattern struct {
	Name string
	Expr string
	// LowConfidence marks patterns that pick the amount by position among
	// several monetary tokens.
	LowConfidence bool
	// OpensContinuation marks dated lines whose amount is printed on a
	// following line.
	OpensContinuation bool
}

// DefaultPatterns is the generic catalog shared by text layout and OCR.
func DefaultPatterns() []LinePattern {
	return []LinePattern{
		{Name: PatternTwoDate, Expr: `^\s*(?P<date>{date})\s+(?P<date2>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})(?:\s+(?P<balance>{money}))?\s*$`},
		{Name: PatternMultiAmount, Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})(?:\s+{money})+\s+(?P<balance>{money})\s*$`, LowConfidence: true},
		{Name: PatternAmountBalance, Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})\s+(?P<balance>{money})\s*$`, LowConfidence: true},
		{Name: PatternAmount, Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})\s*$`},
		{Name: PatternDateOnly, Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s*$`, OpensContinuation: true},
	}
}

// Section switches the sign of every following record until another
// section header is seen.
type Section struct {
	Re   *regexp.Regexp
	Sign statement.Sign
}

// ParserConfig parameterizes a LineParser.
type ParserConfig struct {
	// Date overrides DateFragment, e.g. to accept only "MM/DD".
	Date string
	// OCR switches to the confusion tolerant money fragment.
	OCR bool
	// Extra patterns are tried before Patterns.
	Extra []LinePattern
	// Patterns defaults to DefaultPatterns.
	Patterns []LinePattern
	Sections []Section
	// Skip lines in addition to the built-in balance lines.
	Skip *regexp.Regexp
	// DirSigns maps the value of a dir group (e.g. "Af", "Bij") to a sign.
	DirSigns map[string]statement.Sign
}

type compiledPattern struct {
	LinePattern
	re     *regexp.Regexp
	groups map[string]int
}

// LineParser applies an ordered pattern catalog to layout text lines.
type LineParser struct {
	patterns  []compiledPattern
	moneyOnly *regexp.Regexp
	money     *regexp.Regexp
	dateStart *regexp.Regexp
	skip      *regexp.Regexp
	sections  []Section
	dirSigns  map[string]statement.Sign
	ocr       bool
}

var (
	balanceLine = regexp.MustCompile(`(?i)\b(?:balance\s+(?:brought|carried)\s+forward|balance\s+[bc]/?f|(?:opening|closing|previous|new|starting|ending|beginning)\s+balance)\b`)
	headerLike  = regexp.MustCompile(`(?i)\b(?:page\s+\d+|balance|total|statement|continued|date\s+description)\b`)
	ledgerMark  = regexp.MustCompile(`(?i)(?:CR|DR)\s*$`)
)

const (
	maxContinuationLen   = 80
	maxContinuationLines = 2
)

// NewLineParser compiles a catalog. It panics on an invalid expression, as
// catalogs are fixed at registration time.
func NewLineParser(cfg ParserConfig) *LineParser {
	date := cfg.Date
	if date == "" {
		date = DateFragment
	}
	money := MoneyFragment(cfg.OCR)
	expand := strings.NewReplacer("{date}", date, "{money}", money)

	base := cfg.Patterns
	if base == nil {
		base = DefaultPatterns()
	}
	all := append(append([]LinePattern{}, cfg.Extra...), base...)

	p := &LineParser{
		moneyOnly: regexp.MustCompile(`^\s*(?P<amount>` + money + `)(?:\s+(?P<balance>` + money + `))?\s*$`),
		money:     regexp.MustCompile(money),
		dateStart: regexp.MustCompile(`^\s*(?:` + date + `)`),
		skip:      cfg.Skip,
		sections:  cfg.Sections,
		dirSigns:  make(map[string]statement.Sign, len(cfg.DirSigns)),
		ocr:       cfg.OCR,
	}
	for k, v := range cfg.DirSigns {
		p.dirSigns[strings.ToLower(k)] = v
	}
	for _, lp := range all {
		re := regexp.MustCompile(expand.Replace(lp.Expr))
		groups := make(map[string]int)
		for i, name := range re.SubexpNames() {
			if name != "" {
				groups[name] = i
			}
		}
		p.patterns = append(p.patterns, compiledPattern{LinePattern: lp, re: re, groups: groups})
	}
	return p
}

// StartsWithDate reports whether a line begins with a date token.
func (p *LineParser) StartsWithDate(line string) bool {
	return p.dateStart.MatchString(line)
}

// MoneyTokens returns the byte spans of monetary tokens in s.
func (p *LineParser) MoneyTokens(s string) [][]int {
	return p.money.FindAllStringIndex(s, -1)
}

// Skipped reports whether a line is an opening/closing balance or matches
// the configured skip expression.
func (p *LineParser) Skipped(line string) bool {
	return balanceLine.MatchString(line) || (p.skip != nil && p.skip.MatchString(line))
}

type parseState struct {
	records  []statement.RawRecord
	sign     statement.Sign
	last     int // record that may take continuation text, -1 for none
	lines    int // continuation lines already appended to last
	open     int // dated record waiting for its amount line, -1 for none
	nextPair int
}

// Parse walks every line of every page. Cancellation is honoured between
// pages. Dated records whose amount never appears are dropped.
func (p *LineParser) Parse(ctx context.Context, pages []string) ([]statement.RawRecord, error) {
	st := &parseState{last: -1, open: -1}
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, line := range strings.Split(page, "\n") {
			p.line(st, line, i+1)
		}
	}

	out := st.records[:0]
	paired := make(map[int]int)
	for _, r := range st.records {
		if r.Continuation != 0 {
			paired[r.Continuation]++
		}
	}
	for _, r := range st.records {
		if r.Continuation != 0 && paired[r.Continuation] < 2 {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (p *LineParser) line(st *parseState, line string, page int) {
	text := strings.TrimSpace(line)
	if text == "" {
		st.last = -1
		return
	}
	if p.Skipped(text) {
		st.last, st.open = -1, -1
		return
	}

	for _, cp := range p.patterns {
		m := cp.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec := p.record(cp, m, page, st.sign)
		if normalizer.IsPhoneLike(rec.DateToken) {
			continue
		}
		st.open = -1
		if cp.OpensContinuation {
			st.nextPair++
			rec.Continuation = st.nextPair
			st.open = len(st.records)
		}
		st.records = append(st.records, rec)
		st.last, st.lines = len(st.records)-1, 0
		return
	}

	if st.open >= 0 {
		if m := p.moneyOnly.FindStringSubmatch(line); m != nil {
			opener := st.records[st.open]
			rec := statement.RawRecord{
				AmountToken:  m[1],
				BalanceToken: m[2],
				Page:         page,
				Sign:         opener.Sign,
				Continuation: opener.Continuation,
			}
			rec.DefaultSign = ledgerDefault(rec.AmountToken, rec.BalanceToken, p.ocr)
			st.records = append(st.records, rec)
			st.last, st.open = -1, -1
			return
		}
	}

	for _, sec := range p.sections {
		if sec.Re.MatchString(text) {
			st.sign = sec.Sign
			st.last, st.open = -1, -1
			return
		}
	}

	if st.last >= 0 && st.lines < maxContinuationLines &&
		utf8.RuneCountInString(text) <= maxContinuationLen &&
		!headerLike.MatchString(text) && !p.StartsWithDate(text) &&
		len(p.MoneyTokens(text)) == 0 {
		st.records[st.last].Description += " " + text
		st.lines++
		return
	}
	st.last = -1
}

func (p *LineParser) record(cp compiledPattern, m []string, page int, section statement.Sign) statement.RawRecord {
	get := func(name string) string {
		if i, ok := cp.groups[name]; ok {
			return strings.TrimSpace(m[i])
		}
		return ""
	}
	rec := statement.RawRecord{
		DateToken:           get("date"),
		Description:         get("desc"),
		AmountToken:         get("amount"),
		BalanceToken:        get("balance"),
		Category:            get("category"),
		Page:                page,
		Sign:                section,
		LowAmountConfidence: cp.LowConfidence,
	}
	if dir := get("dir"); dir != "" {
		if s, ok := p.dirSigns[strings.ToLower(dir)]; ok {
			rec.Sign = s
		}
	}
	rec.DefaultSign = ledgerDefault(rec.AmountToken, rec.BalanceToken, p.ocr)
	return rec
}

// ledgerDefault implements the ledger convention: when the running
// balance carries a CR/DR marker and the amount carries no sign of its
// own, the amount is a debit.
func ledgerDefault(amount, balance string, ocr bool) statement.Sign {
	if amount == "" || !ledgerMark.MatchString(balance) {
		return statement.SignUnknown
	}
	amt, err := normalizer.ParseAmount(amount, ocr)
	if err != nil || amt.Explicit {
		return statement.SignUnknown
	}
	return statement.SignDebit
}

var numericToken = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})`)

// GuessDateOrder votes over numeric date tokens: a first component above
// 12 means day first, a second component above 12 means month first.
// Without evidence the fallback is returned.
func GuessDateOrder(records []statement.RawRecord, fallback statement.DateOrder) statement.DateOrder {
	day, month := 0, 0
	for _, r := range records {
		m := numericToken.FindStringSubmatch(strings.TrimSpace(r.DateToken))
		if m == nil {
			continue
		}
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		switch {
		case a > 12 && b <= 12:
			day++
		case b > 12 && a <= 12:
			month++
		}
	}
	switch {
	case day > month:
		return statement.DayFirst
	case month > day:
		return statement.MonthFirst
	default:
		return fallback
	}
}

var creditCardText = regexp.MustCompile(`(?i)\b(?:minimum\s+(?:payment|amount)\s+due|credit\s+limit|available\s+credit|card\s*member)\b`)

// GuessContext reads the first page for credit card markers.
func GuessContext(firstPage string) statement.AccountContext {
	if creditCardText.MatchString(firstPage) {
		return statement.ContextCreditCard
	}
	return statement.ContextUnknown
}
