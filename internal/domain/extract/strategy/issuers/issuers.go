package issuers

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/engine"
	"github.com/FACorreiaa/statement-extractor/internal/domain/extract/strategy"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Spec specializes a family for one issuer. Zero fields keep the family
// default.
type Spec struct {
	Issuer       statement.Issuer
	Family       Family
	DateOrder    *statement.DateOrder
	Date         string
	Extra        []strategy.LinePattern
	Sections     []strategy.Section
	DirSigns     map[string]statement.Sign
	Skip         *regexp.Regexp
	SignKeywords statement.SignKeywords
	Cleaners     []*regexp.Regexp
}

// Name is the registry name of an issuer strategy.
func Name(issuer statement.Issuer) string {
	return fmt.Sprintf("issuer/%s", issuer)
}

// Options merges the spec over its family defaults.
func (s Spec) Options() strategy.LineOptions {
	opts := s.Family.base()
	if s.DateOrder != nil {
		opts.DateOrder = *s.DateOrder
	}
	opts.Parser.Date = s.Date
	opts.Parser.Extra = s.Extra
	opts.Parser.Sections = append(append([]strategy.Section{}, s.Sections...), opts.Parser.Sections...)
	opts.Parser.DirSigns = s.DirSigns
	opts.Parser.Skip = s.Skip
	opts.SignKeywords = s.SignKeywords
	opts.Cleaners = s.Cleaners
	return opts
}

// New builds the strategy for a spec.
func (s Spec) New(text engine.TextEngine, logger *slog.Logger) strategy.Strategy {
	return strategy.NewLineStrategy(Name(s.Issuer), text, s.Options(), logger)
}

// Entries returns one registry entry per issuer spec. ready reports whether
// the text engine is usable; nil means always.
func Entries(text engine.TextEngine, ready func() bool, logger *slog.Logger) []strategy.Entry {
	specs := Specs()
	out := make([]strategy.Entry, 0, len(specs))
	for _, spec := range specs {
		out = append(out, strategy.Entry{
			Name:   Name(spec.Issuer),
			Issuer: spec.Issuer,
			New:    func() strategy.Strategy { return spec.New(text, logger) },
			Ready:  ready,
		})
	}
	return out
}

func re(expr string) *regexp.Regexp { return regexp.MustCompile(expr) }

func order(o statement.DateOrder) *statement.DateOrder { return &o }

const (
	hsbcDate = `(?:\d{1,2} (?i:` + strategy.MonthNames + `)(?: \d{2}(?:\d{2})?)?)\b`

	// Type code before the description (HSBC) or after it (Lloyds).
	codeFirst = `^\s*(?P<date>{date})\s+(?P<dir>%s)\s+(?P<desc>.*?\S)\s+(?P<amount>{money})(?:\s+(?P<balance>{money}))?\s*$`
	codeAfter = `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<dir>%s)\s+(?P<amount>{money})(?:\s+(?P<balance>{money}))?\s*$`
)

// Specs lists every issuer specialization, grouped by family.
func Specs() []Spec {
	dutchDir := map[string]statement.Sign{
		"af": statement.SignDebit, "bij": statement.SignCredit,
		"debet": statement.SignDebit, "credit": statement.SignCredit,
	}
	return []Spec{
		// US line statements.
		{
			Issuer:   statement.IssuerBoA,
			Family:   FamilyUSLine,
			Cleaners: []*regexp.Regexp{re(`(?i)\bconf(?:irmation)?#\s*\w+`), re(`(?i)\b(?:DES|ID|INDN|CO ID):\S*`)},
		},
		{
			Issuer:   statement.IssuerChase,
			Family:   FamilyUSLine,
			Cleaners: []*regexp.Regexp{re(`(?i)\b(?:web|ppd|ccd)\s+id:\s*\S+`), re(`(?i)\bcard\s+\d{4}\b`)},
		},
		{
			Issuer:   statement.IssuerWellsFargo,
			Family:   FamilyUSLine,
			Cleaners: []*regexp.Regexp{re(`(?i)\bpurchase authorized on \d{1,2}/\d{1,2}`), re(`(?i)\bcard\s+\d{4}\b`), re(`\bS\d{15,}\b`)},
		},
		{
			Issuer:    statement.IssuerRBC,
			Family:    FamilyUSLine,
			DateOrder: order(statement.DayFirst),
			Sections: []strategy.Section{
				{Re: re(`(?i)^\s*deposits\s*&\s*credits\b`), Sign: statement.SignCredit},
				{Re: re(`(?i)^\s*cheques\s*&\s*debits\b`), Sign: statement.SignDebit},
			},
		},
		{
			Issuer:       statement.IssuerPayPal,
			Family:       FamilyUSLine,
			Cleaners:     []*regexp.Regexp{re(`(?i)\b(?:transaction\s+)?id:?\s*[0-9A-Z]{12,}\b`)},
			SignKeywords: statement.SignKeywords{Credit: []string{"money received", "payment received"}},
		},

		// UK ledgers with CR/DR balances or type codes.
		{
			Issuer:   statement.IssuerBarclays,
			Family:   FamilyUKLedger,
			Skip:     re(`(?i)\bstart\s+balance\b`),
			Cleaners: []*regexp.Regexp{re(`(?i)\bref:\s*\S+`), re(`(?i)\bon \d{2} [a-z]{3}\b`)},
		},
		{
			Issuer: statement.IssuerHSBC,
			Family: FamilyUKLedger,
			Date:   hsbcDate,
			Extra: []strategy.LinePattern{{
				Name: "hsbc-type",
				Expr: fmt.Sprintf(codeFirst, `VIS|DD|SO|BP|CR|ATM|DR|OBP|TFR|\)\)\)`),
			}},
			DirSigns: map[string]statement.Sign{
				"vis": statement.SignDebit, "dd": statement.SignDebit, "so": statement.SignDebit,
				"bp": statement.SignDebit, "atm": statement.SignDebit, "dr": statement.SignDebit,
				"obp": statement.SignDebit, ")))": statement.SignDebit, "cr": statement.SignCredit,
			},
		},
		{
			Issuer: statement.IssuerLloyds,
			Family: FamilyUKLedger,
			Extra: []strategy.LinePattern{{
				Name: "lloyds-type",
				Expr: fmt.Sprintf(codeAfter, `DEB|FPO|FPI|DD|SO|BGC|CHQ|CPT|BP|PAY|DEP`),
			}},
			DirSigns: map[string]statement.Sign{
				"deb": statement.SignDebit, "fpo": statement.SignDebit, "dd": statement.SignDebit,
				"so": statement.SignDebit, "chq": statement.SignDebit, "cpt": statement.SignDebit,
				"bp": statement.SignDebit, "pay": statement.SignDebit,
				"fpi": statement.SignCredit, "bgc": statement.SignCredit, "dep": statement.SignCredit,
			},
		},
		{
			Issuer:       statement.IssuerNatWest,
			Family:       FamilyUKLedger,
			SignKeywords: statement.SignKeywords{Credit: []string{"automated credit"}, Debit: []string{"card transaction", "direct debit"}},
			Cleaners:     []*regexp.Regexp{re(`(?i)\bfp \d{2}/\d{2}/\d{2}\s+\d+`), re(`(?i)\bvia mobile\b`)},
		},
		{
			Issuer:   statement.IssuerMonzo,
			Family:   FamilyUKLedger,
			Cleaners: []*regexp.Regexp{re(`(?i)\bamount:\s*[A-Z]{3}\s*-?[\d.,]+\.?`), re(`(?i)\bconversion rate:\s*[\d.]+\.?`)},
		},

		// AU/EU day-first statements with sections.
		{
			Issuer:   statement.IssuerCommonwealth,
			Family:   FamilySectioned,
			Cleaners: []*regexp.Regexp{re(`(?i)\bcard\s+xx\d{4}\b`), re(`(?i)\bvalue\s+date:?\s*\S+`)},
		},
		{
			Issuer:   statement.IssuerWestpac,
			Family:   FamilySectioned,
			Cleaners: []*regexp.Regexp{re(`(?i)\bref(?:erence)?\s*no\.?\s*\S+`)},
		},
		{
			Issuer:   statement.IssuerANZ,
			Family:   FamilySectioned,
			Cleaners: []*regexp.Regexp{re(`(?i)\beffective date \d{2}/\d{2}/\d{4}`)},
		},
		{
			Issuer:   statement.IssuerNAB,
			Family:   FamilySectioned,
			Cleaners: []*regexp.Regexp{re(`(?i)\bnab\s+(?:visa|debit)\s+\S+`)},
		},
		{
			Issuer: statement.IssuerRabobank,
			Family: FamilySectioned,
			Extra: []strategy.LinePattern{{
				Name: "rabobank-dir",
				Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<amount>{money})\s+(?P<dir>(?i:af|bij))\b.*$`,
			}},
			DirSigns: dutchDir,
			Cleaners: []*regexp.Regexp{re(`(?i)\b(?:omschrijving|kenmerk|iban):?\s*\S*`)},
		},
		{
			Issuer: statement.IssuerING,
			Family: FamilySectioned,
			Extra: []strategy.LinePattern{{
				Name: "ing-dir",
				Expr: `^\s*(?P<date>{date})\s+(?P<desc>.*?\S)\s+(?P<dir>(?i:af|bij|debet|credit))\s+(?P<amount>{money})(?:\s+(?P<balance>{money}))?\s*$`,
			}},
			DirSigns: dutchDir,
		},

		// Credit cards with transaction and posting dates.
		{
			Issuer:   statement.IssuerAmex,
			Family:   FamilyCreditCard,
			Cleaners: []*regexp.Regexp{re(`(?i)\bcard\s+ending\s+\d{4,5}\b`)},
		},
		{
			Issuer: statement.IssuerCapitalOne,
			Family: FamilyCreditCard,
		},
		{
			Issuer: statement.IssuerDiscover,
			Family: FamilyCreditCard,
		},
		{
			Issuer:   statement.IssuerCiti,
			Family:   FamilyCreditCard,
			Cleaners: []*regexp.Regexp{re(`(?i)\bcitibank\s+n\.?a\.?`)},
		},
	}
}
