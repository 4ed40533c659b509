// Package issuer identifies the institution that produced a statement,
// first by file name and then by a single Aho-Corasick pass over the first
// page text.
package issuer

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudflare/ahocorasick"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Rule matches first page text. Every term in All must appear, at least one
// term of Any (when given) and none of None. Terms are case-insensitive.
type Rule struct {
	Issuer statement.Issuer
	All    []string
	Any    []string
	None   []string
}

// FilenameRule maps a substring of the normalized base file name to an
// issuer. The file name is lowercased, every non alphanumeric run becomes
// "_" and the result is wrapped in "_" so short tags can require word edges.
type FilenameRule struct {
	Term   string
	Issuer statement.Issuer
}

// Detector evaluates filename rules, then content rules in order. The first
// matching rule wins.
type Detector struct {
	mu        sync.RWMutex
	filenames []FilenameRule
	rules     []Rule
	matcher   *ahocorasick.Matcher
	terms     map[string]int // uppercased term -> matcher index
	logger    *slog.Logger
}

// NewDetector builds a detector with the built-in rule tables.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{logger: logger}
	d.Build(DefaultFilenames(), DefaultRules())
	return d
}

// Build replaces the rule tables and recompiles the matcher. Rules naming
// an issuer outside the closed set are dropped.
func (d *Detector) Build(filenames []FilenameRule, rules []Rule) {
	filenames = validFilenames(filenames, d.logger)
	rules = validRules(rules, d.logger)

	d.mu.Lock()
	defer d.mu.Unlock()

	terms := make(map[string]int)
	var patterns [][]byte
	add := func(list []string) {
		for _, t := range list {
			t = normalize(t)
			if t == "" {
				continue
			}
			if _, ok := terms[t]; !ok {
				terms[t] = len(patterns)
				patterns = append(patterns, []byte(t))
			}
		}
	}
	for _, r := range rules {
		add(r.All)
		add(r.Any)
		add(r.None)
	}

	d.filenames = filenames
	d.rules = rules
	d.terms = terms
	d.matcher = nil
	if len(patterns) > 0 {
		d.matcher = ahocorasick.NewMatcher(patterns)
	}
}

func validFilenames(in []FilenameRule, logger *slog.Logger) []FilenameRule {
	out := make([]FilenameRule, 0, len(in))
	for _, f := range in {
		if !f.Issuer.Valid() {
			logger.Warn("dropping filename rule", slog.String("term", f.Term), slog.String("issuer", string(f.Issuer)))
			continue
		}
		out = append(out, f)
	}
	return out
}

func validRules(in []Rule, logger *slog.Logger) []Rule {
	out := make([]Rule, 0, len(in))
	for _, r := range in {
		if !r.Issuer.Valid() {
			logger.Warn("dropping content rule", slog.String("issuer", string(r.Issuer)))
			continue
		}
		out = append(out, r)
	}
	return out
}

// Detect returns the issuer of a statement, or statement.IssuerUnknown.
func (d *Detector) Detect(path, firstPageText string) statement.Issuer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if issuer := d.byFilename(path); issuer != statement.IssuerUnknown {
		d.logger.Debug("issuer detected", slog.String("issuer", string(issuer)), slog.String("by", "filename"))
		return issuer
	}
	if d.matcher == nil || strings.TrimSpace(firstPageText) == "" {
		return statement.IssuerUnknown
	}

	hits := make(map[int]bool)
	for _, idx := range d.matcher.Match([]byte(normalize(firstPageText))) {
		hits[idx] = true
	}
	for _, r := range d.rules {
		if d.matches(r, hits) {
			d.logger.Debug("issuer detected", slog.String("issuer", string(r.Issuer)), slog.String("by", "content"))
			return r.Issuer
		}
	}
	return statement.IssuerUnknown
}

func (d *Detector) byFilename(path string) statement.Issuer {
	if path == "" {
		return statement.IssuerUnknown
	}
	name := filenameKey(filepath.Base(path))
	for _, f := range d.filenames {
		if strings.Contains(name, f.Term) {
			return f.Issuer
		}
	}
	return statement.IssuerUnknown
}

func (d *Detector) matches(r Rule, hits map[int]bool) bool {
	hit := func(term string) bool {
		idx, ok := d.terms[normalize(term)]
		return ok && hits[idx]
	}
	for _, t := range r.All {
		if !hit(t) {
			return false
		}
	}
	for _, t := range r.None {
		if hit(t) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, t := range r.Any {
		if hit(t) {
			return true
		}
	}
	return false
}

// normalize uppercases s and turns every run of non alphanumeric runes
// into one space, padding both ends, so terms only match on word edges.
func normalize(s string) string {
	key := words(strings.ToUpper(s), ' ')
	if strings.TrimSpace(key) == "" {
		return ""
	}
	return key
}

func filenameKey(base string) string {
	return words(strings.ToLower(base), '_')
}

func words(s string, sep byte) string {
	var b strings.Builder
	b.WriteByte(sep)
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending {
				b.WriteByte(sep)
				pending = false
			}
			b.WriteRune(r)
			continue
		}
		pending = b.Len() > 1
	}
	b.WriteByte(sep)
	return b.String()
}
