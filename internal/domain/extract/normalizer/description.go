package normalizer

import (
	"regexp"
	"strings"
)

var (
	valueDate   = regexp.MustCompile(`(?i)\bvalue\s+date:?\s*\d{1,2}[/.\-]\d{1,2}(?:[/.\-]\d{2,4})?`)
	longRef     = regexp.MustCompile(`\b\d{10,}\b`)
	trailingTS  = regexp.MustCompile(`\s+\d{1,2}:\d{2}(?::\d{2})?(?:\s*[AaPp][Mm])?\s*$`)
	spaceRun    = regexp.MustCompile(`\s+`)
	edgeNoise   = " \t-–|*:;,"
	noiseTokens = []*regexp.Regexp{valueDate, longRef, trailingTS}
)

// CleanDescription collapses whitespace and strips known noise: value
// date annotations, reference numbers of ten or more digits and trailing
// timestamps. Issuer cleaners run after the built-in ones.
func CleanDescription(raw string, cleaners []*regexp.Regexp) string {
	s := raw
	for _, re := range noiseTokens {
		s = re.ReplaceAllString(s, " ")
	}
	for _, re := range cleaners {
		s = re.ReplaceAllString(s, " ")
	}
	s = spaceRun.ReplaceAllString(s, " ")
	return strings.Trim(s, edgeNoise)
}
