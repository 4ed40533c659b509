package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

var (
	ErrAmountRange  = errors.New("amount out of range")
	ErrAmountFormat = errors.New("amount format")
)

// Amount is a parsed monetary token.
type Amount struct {
	Value decimal.Decimal
	// Explicit is set when the token itself carried its sign: a minus,
	// parentheses, a trailing minus or a CR/DR suffix.
	Explicit bool
}

// ocrDigits maps characters OCR commonly reads in place of digits.
var ocrDigits = strings.NewReplacer(
	"O", "0", "o", "0",
	"l", "1", "I", "1", "|", "1",
)

// FixOCRConfusions repairs O->0, l->1, I->1, |->1 inside an amount token and
// turns a leading S in front of a digit into $.
func FixOCRConfusions(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 1 && token[0] == 'S' && (isDigit(token[1]) || strings.ContainsRune("OolI|", rune(token[1]))) {
		token = "$" + token[1:]
	}
	// Only touch the numeric body, not a trailing CR/DR or currency code.
	body, suffix := splitSuffix(token)
	return ocrDigits.Replace(body) + suffix
}

// ParseAmount parses a printed amount. When ocr is set the common OCR
// confusions are repaired first.
func ParseAmount(token string, ocr bool) (Amount, error) {
	s := strings.TrimSpace(token)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: empty", ErrAmountFormat)
	}
	if ocr {
		s = FixOCRConfusions(s)
	}

	var amt Amount
	negative := false

	body, suffix := splitSuffix(s)
	switch strings.ToUpper(suffix) {
	case "CR":
		amt.Explicit = true
	case "DR":
		amt.Explicit = true
		negative = true
	}
	s = body

	for _, sym := range money.Symbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, "\u2212", "-")

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		negative, amt.Explicit = true, true
	}
	if strings.HasSuffix(s, "-") {
		s = strings.TrimSuffix(s, "-")
		negative, amt.Explicit = true, true
	}
	if strings.HasPrefix(s, "-") {
		s = strings.TrimPrefix(s, "-")
		negative, amt.Explicit = true, true
	} else if strings.HasPrefix(s, "+") {
		s = strings.TrimPrefix(s, "+")
		amt.Explicit = true
	}

	d, err := money.ParseDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %v", ErrAmountFormat, token, err)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("%w: %q: double sign", ErrAmountFormat, token)
	}
	if d.GreaterThan(statement.MaxAbsAmount) {
		return Amount{}, fmt.Errorf("%w: %q", ErrAmountRange, token)
	}
	if negative {
		d = d.Neg()
	}
	amt.Value = d.Round(2)
	return amt, nil
}

// splitSuffix separates a trailing CR/DR marker or currency code.
func splitSuffix(s string) (string, string) {
	trimmed := strings.TrimSpace(s)
	upper := strings.ToUpper(trimmed)
	for _, code := range money.Codes {
		if strings.HasSuffix(upper, code) {
			trimmed = strings.TrimSpace(trimmed[:len(trimmed)-len(code)])
			upper = strings.ToUpper(trimmed)
			break
		}
	}
	for _, code := range money.Codes {
		if strings.HasPrefix(upper, code) {
			trimmed = strings.TrimSpace(trimmed[len(code):])
			upper = strings.ToUpper(trimmed)
			break
		}
	}
	for _, marker := range []string{"CR", "DR"} {
		if strings.HasSuffix(upper, marker) {
			return strings.TrimSpace(trimmed[:len(trimmed)-2]), marker
		}
	}
	return trimmed, ""
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
