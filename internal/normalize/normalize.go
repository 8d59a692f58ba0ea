// Package normalize provides the text and money normalization primitives
// shared by the reconciliation pipeline: person-name folding for fuzzy
// comparison, Brazilian-format amount parsing and BRL currency formatting.
package normalize

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a person name for comparison: Unicode decomposition,
// diacritic removal, lowercasing and whitespace trimming. It is a pure,
// total function; input that cannot be transformed is folded as-is.
func NormalizeName(s string) string {
	// The transform chain is stateful, so a fresh one is built per call to
	// keep the function safe for concurrent use.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}
	return strings.TrimSpace(strings.ToLower(folded))
}

// NameTokens returns the whitespace-delimited tokens of a normalized name.
func NameTokens(s string) []string {
	return strings.Fields(NormalizeName(s))
}

// ParseAmount parses a currency cell in Brazilian display format
// ("1.500,00", "R$ 200,50"). Every character except digits, a leading
// minus sign and the last comma or period is stripped; the surviving
// separator is treated as the decimal point. The second return value is
// false when no valid number remains, and callers must check it before
// accumulating.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, false
	}

	lastSep := strings.LastIndexAny(trimmed, ",.")

	var b strings.Builder
	for i, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case i == lastSep:
			b.WriteByte('.')
		case r == '-' && b.Len() == 0:
			b.WriteByte('-')
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." || cleaned == "-." {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatBRL renders an amount in Brazilian currency display format,
// e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return "R$ " + sign + strings.Join(groups, ".") + "," + fracPart
}
