// Package extractor filters parsed bank statement lines down to the credit
// entries relevant to commission matching and pulls the payer's display
// name out of free-text transaction descriptions.
package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"acerto-reconciliation-service/internal/models"
)

// payerPrefixes are the description prefixes banks put in front of the
// payer name on incoming PIX transfers, tried in order.
var payerPrefixes = []string{
	"Pix recebido de",
	"PIX RECEBIDO",
}

// FilterCreditLines keeps only the lines whose transaction type equals the
// canonical credit marker and whose amount is positive. Order is preserved.
func FilterCreditLines(lines []*models.StatementLine) []*models.StatementLine {
	credits := make([]*models.StatementLine, 0, len(lines))
	for _, line := range lines {
		if line.IsCredit() {
			credits = append(credits, line)
		}
	}
	return credits
}

// ExtractPayerName strips a known payer prefix from a statement description
// and returns the remainder, trimmed. An empty return value signals an
// unidentifiable payer: either no prefix matched or nothing followed it.
// Callers must skip such lines rather than treat the raw description as a
// name.
func ExtractPayerName(description string) string {
	trimmed := strings.TrimSpace(description)

	for _, prefix := range payerPrefixes {
		if rest, ok := cutPrefixFold(trimmed, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// cutPrefixFold removes prefix from s under case folding, advancing rune by
// rune. Lowercasing can change a rune's byte width, so the cut position is
// derived from s itself, never from a lowered copy.
func cutPrefixFold(s, prefix string) (string, bool) {
	rest := s
	for _, pr := range prefix {
		r, size := utf8.DecodeRuneInString(rest)
		if size == 0 {
			return "", false
		}
		if r != pr && unicode.ToLower(r) != unicode.ToLower(pr) {
			return "", false
		}
		rest = rest[size:]
	}
	return rest, true
}
