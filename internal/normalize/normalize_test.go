package normalize

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases and trims", "  Gabriel Dias  ", "gabriel dias"},
		{"strips diacritics", "José Antônio Conceição", "jose antonio conceicao"},
		{"already normalized", "maria silva", "maria silva"},
		{"empty input", "", ""},
		{"cedilla and tilde", "João Gonçalves", "joao goncalves"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNameTokens(t *testing.T) {
	tokens := NameTokens("  Gabriel  Leonardo   Dias ")
	expected := []string{"gabriel", "leonardo", "dias"}

	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, token := range expected {
		if tokens[i] != token {
			t.Errorf("Token %d: expected %q, got %q", i, token, tokens[i])
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{"brazilian thousands and decimals", "1.500,00", "1500.00", true},
		{"currency prefix", "R$ 200,50", "200.50", true},
		{"plain integer", "1500", "1500", true},
		{"dot decimal", "1500.00", "1500.00", true},
		{"comma decimal only", "1,5", "1.5", true},
		{"zero", "0", "0", true},
		{"negative", "-300,25", "-300.25", true},
		{"letters only", "abc", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
		{"lone separator", ",", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			expected := decimal.RequireFromString(tt.expected)
			if !got.Equal(expected) {
				t.Errorf("ParseAmount(%q) = %s, expected %s", tt.input, got, expected)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234.56", "R$ 1.234,56"},
		{"1500", "R$ 1.500,00"},
		{"200.5", "R$ 200,50"},
		{"-300", "R$ -300,00"},
		{"0", "R$ 0,00"},
		{"1234567.89", "R$ 1.234.567,89"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.input)
		if got := FormatBRL(d); got != tt.expected {
			t.Errorf("FormatBRL(%s) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
