package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatementLine_IsCredit(t *testing.T) {
	tests := []struct {
		name     string
		txType   string
		amount   string
		expected bool
	}{
		{"incoming pix", CreditTransactionType, "100.00", true},
		{"wrong type", "Saída PIX", "100.00", false},
		{"zero amount", CreditTransactionType, "0", false},
		{"negative amount", CreditTransactionType, "-10.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := NewStatementLine("15/01/2024", "Pix recebido de ANA", tt.txType, decimal.RequireFromString(tt.amount))
			if got := line.IsCredit(); got != tt.expected {
				t.Errorf("IsCredit() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		delta    string
		expected ReconciliationStatus
	}{
		{"zero delta", "0", StatusOK},
		{"sub-cent delta", "0.009", StatusOK},
		{"negative sub-cent delta", "-0.009", StatusOK},
		{"exactly one cent", "0.01", StatusDivergent},
		{"negative one cent", "-0.01", StatusDivergent},
		{"large delta", "-300.00", StatusDivergent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(decimal.RequireFromString(tt.delta)); got != tt.expected {
				t.Errorf("StatusFor(%s) = %s, expected %s", tt.delta, got, tt.expected)
			}
		})
	}
}

func TestBroker_Validate(t *testing.T) {
	valid := &Broker{ID: "b1", DisplayName: "Corretora Alfa"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid broker: %v", err)
	}

	if err := (&Broker{DisplayName: "Corretora Alfa"}).Validate(); err == nil {
		t.Error("Expected error for empty broker ID")
	}
	if err := (&Broker{ID: "b1", DisplayName: "   "}).Validate(); err == nil {
		t.Error("Expected error for blank display name")
	}
}

func TestBrokerSubmission_HasBroker(t *testing.T) {
	with := &BrokerSubmission{Broker: &Broker{ID: "b1", DisplayName: "Corretora Alfa"}}
	if !with.HasBroker() {
		t.Error("Expected HasBroker true with assignment")
	}
	without := &BrokerSubmission{SourceName: "orfao.xlsx"}
	if without.HasBroker() {
		t.Error("Expected HasBroker false without assignment")
	}
}

func TestReconciliationResult_Commission(t *testing.T) {
	r := &ReconciliationResult{ExpectedAmount: decimal.RequireFromString("1500.00")}
	pct := decimal.RequireFromString("0.70")

	if got := r.Commission(pct); !got.Equal(decimal.RequireFromString("1050.00")) {
		t.Errorf("Commission() = %s, expected 1050.00", got)
	}
}
