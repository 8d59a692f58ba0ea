package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateStatementParserConfig(t *testing.T) {
	cfg, err := CreateStatementParserConfig("")
	if err != nil {
		t.Fatalf("Expected default config: %v", err)
	}
	if cfg.Delimiter != ',' {
		t.Errorf("Expected default comma delimiter, got %q", cfg.Delimiter)
	}

	cfg, err = CreateStatementParserConfig(";")
	if err != nil {
		t.Fatalf("Expected semicolon override: %v", err)
	}
	if cfg.Delimiter != ';' {
		t.Errorf("Expected semicolon delimiter, got %q", cfg.Delimiter)
	}

	if _, err := CreateStatementParserConfig(";;"); err == nil {
		t.Error("Expected error for multi-character delimiter")
	}
}

func TestCreateReconcilerConfig(t *testing.T) {
	cfg := CreateReconcilerConfig(true, 4)
	if !cfg.Matching.Parallel {
		t.Error("Expected parallel matching enabled")
	}
	if cfg.Matching.MinTokenLength != 4 {
		t.Errorf("Expected min token length 4, got %d", cfg.Matching.MinTokenLength)
	}

	cfg = CreateReconcilerConfig(false, 0)
	if cfg.Matching.MinTokenLength != 3 {
		t.Errorf("Expected default min token length preserved, got %d", cfg.Matching.MinTokenLength)
	}
}

func TestCreateExporterConfig(t *testing.T) {
	cfg, err := CreateExporterConfig(70)
	if err != nil {
		t.Fatalf("Expected valid config: %v", err)
	}
	if !cfg.CommissionPct.Equal(decimal.RequireFromString("0.7")) {
		t.Errorf("Expected commission fraction 0.7, got %s", cfg.CommissionPct)
	}

	if _, err := CreateExporterConfig(-1); err == nil {
		t.Error("Expected error for negative commission")
	}
	if _, err := CreateExporterConfig(101); err == nil {
		t.Error("Expected error for commission above 100")
	}
}

func TestParseSubmissionInputs(t *testing.T) {
	inputs, err := ParseSubmissionInputs([]string{
		"alfa.xlsx=Corretora Alfa",
		"beta.xlsx=Corretora Beta:green",
		"orfao.xlsx",
	})
	if err != nil {
		t.Fatalf("ParseSubmissionInputs failed: %v", err)
	}
	if len(inputs) != 3 {
		t.Fatalf("Expected 3 inputs, got %d", len(inputs))
	}

	if inputs[0].Broker == nil || inputs[0].Broker.DisplayName != "Corretora Alfa" {
		t.Errorf("Unexpected first broker: %+v", inputs[0].Broker)
	}
	if inputs[0].Broker.ID != "broker-1" {
		t.Errorf("Expected generated broker ID, got %q", inputs[0].Broker.ID)
	}
	if inputs[1].Broker.ColorTag != "green" {
		t.Errorf("Expected color tag parsed, got %q", inputs[1].Broker.ColorTag)
	}
	if inputs[2].Broker != nil {
		t.Error("Expected entry without assignment to carry no broker")
	}
}

func TestParseSubmissionInputs_Invalid(t *testing.T) {
	if _, err := ParseSubmissionInputs([]string{"=Corretora"}); err == nil {
		t.Error("Expected error for empty path")
	}
	if _, err := ParseSubmissionInputs([]string{"alfa.xlsx="}); err == nil {
		t.Error("Expected error for empty broker name")
	}
}
