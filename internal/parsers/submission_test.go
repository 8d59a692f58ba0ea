package parsers

import (
	"bytes"
	"strings"
	"testing"

	apperrors "acerto-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// buildSpreadsheet writes rows into a fresh workbook's first sheet and
// returns the serialized bytes.
func buildSpreadsheet(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		for c, value := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("Failed to build cell reference: %v", err)
			}
			if err := f.SetCellValue("Sheet1", axis, value); err != nil {
				t.Fatalf("Failed to set cell %s: %v", axis, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("Failed to serialize test spreadsheet: %v", err)
	}
	return &buf
}

func TestSubmissionParser_Parse(t *testing.T) {
	buf := buildSpreadsheet(t, [][]interface{}{
		{"Nome do Cliente", "Valor a Receber (R$)", "Observação"},
		{"Gabriel Leonardo Dias", "1.500,00", "renovação"},
		{"Maria Silva", "250,00", ""},
	})

	parser := NewSubmissionParser()
	submission, err := parser.Parse(buf, "planilha.xlsx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if submission.SourceName != "planilha.xlsx" {
		t.Errorf("Unexpected source name: %q", submission.SourceName)
	}
	if submission.HasBroker() {
		t.Error("Expected parsed submission to start without a broker")
	}
	if len(submission.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(submission.Rows))
	}

	first := submission.Rows[0]
	if first["Nome do Cliente"] != "Gabriel Leonardo Dias" {
		t.Errorf("Unexpected client name: %q", first["Nome do Cliente"])
	}
	if first["Valor a Receber (R$)"] != "1.500,00" {
		t.Errorf("Unexpected amount: %q", first["Valor a Receber (R$)"])
	}

	// Empty cells never appear as keys.
	if _, ok := submission.Rows[1]["Observação"]; ok {
		t.Error("Expected empty cell to be omitted from the row map")
	}
}

func TestSubmissionParser_SkipsEmptyRows(t *testing.T) {
	buf := buildSpreadsheet(t, [][]interface{}{
		{"Cliente", "Valor"},
		{"Ana Lima", "100,00"},
		{"", ""},
		{"Bruno Dias", "200,00"},
	})

	parser := NewSubmissionParser()
	submission, err := parser.Parse(buf, "planilha.xlsx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(submission.Rows) != 2 {
		t.Errorf("Expected empty row skipped, got %d rows", len(submission.Rows))
	}
}

func TestSubmissionParser_HeaderOnly(t *testing.T) {
	buf := buildSpreadsheet(t, [][]interface{}{
		{"Cliente", "Valor"},
	})

	parser := NewSubmissionParser()
	submission, err := parser.Parse(buf, "planilha.xlsx")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(submission.Rows) != 0 {
		t.Errorf("Expected no data rows, got %d", len(submission.Rows))
	}
}

func TestSubmissionParser_InvalidWorkbook(t *testing.T) {
	parser := NewSubmissionParser()
	_, err := parser.Parse(strings.NewReader("this is not an xlsx file"), "planilha.xlsx")
	if err == nil {
		t.Fatal("Expected error for invalid workbook")
	}
	appErr, ok := apperrors.AsAcertoError(err)
	if !ok {
		t.Fatalf("Expected categorized error, got %T", err)
	}
	if appErr.Category != apperrors.CategoryParse {
		t.Errorf("Expected parse category, got %s", appErr.Category)
	}
}

func TestSubmissionParser_FileNotFound(t *testing.T) {
	parser := NewSubmissionParser()
	_, err := parser.ParseFile("/nonexistent/planilha.xlsx")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	appErr, ok := apperrors.AsAcertoError(err)
	if !ok {
		t.Fatalf("Expected categorized error, got %T", err)
	}
	if appErr.Code != apperrors.CodeFileNotFound {
		t.Errorf("Expected file-not-found code, got %s", appErr.Code)
	}
}
