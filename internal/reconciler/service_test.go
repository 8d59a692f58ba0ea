package reconciler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"acerto-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func writeStatementFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "extrato.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write statement fixture: %v", err)
	}
	return path
}

func writeSubmissionFile(t *testing.T, dir, name string, rows [][]interface{}) string {
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

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to write spreadsheet fixture: %v", err)
	}
	return path
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(nil, nil)
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}
	return service
}

func TestProcessReconciliation_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	statement := writeStatementFile(t, dir, `data,descricao,tipo,valor
15/01/2024,Pix recebido de GABRIEL LEONARDO DIAS,Entrada PIX,"1.500,00"
15/01/2024,Pagamento de boleto,Saída,"-200,00"
16/01/2024,Pix recebido de CARLA MOTA,Entrada PIX,"250,00"`)
	submission := writeSubmissionFile(t, dir, "alfa.xlsx", [][]interface{}{
		{"Cliente", "Valor"},
		{"Gabriel Leonardo Dias", "1.500,00"},
		{"Maria Silva", "250,00"},
	})

	service := newTestService(t)
	result, err := service.ProcessReconciliation(context.Background(), &Request{
		StatementFile: statement,
		Submissions: []SubmissionInput{
			{File: submission, Broker: &models.Broker{ID: "b1", DisplayName: "Corretora Alfa"}},
		},
	})
	if err != nil {
		t.Fatalf("ProcessReconciliation failed: %v", err)
	}

	if len(result.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(result.Results))
	}
	r := result.Results[0]
	if r.Status != models.StatusDivergent {
		t.Errorf("Expected divergent status, got %s", r.Status)
	}
	if !r.MatchedAmount.Equal(decimal.RequireFromString("1500.00")) {
		t.Errorf("Expected matched amount 1500.00, got %s", r.MatchedAmount)
	}
	if len(r.UnmatchedClientNames) != 1 || r.UnmatchedClientNames[0] != "Maria Silva" {
		t.Errorf("Expected Maria Silva unmatched, got %v", r.UnmatchedClientNames)
	}

	if result.Summary.StatementLines != 3 {
		t.Errorf("Expected 3 statement lines, got %d", result.Summary.StatementLines)
	}
	if result.Summary.SubmissionsAssigned != 1 || result.Summary.SubmissionsSkipped != 0 {
		t.Errorf("Unexpected submission counts: %+v", result.Summary)
	}
	if result.Summary.DivergentCount != 1 {
		t.Errorf("Expected 1 divergent broker, got %d", result.Summary.DivergentCount)
	}
	if result.Summary.Duration <= 0 {
		t.Error("Expected positive run duration")
	}
	if len(result.Alerts) == 0 {
		t.Error("Expected alerts to be generated")
	}
}

func TestProcessReconciliation_UnassignedSubmissionSkipped(t *testing.T) {
	dir := t.TempDir()
	statement := writeStatementFile(t, dir, `data,descricao,tipo,valor
15/01/2024,Pix recebido de ANA LIMA,Entrada PIX,"100,00"`)
	assigned := writeSubmissionFile(t, dir, "alfa.xlsx", [][]interface{}{
		{"Cliente", "Valor"}, {"Ana Lima", "100,00"},
	})
	orphan := writeSubmissionFile(t, dir, "orfao.xlsx", [][]interface{}{
		{"Cliente", "Valor"}, {"Bruno Dias", "200,00"},
	})

	service := newTestService(t)
	result, err := service.ProcessReconciliation(context.Background(), &Request{
		StatementFile: statement,
		Submissions: []SubmissionInput{
			{File: assigned, Broker: &models.Broker{ID: "b1", DisplayName: "Corretora Alfa"}},
			{File: orphan},
		},
	})
	if err != nil {
		t.Fatalf("ProcessReconciliation failed: %v", err)
	}

	if len(result.Results) != 1 {
		t.Errorf("Expected only the assigned submission reconciled, got %d results", len(result.Results))
	}
	if result.Summary.SubmissionsTotal != 2 || result.Summary.SubmissionsSkipped != 1 {
		t.Errorf("Unexpected submission counts: %+v", result.Summary)
	}
}

func TestProcessReconciliation_StatementFailureHalts(t *testing.T) {
	dir := t.TempDir()
	statement := writeStatementFile(t, dir, `data,descricao,tipo,valor
15/01/2024,Pix recebido de ANA LIMA,Entrada PIX,abc`)
	submission := writeSubmissionFile(t, dir, "alfa.xlsx", [][]interface{}{
		{"Cliente", "Valor"}, {"Ana Lima", "100,00"},
	})

	service := newTestService(t)
	result, err := service.ProcessReconciliation(context.Background(), &Request{
		StatementFile: statement,
		Submissions: []SubmissionInput{
			{File: submission, Broker: &models.Broker{ID: "b1", DisplayName: "Corretora Alfa"}},
		},
	})
	if err == nil {
		t.Fatal("Expected error for malformed statement")
	}
	if result != nil {
		t.Error("Expected no partial result when the statement fails to parse")
	}
}

func TestProcessReconciliation_RequestValidation(t *testing.T) {
	service := newTestService(t)

	if _, err := service.ProcessReconciliation(context.Background(), nil); err == nil {
		t.Error("Expected error for nil request")
	}
	if _, err := service.ProcessReconciliation(context.Background(), &Request{}); err == nil {
		t.Error("Expected error for empty request")
	}
	if _, err := service.ProcessReconciliation(context.Background(), &Request{StatementFile: "x.csv"}); err == nil {
		t.Error("Expected error for request without submissions")
	}
}

func TestProcessReconciliation_InvalidBroker(t *testing.T) {
	dir := t.TempDir()
	statement := writeStatementFile(t, dir, `data,descricao,tipo,valor
15/01/2024,Pix recebido de ANA LIMA,Entrada PIX,"100,00"`)
	submission := writeSubmissionFile(t, dir, "alfa.xlsx", [][]interface{}{
		{"Cliente", "Valor"}, {"Ana Lima", "100,00"},
	})

	service := newTestService(t)
	_, err := service.ProcessReconciliation(context.Background(), &Request{
		StatementFile: statement,
		Submissions: []SubmissionInput{
			{File: submission, Broker: &models.Broker{ID: "b1"}},
		},
	})
	if err == nil {
		t.Error("Expected error for broker without display name")
	}
}

func TestProcessReconciliation_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	statement := writeStatementFile(t, dir, `data,descricao,tipo,valor
15/01/2024,Pix recebido de ANA LIMA,Entrada PIX,"100,00"`)
	submission := writeSubmissionFile(t, dir, "alfa.xlsx", [][]interface{}{
		{"Cliente", "Valor"}, {"Ana Lima", "100,00"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service := newTestService(t)
	_, err := service.ProcessReconciliation(ctx, &Request{
		StatementFile: statement,
		Submissions: []SubmissionInput{
			{File: submission, Broker: &models.Broker{ID: "b1", DisplayName: "Corretora Alfa"}},
		},
	})
	if err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestReconcile_InMemory(t *testing.T) {
	service := newTestService(t)

	lines := []*models.StatementLine{
		models.NewStatementLine("15/01/2024", "Pix recebido de ANA LIMA", models.CreditTransactionType, decimal.NewFromFloat(100)),
	}
	submissions := []*models.BrokerSubmission{
		{
			Broker:     &models.Broker{ID: "b1", DisplayName: "Corretora Alfa"},
			SourceName: "alfa.xlsx",
			Rows:       []models.SubmissionRow{{"Cliente": "Ana Lima", "Valor": "100,00"}},
		},
		{SourceName: "orfao.xlsx", Rows: []models.SubmissionRow{{"Cliente": "Bruno Dias", "Valor": "200,00"}}},
	}

	result := service.Reconcile(lines, submissions)

	if result.Summary.OKCount != 1 || result.Summary.DivergentCount != 0 {
		t.Errorf("Unexpected status counts: %+v", result.Summary)
	}
	if result.Summary.SubmissionsSkipped != 1 {
		t.Errorf("Expected 1 skipped submission, got %d", result.Summary.SubmissionsSkipped)
	}
	if len(result.Alerts) != 1 {
		t.Errorf("Expected only the summary alert, got %d", len(result.Alerts))
	}
	if result.Summary.ProcessedAt.IsZero() {
		t.Error("Expected processed timestamp to be set")
	}
}
