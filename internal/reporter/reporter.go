// Package reporter renders reconciliation results into the multi-sheet
// Acerto workbook: a summary sheet, one detail sheet per broker, a
// consolidated sheet with every matched statement line, and a divergence
// sheet.
//
// The workbook is built entirely in memory with excelize and serialized by
// the caller; a serialization failure yields no partial artifact.
package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"acerto-reconciliation-service/internal/extractor"
	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Resumo"
	consolidatedSheet = "Consolidado"
	divergenceSheet   = "Divergências"

	// moneyNumFmt is the built-in "#,##0.00" number format; every money
	// cell renders with two decimals.
	moneyNumFmt = 4
)

// Config holds configuration options for the workbook exporter.
type Config struct {
	// CommissionPct is the broker commission as a fraction of the
	// spreadsheet total. The settlement default is 70%.
	CommissionPct decimal.Decimal

	// Clock supplies the generation timestamp; nil means time.Now.
	Clock func() time.Time
}

// DefaultConfig returns the default exporter configuration.
func DefaultConfig() *Config {
	return &Config{
		CommissionPct: decimal.RequireFromString("0.70"),
	}
}

// Validate validates the exporter configuration.
func (c *Config) Validate() error {
	if c.CommissionPct.IsNegative() || c.CommissionPct.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission percentage must be between 0 and 1, got %s", c.CommissionPct)
	}
	return nil
}

func (c *Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Exporter builds the Acerto workbook from reconciliation results.
type Exporter struct {
	config *Config
}

// NewExporter creates a new exporter with the specified configuration.
func NewExporter(config *Config) (*Exporter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exporter configuration: %w", err)
	}
	return &Exporter{config: config}, nil
}

// Filename returns the dated artifact name for a given generation time,
// e.g. "Acerto_Comissoes_20240131.xlsx".
func Filename(t time.Time) string {
	return fmt.Sprintf("Acerto_Comissoes_%s.xlsx", t.Format("20060102"))
}

// Export builds the workbook and serializes it to the writer. Any error
// invalidates the whole artifact.
func (e *Exporter) Export(results []*models.ReconciliationResult, w io.Writer) error {
	f, err := e.BuildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return nil
}

// ExportFile builds the workbook and saves it under dir with the dated
// artifact name, returning the full path.
func (e *Exporter) ExportFile(results []*models.ReconciliationResult, dir string) (string, error) {
	f, err := e.BuildWorkbook(results)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, Filename(e.config.now()))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook to %s: %w", path, err)
	}
	return path, nil
}

// BuildWorkbook assembles the in-memory workbook. The caller owns the
// returned file and must Close it.
func (e *Exporter) BuildWorkbook(results []*models.ReconciliationResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := e.writeSummarySheet(f, styles, results); err != nil {
		f.Close()
		return nil, err
	}

	usedNames := map[string]bool{
		summarySheet:      true,
		consolidatedSheet: true,
		divergenceSheet:   true,
	}
	for _, result := range results {
		name := uniqueSheetName(result.BrokerName, usedNames)
		if err := e.writeBrokerSheet(f, styles, name, result); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := e.writeConsolidatedSheet(f, styles, results); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeDivergenceSheet(f, styles, results); err != nil {
		f.Close()
		return nil, err
	}

	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// sheetStyles caches the style IDs shared across sheets.
type sheetStyles struct {
	header int
	money  int
	title  int
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyNumFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	return &sheetStyles{header: header, money: money, title: title}, nil
}

// writeSummarySheet writes the executive overview: header block, totals
// block, one row per broker and a totals row.
func (e *Exporter) writeSummarySheet(f *excelize.File, styles *sheetStyles, results []*models.ReconciliationResult) error {
	totalExpected, totalMatched, totalCommission := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range results {
		totalExpected = totalExpected.Add(r.ExpectedAmount)
		totalMatched = totalMatched.Add(r.MatchedAmount)
		totalCommission = totalCommission.Add(r.Commission(e.config.CommissionPct))
	}
	totalDelta := totalMatched.Sub(totalExpected)

	if err := setRow(f, summarySheet, 1, "Acerto de Comissões"); err != nil {
		return err
	}
	f.SetCellStyle(summarySheet, "A1", "A1", styles.title)
	if err := setRow(f, summarySheet, 2, "Gerado em", e.config.now().Format("02/01/2006 15:04:05")); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 3, "Comissão", e.config.CommissionPct.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%"); err != nil {
		return err
	}

	execRows := [][]interface{}{
		{"Corretoras", len(results)},
		{"Total esperado (R$)", amountCell(totalExpected)},
		{"Total conferido (R$)", amountCell(totalMatched)},
		{"Diferença total (R$)", amountCell(totalDelta)},
		{"Comissão total (R$)", amountCell(totalCommission)},
	}
	for i, row := range execRows {
		if err := setRow(f, summarySheet, 5+i, row...); err != nil {
			return err
		}
	}
	f.SetCellStyle(summarySheet, "B6", "B9", styles.money)

	headerRow := 11
	if err := setRow(f, summarySheet, headerRow,
		"Corretora", "Esperado (R$)", "Conferido (R$)", "Diferença (R$)",
		"Situação", "Comissão (R$)", "Clientes conferidos", "Clientes pendentes"); err != nil {
		return err
	}
	f.SetCellStyle(summarySheet, cell(1, headerRow), cell(8, headerRow), styles.header)

	row := headerRow + 1
	for _, r := range results {
		if err := setRow(f, summarySheet, row,
			r.BrokerName,
			amountCell(r.ExpectedAmount),
			amountCell(r.MatchedAmount),
			amountCell(r.Delta),
			statusLabel(r.Status),
			amountCell(r.Commission(e.config.CommissionPct)),
			len(r.MatchedClientNames),
			len(r.UnmatchedClientNames)); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, summarySheet, row,
		"Total",
		amountCell(totalExpected),
		amountCell(totalMatched),
		amountCell(totalDelta),
		"",
		amountCell(totalCommission),
		"", ""); err != nil {
		return err
	}
	f.SetCellStyle(summarySheet, cell(1, row), cell(8, row), styles.header)
	f.SetCellStyle(summarySheet, cell(2, headerRow+1), cell(4, row), styles.money)
	f.SetCellStyle(summarySheet, cell(6, headerRow+1), cell(6, row), styles.money)

	f.SetColWidth(summarySheet, "A", "A", 32)
	f.SetColWidth(summarySheet, "B", "H", 18)
	return f.AutoFilter(summarySheet, fmt.Sprintf("A%d:H%d", headerRow, row-1), nil)
}

// writeBrokerSheet writes one broker's detail sheet: financial summary,
// commission computation, the matched-lines table with subtotal, and the
// unmatched client list.
func (e *Exporter) writeBrokerSheet(f *excelize.File, styles *sheetStyles, sheet string, r *models.ReconciliationResult) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet for broker %s: %w", r.BrokerName, err)
	}

	if err := setRow(f, sheet, 1, r.BrokerName); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "A1", styles.title)

	finRows := [][]interface{}{
		{"Esperado (R$)", amountCell(r.ExpectedAmount)},
		{"Conferido (R$)", amountCell(r.MatchedAmount)},
		{"Diferença (R$)", amountCell(r.Delta)},
		{"Situação", statusLabel(r.Status)},
	}
	for i, row := range finRows {
		if err := setRow(f, sheet, 3+i, row...); err != nil {
			return err
		}
	}
	f.SetCellStyle(sheet, "B3", "B5", styles.money)

	commission := r.Commission(e.config.CommissionPct)
	commRows := [][]interface{}{
		{"Base de comissão (R$)", amountCell(r.ExpectedAmount)},
		{"Percentual", e.config.CommissionPct.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"},
		{"Valor a pagar (R$)", amountCell(commission)},
	}
	for i, row := range commRows {
		if err := setRow(f, sheet, 8+i, row...); err != nil {
			return err
		}
	}
	f.SetCellStyle(sheet, "B8", "B8", styles.money)
	f.SetCellStyle(sheet, "B10", "B10", styles.money)

	headerRow := 12
	if err := setRow(f, sheet, headerRow, "#", "Pagador", "Data", "Valor (R$)", "Tipo", "Descrição"); err != nil {
		return err
	}
	f.SetCellStyle(sheet, cell(1, headerRow), cell(6, headerRow), styles.header)

	row := headerRow + 1
	subtotal := decimal.Zero
	for i, line := range r.MatchedLines {
		payer := extractor.ExtractPayerName(line.Description)
		subtotal = subtotal.Add(line.Amount)
		if err := setRow(f, sheet, row,
			i+1, payer, line.Date, amountCell(line.Amount), line.TransactionType, line.Description); err != nil {
			return err
		}
		row++
	}
	if err := setRow(f, sheet, row, "", "Subtotal", "", amountCell(subtotal), "", ""); err != nil {
		return err
	}
	f.SetCellStyle(sheet, cell(1, row), cell(6, row), styles.header)
	f.SetCellStyle(sheet, cell(4, headerRow+1), cell(4, row), styles.money)
	filterEnd := row - 1
	row += 2

	if r.HasUnmatchedClients() {
		if err := setRow(f, sheet, row, "Clientes sem pagamento identificado"); err != nil {
			return err
		}
		f.SetCellStyle(sheet, cell(1, row), cell(1, row), styles.header)
		row++
		for _, name := range r.UnmatchedClientNames {
			if err := setRow(f, sheet, row, name); err != nil {
				return err
			}
			row++
		}
	} else {
		if err := setRow(f, sheet, row, "Todos os clientes da planilha tiveram pagamento identificado"); err != nil {
			return err
		}
	}

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 32)
	f.SetColWidth(sheet, "C", "E", 16)
	f.SetColWidth(sheet, "F", "F", 48)
	if filterEnd < headerRow {
		filterEnd = headerRow
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A%d:F%d", headerRow, filterEnd), nil)
}

// writeConsolidatedSheet writes every matched line across all brokers,
// tagged with its broker, plus a grand-total row.
func (e *Exporter) writeConsolidatedSheet(f *excelize.File, styles *sheetStyles, results []*models.ReconciliationResult) error {
	if _, err := f.NewSheet(consolidatedSheet); err != nil {
		return fmt.Errorf("failed to create consolidated sheet: %w", err)
	}

	if err := setRow(f, consolidatedSheet, 1,
		"Corretora", "Pagador", "Data", "Valor (R$)", "Tipo", "Descrição"); err != nil {
		return err
	}
	f.SetCellStyle(consolidatedSheet, "A1", "F1", styles.header)

	row := 2
	grandTotal := decimal.Zero
	for _, r := range results {
		for _, line := range r.MatchedLines {
			grandTotal = grandTotal.Add(line.Amount)
			if err := setRow(f, consolidatedSheet, row,
				r.BrokerName, extractor.ExtractPayerName(line.Description), line.Date,
				amountCell(line.Amount), line.TransactionType, line.Description); err != nil {
				return err
			}
			row++
		}
	}

	if err := setRow(f, consolidatedSheet, row, "Total geral", "", "", amountCell(grandTotal), "", ""); err != nil {
		return err
	}
	f.SetCellStyle(consolidatedSheet, cell(1, row), cell(6, row), styles.header)
	f.SetCellStyle(consolidatedSheet, cell(4, 2), cell(4, row), styles.money)

	f.SetColWidth(consolidatedSheet, "A", "B", 28)
	f.SetColWidth(consolidatedSheet, "C", "E", 16)
	f.SetColWidth(consolidatedSheet, "F", "F", 48)
	filterEnd := row - 1
	if filterEnd < 1 {
		filterEnd = 1
	}
	return f.AutoFilter(consolidatedSheet, fmt.Sprintf("A1:F%d", filterEnd), nil)
}

// writeDivergenceSheet writes one row per value mismatch or unmatched
// client, mirroring the warning and error alerts, or a single "no
// divergences" row.
func (e *Exporter) writeDivergenceSheet(f *excelize.File, styles *sheetStyles, results []*models.ReconciliationResult) error {
	if _, err := f.NewSheet(divergenceSheet); err != nil {
		return fmt.Errorf("failed to create divergence sheet: %w", err)
	}

	if err := setRow(f, divergenceSheet, 1, "Tipo", "Corretora", "Detalhe"); err != nil {
		return err
	}
	f.SetCellStyle(divergenceSheet, "A1", "C1", styles.header)

	row := 2
	for _, r := range results {
		if r.IsDivergent() {
			direction := "maior"
			if r.Delta.IsNegative() {
				direction = "menor"
			}
			detail := fmt.Sprintf("Total do extrato %s que o esperado (diferença de %s)",
				direction, normalize.FormatBRL(r.Delta.Abs()))
			if err := setRow(f, divergenceSheet, row, "Divergência de valores", r.BrokerName, detail); err != nil {
				return err
			}
			row++
		}
		for _, name := range r.UnmatchedClientNames {
			if err := setRow(f, divergenceSheet, row, "Cliente sem pagamento", r.BrokerName, name); err != nil {
				return err
			}
			row++
		}
	}

	if row == 2 {
		if err := setRow(f, divergenceSheet, row, "Nenhuma divergência encontrada", "", ""); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(divergenceSheet, "A", "B", 28)
	f.SetColWidth(divergenceSheet, "C", "C", 56)
	return f.AutoFilter(divergenceSheet, fmt.Sprintf("A1:C%d", row-1), nil)
}

// Helpers

// amountCell converts a decimal amount into the numeric value stored in a
// money cell; the two-decimal rendering comes from the cell style.
func amountCell(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// statusLabel maps a reconciliation status to its display label.
func statusLabel(s models.ReconciliationStatus) string {
	if s == models.StatusOK {
		return "OK"
	}
	return "Divergente"
}

// cell returns the A1-style reference for 1-based column and row.
func cell(col, row int) string {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "A1"
	}
	return ref
}

// setRow writes values into consecutive columns of a row.
func setRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cell(i+1, row), v); err != nil {
			return fmt.Errorf("failed to write cell %s!%s: %w", sheet, cell(i+1, row), err)
		}
	}
	return nil
}

// uniqueSheetName sanitizes a broker name into a legal, unused sheet name.
// Excel limits names to 31 characters and forbids []:*?/\ characters.
func uniqueSheetName(name string, used map[string]bool) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if sanitized == "" {
		sanitized = "Corretora"
	}
	if runes := []rune(sanitized); len(runes) > 28 {
		sanitized = string(runes[:28])
	}

	candidate := sanitized
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", sanitized, i)
	}
	used[candidate] = true
	return candidate
}
