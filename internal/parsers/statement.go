// Package parsers implements the document ingestion collaborators of the
// reconciliation pipeline: the bank statement parser (CSV rendition of the
// statement export) and the broker spreadsheet parser (xlsx).
//
// Both parsers produce fully in-memory data; the matcher only runs once
// every document has been parsed. A malformed statement surfaces an error
// and halts the run - matching never proceeds over a partial statement.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/normalize"
	"acerto-reconciliation-service/pkg/errors"
	"acerto-reconciliation-service/pkg/logger"
)

// StatementParserConfig holds configuration options for the statement
// parser.
type StatementParserConfig struct {
	DateColumn        string
	DescriptionColumn string
	TypeColumn        string
	AmountColumn      string
	HasHeader         bool
	Delimiter         rune
	// ColumnAliases maps alternative header spellings to canonical column
	// names.
	ColumnAliases map[string]string
}

// DefaultStatementParserConfig returns the configuration for the statement
// export format produced by the upstream PDF extraction.
func DefaultStatementParserConfig() *StatementParserConfig {
	return &StatementParserConfig{
		DateColumn:        "data",
		DescriptionColumn: "descricao",
		TypeColumn:        "tipo",
		AmountColumn:      "valor",
		HasHeader:         true,
		Delimiter:         ',',
		ColumnAliases: map[string]string{
			"date":        "data",
			"dia":         "data",
			"description": "descricao",
			"descrição":   "descricao",
			"historico":   "descricao",
			"histórico":   "descricao",
			"type":        "tipo",
			"lancamento":  "tipo",
			"lançamento":  "tipo",
			"amount":      "valor",
			"value":       "valor",
		},
	}
}

// Validate validates the parser configuration.
func (c *StatementParserConfig) Validate() error {
	for name, column := range map[string]string{
		"date column":        c.DateColumn,
		"description column": c.DescriptionColumn,
		"type column":        c.TypeColumn,
		"amount column":      c.AmountColumn,
	} {
		if strings.TrimSpace(column) == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be empty")
	}
	return nil
}

// StatementParser parses bank statement documents into statement lines.
type StatementParser struct {
	config *StatementParserConfig
	log    logger.Logger
}

// NewStatementParser creates a new statement parser with the specified
// configuration.
func NewStatementParser(config *StatementParserConfig) (*StatementParser, error) {
	if config == nil {
		config = DefaultStatementParserConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid statement parser configuration: %w", err)
	}
	return &StatementParser{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("statement-parser"),
	}, nil
}

// ParseFile parses the statement document at the given path.
func (p *StatementParser) ParseFile(path string) ([]*models.StatementLine, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError("", path, err)
	}
	defer file.Close()

	return p.Parse(file, path)
}

// Parse parses statement lines from a reader. The name is used for error
// reporting only. Order of lines is preserved.
func (p *StatementParser) Parse(r io.Reader, name string) ([]*models.StatementLine, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.StatementParseError(name, 0, err)
	}
	if len(records) == 0 {
		return nil, errors.StatementParseError(name, 0, fmt.Errorf("document is empty"))
	}

	columns, dataStart, err := p.resolveColumns(records, name)
	if err != nil {
		return nil, err
	}

	lines := make([]*models.StatementLine, 0, len(records)-dataStart)
	for i := dataStart; i < len(records); i++ {
		record := records[i]
		if isBlankRecord(record) {
			continue
		}

		line, err := p.parseRecord(record, columns, name, i+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	p.log.WithFields(logger.Fields{"file": name, "lines": len(lines)}).
		Debug("Parsed bank statement")
	return lines, nil
}

// statementColumns holds the resolved field indexes of a statement file.
type statementColumns struct {
	date, description, txType, amount int
}

func (p *StatementParser) resolveColumns(records [][]string, name string) (*statementColumns, int, error) {
	columns := &statementColumns{date: 0, description: 1, txType: 2, amount: 3}
	if !p.config.HasHeader {
		if len(records[0]) < 4 {
			return nil, 0, errors.StatementParseError(name, 1,
				fmt.Errorf("expected at least 4 columns, got %d", len(records[0])))
		}
		return columns, 0, nil
	}

	index := map[string]int{}
	for i, header := range records[0] {
		canonical := strings.ToLower(strings.TrimSpace(header))
		if alias, ok := p.config.ColumnAliases[canonical]; ok {
			canonical = alias
		}
		index[canonical] = i
	}

	var ok bool
	if columns.date, ok = index[p.config.DateColumn]; !ok {
		return nil, 0, errors.MissingColumnError(name, p.config.DateColumn)
	}
	if columns.description, ok = index[p.config.DescriptionColumn]; !ok {
		return nil, 0, errors.MissingColumnError(name, p.config.DescriptionColumn)
	}
	if columns.txType, ok = index[p.config.TypeColumn]; !ok {
		return nil, 0, errors.MissingColumnError(name, p.config.TypeColumn)
	}
	if columns.amount, ok = index[p.config.AmountColumn]; !ok {
		return nil, 0, errors.MissingColumnError(name, p.config.AmountColumn)
	}
	return columns, 1, nil
}

func (p *StatementParser) parseRecord(record []string, columns *statementColumns, name string, lineNo int) (*models.StatementLine, error) {
	maxIdx := columns.date
	for _, idx := range []int{columns.description, columns.txType, columns.amount} {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(record) <= maxIdx {
		return nil, errors.StatementParseError(name, lineNo,
			fmt.Errorf("expected at least %d columns, got %d", maxIdx+1, len(record)))
	}

	rawAmount := record[columns.amount]
	amount, ok := normalize.ParseAmount(rawAmount)
	if !ok {
		return nil, errors.StatementParseError(name, lineNo,
			fmt.Errorf("invalid amount %q", rawAmount))
	}

	return models.NewStatementLine(
		strings.TrimSpace(record[columns.date]),
		strings.TrimSpace(record[columns.description]),
		strings.TrimSpace(record[columns.txType]),
		amount,
	), nil
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
