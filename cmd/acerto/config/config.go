// Package config builds the component configurations the CLI hands to the
// reconciliation service and the report exporter.
package config

import (
	"fmt"
	"strings"

	"acerto-reconciliation-service/internal/matcher"
	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/parsers"
	"acerto-reconciliation-service/internal/reconciler"
	"acerto-reconciliation-service/internal/reporter"

	"github.com/shopspring/decimal"
)

// CreateStatementParserConfig creates the statement parser configuration,
// optionally overriding the CSV delimiter.
func CreateStatementParserConfig(delimiter string) (*parsers.StatementParserConfig, error) {
	cfg := parsers.DefaultStatementParserConfig()
	if delimiter != "" {
		runes := []rune(delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		cfg.Delimiter = runes[0]
	}
	return cfg, nil
}

// CreateReconcilerConfig creates the reconciliation service configuration
// from CLI overrides.
func CreateReconcilerConfig(parallel bool, minTokenLength int) *reconciler.Config {
	cfg := reconciler.DefaultConfig()
	cfg.Matching = matcher.DefaultConfig()
	cfg.Matching.Parallel = parallel
	if minTokenLength > 0 {
		cfg.Matching.MinTokenLength = minTokenLength
	}
	return cfg
}

// CreateExporterConfig creates the workbook exporter configuration for a
// commission percentage expressed in percent (e.g. 70 for 70%).
func CreateExporterConfig(commissionPercent float64) (*reporter.Config, error) {
	if commissionPercent < 0 || commissionPercent > 100 {
		return nil, fmt.Errorf("commission must be between 0 and 100, got %v", commissionPercent)
	}
	cfg := reporter.DefaultConfig()
	cfg.CommissionPct = decimal.NewFromFloat(commissionPercent).Div(decimal.NewFromInt(100))
	return cfg, nil
}

// ParseSubmissionInputs parses the --broker-files entries. Each entry is
// either "path=Broker Name" or "path=Broker Name:colorTag"; an entry
// without a broker assignment ("path" alone) is parsed but excluded from
// matching, mirroring the upload workflow where the user never selected a
// broker.
func ParseSubmissionInputs(entries []string) ([]reconciler.SubmissionInput, error) {
	inputs := make([]reconciler.SubmissionInput, 0, len(entries))
	for i, entry := range entries {
		path, assignment, hasBroker := strings.Cut(entry, "=")
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, fmt.Errorf("broker file entry %d has an empty path", i+1)
		}

		input := reconciler.SubmissionInput{File: path}
		if hasBroker {
			name, color, _ := strings.Cut(assignment, ":")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, fmt.Errorf("broker file entry %d has an empty broker name", i+1)
			}
			input.Broker = &models.Broker{
				ID:          fmt.Sprintf("broker-%d", i+1),
				DisplayName: name,
				ColorTag:    strings.TrimSpace(color),
			}
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
