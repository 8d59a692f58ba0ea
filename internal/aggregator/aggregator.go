// Package aggregator turns a broker's row-oriented spreadsheet data into
// the figures the matcher needs: the total amount due and the list of
// client names referenced by the rows.
//
// Broker spreadsheets have no fixed schema. Column resolution therefore
// goes through ordered alias lists kept as explicit configuration data:
// the first alias present in a row wins, and ambiguous spreadsheets with
// several populated alias columns always resolve the same way.
package aggregator

import (
	"fmt"
	"strings"

	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/normalize"

	"github.com/shopspring/decimal"
)

// ColumnAliases holds the ordered column-name spellings tried when
// resolving a row's amount and client name.
type ColumnAliases struct {
	Amount     []string
	ClientName []string
}

// DefaultColumnAliases returns the alias lists for the spreadsheet formats
// brokers are known to submit. Order is priority order.
func DefaultColumnAliases() *ColumnAliases {
	return &ColumnAliases{
		Amount:     []string{"Valor a Receber (R$)", "Valor", "Total"},
		ClientName: []string{"Nome do Cliente", "Cliente", "Nome"},
	}
}

// Validate validates the alias configuration.
func (c *ColumnAliases) Validate() error {
	if len(c.Amount) == 0 {
		return fmt.Errorf("at least one amount column alias is required")
	}
	if len(c.ClientName) == 0 {
		return fmt.Errorf("at least one client name column alias is required")
	}
	return nil
}

// Aggregate is the summed view of one broker submission.
type Aggregate struct {
	// Total is the sum of the amounts-due column over all contributing rows.
	Total decimal.Decimal
	// ClientNames are the trimmed client names of contributing rows, in row
	// order. Duplicates are kept for per-row traceability; the matcher
	// applies uniqueness when reporting unmatched names.
	ClientNames []string
}

// AggregateRows sums the amounts-due column of a submission and collects
// the client names referenced.
//
// A row contributes only when the first populated amount alias resolves to
// a parseable positive amount; otherwise the whole row is silently skipped,
// tolerating messy spreadsheets at the cost of under-counting. A parse
// failure of the first populated alias does not fall through to later
// aliases: resolution picks one column per row, then parses it. Rows that do
// contribute also have their client name resolved; rows without one still
// count toward the total.
func AggregateRows(rows []models.SubmissionRow, aliases *ColumnAliases) Aggregate {
	if aliases == nil {
		aliases = DefaultColumnAliases()
	}

	agg := Aggregate{Total: decimal.Zero}
	for _, row := range rows {
		raw, ok := resolveColumn(row, aliases.Amount)
		if !ok {
			continue
		}

		amount, ok := normalize.ParseAmount(raw)
		if !ok || !amount.IsPositive() {
			continue
		}
		agg.Total = agg.Total.Add(amount)

		if name, ok := resolveColumn(row, aliases.ClientName); ok {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				agg.ClientNames = append(agg.ClientNames, trimmed)
			}
		}
	}
	return agg
}

// resolveColumn returns the value of the first alias present in the row
// with a non-empty value.
func resolveColumn(row models.SubmissionRow, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if value, exists := row[alias]; exists && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}
