// Package alerts derives user-facing alerts from reconciliation results:
// value mismatches, clients with no identified payment, and a run summary.
package alerts

import (
	"fmt"

	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/normalize"
)

// Generate produces the alert list for a reconciliation run. It is a pure
// function over the results: one warning per divergent broker, one error
// per broker with unmatched client names, and a trailing info summary.
// Alerts carry no remediation logic and keep insertion order.
func Generate(results []*models.ReconciliationResult) []*models.Alert {
	var list []*models.Alert

	for _, result := range results {
		if !result.IsDivergent() {
			continue
		}

		direction := "maior"
		if result.Delta.IsNegative() {
			direction = "menor"
		}
		list = append(list, &models.Alert{
			Severity: models.SeverityWarning,
			Title:    "Divergência de valores",
			Message: fmt.Sprintf("%s: total do extrato %s que o esperado na planilha (diferença de %s)",
				result.BrokerName, direction, normalize.FormatBRL(result.Delta.Abs())),
		})
	}

	for _, result := range results {
		if !result.HasUnmatchedClients() {
			continue
		}

		list = append(list, &models.Alert{
			Severity: models.SeverityError,
			Title:    "Clientes sem pagamento identificado",
			Message: fmt.Sprintf("%s: %d cliente(s) da planilha sem lançamento correspondente no extrato",
				result.BrokerName, len(result.UnmatchedClientNames)),
		})
	}

	okCount := 0
	for _, result := range results {
		if result.Status == models.StatusOK {
			okCount++
		}
	}
	list = append(list, &models.Alert{
		Severity: models.SeverityInfo,
		Title:    "Resumo do acerto",
		Message: fmt.Sprintf("%d de %d corretora(s) com valores conferidos corretamente",
			okCount, len(results)),
	})

	return list
}
