// Package matcher implements the central Acerto reconciliation algorithm:
// matching bank statement credit lines to the client names appearing in
// broker-submitted commission spreadsheets.
//
// The matcher is a greedy token-substring matcher with no backtracking and
// no confidence scoring; ties are broken by client list order, not match
// quality. That is a deliberate simplicity/precision trade-off inherited
// from the settlement workflow: false positives are possible when distinct
// clients share a given name, and no disambiguation is attempted beyond
// token-substring overlap.
package matcher

import (
	"strings"
	"sync"

	"acerto-reconciliation-service/internal/aggregator"
	"acerto-reconciliation-service/internal/extractor"
	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/normalize"

	"github.com/shopspring/decimal"
)

// Engine matches statement credit lines against broker submissions.
type Engine struct {
	config *Config
}

// NewEngine creates a new matching engine with the specified configuration.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Reconcile matches the shared statement against every submission that has
// an assigned broker and returns one result per such submission, in
// submission order.
//
// The full statement is compared against every broker's client list
// independently; a line matching one broker is not withheld from another.
// Submissions without a broker contribute nothing and are silently
// excluded.
func (e *Engine) Reconcile(lines []*models.StatementLine, submissions []*models.BrokerSubmission) []*models.ReconciliationResult {
	credits := extractor.FilterCreditLines(lines)

	assigned := make([]*models.BrokerSubmission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.HasBroker() {
			assigned = append(assigned, sub)
		}
	}

	results := make([]*models.ReconciliationResult, len(assigned))
	if e.config.Parallel {
		var wg sync.WaitGroup
		for i, sub := range assigned {
			wg.Add(1)
			go func(i int, sub *models.BrokerSubmission) {
				defer wg.Done()
				results[i] = e.reconcileBroker(credits, sub)
			}(i, sub)
		}
		wg.Wait()
	} else {
		for i, sub := range assigned {
			results[i] = e.reconcileBroker(credits, sub)
		}
	}
	return results
}

// candidate is one spreadsheet client name with its normalized tokens
// precomputed.
type candidate struct {
	name   string
	tokens []string
}

// reconcileBroker runs the matching algorithm for a single broker. All
// working state is local to the call, which keeps repeated runs idempotent
// and makes the per-broker map parallelizable.
func (e *Engine) reconcileBroker(credits []*models.StatementLine, sub *models.BrokerSubmission) *models.ReconciliationResult {
	agg := aggregator.AggregateRows(sub.Rows, e.config.Aliases)

	candidates := make([]candidate, len(agg.ClientNames))
	for i, name := range agg.ClientNames {
		candidates[i] = candidate{
			name:   name,
			tokens: e.candidateTokens(name),
		}
	}

	// Remaining starts as the distinct client names in first-appearance
	// order; matched names are removed as lines land (idempotently, since a
	// name can match more than one line).
	remainingOrder := make([]string, 0, len(agg.ClientNames))
	remaining := make(map[string]bool, len(agg.ClientNames))
	for _, name := range agg.ClientNames {
		if !remaining[name] {
			remaining[name] = true
			remainingOrder = append(remainingOrder, name)
		}
	}

	var (
		matchedLines []*models.StatementLine
		matchedNames []string
		matchedSet   = make(map[string]bool)
		matchedTotal = decimal.Zero
	)

	for _, line := range credits {
		payer := extractor.ExtractPayerName(line.Description)
		if payer == "" {
			// Unidentifiable payer: the line is excluded from matching,
			// never silently attributed.
			continue
		}
		// Payer tokens are not length-filtered: a short payer token may
		// still land inside a longer client-name token. Only the candidate
		// side drops short tokens.
		payerTokens := normalize.NameTokens(payer)
		if len(payerTokens) == 0 {
			continue
		}

		// Every candidate is evaluated per line, matched or not: one client
		// name may legitimately collect several transfers. First candidate
		// in original list order wins.
		for _, cand := range candidates {
			if !tokensOverlap(payerTokens, cand.tokens) {
				continue
			}

			matchedLines = append(matchedLines, line)
			matchedTotal = matchedTotal.Add(line.Amount)
			if !matchedSet[cand.name] {
				matchedSet[cand.name] = true
				matchedNames = append(matchedNames, cand.name)
			}
			delete(remaining, cand.name)
			break
		}
	}

	unmatched := make([]string, 0, len(remaining))
	for _, name := range remainingOrder {
		if remaining[name] {
			unmatched = append(unmatched, name)
		}
	}

	delta := matchedTotal.Sub(agg.Total)
	return &models.ReconciliationResult{
		BrokerID:             sub.Broker.ID,
		BrokerName:           sub.Broker.DisplayName,
		ColorTag:             sub.Broker.ColorTag,
		ExpectedAmount:       agg.Total,
		MatchedAmount:        matchedTotal,
		Delta:                delta,
		Status:               models.StatusFor(delta),
		MatchedClientNames:   matchedNames,
		UnmatchedClientNames: unmatched,
		MatchedLines:         matchedLines,
	}
}

// candidateTokens normalizes a client name and drops tokens below the
// configured minimum length, so initials and connectives like "de" never
// become a match basis on the spreadsheet side.
func (e *Engine) candidateTokens(name string) []string {
	tokens := normalize.NameTokens(name)
	usable := tokens[:0]
	for _, token := range tokens {
		if len(token) >= e.config.MinTokenLength {
			usable = append(usable, token)
		}
	}
	return usable
}

// tokensOverlap implements the match rule: any payer token being a
// substring of any candidate token, or vice versa.
func tokensOverlap(payerTokens, candidateTokens []string) bool {
	for _, pt := range payerTokens {
		for _, ct := range candidateTokens {
			if strings.Contains(ct, pt) || strings.Contains(pt, ct) {
				return true
			}
		}
	}
	return false
}
