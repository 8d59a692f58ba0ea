// Package models defines the core domain types for the Acerto commission
// reconciliation pipeline: bank statement lines, broker spreadsheet
// submissions, per-broker reconciliation results and derived alerts.
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreditTransactionType is the canonical marker a bank statement uses for
// incoming PIX transfers. Only lines carrying this type participate in
// matching.
const CreditTransactionType = "Entrada PIX"

// StatusTolerance is the absolute delta below which a broker's expected and
// matched totals are considered equal.
var StatusTolerance = decimal.RequireFromString("0.01")

// StatementLine represents one bank transaction as produced by the statement
// parsing step. Lines are immutable once extracted.
type StatementLine struct {
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	TransactionType string          `json:"transactionType"`
	Amount          decimal.Decimal `json:"amount"`
}

// NewStatementLine creates a new StatementLine instance.
func NewStatementLine(date, description, transactionType string, amount decimal.Decimal) *StatementLine {
	return &StatementLine{
		Date:            date,
		Description:     description,
		TransactionType: transactionType,
		Amount:          amount,
	}
}

// IsCredit reports whether the line is an incoming PIX credit with a
// positive amount.
func (sl *StatementLine) IsCredit() bool {
	return sl.TransactionType == CreditTransactionType && sl.Amount.IsPositive()
}

// String returns a string representation of the StatementLine.
func (sl *StatementLine) String() string {
	return fmt.Sprintf("StatementLine{Date: %s, Type: %s, Amount: %s, Description: %q}",
		sl.Date, sl.TransactionType, sl.Amount.StringFixed(2), sl.Description)
}

// Broker identifies the owner of an uploaded commission spreadsheet.
type Broker struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ColorTag    string `json:"colorTag"`
}

// Validate performs basic validation on the Broker.
func (b *Broker) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return fmt.Errorf("broker ID cannot be empty")
	}
	if strings.TrimSpace(b.DisplayName) == "" {
		return fmt.Errorf("broker display name cannot be empty")
	}
	return nil
}

// SubmissionRow is one spreadsheet row keyed by column header. The schema is
// not fixed; the aggregator resolves values through ordered alias lists.
type SubmissionRow map[string]string

// BrokerSubmission is one broker's uploaded spreadsheet, already parsed into
// an ordered sequence of row mappings. Submissions without an assigned
// broker are excluded from matching.
type BrokerSubmission struct {
	Broker     *Broker         `json:"broker,omitempty"`
	SourceName string          `json:"sourceName"`
	Rows       []SubmissionRow `json:"rows"`
}

// HasBroker reports whether the submission carries a broker assignment.
func (bs *BrokerSubmission) HasBroker() bool {
	return bs.Broker != nil
}

// ReconciliationStatus classifies a per-broker reconciliation outcome.
type ReconciliationStatus string

const (
	// StatusOK means the matched bank total equals the spreadsheet total
	// within tolerance.
	StatusOK ReconciliationStatus = "ok"
	// StatusDivergent means the totals differ by at least the tolerance.
	StatusDivergent ReconciliationStatus = "divergent"
)

// String returns the string representation of the status.
func (s ReconciliationStatus) String() string {
	return string(s)
}

// StatusFor derives the reconciliation status from a delta value.
func StatusFor(delta decimal.Decimal) ReconciliationStatus {
	if delta.Abs().LessThan(StatusTolerance) {
		return StatusOK
	}
	return StatusDivergent
}

// ReconciliationResult holds the outcome of matching one broker's
// spreadsheet against the shared bank statement. Results are created fresh
// per run and never mutated after computation.
type ReconciliationResult struct {
	BrokerID   string `json:"brokerId"`
	BrokerName string `json:"brokerName"`
	ColorTag   string `json:"colorTag"`

	ExpectedAmount decimal.Decimal      `json:"expectedAmount"`
	MatchedAmount  decimal.Decimal      `json:"matchedAmount"`
	Delta          decimal.Decimal      `json:"delta"`
	Status         ReconciliationStatus `json:"status"`

	MatchedClientNames   []string         `json:"matchedClientNames"`
	UnmatchedClientNames []string         `json:"unmatchedClientNames"`
	MatchedLines         []*StatementLine `json:"matchedLines"`
}

// IsDivergent reports whether the result carries a value mismatch.
func (r *ReconciliationResult) IsDivergent() bool {
	return r.Status == StatusDivergent
}

// HasUnmatchedClients reports whether any spreadsheet client name found no
// statement line.
func (r *ReconciliationResult) HasUnmatchedClients() bool {
	return len(r.UnmatchedClientNames) > 0
}

// Commission returns the broker payout at the given percentage of the
// spreadsheet total.
func (r *ReconciliationResult) Commission(pct decimal.Decimal) decimal.Decimal {
	return r.ExpectedAmount.Mul(pct)
}

// String returns a string representation of the ReconciliationResult.
func (r *ReconciliationResult) String() string {
	return fmt.Sprintf("ReconciliationResult{Broker: %s, Expected: %s, Matched: %s, Status: %s}",
		r.BrokerName, r.ExpectedAmount.StringFixed(2), r.MatchedAmount.StringFixed(2), r.Status)
}

// AlertSeverity classifies a reconciliation alert.
type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityInfo    AlertSeverity = "info"
	SeverityError   AlertSeverity = "error"
)

// Alert is derived data regenerated on every reconciliation run; it is
// never persisted.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
}

// String returns a string representation of the Alert.
func (a *Alert) String() string {
	return fmt.Sprintf("[%s] %s: %s", a.Severity, a.Title, a.Message)
}
