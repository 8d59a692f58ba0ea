// Package reconciler orchestrates the Acerto settlement workflow: parse
// every uploaded document, run the matcher synchronously over the complete
// in-memory data, derive alerts and hand the results to the exporter.
//
// The pipeline has a single asynchronous boundary - document parsing and
// report serialization are I/O - and no partial or incremental
// reconciliation: once inputs are in memory the run is deterministic and
// executes to completion.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"acerto-reconciliation-service/internal/alerts"
	"acerto-reconciliation-service/internal/matcher"
	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/internal/parsers"
	"acerto-reconciliation-service/pkg/errors"
	"acerto-reconciliation-service/pkg/logger"
)

// Config holds configuration options for the reconciliation service.
type Config struct {
	Matching *matcher.Config
	// ValidateBrokers rejects requests whose assigned brokers carry empty
	// identities instead of producing results with blank names.
	ValidateBrokers bool
}

// DefaultConfig returns a default configuration for the reconciliation
// service.
func DefaultConfig() *Config {
	return &Config{
		Matching:        matcher.DefaultConfig(),
		ValidateBrokers: true,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Matching != nil {
		if err := c.Matching.Validate(); err != nil {
			return fmt.Errorf("invalid matching config: %w", err)
		}
	}
	return nil
}

// SubmissionInput pairs an uploaded spreadsheet with the broker the user
// assigned to it. A nil Broker means no assignment was made; the
// spreadsheet is then excluded from the run without an error.
type SubmissionInput struct {
	File   string
	Broker *models.Broker
}

// Request describes one reconciliation run over a statement document and a
// set of broker spreadsheet uploads.
type Request struct {
	StatementFile string
	Submissions   []SubmissionInput
}

// Validate performs basic validation on the request.
func (r *Request) Validate() error {
	if r.StatementFile == "" {
		return fmt.Errorf("statement file is required")
	}
	if len(r.Submissions) == 0 {
		return fmt.Errorf("at least one broker spreadsheet is required")
	}
	return nil
}

// RunSummary provides aggregate statistics about a reconciliation run.
type RunSummary struct {
	StatementLines      int
	SubmissionsTotal    int
	SubmissionsAssigned int
	SubmissionsSkipped  int
	OKCount             int
	DivergentCount      int
	ProcessedAt         time.Time
	Duration            time.Duration
}

// RunResult is the complete outcome of a reconciliation run.
type RunResult struct {
	Results []*models.ReconciliationResult
	Alerts  []*models.Alert
	Summary RunSummary
}

// Service wires the parsers and the matching engine together.
type Service struct {
	statementParser  *parsers.StatementParser
	submissionParser *parsers.SubmissionParser
	engine           *matcher.Engine
	config           *Config
	log              logger.Logger
}

// NewService creates a new reconciliation service.
func NewService(statementConfig *parsers.StatementParserConfig, config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError("reconciler", config, err)
	}

	statementParser, err := parsers.NewStatementParser(statementConfig)
	if err != nil {
		return nil, errors.ConfigurationError("statement-parser", statementConfig, err)
	}

	return &Service{
		statementParser:  statementParser,
		submissionParser: parsers.NewSubmissionParser(),
		engine:           matcher.NewEngine(config.Matching),
		config:           config,
		log:              logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// ProcessReconciliation runs the full workflow for a request: await all
// document parses, then match, then derive alerts. A statement parse
// failure halts the run; it never proceeds over a partial statement.
func (s *Service) ProcessReconciliation(ctx context.Context, request *Request) (*RunResult, error) {
	if request == nil {
		return nil, errors.ReconciliationError("request validation", fmt.Errorf("request cannot be nil"))
	}
	if err := request.Validate(); err != nil {
		return nil, errors.ReconciliationError("request validation", err)
	}

	start := time.Now()

	lines, err := s.statementParser.ParseFile(request.StatementFile)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError("statement parsing", err)
	}

	submissions := make([]*models.BrokerSubmission, 0, len(request.Submissions))
	for _, input := range request.Submissions {
		submission, err := s.submissionParser.ParseFile(input.File)
		if err != nil {
			return nil, err
		}
		if input.Broker != nil && s.config.ValidateBrokers {
			if err := input.Broker.Validate(); err != nil {
				return nil, errors.ReconciliationError("broker validation", err)
			}
		}
		submission.Broker = input.Broker
		submissions = append(submissions, submission)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.ReconciliationError("document parsing", err)
	}

	result := s.Reconcile(lines, submissions)
	result.Summary.Duration = time.Since(start)

	s.log.WithFields(logger.Fields{
		"statement_lines":      result.Summary.StatementLines,
		"submissions":          result.Summary.SubmissionsTotal,
		"submissions_assigned": result.Summary.SubmissionsAssigned,
		"ok":                   result.Summary.OKCount,
		"divergent":            result.Summary.DivergentCount,
		"duration":             result.Summary.Duration,
	}).Info("Reconciliation completed")

	return result, nil
}

// Reconcile runs the matcher and alert generation over already-parsed,
// in-memory data. It holds no hidden state: identical inputs yield
// identical results.
func (s *Service) Reconcile(lines []*models.StatementLine, submissions []*models.BrokerSubmission) *RunResult {
	skipped := 0
	for _, sub := range submissions {
		if !sub.HasBroker() {
			skipped++
			s.log.WithField("source", sub.SourceName).
				Debug("Submission has no broker assigned; excluded from matching")
		}
	}

	results := s.engine.Reconcile(lines, submissions)

	summary := RunSummary{
		StatementLines:      len(lines),
		SubmissionsTotal:    len(submissions),
		SubmissionsAssigned: len(submissions) - skipped,
		SubmissionsSkipped:  skipped,
		ProcessedAt:         time.Now(),
	}
	for _, r := range results {
		if r.Status == models.StatusOK {
			summary.OKCount++
		} else {
			summary.DivergentCount++
		}
	}

	return &RunResult{
		Results: results,
		Alerts:  alerts.Generate(results),
		Summary: summary,
	}
}
