package parsers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"acerto-reconciliation-service/internal/models"
	"acerto-reconciliation-service/pkg/errors"
	"acerto-reconciliation-service/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// SubmissionParser parses broker commission spreadsheets (xlsx) into
// ordered row mappings. By convention only the first sheet is consumed.
type SubmissionParser struct {
	log logger.Logger
}

// NewSubmissionParser creates a new broker spreadsheet parser.
func NewSubmissionParser() *SubmissionParser {
	return &SubmissionParser{
		log: logger.GetGlobalLogger().WithComponent("submission-parser"),
	}
}

// ParseFile parses the spreadsheet at the given path. The broker identity
// is assigned by the caller; submissions left without one are excluded
// from matching downstream.
func (p *SubmissionParser) ParseFile(path string) (*models.BrokerSubmission, error) {
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

// Parse parses a spreadsheet from a reader. The name is used for error
// reporting and becomes the submission's source name.
func (p *SubmissionParser) Parse(r io.Reader, name string) (*models.BrokerSubmission, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.SubmissionParseError(name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.SubmissionParseError(name, fmt.Errorf("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.SubmissionParseError(name, err)
	}

	submission := &models.BrokerSubmission{SourceName: name}
	if len(rows) == 0 {
		return submission, nil
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	for _, row := range rows[1:] {
		mapped := make(models.SubmissionRow, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			mapped[header] = value
			empty = false
		}
		if !empty {
			submission.Rows = append(submission.Rows, mapped)
		}
	}

	p.log.WithFields(logger.Fields{"file": name, "sheet": sheets[0], "rows": len(submission.Rows)}).
		Debug("Parsed broker spreadsheet")
	return submission, nil
}
