// Package errors provides categorized application errors for the Acerto
// reconciliation service, carrying an error code, a remediation
// suggestion, structured context and a stack trace.
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors.
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryExport         ErrorCategory = "export"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"

	// Reconciliation errors
	CodeMatchingFailed ErrorCode = "matching_failed"

	// Export errors
	CodeSerializationFailed ErrorCode = "serialization_failed"
	CodeWorkbookBuildFailed ErrorCode = "workbook_build_failed"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// AcertoError is the base error type for all application errors.
type AcertoError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *AcertoError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *AcertoError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error.
func (e *AcertoError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	case CategoryExport:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error.
func (e *AcertoError) WithContext(key string, value interface{}) *AcertoError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *AcertoError) WithSuggestion(suggestion string) *AcertoError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AcertoError.
func New(category ErrorCategory, code ErrorCode, message string) *AcertoError {
	return &AcertoError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with AcertoError context.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *AcertoError {
	if err == nil {
		return nil
	}

	return &AcertoError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error.
func FileError(code ErrorCode, path string, err error) *AcertoError {
	var message, suggestion string
	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	result := wrapOrNew(err, CategoryFile, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// StatementParseError creates an error for a malformed bank statement
// document. The surrounding workflow must surface it and halt; matching
// never proceeds on a partial statement.
func StatementParseError(file string, line int, err error) *AcertoError {
	message := fmt.Sprintf("failed to parse bank statement %s at line %d", file, line)
	result := wrapOrNew(err, CategoryParse, CodeInvalidFormat, message)
	return result.
		WithSuggestion("verify the statement export is complete and in the expected format").
		WithContext("file", file).
		WithContext("line", line)
}

// SubmissionParseError creates an error for an unreadable broker
// spreadsheet.
func SubmissionParseError(file string, err error) *AcertoError {
	message := fmt.Sprintf("failed to parse broker spreadsheet %s", file)
	result := wrapOrNew(err, CategoryParse, CodeInvalidData, message)
	return result.
		WithSuggestion("verify the spreadsheet opens in Excel and the first sheet holds the commission rows").
		WithContext("file", file)
}

// MissingColumnError creates an error for a statement file lacking a
// required column.
func MissingColumnError(file, column string) *AcertoError {
	message := fmt.Sprintf("missing required column %q in file %s", column, file)
	return New(CategoryParse, CodeMissingColumn, message).
		WithSuggestion("verify the file has all required columns with correct headers").
		WithContext("file", file).
		WithContext("column", column)
}

// ConfigurationError creates a configuration-related error.
func ConfigurationError(setting string, value interface{}, err error) *AcertoError {
	message := fmt.Sprintf("invalid configuration for %q: %v", setting, value)
	result := wrapOrNew(err, CategoryConfiguration, CodeInvalidConfig, message)
	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// ReconciliationError creates a reconciliation-related error.
func ReconciliationError(operation string, err error) *AcertoError {
	message := fmt.Sprintf("reconciliation failed during %s", operation)
	result := wrapOrNew(err, CategoryReconciliation, CodeMatchingFailed, message)
	return result.
		WithSuggestion("review the statement and spreadsheet data quality").
		WithContext("operation", operation)
}

// ExportError creates a workbook export error. A failed export yields no
// valid artifact.
func ExportError(code ErrorCode, target string, err error) *AcertoError {
	var message, suggestion string
	switch code {
	case CodeWorkbookBuildFailed:
		message = fmt.Sprintf("failed to build report workbook for %s", target)
		suggestion = "this is likely a bug - please report it with the error details"
	default:
		message = fmt.Sprintf("failed to write report workbook to %s", target)
		suggestion = "check disk space and write permissions on the output directory"
	}

	result := wrapOrNew(err, CategoryExport, code, message)
	return result.
		WithSuggestion(suggestion).
		WithContext("target", target)
}

// InternalError creates an internal error.
func InternalError(operation string, err error) *AcertoError {
	message := fmt.Sprintf("unexpected error during %s", operation)
	result := wrapOrNew(err, CategoryInternal, CodeUnexpectedError, message)
	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

func wrapOrNew(err error, category ErrorCategory, code ErrorCode, message string) *AcertoError {
	if err != nil {
		return Wrap(err, category, code, message)
	}
	return New(category, code, message)
}

// Utility functions

// IsAcertoError checks if an error is an AcertoError.
func IsAcertoError(err error) bool {
	_, ok := err.(*AcertoError)
	return ok
}

// AsAcertoError extracts an AcertoError from an error chain.
func AsAcertoError(err error) (*AcertoError, bool) {
	var acertoErr *AcertoError
	if errors.As(err, &acertoErr) {
		return acertoErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an AcertoError.
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *AcertoError {
	if err == nil {
		return nil
	}
	if acertoErr, ok := AsAcertoError(err); ok {
		return acertoErr
	}
	return Wrap(err, category, code, message)
}

// FormatContext renders the context map for display.
func FormatContext(ctx Context) string {
	if len(ctx) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ctx))
	for key, value := range ctx {
		parts = append(parts, fmt.Sprintf("%s=%v", key, value))
	}
	return strings.Join(parts, ", ")
}
