package cmd

import (
	"fmt"
	"os"

	"acerto-reconciliation-service/pkg/errors"
	"acerto-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations.
type CLIErrorHandler struct {
	log     logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler.
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		log:     logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a friendly rendering of the error and returns the
// process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.log.WithError(err).Error("Command failed")

	if acertoErr, ok := errors.AsAcertoError(err); ok {
		return h.handleAcertoError(acertoErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func (h *CLIErrorHandler) handleAcertoError(err *errors.AcertoError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if ctx := errors.FormatContext(err.Context); ctx != "" {
		fmt.Fprintf(os.Stderr, "Context: %s\n", ctx)
	}
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", err.Suggestion)
	}
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}
