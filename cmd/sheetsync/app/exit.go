package app

import (
	"fmt"
	"io"
	"os"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Process exit codes.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitSourceMissing   = 2
	ExitInvalidConfig   = 3
	ExitWriteIncomplete = 4
)

// ExitCode maps an error returned by Execute to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var configErr *errors.ConfigError
	switch {
	case errors.IsSourceMissing(err):
		return ExitSourceMissing
	case errors.IsValidationError(err), errors.As(err, &configErr):
		return ExitInvalidConfig
	case errors.Is(err, errors.ErrWriteIncomplete):
		return ExitWriteIncomplete
	default:
		return ExitFailure
	}
}

// ReportError writes err to w and returns its exit code.
func ReportError(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	//nolint:errcheck // nothing useful to do when stderr fails
	fmt.Fprintf(w, "Error: %v\n", err)
	return ExitCode(err)
}

// ExitOnError prints err and exits with its exit code.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		os.Exit(ReportError(os.Stderr, err))
	}
}
