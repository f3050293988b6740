package main

import (
	"errors"
	"os"

	md2thesis "github.com/qwfang/go-md2thesis"
	"github.com/qwfang/go-md2thesis/internal/config"
)

// Exit codes for the md2thesis CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or manuscript validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, md2thesis.ErrBrowserConnect) ||
		errors.Is(err, md2thesis.ErrPageCreate) ||
		errors.Is(err, md2thesis.ErrPageLoad) ||
		errors.Is(err, md2thesis.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage, config, and manuscript validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidField) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, md2thesis.ErrEmptyMarkdown) ||
		errors.Is(err, md2thesis.ErrParse) ||
		errors.Is(err, md2thesis.ErrStructuralOrder) ||
		errors.Is(err, md2thesis.ErrUnmappedStyle) {
		return ExitUsage
	}

	return ExitGeneral
}
