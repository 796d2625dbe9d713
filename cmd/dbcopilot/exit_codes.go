package main

import (
	"errors"
	"os"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/database"
	"github.com/alnah/go-dbcopilot/internal/dateutil"
	"github.com/alnah/go-dbcopilot/internal/llm"
)

// Exit codes for the dbcopilot CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful run
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or input
	ExitIO         = 3 // File not found, permission denied
	ExitRender     = 4 // Browser/PDF errors
	ExitConnection = 5 // Database unreachable
	ExitQuery      = 6 // Generated SQL failed
	ExitUpstream   = 7 // Language model request failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Usage/config/validation errors (exit 2). Checked first: missing
	// credentials are wrapped in ErrUpstreamModel but are a setup problem.
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, llm.ErrMissingAPIKey) ||
		errors.Is(err, llm.ErrMissingEndpoint) ||
		errors.Is(err, llm.ErrUnknownProvider) ||
		errors.Is(err, database.ErrUnknownDriver) ||
		errors.Is(err, database.ErrEmptyConnString) ||
		errors.Is(err, dbcopilot.ErrEmptyQuestion) ||
		errors.Is(err, dbcopilot.ErrEmptyMarkdown) ||
		errors.Is(err, dbcopilot.ErrPromptMissing) ||
		errors.Is(err, dbcopilot.ErrInvalidPageSize) ||
		errors.Is(err, dbcopilot.ErrInvalidOrientation) ||
		errors.Is(err, dbcopilot.ErrInvalidMargin) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrPromptSetNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) {
		return ExitUsage
	}

	if errors.Is(err, dbcopilot.ErrConnection) {
		return ExitConnection
	}
	if errors.Is(err, dbcopilot.ErrQuery) {
		return ExitQuery
	}
	if errors.Is(err, dbcopilot.ErrUpstreamModel) {
		return ExitUpstream
	}

	// Browser errors (exit 4)
	if errors.Is(err, dbcopilot.ErrRender) ||
		errors.Is(err, dbcopilot.ErrBrowserConnect) ||
		errors.Is(err, dbcopilot.ErrPageCreate) ||
		errors.Is(err, dbcopilot.ErrPageLoad) ||
		errors.Is(err, dbcopilot.ErrPDFGeneration) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteReport) {
		return ExitIO
	}

	return ExitGeneral
}
