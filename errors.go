package dbcopilot

import (
	"errors"

	"github.com/alnah/go-dbcopilot/internal/database"
	"github.com/alnah/go-dbcopilot/internal/llm"
)

// Failure kinds of the question pipeline. Callers classify with errors.Is.
var (
	ErrConnection    = database.ErrConnection
	ErrQuery         = database.ErrQuery
	ErrUpstreamModel = llm.ErrUpstreamModel
	ErrRender        = errors.New("report rendering failed")
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrEmptySQL      = errors.New("model returned no SQL")
	ErrPromptMissing = errors.New("prompt set missing required prompt")
	ErrInternal      = errors.New("internal error")
)

// Report rendering errors. All of them are reported wrapped in ErrRender by
// ReportBuilder.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
)
