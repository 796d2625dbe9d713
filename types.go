package dbcopilot

import (
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-dbcopilot/internal/database"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns U.S. Letter, portrait, half-inch margins.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// dimensions returns the paper width and height in inches.
func (p *PageSettings) dimensions() (width, height float64) {
	switch strings.ToLower(p.Size) {
	case PageSizeA4:
		width, height = 8.27, 11.69
	case PageSizeLegal:
		width, height = 8.5, 14
	default:
		width, height = 8.5, 11
	}
	if strings.EqualFold(p.Orientation, OrientationLandscape) {
		width, height = height, width
	}
	return width, height
}

func isValidPageSize(size string) bool {
	switch strings.ToLower(size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
		return true
	}
	return false
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}

// QueryResult is the outcome of running generated SQL.
type QueryResult = database.Result

// Request is one question to the copilot.
type Request struct {
	Question string

	// BusinessReport switches the answer stage to the report prompt and
	// renders the answer to a PDF at ReportPath.
	BusinessReport bool
	ReportPath     string

	// SQLOnly stops after SQL generation.
	SQLOnly bool
}

// Answer is what the pipeline produced for a Request.
type Answer struct {
	Question   string
	SQL        string
	Result     *QueryResult
	Response   string
	ReportPath string // set when a PDF was written
	Duration   time.Duration
}
