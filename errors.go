package md2thesis

import (
	"errors"

	"github.com/qwfang/go-md2thesis/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrDOCXRender     = errors.New("DOCX rendering failed")
	ErrHTMLRender     = errors.New("HTML rendering failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
)

// Fatal pipeline errors, re-exported so callers can errors.Is against
// them without importing internal packages.
var (
	ErrParse           = pipeline.ErrParse
	ErrStructuralOrder = pipeline.ErrStructuralOrder
	ErrUnmappedStyle   = pipeline.ErrUnmappedStyle
)
