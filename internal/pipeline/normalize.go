package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Precompiled patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Full-width space indentation at line start. Manuscripts exported
	// from Chinese editors often carry U+3000 indents that would break
	// caption and heading matching.
	leadingIdeographicSpace = regexp.MustCompile(`(?m)^\x{3000}+`)
)

// Preprocessor defines the contract for manuscript preprocessing.
type Preprocessor interface {
	Preprocess(ctx context.Context, content string) string
}

// ManuscriptPreprocessor normalizes raw manuscript text before parsing.
type ManuscriptPreprocessor struct{}

// Preprocess applies all normalizations. A canceled context returns the
// content unchanged.
func (p *ManuscriptPreprocessor) Preprocess(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, "\ufeff")
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = leadingIdeographicSpace.ReplaceAllString(content, "")
	content = multipleBlankLines.ReplaceAllString(content, "\n\n")
	return content
}
