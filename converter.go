package md2thesis

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/qwfang/go-md2thesis/internal/diagram"
	"github.com/qwfang/go-md2thesis/internal/doctree"
	"github.com/qwfang/go-md2thesis/internal/docxout"
	"github.com/qwfang/go-md2thesis/internal/fileutil"
	"github.com/qwfang/go-md2thesis/internal/htmlout"
	"github.com/qwfang/go-md2thesis/internal/pipeline"
)

// Converter runs the full manuscript-to-thesis pipeline: parse, number,
// build the document tree, rewrite citations, resolve styles, rasterize
// diagrams, render the requested formats.
type Converter struct {
	cfg          converterConfig
	preprocessor pipeline.Preprocessor
	parser       pipeline.BlockParser
	rasterizer   diagram.Rasterizer
	pdfConverter pdfConverter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithRasterizer).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		cfg:          converterConfig{timeout: defaultTimeout},
		preprocessor: &pipeline.ManuscriptPreprocessor{},
		parser:       pipeline.NewGoldmarkBlockParser(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.rasterizer == nil {
		c.rasterizer = &diagram.MmdcRasterizer{}
	}
	// Create PDF converter if not injected (e.g., by tests)
	if c.pdfConverter == nil {
		c.pdfConverter = newRodConverter(c.cfg.timeout)
	}

	return c
}

// Convert transforms the manuscript into the requested formats.
// Structural-order and style-mapping violations fail the conversion;
// recoverable problems are collected in Result.Report. A non-nil error
// still comes with a Result whose Report holds every issue accumulated
// up to the failure, so callers can show the user what went wrong where.
func (c *Converter) Convert(ctx context.Context, input Input) (*Result, error) {
	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}
	formats := input.Formats
	if formats.none() {
		formats.DOCX = true
	}

	doc, rep, err := c.buildDocument(ctx, input.Markdown)
	if err != nil {
		rep.Sort()
		return &Result{Report: newReport(rep)}, err
	}

	// Rasterize diagram figures before any renderer touches the tree.
	if len(doc.Items(doctree.ItemFigure)) > 0 {
		diagram.RenderAll(ctx, doc, c.rasterizer, c.cfg.workers, rep)
		if err := ctx.Err(); err != nil {
			rep.Sort()
			return &Result{Report: newReport(rep)}, err
		}
	}

	// Static figures pointing at files that do not exist render as
	// caption-only placeholders, like a failed diagram render.
	for _, item := range doc.Items(doctree.ItemFigure) {
		if item.DiagramSrc != "" || item.ImagePath == "" {
			continue
		}
		path := item.ImagePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(input.SourceDir, path)
		}
		if !fileutil.FileExists(path) {
			rep.Add(doctree.IssueMissingFigure, item.SourcePos, "image file %q not found", item.ImagePath)
			item.ImagePath = ""
		}
	}

	rep.Sort()
	result := &Result{Report: newReport(rep)}

	if formats.DOCX {
		var buf bytes.Buffer
		w := docxout.NewWriter()
		w.BaseDir = input.SourceDir
		if err := w.Render(doc, &buf); err != nil {
			return result, fmt.Errorf("%w: %v", ErrDOCXRender, err)
		}
		result.DOCX = buf.Bytes()
	}

	if formats.HTML || formats.PDF {
		htmlContent, err := htmlout.Render(doc)
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrHTMLRender, err)
		}
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, input.SourceDir)
		if err != nil {
			return result, fmt.Errorf("%w: %v", ErrHTMLRender, err)
		}
		if formats.HTML {
			result.HTML = htmlContent
		}
		if formats.PDF {
			pdfBytes, err := c.pdfConverter.ToPDF(ctx, htmlContent)
			if err != nil {
				return result, fmt.Errorf("converting to PDF: %w", err)
			}
			result.PDF = pdfBytes
		}
	}

	return result, nil
}

// buildDocument runs the format-independent pipeline stages. The report
// is non-nil on every path so fatal errors keep the issues found before
// the failure.
func (c *Converter) buildDocument(ctx context.Context, markdown string) (*doctree.Document, *doctree.Report, error) {
	rep := &doctree.Report{}

	content := c.preprocessor.Preprocess(ctx, markdown)
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	blocks, err := c.parser.Parse(ctx, content)
	if err != nil {
		return nil, rep, err
	}

	annotated := pipeline.AssignNumbers(blocks, rep)

	doc, defs, err := pipeline.BuildTree(annotated, rep)
	if err != nil {
		return nil, rep, err
	}

	pipeline.RewriteCitations(doc, defs, rep)

	if err := pipeline.ResolveStyles(doc); err != nil {
		rep.Add(doctree.IssueUnmappedStyle, 0, "%v", err)
		return nil, rep, err
	}
	return doc, rep, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}
