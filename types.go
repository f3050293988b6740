package md2thesis

import (
	"time"

	"github.com/qwfang/go-md2thesis/internal/diagram"
)

// Input contains conversion parameters.
type Input struct {
	Markdown  string  // Annotated Markdown manuscript (required)
	SourceDir string  // Base directory for relative image paths (optional)
	Formats   Formats // Output formats (zero value = DOCX only)
}

// Formats selects which renditions Convert produces.
type Formats struct {
	DOCX bool
	HTML bool
	PDF  bool
}

// none reports whether no format was requested.
func (f Formats) none() bool { return !f.DOCX && !f.HTML && !f.PDF }

// Result holds the rendered outputs and the issue report.
// Recoverable issues never fail Convert; callers inspect Report.
type Result struct {
	DOCX   []byte
	HTML   string
	PDF    []byte
	Report Report
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout time.Duration
	workers int
}

// defaultTimeout bounds the PDF preview render when no timeout is set.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2thesis: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithRasterizer replaces the mermaid rasterizer (e.g. a fake in tests,
// or a custom mmdc location).
func WithRasterizer(r diagram.Rasterizer) Option {
	if r == nil {
		panic("md2thesis: WithRasterizer requires a non-nil rasterizer")
	}
	return func(c *Converter) {
		c.rasterizer = r
	}
}

// WithWorkers sets the diagram render parallelism. Zero means auto.
func WithWorkers(n int) Option {
	if n < 0 {
		panic("md2thesis: WithWorkers count cannot be negative")
	}
	return func(c *Converter) {
		c.cfg.workers = n
	}
}
