package doctree

import "fmt"

// Alignment is the horizontal paragraph alignment.
type Alignment int

// Paragraph alignments.
const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// String returns the CSS / WordprocessingML-compatible alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	}
	return "left"
}

// SpacingMode selects how LineSpacing is interpreted.
type SpacingMode int

// Line spacing modes.
const (
	// SpacingMultiple interprets LineSpacing as a multiple of the line
	// height, e.g. 1.25 or 1.5.
	SpacingMultiple SpacingMode = iota
	// SpacingFixedPt interprets LineSpacing as an exact height in points,
	// e.g. 20 for the abstract regions.
	SpacingFixedPt
)

// StyleRecord is the concrete style resolved for one node. Records are
// produced by the style resolver as a pure function of
// (node kind, heading level, region) and never mutated afterwards.
type StyleRecord struct {
	EastAsianFont string
	LatinFont     string
	SizePt        float64
	Bold          bool
	Alignment     Alignment
	Spacing       SpacingMode
	LineSpacing   float64

	// Indents in centimetres. Hanging pairs a positive left indent with a
	// negative first-line indent (bibliography entries).
	FirstLineIndentCm float64
	LeftIndentCm      float64
	HangingIndentCm   float64

	// Vertical spacing in points.
	SpaceBeforePt float64
	SpaceAfterPt  float64

	// PageBreakBefore starts the node on a fresh page (chapter headings).
	PageBreakBefore bool
}

// String is a compact debug form used in tests and error messages.
func (r *StyleRecord) String() string {
	return fmt.Sprintf("%s/%s %.1fpt bold=%t %s", r.EastAsianFont, r.LatinFont, r.SizePt, r.Bold, r.Alignment)
}
