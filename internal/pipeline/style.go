package pipeline

import (
	"errors"
	"fmt"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// ErrUnmappedStyle indicates a style lookup for a combination the table
// does not cover. The mapping is total by construction, so this is an
// internal invariant violation and always fatal.
var ErrUnmappedStyle = errors.New("unmapped style")

// Institutional font names. East-asian text and latin text carry
// separate fonts within one style record.
const (
	FontSongTi = "宋体"
	FontHeiTi  = "黑体"
	FontKaiTi  = "楷体"
	FontTimes  = "Times New Roman"
	FontMono   = "Courier New"
)

// Institutional font sizes in points (三号 through 小五号).
const (
	SizeThree      = 16.0 // 三号
	SizeSmallThree = 15.0 // 小三号
	SizeFour       = 14.0 // 四号
	SizeSmallFour  = 12.0 // 小四号
	SizeFive       = 10.5 // 五号
	SizeSmallFive  = 9.0  // 小五号
)

// Line spacing values.
const (
	Spacing125        = 1.25
	Spacing150        = 1.5
	SpacingAbstractPt = 20.0 // fixed line height for both abstracts
)

// bodyIndentCm is the first-line indent of running text (~2 characters).
const bodyIndentCm = 0.7

// StyleKind selects the style family of a node for lookups.
type StyleKind int

// Style kinds covering every node type reachable in the tree.
const (
	StyleHeading StyleKind = iota
	StyleParagraph
	StyleFigureCaption
	StyleTableCaption
	StyleTableHeaderCell
	StyleTableBodyCell
	StyleCode
	StyleBibEntry
)

// String returns the lookup name used in error messages.
func (k StyleKind) String() string {
	switch k {
	case StyleHeading:
		return "heading"
	case StyleParagraph:
		return "paragraph"
	case StyleFigureCaption:
		return "figure-caption"
	case StyleTableCaption:
		return "table-caption"
	case StyleTableHeaderCell:
		return "table-header-cell"
	case StyleTableBodyCell:
		return "table-body-cell"
	case StyleCode:
		return "code"
	case StyleBibEntry:
		return "bibliography-entry"
	}
	return fmt.Sprintf("style(%d)", int(k))
}

// Lookup is the pure style mapping. It returns a fresh record per call;
// records are never shared between nodes and never mutated afterwards.
// level is meaningful for StyleHeading only; region distinguishes the
// five document parts, which differ even for identical node types.
func Lookup(kind StyleKind, level int, region doctree.Region) (*doctree.StyleRecord, error) {
	switch kind {
	case StyleHeading:
		return headingStyle(level)

	case StyleParagraph:
		return paragraphStyle(region)

	case StyleFigureCaption, StyleTableCaption:
		return &doctree.StyleRecord{
			EastAsianFont: FontKaiTi,
			LatinFont:     FontTimes,
			SizePt:        SizeFive,
			Alignment:     doctree.AlignCenter,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   Spacing125,
			SpaceAfterPt:  6,
		}, nil

	case StyleTableHeaderCell:
		return &doctree.StyleRecord{
			EastAsianFont: FontSongTi,
			LatinFont:     FontTimes,
			SizePt:        SizeSmallFour,
			Bold:          true,
			Alignment:     doctree.AlignCenter,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   1.0,
		}, nil

	case StyleTableBodyCell:
		return &doctree.StyleRecord{
			EastAsianFont: FontSongTi,
			LatinFont:     FontTimes,
			SizePt:        SizeSmallFour,
			Alignment:     doctree.AlignLeft,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   1.0,
		}, nil

	case StyleCode:
		return &doctree.StyleRecord{
			EastAsianFont: FontMono,
			LatinFont:     FontMono,
			SizePt:        SizeFive,
			Alignment:     doctree.AlignLeft,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   1.0,
			LeftIndentCm:  1.0,
			SpaceBeforePt: 5,
			SpaceAfterPt:  5,
		}, nil

	case StyleBibEntry:
		return &doctree.StyleRecord{
			EastAsianFont:   FontSongTi,
			LatinFont:       FontTimes,
			SizePt:          SizeSmallFour,
			Alignment:       doctree.AlignLeft,
			Spacing:         doctree.SpacingMultiple,
			LineSpacing:     Spacing125,
			LeftIndentCm:    bodyIndentCm,
			HangingIndentCm: bodyIndentCm,
		}, nil
	}

	return nil, fmt.Errorf("%w: kind=%s level=%d region=%s", ErrUnmappedStyle, kind, level, region)
}

// headingStyle maps heading depth to the template's heading styles.
// Heading styles do not vary by region: the 摘要/参考文献/致谢 titles use
// the chapter heading style.
func headingStyle(level int) (*doctree.StyleRecord, error) {
	switch level {
	case 1: // 黑体三号居中, page break before
		return &doctree.StyleRecord{
			EastAsianFont:   FontHeiTi,
			LatinFont:       FontTimes,
			SizePt:          SizeThree,
			Bold:            true,
			Alignment:       doctree.AlignCenter,
			Spacing:         doctree.SpacingMultiple,
			LineSpacing:     Spacing150,
			SpaceAfterPt:    12,
			PageBreakBefore: true,
		}, nil
	case 2: // 黑体小三居中
		return &doctree.StyleRecord{
			EastAsianFont: FontHeiTi,
			LatinFont:     FontTimes,
			SizePt:        SizeSmallThree,
			Bold:          true,
			Alignment:     doctree.AlignCenter,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   Spacing150,
			SpaceBeforePt: 12,
			SpaceAfterPt:  6,
		}, nil
	case 3: // 黑体四号左起
		return &doctree.StyleRecord{
			EastAsianFont: FontHeiTi,
			LatinFont:     FontTimes,
			SizePt:        SizeFour,
			Bold:          true,
			Alignment:     doctree.AlignLeft,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   Spacing150,
			SpaceBeforePt: 10,
			SpaceAfterPt:  5,
		}, nil
	case 4: // 黑体小四单列一行
		return &doctree.StyleRecord{
			EastAsianFont: FontHeiTi,
			LatinFont:     FontHeiTi,
			SizePt:        SizeSmallFour,
			Bold:          true,
			Alignment:     doctree.AlignLeft,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   Spacing125,
			SpaceBeforePt: 5,
			SpaceAfterPt:  2,
		}, nil
	case 5: // 序号段落, 正文字体
		return &doctree.StyleRecord{
			EastAsianFont: FontSongTi,
			LatinFont:     FontTimes,
			SizePt:        SizeSmallFour,
			Alignment:     doctree.AlignLeft,
			Spacing:       doctree.SpacingMultiple,
			LineSpacing:   Spacing125,
		}, nil
	}
	return nil, fmt.Errorf("%w: heading level %d", ErrUnmappedStyle, level)
}

// paragraphStyle maps the document region to its running-text style.
func paragraphStyle(region doctree.Region) (*doctree.StyleRecord, error) {
	switch region {
	case doctree.RegionAbstractCN: // 楷体四号, 固定20磅
		return &doctree.StyleRecord{
			EastAsianFont:     FontKaiTi,
			LatinFont:         FontKaiTi,
			SizePt:            SizeFour,
			Alignment:         doctree.AlignJustify,
			Spacing:           doctree.SpacingFixedPt,
			LineSpacing:       SpacingAbstractPt,
			FirstLineIndentCm: bodyIndentCm,
		}, nil
	case doctree.RegionAbstractEN: // Times 四号, 固定20磅
		return &doctree.StyleRecord{
			EastAsianFont:     FontTimes,
			LatinFont:         FontTimes,
			SizePt:            SizeFour,
			Alignment:         doctree.AlignJustify,
			Spacing:           doctree.SpacingFixedPt,
			LineSpacing:       SpacingAbstractPt,
			FirstLineIndentCm: bodyIndentCm,
		}, nil
	case doctree.RegionBody, doctree.RegionBibliography, doctree.RegionAcknowledgment:
		return &doctree.StyleRecord{
			EastAsianFont:     FontSongTi,
			LatinFont:         FontTimes,
			SizePt:            SizeSmallFour,
			Alignment:         doctree.AlignLeft,
			Spacing:           doctree.SpacingMultiple,
			LineSpacing:       Spacing125,
			FirstLineIndentCm: bodyIndentCm,
		}, nil
	}
	return nil, fmt.Errorf("%w: paragraph in region %s", ErrUnmappedStyle, region)
}

// ResolveStyles attaches a style record to every node in the tree.
// Any unmapped combination aborts the pipeline: the caller gets the
// wrapped ErrUnmappedStyle and no styled document.
func ResolveStyles(doc *doctree.Document) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	doc.WalkSections(func(s *doctree.Section) {
		style, err := Lookup(StyleHeading, s.Level, s.Region)
		record(err)
		s.Style = style
	})
	if firstErr != nil {
		return firstErr
	}

	doc.WalkNodes(func(s *doctree.Section, n doctree.Node) {
		switch node := n.(type) {
		case *doctree.Paragraph:
			style, err := Lookup(StyleParagraph, 0, s.Region)
			record(err)
			node.Style = style
		case *doctree.CodeBlock:
			style, err := Lookup(StyleCode, 0, s.Region)
			record(err)
			node.Style = style
		case *doctree.BibEntry:
			style, err := Lookup(StyleBibEntry, 0, s.Region)
			record(err)
			node.Style = style
		case *doctree.CaptionedItem:
			if node.Kind == doctree.ItemTable {
				style, err := Lookup(StyleTableCaption, 0, s.Region)
				record(err)
				node.CaptionStyle = style
				style, err = Lookup(StyleTableHeaderCell, 0, s.Region)
				record(err)
				node.HeaderStyle = style
				style, err = Lookup(StyleTableBodyCell, 0, s.Region)
				record(err)
				node.CellStyle = style
			} else {
				style, err := Lookup(StyleFigureCaption, 0, s.Region)
				record(err)
				node.CaptionStyle = style
			}
		}
	})
	return firstErr
}
