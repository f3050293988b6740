package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// ErrCaptionParse indicates a caption token could not be recognized.
// Recovered locally: the item keeps an empty caption and the condition is
// flagged in the report.
var ErrCaptionParse = errors.New("malformed caption token")

// Caption token patterns. Figures use a leading "图N.M" token, tables a
// "表N.M" token; whitespace around the dot tolerates manual authoring.
var (
	figureCaptionPattern = regexp.MustCompile(`^图\s*(\d+)\s*\.\s*(\d+)\s*(.*)$`)
	tableCaptionPattern  = regexp.MustCompile(`^表\s*(\d+)\s*\.\s*(\d+)\s*(.*)$`)

	// Table captions ride inside the first header cell as a bracketed
	// leading token: "[表2.1 典型特征]虚拟化平台".
	tableCellToken = regexp.MustCompile(`^\[(表[^\]]*)\]\s*(.*)$`)

	// Diagram captions ride on the first source line as a comment:
	// "%%图3.1 某功能流程图".
	diagramCommentPrefix = "%%"
)

// ExtractImageCaption parses the caption embedded in an image's alt text.
func ExtractImageCaption(alt string) (doctree.Caption, error) {
	return parseCaptionToken(figureCaptionPattern, alt)
}

// ExtractDiagramCaption parses the caption comment on the first line of a
// diagram source block and returns the source with that line removed,
// ready for rasterization.
func ExtractDiagramCaption(source string) (doctree.Caption, string, error) {
	first, rest, _ := strings.Cut(source, "\n")
	trimmed := strings.TrimSpace(first)
	if !strings.HasPrefix(trimmed, diagramCommentPrefix) {
		return doctree.Caption{}, source, fmt.Errorf("%w: diagram source missing %q caption comment", ErrCaptionParse, diagramCommentPrefix+"图N.M")
	}
	caption, err := parseCaptionToken(figureCaptionPattern, strings.TrimSpace(strings.TrimPrefix(trimmed, diagramCommentPrefix)))
	if err != nil {
		return doctree.Caption{}, source, err
	}
	return caption, rest, nil
}

// ExtractTableCaption parses the bracketed caption token from the first
// header cell and returns a copy of the grid with the token stripped.
func ExtractTableCaption(grid *doctree.TableGrid) (doctree.Caption, *doctree.TableGrid, error) {
	if grid == nil || len(grid.Header) == 0 {
		return doctree.Caption{}, grid, fmt.Errorf("%w: table has no header row to carry a caption", ErrCaptionParse)
	}
	m := tableCellToken.FindStringSubmatch(grid.Header[0])
	if m == nil {
		return doctree.Caption{}, grid, fmt.Errorf("%w: first header cell %q has no [表N.M ...] token", ErrCaptionParse, grid.Header[0])
	}
	caption, err := parseCaptionToken(tableCaptionPattern, strings.TrimSpace(m[1]))
	if err != nil {
		return doctree.Caption{}, grid, err
	}

	cleaned := &doctree.TableGrid{
		Header: append([]string(nil), grid.Header...),
		Rows:   grid.Rows,
	}
	cleaned.Header[0] = strings.TrimSpace(m[2])
	return caption, cleaned, nil
}

// parseCaptionToken splits "<前缀>N.M 题目" into declared numbers and the
// free-text title.
func parseCaptionToken(pattern *regexp.Regexp, s string) (doctree.Caption, error) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return doctree.Caption{}, fmt.Errorf("%w: %q", ErrCaptionParse, s)
	}
	chapter, err := strconv.Atoi(m[1])
	if err != nil {
		return doctree.Caption{}, fmt.Errorf("%w: chapter number in %q", ErrCaptionParse, s)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return doctree.Caption{}, fmt.Errorf("%w: sequence number in %q", ErrCaptionParse, s)
	}
	return doctree.Caption{
		DeclaredChapter: chapter,
		DeclaredSeq:     seq,
		Title:           strings.TrimSpace(m[3]),
	}, nil
}
