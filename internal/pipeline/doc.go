// Package pipeline implements the structural transformation stages that
// turn an annotated Markdown manuscript into a styled document tree:
//
//   - Manuscript normalization (line endings, blank lines)
//   - Block parsing via Goldmark (headings, paragraphs, images, mermaid
//     diagrams, GFM tables, fenced code, footnote definitions)
//   - Caption extraction from the three annotation forms
//   - Chapter-scoped figure and table numbering
//   - Document tree assembly with structural-order validation
//   - Citation rewriting by first-occurrence order
//   - Style resolution against the institutional template
//
// Rendering is handled elsewhere: internal/docxout and internal/htmlout
// consume the styled tree, and the root package drives the PDF preview.
// Stages never mutate their input blocks; each produces the structure
// the next stage consumes, collecting recoverable problems in a shared
// report.
package pipeline
