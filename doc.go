// Package md2thesis converts an annotated Markdown manuscript into a
// thesis document styled after a fixed institutional template.
//
// # Quick Start
//
// Create a converter, convert a manuscript, and close when done:
//
//	conv := md2thesis.NewConverter()
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2thesis.Input{
//	    Markdown: manuscript,
//	    Formats:  md2thesis.Formats{DOCX: true},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("thesis.docx", result.DOCX, 0644)
//
// Recoverable problems (malformed captions, missing citations, caption
// number drift, diagram render failures) never fail the conversion;
// they are listed in result.Report. Structural-order violations and
// unmapped styles do fail it.
//
// # Manuscript Structure
//
// The manuscript must carry exactly five top-level regions in order:
// 摘要, ABSTRACT, one or more 第X章 chapters, 参考文献, 致谢. Figures
// declare captions in image alt text (图N.M 题目), mermaid diagrams in
// a leading %% comment, tables in a bracketed first header cell
// ([表N.M 题目]). Citations use footnote syntax ([^label]) and are
// renumbered by first occurrence.
//
// # Conversion Pipeline
//
//  1. Manuscript normalization (line endings, blank lines)
//  2. Block parsing via Goldmark (GFM tables, footnotes)
//  3. Caption extraction and chapter-scoped numbering
//  4. Document tree assembly with structural-order validation
//  5. Citation rewriting and bibliography ordering
//  6. Style resolution against the institutional template
//  7. Diagram rasterization via the Mermaid CLI (mmdc)
//  8. Rendering: DOCX, HTML, and a PDF preview via headless Chrome
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv := md2thesis.NewConverter(
//	    md2thesis.WithTimeout(2 * time.Minute),
//	    md2thesis.WithWorkers(4),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to manage multiple browser
// instances:
//
//	pool := md2thesis.NewConverterPool(4)
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # External Tools
//
// The PDF preview requires Chrome/Chromium; go-rod downloads a managed
// Chromium on first run. Use ROD_BROWSER_BIN to point at a preinstalled
// binary. Diagram rasterization requires the Mermaid CLI (mmdc) on
// PATH or configured via diagram.MmdcRasterizer.Bin.
package md2thesis
