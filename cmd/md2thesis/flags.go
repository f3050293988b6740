package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all command-line flags.
type cliFlags struct {
	config  string
	output  string
	workers int
	timeout string
	mmdc    string

	docx bool
	html bool
	pdf  bool

	quiet   bool
	verbose bool
	version bool
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("md2thesis", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: alongside input)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.mmdc, "mmdc", "", "mermaid CLI binary (default: mmdc on PATH)")

	fs.BoolVar(&f.docx, "docx", false, "write DOCX output")
	fs.BoolVar(&f.html, "html", false, "write HTML output")
	fs.BoolVar(&f.pdf, "pdf", false, "write PDF preview")

	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// printUsage writes the usage text.
func printUsage(w io.Writer) {
	fmt.Fprint(w, `md2thesis converts an annotated Markdown manuscript into a styled
thesis document (DOCX, plus optional HTML and PDF preview).

Usage:
  md2thesis [flags] <manuscript.md | directory>

Flags:
  -c, --config string    config file name or path
  -o, --output string    output directory (default: alongside input)
  -w, --workers int      parallel workers (0 = auto)
  -t, --timeout string   PDF render timeout (e.g., 30s, 2m)
      --mmdc string      mermaid CLI binary (default: mmdc on PATH)
      --docx             write DOCX output (default when no format flag)
      --html             write HTML output
      --pdf              write PDF preview
  -q, --quiet            only show errors
  -v, --verbose          show detailed timing
      --version          print version and exit

The manuscript must carry five H1 regions in order:
  摘要, ABSTRACT, 第X章 (one or more), 参考文献, 致谢
`)
}
