package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	md2thesis "github.com/qwfang/go-md2thesis"
	"github.com/qwfang/go-md2thesis/internal/config"
	"github.com/qwfang/go-md2thesis/internal/diagram"
	"github.com/qwfang/go-md2thesis/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// fileToConvert represents a single manuscript to process.
type fileToConvert struct {
	inputPath string
	outputDir string
}

// conversionResult holds the outcome of a single conversion.
type conversionResult struct {
	inputPath string
	outputs   []string
	report    md2thesis.Report
	err       error
	duration  time.Duration
}

// run orchestrates the conversion process.
func run(ctx context.Context, flags *cliFlags, args []string) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	var err error
	if flags.config != "" {
		cfg, err = config.LoadConfig(flags.config)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(nil))
			}
			return fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, cfg)

	formats := md2thesis.Formats{
		DOCX: cfg.Render.DOCX,
		HTML: cfg.Render.HTML,
		PDF:  cfg.Render.PDF,
	}

	if len(args) == 0 {
		return ErrNoInput
	}

	files, err := discoverFiles(args[0], cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no markdown files found in %s", args[0])
	}

	opts, err := buildOptions(flags, cfg)
	if err != nil {
		return err
	}

	poolSize := md2thesis.ResolvePoolSize(flags.workers)
	if flags.verbose {
		fmt.Fprintf(os.Stderr, "Pool size: %d\n", poolSize)
	}
	pool := md2thesis.NewConverterPool(poolSize, opts...)
	defer pool.Close()

	results := convertBatch(ctx, pool, files, formats)

	failed := printResults(results, flags.quiet, flags.verbose)
	if failed > 0 {
		if len(results) == 1 {
			return decorate(results[0].err)
		}
		return fmt.Errorf("%d conversion(s) failed", failed)
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.Dir = flags.output
	}
	if flags.mmdc != "" {
		cfg.Diagram.Bin = flags.mmdc
	}
	if flags.workers > 0 {
		cfg.Diagram.Workers = flags.workers
	}

	// Any explicit format flag replaces the configured set.
	if flags.docx || flags.html || flags.pdf {
		cfg.Render.DOCX = flags.docx
		cfg.Render.HTML = flags.html
		cfg.Render.PDF = flags.pdf
	}
}

// buildOptions translates config and flags into converter options.
func buildOptions(flags *cliFlags, cfg *config.Config) ([]md2thesis.Option, error) {
	rast := &diagram.MmdcRasterizer{
		Bin:    cfg.Diagram.Bin,
		OutDir: cfg.Diagram.CacheDir,
	}
	if cfg.Diagram.TimeoutSecs > 0 {
		rast.Timeout = time.Duration(cfg.Diagram.TimeoutSecs) * time.Second
	}
	opts := []md2thesis.Option{
		md2thesis.WithRasterizer(rast),
		md2thesis.WithWorkers(cfg.Diagram.Workers),
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid timeout %q (use e.g. 30s, 2m)", flags.timeout)
		}
		opts = append(opts, md2thesis.WithTimeout(d))
	}
	return opts, nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2thesis.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2thesis.MaxPoolSize)
	}
	return nil
}

// discoverFiles finds all markdown manuscripts to convert.
func discoverFiles(inputPath, outputDir string) ([]fileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		return []fileToConvert{{inputPath: inputPath, outputDir: outputDir}}, nil
	}

	var files []fileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		files = append(files, fileToConvert{inputPath: path, outputDir: outputDir})
		return nil
	})

	return files, err
}

// validateMarkdownExtension checks that the file has a .md or .markdown extension.
func validateMarkdownExtension(path string) error {
	ext := filepath.Ext(path)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// convertBatch processes manuscripts concurrently using the converter pool.
func convertBatch(ctx context.Context, pool *md2thesis.ConverterPool, files []fileToConvert, formats md2thesis.Formats) []conversionResult {
	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]conversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = conversionResult{
						inputPath: files[idx].inputPath,
						err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], formats)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single manuscript and writes its outputs.
func convertFile(ctx context.Context, conv *md2thesis.Converter, f fileToConvert, formats md2thesis.Formats) conversionResult {
	start := time.Now()
	result := conversionResult{inputPath: f.inputPath}
	defer func() { result.duration = time.Since(start) }()

	content, err := os.ReadFile(f.inputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		return result
	}

	res, err := conv.Convert(ctx, md2thesis.Input{
		Markdown:  string(content),
		SourceDir: filepath.Dir(f.inputPath),
		Formats:   formats,
	})
	if err != nil {
		result.err = err
		return result
	}
	result.report = res.Report

	outDir := f.outputDir
	if outDir == "" {
		outDir = filepath.Dir(f.inputPath)
	}
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.err = fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory())
		return result
	}

	base := strings.TrimSuffix(filepath.Base(f.inputPath), filepath.Ext(f.inputPath))
	write := func(ext string, data []byte) {
		if result.err != nil || len(data) == 0 {
			return
		}
		path := filepath.Join(outDir, base+ext)
		// #nosec G306 -- outputs are meant to be readable
		if err := os.WriteFile(path, data, filePermissions); err != nil {
			result.err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			return
		}
		result.outputs = append(result.outputs, path)
	}

	write(".docx", res.DOCX)
	write(".html", []byte(res.HTML))
	write(".pdf", res.PDF)
	return result
}

// printResults reports per-file outcomes to the terminal and returns
// the failure count. Issue reports always go to stderr.
func printResults(results []conversionResult, quiet, verbose bool) int {
	var succeeded, failed int

	for _, r := range results {
		if !r.report.Empty() {
			fmt.Fprintf(os.Stderr, "%s:\n%s", r.inputPath, indent(r.report.String()))
		}

		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", r.inputPath, r.err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}
		if verbose {
			fmt.Printf("%s -> %s (%v)\n", r.inputPath, strings.Join(r.outputs, ", "), r.duration.Round(time.Millisecond))
		} else {
			for _, out := range r.outputs {
				fmt.Printf("Created %s\n", out)
			}
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Printf("\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}

// decorate appends an actionable hint to known fatal errors.
func decorate(err error) error {
	switch {
	case errors.Is(err, md2thesis.ErrStructuralOrder):
		return fmt.Errorf("%w%s", err, hints.ForStructuralOrder())
	case errors.Is(err, md2thesis.ErrBrowserConnect):
		return fmt.Errorf("%w%s", err, hints.ForBrowserConnect())
	case errors.Is(err, md2thesis.ErrPageLoad), errors.Is(err, md2thesis.ErrPDFGeneration):
		return fmt.Errorf("%w%s", err, hints.ForTimeout())
	case errors.Is(err, diagram.ErrMmdcNotFound):
		return fmt.Errorf("%w%s", err, hints.ForMmdcNotFound())
	}
	return err
}

// indent prefixes every line for nested display under a file name.
func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
