// Package diagram turns fenced diagram source blocks into image files
// through the external Mermaid CLI, treated as a pure function from
// source text to image path.
package diagram

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/qwfang/go-md2thesis/internal/doctree"
	"github.com/qwfang/go-md2thesis/internal/fileutil"
	"github.com/qwfang/go-md2thesis/internal/process"
)

// Sentinel errors for rasterization.
var (
	ErrRasterize    = errors.New("diagram rasterization failed")
	ErrMmdcNotFound = errors.New("mermaid CLI (mmdc) not found")
)

// Render geometry passed to the Mermaid CLI.
const (
	renderWidth  = "1200"
	renderHeight = "800"
	renderScale  = "1.5"
)

// DefaultTimeout bounds a single mmdc invocation.
const DefaultTimeout = 30 * time.Second

// DefaultBin is the Mermaid CLI binary looked up on PATH when no
// explicit path is configured.
const DefaultBin = "mmdc"

// maxAutoWorkers caps the auto-sized render pool.
const maxAutoWorkers = 8

// Rasterizer converts diagram source text into an image file and
// returns its path. Implementations must be deterministic: the same
// source always yields the same visual output.
type Rasterizer interface {
	Rasterize(ctx context.Context, source string) (string, error)
}

// MmdcRasterizer shells out to the Mermaid CLI. Output files are named
// by the hash of their source, so re-rendering an unchanged diagram is
// a no-op and repeated conversions reuse the cached image.
type MmdcRasterizer struct {
	Bin     string        // mmdc binary, DefaultBin when empty
	OutDir  string        // output directory, os.TempDir() when empty
	Timeout time.Duration // per-invocation bound, DefaultTimeout when zero
}

// Compile-time interface check.
var _ Rasterizer = (*MmdcRasterizer)(nil)

// Rasterize renders one diagram source to a PNG file.
func (r *MmdcRasterizer) Rasterize(ctx context.Context, source string) (string, error) {
	outPath := filepath.Join(r.outDir(), "diagram-"+sourceHash(source)+".png")
	if fileutil.FileExists(outPath) {
		return outPath, nil
	}

	srcPath, cleanup, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRasterize, err)
	}
	defer cleanup()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := r.Bin
	if bin == "" {
		bin = DefaultBin
	}

	// #nosec G204 -- bin comes from trusted configuration, not document content
	cmd := exec.CommandContext(ctx, bin,
		"-i", srcPath,
		"-o", outPath,
		"-w", renderWidth,
		"-H", renderHeight,
		"--scale", renderScale,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	// mmdc spawns a headless Chrome; on timeout the whole group must go.
	process.SetGroup(cmd)
	cmd.Cancel = func() error { return process.KillGroup(cmd) }

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outPath)
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", ErrMmdcNotFound, bin)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrRasterize, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v: %s", ErrRasterize, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return outPath, nil
}

func (r *MmdcRasterizer) outDir() string {
	if r.OutDir != "" {
		return r.OutDir
	}
	return os.TempDir()
}

// sourceHash names output files deterministically by diagram content.
func sourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:8])
}

// RenderAll rasterizes every diagram figure in the document through a
// bounded worker pool. Calls are independent and idempotent, so they
// run in parallel; node order in the tree is unaffected. Each failure
// is tied to the offending block's position in the report, and the
// figure keeps its caption with no image.
func RenderAll(ctx context.Context, doc *doctree.Document, r Rasterizer, workers int, rep *doctree.Report) {
	var pending []*doctree.CaptionedItem
	for _, item := range doc.Items(doctree.ItemFigure) {
		if item.DiagramSrc != "" && item.ImagePath == "" {
			pending = append(pending, item)
		}
	}
	if len(pending) == 0 {
		return
	}
	if workers < 1 {
		// Each render is an mmdc process with a Chrome child; leave
		// headroom the same way the browser pool does.
		workers = runtime.GOMAXPROCS(0) / 2
		if workers < 1 {
			workers = 1
		}
		if workers > maxAutoWorkers {
			workers = maxAutoWorkers
		}
	}

	// Identical sources map to the same output file; render each
	// distinct source once and share the result, so two workers never
	// write the same path concurrently.
	groups := make(map[string][]*doctree.CaptionedItem)
	var order []string
	for _, item := range pending {
		if _, ok := groups[item.DiagramSrc]; !ok {
			order = append(order, item.DiagramSrc)
		}
		groups[item.DiagramSrc] = append(groups[item.DiagramSrc], item)
	}

	type failure struct {
		pos int
		err error
	}
	failures := make(chan failure, len(pending))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, src := range order {
		wg.Add(1)
		sem <- struct{}{}
		go func(src string, items []*doctree.CaptionedItem) {
			defer wg.Done()
			defer func() { <-sem }()

			path, err := r.Rasterize(ctx, src)
			if err != nil {
				for _, item := range items {
					failures <- failure{pos: item.SourcePos, err: err}
				}
				return
			}
			for _, item := range items {
				item.ImagePath = path
			}
		}(src, groups[src])
	}
	wg.Wait()
	close(failures)

	for f := range failures {
		rep.Add(doctree.IssueDiagramRender, f.pos, "%v", f.err)
	}
}
