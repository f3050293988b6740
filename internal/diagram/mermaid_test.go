package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/qwfang/go-md2thesis/internal/doctree"
)

// fakeRasterizer records calls and returns canned paths or errors.
type fakeRasterizer struct {
	mu      sync.Mutex
	calls   int32
	inUse   int32
	maxUse  int32
	failFor map[string]error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, source string) (string, error) {
	use := atomic.AddInt32(&f.inUse, 1)
	defer atomic.AddInt32(&f.inUse, -1)
	for {
		cur := atomic.LoadInt32(&f.maxUse)
		if use <= cur || atomic.CompareAndSwapInt32(&f.maxUse, cur, use) {
			break
		}
	}
	atomic.AddInt32(&f.calls, 1)

	f.mu.Lock()
	err := f.failFor[source]
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return "/tmp/out/" + sourceHash(source) + ".png", nil
}

func diagramDoc(sources ...string) *doctree.Document {
	chapter := &doctree.Section{Region: doctree.RegionBody, Level: 1, Title: "绪论"}
	for i, src := range sources {
		chapter.Content = append(chapter.Content, &doctree.CaptionedItem{
			Kind:       doctree.ItemFigure,
			Chapter:    1,
			Seq:        i + 1,
			DiagramSrc: src,
			SourcePos:  i,
		})
	}
	return &doctree.Document{Chapters: []*doctree.Section{chapter}}
}

func TestRenderAll(t *testing.T) {
	t.Parallel()

	doc := diagramDoc("graph TD\nA-->B", "graph LR\nC-->D")
	fake := &fakeRasterizer{}
	rep := &doctree.Report{}

	RenderAll(context.Background(), doc, fake, 2, rep)

	if got := atomic.LoadInt32(&fake.calls); got != 2 {
		t.Errorf("rasterizer called %d times, want 2", got)
	}
	if len(rep.Issues) != 0 {
		t.Errorf("unexpected issues: %v", rep.Issues)
	}
	for _, item := range doc.Items(doctree.ItemFigure) {
		if item.ImagePath == "" {
			t.Errorf("%s has no image path after rendering", item.NumberLabel())
		}
	}
}

func TestRenderAllDedupesIdenticalSources(t *testing.T) {
	t.Parallel()

	shared := "graph TD\nA-->B"
	doc := diagramDoc(shared, "graph LR\nC-->D", shared, shared)
	fake := &fakeRasterizer{}
	rep := &doctree.Report{}

	RenderAll(context.Background(), doc, fake, 4, rep)

	if got := atomic.LoadInt32(&fake.calls); got != 2 {
		t.Errorf("rasterizer called %d times, want 2 for 2 distinct sources", got)
	}
	items := doc.Items(doctree.ItemFigure)
	for _, item := range items {
		if item.ImagePath == "" {
			t.Errorf("%s has no image path after rendering", item.NumberLabel())
		}
	}
	if items[0].ImagePath != items[2].ImagePath || items[0].ImagePath != items[3].ImagePath {
		t.Error("identical sources should share one rendered image")
	}
}

func TestRenderAllDedupedFailureFlagsEveryItem(t *testing.T) {
	t.Parallel()

	shared := "graph TD\nA-->B"
	doc := diagramDoc(shared, shared)
	fake := &fakeRasterizer{failFor: map[string]error{shared: errors.New("mmdc exploded")}}
	rep := &doctree.Report{}

	RenderAll(context.Background(), doc, fake, 2, rep)

	if len(rep.Issues) != 2 {
		t.Fatalf("got %d issues, want one per affected figure", len(rep.Issues))
	}
	positions := map[int]bool{rep.Issues[0].Pos: true, rep.Issues[1].Pos: true}
	if !positions[0] || !positions[1] {
		t.Errorf("issue positions = %v, want both figure blocks", rep.Issues)
	}
}

func TestRenderAllSkipsNonDiagramFigures(t *testing.T) {
	t.Parallel()

	doc := diagramDoc("graph TD")
	chapter := doc.Chapters[0]
	chapter.Content = append(chapter.Content,
		&doctree.CaptionedItem{Kind: doctree.ItemFigure, Chapter: 1, Seq: 2, ImagePath: "static.png"},
	)

	fake := &fakeRasterizer{}
	RenderAll(context.Background(), doc, fake, 1, &doctree.Report{})

	if got := atomic.LoadInt32(&fake.calls); got != 1 {
		t.Errorf("rasterizer called %d times, want 1 (static image skipped)", got)
	}
}

func TestRenderAllFailureKeepsCaption(t *testing.T) {
	t.Parallel()

	doc := diagramDoc("good graph", "bad graph")
	fake := &fakeRasterizer{failFor: map[string]error{
		"bad graph": fmt.Errorf("%w: syntax error", ErrRasterize),
	}}
	rep := &doctree.Report{}

	RenderAll(context.Background(), doc, fake, 2, rep)

	items := doc.Items(doctree.ItemFigure)
	if items[0].ImagePath == "" {
		t.Error("successful diagram should have an image path")
	}
	if items[1].ImagePath != "" {
		t.Errorf("failed diagram ImagePath = %q, want empty", items[1].ImagePath)
	}

	if len(rep.Issues) != 1 {
		t.Fatalf("got %d issues, want 1: %v", len(rep.Issues), rep.Issues)
	}
	is := rep.Issues[0]
	if is.Kind != doctree.IssueDiagramRender {
		t.Errorf("issue kind = %v, want diagram-render", is.Kind)
	}
	if is.Pos != 1 {
		t.Errorf("issue pos = %d, want the failing block's position", is.Pos)
	}
	if !strings.Contains(is.Message, "syntax error") {
		t.Errorf("message = %q, want rasterizer error included", is.Message)
	}
}

func TestRenderAllBoundsParallelism(t *testing.T) {
	t.Parallel()

	sources := make([]string, 16)
	for i := range sources {
		sources[i] = fmt.Sprintf("graph %d", i)
	}
	doc := diagramDoc(sources...)

	fake := &fakeRasterizer{}
	RenderAll(context.Background(), doc, fake, 3, &doctree.Report{})

	if got := atomic.LoadInt32(&fake.maxUse); got > 3 {
		t.Errorf("observed %d concurrent renders, want at most 3", got)
	}
	if got := atomic.LoadInt32(&fake.calls); got != 16 {
		t.Errorf("rasterizer called %d times, want 16", got)
	}
}

func TestRenderAllNoDiagrams(t *testing.T) {
	t.Parallel()

	doc := &doctree.Document{Chapters: []*doctree.Section{
		{Region: doctree.RegionBody, Level: 1, Title: "绪论"},
	}}
	fake := &fakeRasterizer{}
	RenderAll(context.Background(), doc, fake, 0, &doctree.Report{})

	if got := atomic.LoadInt32(&fake.calls); got != 0 {
		t.Errorf("rasterizer called %d times, want 0", got)
	}
}

func TestMmdcRasterizerNotFound(t *testing.T) {
	t.Parallel()

	r := &MmdcRasterizer{Bin: "definitely-not-a-real-binary-name", OutDir: t.TempDir()}
	_, err := r.Rasterize(context.Background(), "graph TD\nA-->B")
	if !errors.Is(err, ErrMmdcNotFound) {
		t.Errorf("error = %v, want ErrMmdcNotFound", err)
	}
}

func TestSourceHashStable(t *testing.T) {
	t.Parallel()

	a := sourceHash("graph TD")
	b := sourceHash("graph TD")
	c := sourceHash("graph LR")
	if a != b {
		t.Error("same source must hash identically")
	}
	if a == c {
		t.Error("different sources must hash differently")
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16 hex chars", len(a))
	}
}
