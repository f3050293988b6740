package md2thesis

import (
	"sync"
	"testing"
)

func TestNewConverterPool(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(3)
	defer p.Close()

	if p.Size() != 3 {
		t.Errorf("Size() = %d, want 3", p.Size())
	}
}

func TestNewConverterPoolClampsSize(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(0)
	defer p.Close()

	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1 for a zero request", p.Size())
	}
}

func TestPoolAcquireRelease(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(2, WithRasterizer(&fakeRasterizer{}))
	defer p.Close()

	a := p.Acquire()
	b := p.Acquire()
	if a == nil || b == nil {
		t.Fatal("Acquire() returned nil")
	}
	if a == b {
		t.Error("two concurrent acquires returned the same converter")
	}

	p.Release(a)
	c := p.Acquire()
	if c != a {
		t.Error("Acquire() after Release() should reuse the released converter")
	}
	p.Release(b)
	p.Release(c)
}

func TestPoolConcurrentUse(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(2, WithRasterizer(&fakeRasterizer{}))
	defer p.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := p.Acquire()
			defer p.Release(c)
			if c == nil {
				t.Error("Acquire() returned nil")
			}
		}()
	}
	wg.Wait()
}

func TestPoolCloseIdempotent(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(1)
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	// Releasing after close must not panic on the closed channel.
	p.Release(NewConverter(WithRasterizer(&fakeRasterizer{})))
}

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	if got := ResolvePoolSize(5); got != 5 {
		t.Errorf("ResolvePoolSize(5) = %d, want explicit value", got)
	}

	got := ResolvePoolSize(0)
	if got < MinPoolSize || got > MaxPoolSize {
		t.Errorf("ResolvePoolSize(0) = %d, want within [%d, %d]", got, MinPoolSize, MaxPoolSize)
	}
}
