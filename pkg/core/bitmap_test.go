package core

import (
	"context"
	stderrors "errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/sdui/pkg/errors"
)

// stubLoader returns a 1x1 image for every ref, or err when set. When gate is
// non-nil loads block until it is closed.
type stubLoader struct {
	err  error
	gate chan struct{}

	mu   sync.Mutex
	refs []string
}

func (l *stubLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	l.mu.Lock()
	l.refs = append(l.refs, ref)
	l.mu.Unlock()
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if l.err != nil {
		return nil, l.err
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}

func TestLoadBitmapSynchronous(t *testing.T) {
	loader := &stubLoader{}
	b := NewLayoutBuilder(nil, WithBitmapLoader(loader), WithSynchronousRendering(true))
	target := &testElement{}

	b.LoadBitmap("logo.png", target)
	if target.Bitmap() == nil {
		t.Fatal("synchronous load should apply the bitmap before returning")
	}
}

func TestLoadBitmapAsynchronous(t *testing.T) {
	loader := &stubLoader{gate: make(chan struct{})}
	b := NewLayoutBuilder(nil, WithBitmapLoader(loader))
	target := &testElement{}

	b.LoadBitmap("logo.png", target)
	if target.Bitmap() != nil {
		t.Fatal("asynchronous load applied the bitmap before the loader finished")
	}
	close(loader.gate)
	b.WaitBitmaps()
	if target.Bitmap() == nil {
		t.Error("bitmap not applied after WaitBitmaps")
	}
}

func TestLoadBitmapDropsResultForDetachedTarget(t *testing.T) {
	loader := &stubLoader{gate: make(chan struct{})}
	b := NewLayoutBuilder(nil, WithBitmapLoader(loader))
	target := &testElement{}

	b.LoadBitmap("logo.png", target)
	target.detached.Store(true)
	close(loader.gate)
	b.WaitBitmaps()

	if target.Bitmap() != nil {
		t.Error("bitmap applied to a detached element")
	}
}

func TestLoadBitmapFailureReported(t *testing.T) {
	collector, restore := collectErrors()
	defer restore()

	loader := &stubLoader{err: stderrors.New("not found")}
	b := NewLayoutBuilder(nil, WithBitmapLoader(loader), WithSynchronousRendering(true))
	target := &testElement{}

	b.LoadBitmap("missing.png", target)
	if target.Bitmap() != nil {
		t.Error("failed load should leave the target without an image")
	}
	if got := collector.Count(errors.KindBitmap); got != 1 {
		t.Fatalf("bitmap errors = %d, want 1", got)
	}
	if err := collector.Errors()[0]; !stderrors.Is(err, loader.err) {
		t.Errorf("reported error %v does not wrap the loader error", err)
	}
}

func TestLoadBitmapTimeout(t *testing.T) {
	collector, restore := collectErrors()
	defer restore()

	loader := &stubLoader{gate: make(chan struct{})}
	defer close(loader.gate)
	b := NewLayoutBuilder(nil,
		WithBitmapLoader(loader),
		WithSynchronousRendering(true),
		WithBitmapTimeout(10*time.Millisecond),
	)
	b.LoadBitmap("slow.png", &testElement{})
	if !stderrors.Is(collector.Errors()[0], context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", collector.Errors()[0])
	}
}

func TestLoadBitmapNoop(t *testing.T) {
	loader := &stubLoader{}
	target := &testElement{}

	NewLayoutBuilder(nil).LoadBitmap("logo.png", target)
	NewLayoutBuilder(nil, WithBitmapLoader(loader)).LoadBitmap("", target)

	b := NewLayoutBuilder(nil, WithBitmapLoader(loader))
	b.LoadBitmap("logo.png", nil)
	b.WaitBitmaps()

	if target.Bitmap() != nil || len(loader.refs) != 0 {
		t.Errorf("no-op loads reached the loader: %v", loader.refs)
	}
}

func TestWaitBitmapsOverlappingLoads(t *testing.T) {
	loader := &stubLoader{}
	b := NewLayoutBuilder(nil, WithBitmapLoader(loader))

	const workers, rounds = 8, 50
	targets := make([]*testElement, workers*rounds)
	for i := range targets {
		targets[i] = &testElement{}
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				target := targets[w*rounds+r]
				b.LoadBitmap("logo.png", target)
				b.WaitBitmaps()
				if target.Bitmap() == nil {
					t.Errorf("worker %d round %d: bitmap not applied after WaitBitmaps", w, r)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	b.WaitBitmaps()
}
