package core

import (
	"context"
	"fmt"

	"github.com/go-drift/sdui/pkg/errors"
)

// LoadBitmap resolves ref with the configured loader and applies the result
// to target.
//
// In synchronous mode the bitmap is applied before LoadBitmap returns. In
// asynchronous mode the load runs in the background and the result is
// dropped if target is no longer attached. Failures leave the target without
// an image and are reported with kind [errors.KindBitmap].
func (b *LayoutBuilder) LoadBitmap(ref string, target BitmapTarget) {
	loader := b.BitmapLoader()
	if loader == nil || ref == "" || target == nil {
		debugf("no bitmap loader for %q", ref)
		return
	}

	if b.IsSynchronousRendering() {
		b.resolveBitmap(loader, ref, target, false)
		return
	}

	b.pendingMu.Lock()
	b.pending++
	b.pendingMu.Unlock()
	go func() {
		defer b.bitmapDone()
		b.resolveBitmap(loader, ref, target, true)
	}()
}

func (b *LayoutBuilder) resolveBitmap(loader BitmapLoader, ref string, target BitmapTarget, async bool) {
	defer errors.Recover("core.LoadBitmap")

	b.mu.RLock()
	timeout := b.bitmapTimeout
	b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	img, err := loader.Load(ctx, ref)
	if err != nil {
		errors.ReportErr("core.LoadBitmap", errors.KindBitmap, "", fmt.Errorf("%s: %w", ref, err))
		return
	}
	if img == nil {
		return
	}
	if async && !target.Attached() {
		debugf("dropping bitmap %q for detached element", ref)
		return
	}
	target.SetBitmap(img)
}

func (b *LayoutBuilder) bitmapDone() {
	b.pendingMu.Lock()
	b.pending--
	if b.pending == 0 {
		b.idle.Broadcast()
	}
	b.pendingMu.Unlock()
}

// WaitBitmaps blocks until no asynchronous bitmap load is in flight. It may
// be called while other goroutines are still building with b; loads they
// start before the wait returns are waited for too.
func (b *LayoutBuilder) WaitBitmaps() {
	b.pendingMu.Lock()
	for b.pending > 0 {
		b.idle.Wait()
	}
	b.pendingMu.Unlock()
}
