package capture_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/whirl-wm/whirl/internal/capture"
	"github.com/whirl-wm/whirl/internal/wm"
)

type fakeSource struct {
	calls atomic.Int64
	fail  map[wm.WindowID]bool
}

func (f *fakeSource) Capture(_ context.Context, id wm.WindowID) (image.Image, error) {
	f.calls.Add(1)
	if f.fail[id] {
		return nil, errors.New("window gone")
	}
	img := image.NewRGBA(image.Rect(0, 0, 1200, 800))
	img.Set(0, 0, color.RGBA{R: uint8(id), A: 255})
	return img, nil
}

func waitResult(t *testing.T, p *capture.Pipeline) capture.Result {
	t.Helper()
	select {
	case res := <-p.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for capture result")
		return capture.Result{}
	}
}

func TestRequestDeliversScaledResult(t *testing.T) {
	src := &fakeSource{}
	p := capture.NewPipeline(src)
	defer p.Close()

	if cached := p.Request(7, 42); cached != nil {
		t.Error("Expected no cached image on first request")
	}

	res := waitResult(t, p)
	if res.WindowID != 7 || res.Generation != 42 {
		t.Errorf("Result tagged %d/%d, want 7/42", res.WindowID, res.Generation)
	}
	if res.Err != nil {
		t.Fatalf("Unexpected capture error: %v", res.Err)
	}
	b := res.Image.Bounds()
	if b.Dx() > 480 || b.Dy() > 300 {
		t.Errorf("Capture not capped to thumbnail size: %dx%d", b.Dx(), b.Dy())
	}
}

func TestCacheHitReturnedSynchronously(t *testing.T) {
	src := &fakeSource{}
	p := capture.NewPipeline(src)
	defer p.Close()

	p.Request(3, 1)
	waitResult(t, p)

	cached := p.Request(3, 2)
	if cached == nil {
		t.Fatal("Expected cached thumbnail on second request")
	}
	// The second request still refreshes in the background.
	res := waitResult(t, p)
	if res.Generation != 2 {
		t.Errorf("Refresh tagged with generation %d, want 2", res.Generation)
	}
}

func TestFailedCaptureKeepsPreviousCache(t *testing.T) {
	src := &fakeSource{fail: map[wm.WindowID]bool{}}
	p := capture.NewPipeline(src)
	defer p.Close()

	p.Request(5, 1)
	waitResult(t, p)

	src.fail[5] = true
	p.Request(5, 2)
	res := waitResult(t, p)
	if !errors.Is(res.Err, capture.ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", res.Err)
	}
	if _, ok := p.Cached(5); !ok {
		t.Error("Expected previous successful capture retained in cache")
	}
}

func TestForgetDropsCache(t *testing.T) {
	src := &fakeSource{}
	p := capture.NewPipeline(src)
	defer p.Close()

	p.Request(9, 1)
	waitResult(t, p)
	p.Forget(9)
	if _, ok := p.Cached(9); ok {
		t.Error("Expected cache entry dropped after Forget")
	}
}

func TestScaleToFitSmallImagePassesThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 60))
	out := capture.ScaleToFit(src, 480, 300)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 60 {
		t.Errorf("Small image resized to %v", out.Bounds())
	}
}

func TestScaleToFitPreservesAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1600, 400))
	out := capture.ScaleToFit(src, 480, 300)
	if out.Bounds().Dx() != 480 {
		t.Errorf("Expected width 480, got %d", out.Bounds().Dx())
	}
	if out.Bounds().Dy() != 120 {
		t.Errorf("Expected height 120, got %d", out.Bounds().Dy())
	}
}
