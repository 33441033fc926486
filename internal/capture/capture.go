// Package capture produces scaled live thumbnails of windows without
// blocking interaction. Requests carry a caller-supplied generation token;
// consumers apply a completion only when the token still matches, so stale
// results are dropped rather than applied out of order.
package capture

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/whirl-wm/whirl/internal/config"
	"github.com/whirl-wm/whirl/internal/wm"
)

// ErrUnavailable reports that a window's contents could not be captured
// (closed, occluded, or permission denied). Never fatal: the stage keeps the
// previous image or a placeholder.
var ErrUnavailable = errors.New("capture: window contents unavailable")

// Source captures raw window contents. Implementations are blocking OS calls
// and run only on pipeline workers.
type Source interface {
	Capture(ctx context.Context, id wm.WindowID) (image.Image, error)
}

// Result is one completed capture. Image is nil when Err is set.
type Result struct {
	WindowID   wm.WindowID
	Generation uint64
	Image      *image.RGBA
	Err        error
}

type job struct {
	id  wm.WindowID
	gen uint64
}

// Pipeline runs a bounded worker pool over a Source and maintains a cache of
// the most recent successful capture per window. There is no ordering
// guarantee between in-flight captures; correctness relies entirely on the
// generation check at the consumer.
type Pipeline struct {
	source  Source
	jobs    chan job
	results chan Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	cache   map[wm.WindowID]*image.RGBA
	pending map[wm.WindowID]bool
}

// NewPipeline starts a pipeline with the configured number of workers.
func NewPipeline(source Source) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		source:  source,
		jobs:    make(chan job, 64),
		results: make(chan Result, 64),
		ctx:     ctx,
		cancel:  cancel,
		cache:   make(map[wm.WindowID]*image.RGBA),
		pending: make(map[wm.WindowID]bool),
	}
	for i := 0; i < config.CaptureWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Results delivers completed captures. The owning goroutine consumes this
// channel and applies each result after its generation check.
func (p *Pipeline) Results() <-chan Result { return p.results }

// Request returns the cached thumbnail for immediate synchronous use (nil if
// none) and schedules a background refresh tagged with gen. A window with a
// fetch already in flight is not enqueued twice; the newest generation wins
// at the consumer regardless.
func (p *Pipeline) Request(id wm.WindowID, gen uint64) *image.RGBA {
	p.mu.Lock()
	cached := p.cache[id]
	already := p.pending[id]
	if !already {
		p.pending[id] = true
	}
	p.mu.Unlock()

	if !already {
		select {
		case p.jobs <- job{id: id, gen: gen}:
		default:
			// Queue full under a burst of reselection; drop the refresh,
			// the cached image remains on screen.
			p.mu.Lock()
			delete(p.pending, id)
			p.mu.Unlock()
		}
	}
	return cached
}

// Cached returns the most recent successful capture, if any.
func (p *Pipeline) Cached(id wm.WindowID) (*image.RGBA, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.cache[id]
	return img, ok
}

// Forget drops the cached thumbnail for a closed window.
func (p *Pipeline) Forget(id wm.WindowID) {
	p.mu.Lock()
	delete(p.cache, id)
	p.mu.Unlock()
}

// Close stops the workers and releases the result channel.
func (p *Pipeline) Close() {
	p.cancel()
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

func (p *Pipeline) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		if p.ctx.Err() != nil {
			return
		}
		res := p.captureOne(j)

		p.mu.Lock()
		delete(p.pending, j.id)
		if res.Err == nil {
			p.cache[j.id] = res.Image
		}
		p.mu.Unlock()

		select {
		case p.results <- res:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pipeline) captureOne(j job) Result {
	img, err := p.source.Capture(p.ctx, j.id)
	if err != nil {
		log.Debug("capture failed", "window", j.id, "err", err)
		return Result{WindowID: j.id, Generation: j.gen, Err: ErrUnavailable}
	}
	// Captures are capped to thumbnail size to bound bandwidth.
	scaled := ScaleToFit(img, config.CaptureMaxWidth, config.CaptureMaxHeight)
	return Result{WindowID: j.id, Generation: j.gen, Image: scaled}
}
