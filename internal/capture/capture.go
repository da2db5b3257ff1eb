// Package capture turns a committed selection into a clipboard payload:
// extracted text or a rasterized region image.
//
// Renderer calls may be slow for large regions, so the engine runs them
// off the interaction thread and delivers results on a channel. At most
// one request is in flight; triggers while one is pending are ignored.
// Every result carries the view generation captured at trigger time so
// the coordinator can discard results that raced a page or zoom change.
package capture

import (
	"context"
	"image"
	"sync/atomic"

	"github.com/atotto/clipboard"

	"pdfnotes/internal/logging"
	"pdfnotes/internal/render"
	"pdfnotes/internal/viewport"
)

// Payload is the single pending capture awaiting a paste. It is a sealed
// union: TextPayload or ImagePayload.
type Payload interface {
	payload()
}

// TextPayload holds text extracted from the page.
type TextPayload struct {
	Content string
}

// ImagePayload holds a rasterized region of the page.
type ImagePayload struct {
	Image *image.RGBA
}

func (TextPayload) payload()  {}
func (ImagePayload) payload() {}

// Result is a completed capture. Payload is nil when the renderer failed
// to produce an image; the coordinator treats that as a no-op.
type Result struct {
	Generation uint64
	Payload    Payload
}

// Engine issues renderer calls for the gesture coordinator. Triggers are
// called on the interaction thread; the renderer call itself runs on a
// worker goroutine.
type Engine struct {
	renderer render.Renderer
	results  chan Result
	inflight atomic.Bool

	// Mirror receives captured text for the system clipboard. Replaced
	// in tests; failures are logged and ignored.
	Mirror func(string) error
}

// NewEngine returns an engine delivering results on a buffered channel.
func NewEngine(r render.Renderer) *Engine {
	return &Engine{
		renderer: r,
		results:  make(chan Result, 1),
		Mirror:   clipboard.WriteAll,
	}
}

// Results returns the channel completed captures are delivered on. The
// owner must drain it and route each Result through the coordinator.
func (e *Engine) Results() <-chan Result { return e.results }

// CopyText extracts the text under rect. Returns false if another capture
// is already in flight. Renderer failures degrade to an empty string.
func (e *Engine) CopyText(ctx context.Context, view viewport.ViewState, rect viewport.Rect) bool {
	if !e.inflight.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer e.inflight.Store(false)

		text, err := e.renderer.ExtractText(ctx, view.PageIndex, rect)
		if err != nil {
			logging.Warn("text extraction failed", "page", view.PageIndex, "error", err)
			text = ""
		}
		if text != "" && e.Mirror != nil {
			if err := e.Mirror(text); err != nil {
				logging.Debug("system clipboard mirror failed", "error", err)
			}
		}
		e.results <- Result{Generation: view.Generation, Payload: TextPayload{Content: text}}
	}()
	return true
}

// Screenshot rasterizes rect at the view's current zoom. Returns false if
// another capture is already in flight. Renderer failures deliver a nil
// payload.
func (e *Engine) Screenshot(ctx context.Context, view viewport.ViewState, rect viewport.Rect) bool {
	if !e.inflight.CompareAndSwap(false, true) {
		return false
	}
	go func() {
		defer e.inflight.Store(false)

		rect = viewport.ClampRect(rect, view)
		img, err := e.renderer.RasterizeRegion(ctx, view.PageIndex, rect, view.Zoom)
		if err != nil {
			logging.Warn("region rasterization failed", "page", view.PageIndex, "error", err)
			e.results <- Result{Generation: view.Generation}
			return
		}
		e.results <- Result{Generation: view.Generation, Payload: ImagePayload{Image: img}}
	}()
	return true
}

// Pending reports whether a capture is currently in flight.
func (e *Engine) Pending() bool { return e.inflight.Load() }
