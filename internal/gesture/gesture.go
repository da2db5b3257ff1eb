// Package gesture glues pointer and keyboard input to the selection,
// capture, and placement state machines.
//
// The coordinator enforces the one-gesture-at-a-time rule: page-view
// gestures and capture triggers are ignored while an image placement is
// active, and notes-view pointer events only ever drive the placement
// overlay. It also owns the single clipboard payload slot between a
// capture and the next paste.
package gesture

import (
	"context"
	"image"

	"pdfnotes/internal/capture"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/placement"
	"pdfnotes/internal/render"
	"pdfnotes/internal/selection"
	"pdfnotes/internal/viewport"
)

// Surface is the rich text editor as seen by the coordinator.
type Surface interface {
	InsertTextAtCursor(text string)
	InsertImageAtCursor(img *image.RGBA, w, h int)
}

// Coordinator mediates between the page view, the notes view, and the
// capture/selection/placement state machines. All methods run on the
// interaction thread.
type Coordinator struct {
	renderer render.Renderer
	engine   *capture.Engine
	surface  Surface

	view        viewport.ViewState
	tracker     selection.Tracker
	overlay     placement.Overlay
	payload     capture.Payload
	notesBounds placement.Rect
	zoomStep    float64
}

// Options carries the tunable interaction limits from the application
// configuration. Zero values keep the package defaults.
type Options struct {
	MinZoom          float64
	MaxZoom          float64
	ZoomStep         float64
	MinSelectionArea float64
	OverlayMinSize   float64
	OverlayMaxFit    float64
}

// NewCoordinator builds a coordinator for an open document. The view
// starts at page 0, zoom 1.0.
func NewCoordinator(r render.Renderer, e *capture.Engine, s Surface) (*Coordinator, error) {
	size, err := r.PageSize(0)
	if err != nil {
		return nil, err
	}
	return &Coordinator{
		renderer: r,
		engine:   e,
		surface:  s,
		view:     viewport.NewViewState(size),
	}, nil
}

// ApplyOptions pushes configured limits into the state machines. Safe to
// call again on a config reload; the current zoom re-clamps into the new
// range.
func (c *Coordinator) ApplyOptions(o Options) {
	c.view.SetZoomLimits(o.MinZoom, o.MaxZoom)
	c.zoomStep = o.ZoomStep
	c.tracker.SetMinArea(o.MinSelectionArea)
	c.overlay.SetSizeLimits(o.OverlayMinSize, o.OverlayMaxFit)
}

func (c *Coordinator) step() float64 {
	if c.zoomStep > 0 {
		return c.zoomStep
	}
	return viewport.ZoomStep
}

// View returns the current view state.
func (c *Coordinator) View() viewport.ViewState { return c.view }

// SetNotesBounds records the notes surface's visible area, used to place
// and clamp the image overlay.
func (c *Coordinator) SetNotesBounds(r placement.Rect) { c.notesBounds = r }

// Overlay exposes the placement overlay for drawing.
func (c *Coordinator) Overlay() *placement.Overlay { return &c.overlay }

// Payload returns the pending clipboard payload, nil when empty.
func (c *Coordinator) Payload() capture.Payload { return c.payload }

// SelectionHighlight returns the selection rectangle to draw, if any.
func (c *Coordinator) SelectionHighlight() (viewport.Rect, bool) {
	return c.tracker.Highlight()
}

// Page view pointer events. Screen points are relative to the page
// view's top-left corner.

func (c *Coordinator) PagePointerDown(p viewport.ScreenPoint) {
	if c.overlay.Active() {
		return
	}
	c.tracker.PointerDown(viewport.ToDocument(p, c.view))
}

// PagePointerMove returns true when the selection highlight changed and
// the page view needs a redraw.
func (c *Coordinator) PagePointerMove(p viewport.ScreenPoint) bool {
	if c.overlay.Active() {
		return false
	}
	return c.tracker.PointerMove(viewport.ToDocument(p, c.view))
}

func (c *Coordinator) PagePointerUp(p viewport.ScreenPoint) {
	if c.overlay.Active() {
		return
	}
	c.tracker.PointerUp(viewport.ToDocument(p, c.view))
}

// CopyText captures the selected region's text. No committed selection or
// an active placement makes it a no-op; false also means the engine was
// busy.
func (c *Coordinator) CopyText(ctx context.Context) bool {
	if c.overlay.Active() {
		return false
	}
	rect, ok := c.tracker.Committed()
	if !ok {
		return false
	}
	return c.engine.CopyText(ctx, c.view, rect)
}

// CaptureScreenshot captures the selected region as an image at the
// current zoom. Same no-op rules as CopyText.
func (c *Coordinator) CaptureScreenshot(ctx context.Context) bool {
	if c.overlay.Active() {
		return false
	}
	rect, ok := c.tracker.Committed()
	if !ok {
		return false
	}
	return c.engine.Screenshot(ctx, c.view, rect)
}

// HandleCaptureResult accepts a completed capture from the engine. A
// result whose generation no longer matches the view (page or zoom
// changed mid-capture) is discarded; otherwise it overwrites the payload
// slot.
func (c *Coordinator) HandleCaptureResult(res capture.Result) {
	if res.Generation != c.view.Generation {
		logging.Debug("discarding stale capture result",
			"result_generation", res.Generation, "view_generation", c.view.Generation)
		return
	}
	if res.Payload == nil {
		return
	}
	c.payload = res.Payload
}

// Paste inserts the pending payload into the notes. Text goes straight to
// the surface cursor; an image activates the placement overlay instead.
// Empty clipboard, or an image paste while a placement is already active,
// is a no-op.
func (c *Coordinator) Paste() {
	switch p := c.payload.(type) {
	case capture.TextPayload:
		if p.Content == "" {
			return
		}
		c.surface.InsertTextAtCursor(p.Content)
	case capture.ImagePayload:
		c.overlay.Activate(p.Image, c.notesBounds)
	}
}

// Notes view pointer events, in notes-surface coordinates. They only
// matter while a placement overlay is active.

func (c *Coordinator) NotesPointerDown(p placement.Point) {
	if !c.overlay.Active() {
		return
	}
	if !c.overlay.PointerDown(p) {
		return
	}
	// Click-away: finalize the placement.
	img, w, h, ok := c.overlay.Commit()
	if !ok {
		return
	}
	c.surface.InsertImageAtCursor(img, w, h)
	c.payload = nil
}

func (c *Coordinator) NotesPointerMove(p placement.Point) bool {
	return c.overlay.PointerMove(p)
}

func (c *Coordinator) NotesPointerUp() {
	c.overlay.PointerUp()
}

// CancelPlacement dismisses an active overlay without inserting. The
// payload stays, so the user can paste again without recapturing.
func (c *Coordinator) CancelPlacement() {
	c.overlay.Cancel()
}

// Navigation and zoom. A page change drops the whole selection; a zoom
// change only aborts an in-progress drag, since a committed rectangle is
// document-space and stays valid at the new zoom.

func (c *Coordinator) GoToPage(index int) {
	if index < 0 || index >= c.renderer.PageCount() || index == c.view.PageIndex {
		return
	}
	size, err := c.renderer.PageSize(index)
	if err != nil {
		logging.Warn("page size lookup failed", "page", index, "error", err)
		return
	}
	c.tracker.CancelOnPageChange()
	c.view.SetPage(index, size)
}

func (c *Coordinator) NextPage() { c.GoToPage(c.view.PageIndex + 1) }
func (c *Coordinator) PrevPage() { c.GoToPage(c.view.PageIndex - 1) }

func (c *Coordinator) SetZoom(zoom float64) {
	before := c.view.Generation
	c.view.SetZoom(zoom)
	if c.view.Generation != before {
		c.tracker.CancelDrag()
	}
}

func (c *Coordinator) ZoomIn()  { c.SetZoom(c.view.Zoom + c.step()) }
func (c *Coordinator) ZoomOut() { c.SetZoom(c.view.Zoom - c.step()) }

// ScrollBy pans the page view. Scrolling does not cancel a drag; the
// transform accounts for the offset.
func (c *Coordinator) ScrollBy(dx, dy float64) {
	c.view.ScrollBy(dx, dy)
}
