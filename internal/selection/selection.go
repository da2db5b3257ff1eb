// Package selection implements the drag-selection state machine for the
// page view.
//
// The tracker accumulates a document-space rectangle during a pointer
// drag. It is pure state: the page view feeds it pointer events already
// mapped to document space, and reads back the highlight rectangle to
// draw. A drag whose final rectangle is below MinArea is treated as an
// accidental click and discarded.
package selection

import "pdfnotes/internal/viewport"

// MinArea is the default minimum committed rectangle area in square
// document units. Anything smaller is rejected as a stray click.
const MinArea = 16.0

// Phase identifies the tracker's current state.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Committed
)

func (p Phase) String() string {
	switch p {
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	default:
		return "idle"
	}
}

// Tracker is the per-view selection state machine. Exactly one exists per
// open document view; it is mutated only on the interaction thread.
type Tracker struct {
	phase   Phase
	anchor  viewport.Point
	current viewport.Point
	rect    viewport.Rect
	minArea float64
}

// Phase returns the current state.
func (t *Tracker) Phase() Phase { return t.phase }

// SetMinArea overrides the commit threshold. Zero or negative restores
// the MinArea default.
func (t *Tracker) SetMinArea(area float64) { t.minArea = area }

func (t *Tracker) threshold() float64 {
	if t.minArea > 0 {
		return t.minArea
	}
	return MinArea
}

// PointerDown starts a new drag at the given document-space point. Any
// previously committed rectangle is discarded.
func (t *Tracker) PointerDown(p viewport.Point) {
	t.phase = Dragging
	t.anchor = p
	t.current = p
	t.rect = viewport.Rect{X: p.X, Y: p.Y}
}

// PointerMove updates the drag and returns true if the highlight needs a
// redraw. Moves outside a drag are ignored.
func (t *Tracker) PointerMove(p viewport.Point) bool {
	if t.phase != Dragging {
		return false
	}
	t.current = p
	t.rect = viewport.RectFromPoints(t.anchor, t.current)
	return true
}

// PointerUp ends the drag. The selection commits only if its area meets
// the minimum-area threshold; otherwise the tracker returns to Idle with
// nothing selected.
func (t *Tracker) PointerUp(p viewport.Point) {
	if t.phase != Dragging {
		return
	}
	t.current = p
	t.rect = viewport.RectFromPoints(t.anchor, t.current)
	if t.rect.Area() < t.threshold() {
		t.reset()
		return
	}
	t.phase = Committed
}

// CancelOnPageChange drops any selection, committed or not. A rectangle
// belongs to one page; after navigation it would point at different
// content.
func (t *Tracker) CancelOnPageChange() {
	t.reset()
}

// CancelDrag aborts an in-progress drag, called on zoom change when the
// anchor's screen position goes stale. A committed rectangle survives:
// it lives in document space and stays valid at any zoom.
func (t *Tracker) CancelDrag() {
	if t.phase != Dragging {
		return
	}
	t.reset()
}

// Clear discards any selection and returns to Idle.
func (t *Tracker) Clear() {
	t.reset()
}

// Committed returns the selected rectangle, valid only when the phase is
// Committed.
func (t *Tracker) Committed() (viewport.Rect, bool) {
	if t.phase != Committed {
		return viewport.Rect{}, false
	}
	return t.rect, true
}

// Highlight returns the rectangle to draw as the translucent selection
// overlay, valid while Dragging or Committed.
func (t *Tracker) Highlight() (viewport.Rect, bool) {
	if t.phase == Idle {
		return viewport.Rect{}, false
	}
	return t.rect, true
}

func (t *Tracker) reset() {
	*t = Tracker{minArea: t.minArea}
}
