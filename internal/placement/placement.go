// Package placement implements the interactive overlay used to position
// and resize a pasted image before it is committed into the notes.
//
// The overlay is a state machine over notes-surface screen coordinates:
// Inactive until an image payload is pasted, then Active while the user
// drags the image body (move) or a corner handle (resize). A pointer-down
// outside the rectangle commits; an explicit cancel discards. All
// geometry stays clamped inside the notes surface.
package placement

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Geometry defaults, matching the desktop overlay widget this replaces.
// The size limits can be overridden per overlay with SetSizeLimits.
const (
	// MinSize is the smallest overlay edge in pixels; resizing below it
	// is clamped so the image can never become invisible.
	MinSize = 50.0

	// HandleSize is the square hit zone at each corner, in pixels.
	HandleSize = 12.0

	// MaxInitial bounds the overlay's initial fit: the image is scaled
	// down (never up past its native size) to fit MaxInitial on each
	// axis, preserving aspect ratio.
	MaxInitial = 400.0
)

// Corner identifies a resize handle.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	default:
		return "bottom-right"
	}
}

// Mode is the active drag kind.
type Mode int

const (
	Moving Mode = iota
	Resizing
)

// Point is a position in notes-surface pixels.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in notes-surface pixels.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p falls inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

func (r Rect) corner(c Corner) Point {
	switch c {
	case TopLeft:
		return Point{X: r.X, Y: r.Y}
	case TopRight:
		return Point{X: r.X + r.W, Y: r.Y}
	case BottomLeft:
		return Point{X: r.X, Y: r.Y + r.H}
	default:
		return Point{X: r.X + r.W, Y: r.Y + r.H}
	}
}

func opposite(c Corner) Corner {
	switch c {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomLeft:
		return TopRight
	default:
		return TopLeft
	}
}

// Overlay is the placement state machine. It exists only while an image
// payload is being interactively placed and is mutated only on the
// interaction thread.
type Overlay struct {
	active   bool
	img      *image.RGBA
	rect     Rect
	bounds   Rect
	dragging bool
	mode     Mode
	corner   Corner
	grab     Point // pointer offset from rect origin while moving

	minSize    float64
	maxInitial float64
}

// SetSizeLimits overrides the minimum overlay edge and the maximum
// initial fit. Zero or negative values restore the MinSize and
// MaxInitial defaults. The limits persist across commits and cancels.
func (o *Overlay) SetSizeLimits(min, maxInitial float64) {
	o.minSize = min
	o.maxInitial = maxInitial
}

func (o *Overlay) minEdge() float64 {
	if o.minSize > 0 {
		return o.minSize
	}
	return MinSize
}

func (o *Overlay) maxInitialEdge() float64 {
	if o.maxInitial > 0 {
		return o.maxInitial
	}
	return MaxInitial
}

// Active reports whether a placement is in progress.
func (o *Overlay) Active() bool { return o.active }

// Mode returns the current drag kind, meaningful only while a drag is in
// progress.
func (o *Overlay) Mode() Mode { return o.mode }

// Rect returns the overlay's current rectangle.
func (o *Overlay) Rect() Rect { return o.rect }

// Image returns the payload being placed, nil when inactive.
func (o *Overlay) Image() *image.RGBA { return o.img }

// Activate starts a placement for img within the notes surface bounds.
// Returns false if a placement is already active: overlapping overlays
// would be ambiguous, so a second paste is rejected until the current one
// commits or cancels.
func (o *Overlay) Activate(img *image.RGBA, bounds Rect) bool {
	if o.active || img == nil {
		return false
	}

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	if w <= 0 || h <= 0 {
		return false
	}

	// Fit within the initial size limit preserving aspect; never scale up.
	if fit := o.maxInitialEdge(); w > fit || h > fit {
		s := math.Min(fit/w, fit/h)
		w *= s
		h *= s
	}
	w = math.Max(w, o.minEdge())
	h = math.Max(h, o.minEdge())
	w = math.Min(w, bounds.W)
	h = math.Min(h, bounds.H)

	o.active = true
	o.img = img
	o.bounds = bounds
	o.mode = Moving
	o.dragging = false
	o.rect = o.clampRect(Rect{
		X: bounds.X + (bounds.W-w)/2,
		Y: bounds.Y + (bounds.H-h)/2,
		W: w,
		H: h,
	})
	return true
}

// PointerDown begins a move or resize drag, or requests a commit when the
// press lands outside the rectangle (click-away). Returns true when the
// caller should commit.
func (o *Overlay) PointerDown(p Point) (commit bool) {
	if !o.active {
		return false
	}

	if c, ok := o.hitHandle(p); ok {
		o.dragging = true
		o.mode = Resizing
		o.corner = c
		return false
	}
	if o.rect.Contains(p) {
		o.dragging = true
		o.mode = Moving
		o.grab = Point{X: p.X - o.rect.X, Y: p.Y - o.rect.Y}
		return false
	}
	return true
}

// PointerMove updates an in-progress drag and returns true if the overlay
// geometry changed.
func (o *Overlay) PointerMove(p Point) bool {
	if !o.active || !o.dragging {
		return false
	}

	before := o.rect
	switch o.mode {
	case Moving:
		o.rect.X = p.X - o.grab.X
		o.rect.Y = p.Y - o.grab.Y
		o.rect = o.clampRect(o.rect)
	case Resizing:
		o.resizeTo(p)
	}
	return o.rect != before
}

// PointerUp ends the current drag. Placement stays active until a
// click-away commit or an explicit cancel.
func (o *Overlay) PointerUp() {
	o.dragging = false
	o.mode = Moving
}

// Commit finalizes the placement: it returns the payload image scaled to
// the overlay's final rectangle and deactivates. The caller inserts the
// result into the notes surface and clears the clipboard payload.
func (o *Overlay) Commit() (*image.RGBA, int, int, bool) {
	if !o.active {
		return nil, 0, 0, false
	}
	w := int(math.Round(o.rect.W))
	h := int(math.Round(o.rect.H))
	img := scaleImage(o.img, w, h)
	o.deactivate()
	return img, w, h, true
}

// Cancel discards the overlay without inserting anything. The clipboard
// payload is left to the owner, so placement can be retried without
// recapturing.
func (o *Overlay) Cancel() {
	o.deactivate()
}

// HandleRects returns the four corner hit zones, for drawing and tests.
func (o *Overlay) HandleRects() [4]Rect {
	var out [4]Rect
	for i, c := range [4]Corner{TopLeft, TopRight, BottomLeft, BottomRight} {
		p := o.rect.corner(c)
		out[i] = Rect{X: p.X - HandleSize/2, Y: p.Y - HandleSize/2, W: HandleSize, H: HandleSize}
	}
	return out
}

func (o *Overlay) hitHandle(p Point) (Corner, bool) {
	for i, r := range o.HandleRects() {
		if r.Contains(p) {
			return [4]Corner{TopLeft, TopRight, BottomLeft, BottomRight}[i], true
		}
	}
	return 0, false
}

// resizeTo adjusts the two edges adjacent to the grabbed corner, keeping
// the opposite corner fixed. The pointer is clamped to the surface first,
// then the rectangle to the minimum edge.
func (o *Overlay) resizeTo(p Point) {
	p.X = math.Max(o.bounds.X, math.Min(p.X, o.bounds.X+o.bounds.W))
	p.Y = math.Max(o.bounds.Y, math.Min(p.Y, o.bounds.Y+o.bounds.H))

	fixed := o.rect.corner(opposite(o.corner))
	min := o.minEdge()

	var x0, x1 float64
	switch o.corner {
	case TopLeft, BottomLeft:
		x0, x1 = math.Min(p.X, fixed.X-min), fixed.X
	default:
		x0, x1 = fixed.X, math.Max(p.X, fixed.X+min)
	}

	var y0, y1 float64
	switch o.corner {
	case TopLeft, TopRight:
		y0, y1 = math.Min(p.Y, fixed.Y-min), fixed.Y
	default:
		y0, y1 = fixed.Y, math.Max(p.Y, fixed.Y+min)
	}

	o.rect = o.clampRect(Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0})
}

// clampRect keeps r inside the surface bounds without shrinking it below
// the minimum edge. Oversized rectangles are reduced to the surface
// extent.
func (o *Overlay) clampRect(r Rect) Rect {
	r.W = math.Min(r.W, o.bounds.W)
	r.H = math.Min(r.H, o.bounds.H)
	r.X = math.Max(o.bounds.X, math.Min(r.X, o.bounds.X+o.bounds.W-r.W))
	r.Y = math.Max(o.bounds.Y, math.Min(r.Y, o.bounds.Y+o.bounds.H-r.H))
	return r
}

func (o *Overlay) deactivate() {
	*o = Overlay{minSize: o.minSize, maxInitial: o.maxInitial}
}

// scaleImage resamples src to w x h, free aspect.
func scaleImage(src *image.RGBA, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
