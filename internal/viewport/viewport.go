// Package viewport converts between screen pixels and document-space
// coordinates for the currently displayed page.
//
// Document space is the page's native unit space (PDF points), invariant
// under zoom and scroll. Screen space is the pixel space of the visible
// page view. Zoom is a uniform scale about the page's document-space
// top-left origin; scroll is applied in screen pixels.
package viewport

import "math"

// Default zoom limits and step, matching the page view controls. The
// limits can be overridden per view with SetZoomLimits.
const (
	MinZoom  = 0.25
	MaxZoom  = 3.00
	ZoomStep = 0.25
)

// Point is a position in document space.
type Point struct {
	X float64
	Y float64
}

// ScreenPoint is a position in screen pixels, relative to the page view's
// top-left corner.
type ScreenPoint struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in document space. W and H are always
// non-negative for rectangles produced by RectFromPoints.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// RectFromPoints returns the normalized rectangle spanned by two corner
// points, swapping edges as needed so W,H >= 0.
func RectFromPoints(a, b Point) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Area returns the rectangle's area in square document units.
func (r Rect) Area() float64 { return r.W * r.H }

// IsEmpty reports whether the rectangle has no extent in either dimension.
func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect clips r against other, returning the overlapping region.
// A disjoint pair yields an empty rectangle at the clamped position.
func (r Rect) Intersect(other Rect) Rect {
	x0 := math.Max(r.X, other.X)
	y0 := math.Max(r.Y, other.Y)
	x1 := math.Min(r.X+r.W, other.X+other.W)
	y1 := math.Min(r.Y+r.H, other.Y+other.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Size is a width/height pair in document units.
type Size struct {
	W float64
	H float64
}

// ViewState describes the page view's current configuration. It is owned
// by the page view and read by the selection tracker and capture engine.
//
// Generation increments on every page or zoom change and tags in-flight
// capture requests so stale results can be discarded.
type ViewState struct {
	PageIndex  int
	Zoom       float64
	Scroll     ScreenPoint
	PageSize   Size
	Generation uint64

	// ZoomMin and ZoomMax bound SetZoom. Zero values fall back to the
	// MinZoom and MaxZoom defaults.
	ZoomMin float64
	ZoomMax float64
}

// NewViewState returns the view state for a freshly opened document.
func NewViewState(pageSize Size) ViewState {
	return ViewState{Zoom: 1.0, PageSize: pageSize}
}

// SetPage moves the view to the given page and bumps the generation.
// Scroll resets; zoom is preserved.
func (v *ViewState) SetPage(index int, size Size) {
	v.PageIndex = index
	v.PageSize = size
	v.Scroll = ScreenPoint{}
	v.Generation++
}

// SetZoom clamps the zoom factor to the view's limits and bumps the
// generation if the effective value changed.
func (v *ViewState) SetZoom(zoom float64) {
	lo, hi := v.zoomLimits()
	zoom = math.Max(lo, math.Min(hi, zoom))
	if zoom == v.Zoom {
		return
	}
	v.Zoom = zoom
	v.Generation++
}

// SetZoomLimits installs new zoom bounds and re-clamps the current zoom
// into them. Zero or negative values restore the defaults.
func (v *ViewState) SetZoomLimits(min, max float64) {
	v.ZoomMin = min
	v.ZoomMax = max
	v.SetZoom(v.Zoom)
}

func (v *ViewState) zoomLimits() (lo, hi float64) {
	lo, hi = v.ZoomMin, v.ZoomMax
	if lo <= 0 {
		lo = MinZoom
	}
	if hi <= 0 {
		hi = MaxZoom
	}
	return lo, hi
}

// ZoomIn and ZoomOut step the zoom by ZoomStep, clamped.

func (v *ViewState) ZoomIn()  { v.SetZoom(v.Zoom + ZoomStep) }
func (v *ViewState) ZoomOut() { v.SetZoom(v.Zoom - ZoomStep) }

// ScrollBy shifts the scroll offset by a screen-pixel delta. Scrolling
// does not invalidate in-flight captures, so the generation is untouched.
func (v *ViewState) ScrollBy(dx, dy float64) {
	v.Scroll.X += dx
	v.Scroll.Y += dy
}

// ToDocument maps a screen point to document space under the current
// zoom and scroll. Points outside the page clamp to the nearest in-page
// coordinate so a drag can never produce an invalid rectangle.
func ToDocument(p ScreenPoint, v ViewState) Point {
	d := Point{
		X: (p.X + v.Scroll.X) / v.Zoom,
		Y: (p.Y + v.Scroll.Y) / v.Zoom,
	}
	return clampToPage(d, v.PageSize)
}

// ToScreen is the inverse of ToDocument for in-page points.
func ToScreen(p Point, v ViewState) ScreenPoint {
	return ScreenPoint{
		X: p.X*v.Zoom - v.Scroll.X,
		Y: p.Y*v.Zoom - v.Scroll.Y,
	}
}

// ClampRect clips a document-space rectangle to the page bounds.
func ClampRect(r Rect, v ViewState) Rect {
	return r.Intersect(Rect{W: v.PageSize.W, H: v.PageSize.H})
}

func clampToPage(p Point, size Size) Point {
	return Point{
		X: math.Max(0, math.Min(p.X, size.W)),
		Y: math.Max(0, math.Min(p.Y, size.H)),
	}
}
