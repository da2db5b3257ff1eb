package ui

import (
	"context"
	"image"
	"sync"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"pdfnotes/cmd/pdfnotes-gui/internal/theme"
	"pdfnotes/internal/gesture"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/render"
	"pdfnotes/internal/viewport"
)

// renderedPage is the cached raster for one (page, zoom) pair. The
// raster is oversampled, so its on-screen size is pixel size divided by
// the renderer's oversample factor.
type renderedPage struct {
	page int
	zoom float64
	img  *image.RGBA
}

// PageView draws the current page, the selection highlight, and routes
// pointer input to the coordinator.
type PageView struct {
	theme    *theme.Theme
	coord    *gesture.Coordinator
	renderer render.Renderer

	mu        sync.Mutex
	cache     *renderedPage
	rendering bool
	epoch     uint64 // bumped when the document changes on disk

	invalidate func()
}

// NewPageView creates the page view.
func NewPageView(t *theme.Theme, c *gesture.Coordinator, r render.Renderer) *PageView {
	return &PageView{theme: t, coord: c, renderer: r}
}

// PageCount returns the document's page count.
func (v *PageView) PageCount() int { return v.renderer.PageCount() }

// InvalidateRender drops the cached raster, forcing a re-render. Called
// when the document is rewritten on disk.
func (v *PageView) InvalidateRender() {
	v.mu.Lock()
	v.cache = nil
	v.epoch++
	v.mu.Unlock()
}

// Layout draws the page view and consumes its pointer events.
func (v *PageView) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max

	v.handlePointer(gtx)

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, v.theme.Palette.Surface)
	event.Op(gtx.Ops, v)

	view := v.coord.View()
	if img := v.currentRaster(gtx, view); img != nil {
		v.drawPage(gtx, img, view)
	}
	if rect, ok := v.coord.SelectionHighlight(); ok {
		v.drawHighlight(gtx, rect, view)
	}

	return layout.Dimensions{Size: size}
}

// currentRaster returns the cached raster for the current view, kicking
// off an async render when it is missing or stale.
func (v *PageView) currentRaster(gtx layout.Context, view viewport.ViewState) *image.RGBA {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cache != nil && v.cache.page == view.PageIndex && v.cache.zoom == view.Zoom {
		return v.cache.img
	}
	if !v.rendering {
		v.rendering = true
		go v.renderPage(view.PageIndex, view.Zoom, v.epoch)
		gtx.Execute(op.InvalidateCmd{})
	}
	// Show the stale raster while the new one renders.
	if v.cache != nil && v.cache.page == view.PageIndex {
		return v.cache.img
	}
	return nil
}

func (v *PageView) renderPage(page int, zoom float64, epoch uint64) {
	img, err := v.renderer.RenderPage(context.Background(), page, zoom)

	v.mu.Lock()
	v.rendering = false
	if err != nil {
		logging.Warn("page render failed", "page", page, "error", err)
	} else if epoch == v.epoch {
		v.cache = &renderedPage{page: page, zoom: zoom, img: img}
	}
	inv := v.invalidate
	v.mu.Unlock()

	if inv != nil {
		inv()
	}
}

// SetInvalidator installs the window wakeup used when an async render
// completes.
func (v *PageView) SetInvalidator(fn func()) {
	v.mu.Lock()
	v.invalidate = fn
	v.mu.Unlock()
}

func (v *PageView) drawPage(gtx layout.Context, img *image.RGBA, view viewport.ViewState) {
	scroll := f32.Pt(float32(-view.Scroll.X), float32(-view.Scroll.Y))
	scale := float32(1) / float32(v.renderer.Oversample())

	defer op.Affine(f32.Affine2D{}.
		Scale(f32.Pt(0, 0), f32.Pt(scale, scale)).
		Offset(scroll)).Push(gtx.Ops).Pop()

	imgOp := paint.NewImageOp(img)
	imgOp.Filter = paint.FilterLinear
	imgOp.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}

func (v *PageView) drawHighlight(gtx layout.Context, rect viewport.Rect, view viewport.ViewState) {
	tl := viewport.ToScreen(viewport.Point{X: rect.X, Y: rect.Y}, view)
	br := viewport.ToScreen(viewport.Point{X: rect.X + rect.W, Y: rect.Y + rect.H}, view)

	area := image.Rect(int(tl.X), int(tl.Y), int(br.X), int(br.Y))
	paint.FillShape(gtx.Ops, v.theme.Palette.Selection, clip.Rect(area).Op())

	border := clip.Stroke{Path: clip.Rect(area).Path(), Width: 1.5}.Op()
	paint.FillShape(gtx.Ops, v.theme.Palette.Primary, border)
}

func (v *PageView) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  v,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -240, Max: 240},
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		p := viewport.ScreenPoint{X: float64(e.Position.X), Y: float64(e.Position.Y)}
		switch e.Kind {
		case pointer.Press:
			v.coord.PagePointerDown(p)
		case pointer.Drag:
			if v.coord.PagePointerMove(p) {
				gtx.Execute(op.InvalidateCmd{})
			}
		case pointer.Release:
			v.coord.PagePointerUp(p)
		case pointer.Scroll:
			if e.Modifiers.Contain(key.ModCtrl) {
				if e.Scroll.Y < 0 {
					v.coord.ZoomIn()
				} else if e.Scroll.Y > 0 {
					v.coord.ZoomOut()
				}
			} else {
				v.coord.ScrollBy(float64(e.Scroll.X), float64(e.Scroll.Y))
			}
			gtx.Execute(op.InvalidateCmd{})
		}
	}
}
