package gesture

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfnotes/internal/capture"
	"pdfnotes/internal/placement"
	"pdfnotes/internal/viewport"
)

// stubRenderer is a two-page document whose regions rasterize 1:1 with
// the selection at zoom 1.0.
type stubRenderer struct {
	text string
}

func (s *stubRenderer) PageCount() int { return 2 }

func (s *stubRenderer) PageSize(page int) (viewport.Size, error) {
	return viewport.Size{W: 612, H: 792}, nil
}

func (s *stubRenderer) RenderPage(ctx context.Context, page int, zoom float64) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 612, 792)), nil
}

func (s *stubRenderer) ExtractText(ctx context.Context, page int, rect viewport.Rect) (string, error) {
	return s.text, nil
}

func (s *stubRenderer) RasterizeRegion(ctx context.Context, page int, rect viewport.Rect, zoom float64) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, int(rect.W*zoom), int(rect.H*zoom))), nil
}

func (s *stubRenderer) Oversample() int { return 1 }

// recordingSurface records inserts from the coordinator.
type recordingSurface struct {
	texts   []string
	images  []image.Rectangle
	imgDims [][2]int
}

func (r *recordingSurface) InsertTextAtCursor(text string) {
	r.texts = append(r.texts, text)
}

func (r *recordingSurface) InsertImageAtCursor(img *image.RGBA, w, h int) {
	r.images = append(r.images, img.Bounds())
	r.imgDims = append(r.imgDims, [2]int{w, h})
}

func newTestCoordinator(t *testing.T, text string) (*Coordinator, *capture.Engine, *recordingSurface) {
	t.Helper()
	r := &stubRenderer{text: text}
	e := capture.NewEngine(r)
	e.Mirror = nil
	s := &recordingSurface{}

	c, err := NewCoordinator(r, e, s)
	require.NoError(t, err)
	c.SetNotesBounds(placement.Rect{X: 0, Y: 0, W: 800, H: 600})
	return c, e, s
}

// pump routes the next engine result through the coordinator.
func pump(t *testing.T, c *Coordinator, e *capture.Engine) {
	t.Helper()
	select {
	case res := <-e.Results():
		c.HandleCaptureResult(res)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for capture result")
	}
}

func dragSelect(c *Coordinator, x0, y0, x1, y1 float64) {
	c.PagePointerDown(viewport.ScreenPoint{X: x0, Y: y0})
	c.PagePointerMove(viewport.ScreenPoint{X: (x0 + x1) / 2, Y: (y0 + y1) / 2})
	c.PagePointerUp(viewport.ScreenPoint{X: x1, Y: y1})
}

func TestScreenshotPlacementScenario(t *testing.T) {
	c, e, s := newTestCoordinator(t, "")

	// Drag-select (100,100)-(200,150) at zoom 1.0.
	dragSelect(c, 100, 100, 200, 150)

	// Screenshot capture: clipboard holds a 100x50 image payload.
	require.True(t, c.CaptureScreenshot(context.Background()))
	pump(t, c, e)
	img, isImg := c.Payload().(capture.ImagePayload)
	require.True(t, isImg, "clipboard should hold an image payload")
	assert.Equal(t, 100, img.Image.Bounds().Dx())
	assert.Equal(t, 50, img.Image.Bounds().Dy())

	// Paste: the placement overlay activates in move mode.
	c.Paste()
	require.True(t, c.Overlay().Active())
	assert.Equal(t, placement.Moving, c.Overlay().Mode())

	// Resize the bottom-right corner by (+20,+10).
	or := c.Overlay().Rect()
	br := placement.Point{X: or.X + or.W, Y: or.Y + or.H}
	c.NotesPointerDown(br)
	c.NotesPointerMove(placement.Point{X: br.X + 20, Y: br.Y + 10})
	c.NotesPointerUp()

	// Click outside: the surface receives the resized image, the
	// clipboard clears, the overlay deactivates.
	c.NotesPointerDown(placement.Point{X: 1, Y: 1})
	require.Len(t, s.imgDims, 1)
	assert.Equal(t, [2]int{120, 60}, s.imgDims[0])
	assert.Equal(t, image.Rect(0, 0, 120, 60), s.images[0])
	assert.Nil(t, c.Payload(), "clipboard should be cleared by commit")
	assert.False(t, c.Overlay().Active())
}

func TestTextCopyPasteScenario(t *testing.T) {
	c, e, s := newTestCoordinator(t, "Hello")

	dragSelect(c, 100, 100, 300, 140)

	require.True(t, c.CopyText(context.Background()))
	pump(t, c, e)
	text, isText := c.Payload().(capture.TextPayload)
	require.True(t, isText)
	assert.Equal(t, "Hello", text.Content)

	// Text paste bypasses the overlay entirely.
	c.Paste()
	assert.False(t, c.Overlay().Active())
	require.Equal(t, []string{"Hello"}, s.texts)

	// Text stays on the clipboard; pasting twice inserts twice.
	c.Paste()
	assert.Equal(t, []string{"Hello", "Hello"}, s.texts)
}

func TestCaptureWithoutSelectionIsNoop(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "x")

	assert.False(t, c.CopyText(context.Background()))
	assert.False(t, c.CaptureScreenshot(context.Background()))

	// A sub-threshold click is not a selection either.
	c.PagePointerDown(viewport.ScreenPoint{X: 10, Y: 10})
	c.PagePointerUp(viewport.ScreenPoint{X: 11, Y: 11})
	assert.False(t, c.CopyText(context.Background()))
}

func TestPasteEmptyClipboardIsNoop(t *testing.T) {
	c, _, s := newTestCoordinator(t, "")
	c.Paste()
	assert.Empty(t, s.texts)
	assert.Empty(t, s.imgDims)
	assert.False(t, c.Overlay().Active())
}

func TestPageChangeCancelsDrag(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "")

	c.PagePointerDown(viewport.ScreenPoint{X: 100, Y: 100})
	c.PagePointerMove(viewport.ScreenPoint{X: 200, Y: 200})

	c.NextPage()
	if _, ok := c.SelectionHighlight(); ok {
		t.Fatal("selection survived a page change")
	}

	// The late pointer-up must not commit anything.
	c.PagePointerUp(viewport.ScreenPoint{X: 200, Y: 200})
	assert.False(t, c.CopyText(context.Background()))
}

func TestZoomChangeCancelsDrag(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "")

	c.PagePointerDown(viewport.ScreenPoint{X: 100, Y: 100})
	c.PagePointerMove(viewport.ScreenPoint{X: 200, Y: 200})

	c.ZoomIn()
	if _, ok := c.SelectionHighlight(); ok {
		t.Fatal("drag survived a zoom change")
	}
}

func TestZoomChangeKeepsCommittedSelection(t *testing.T) {
	c, e, _ := newTestCoordinator(t, "kept")

	dragSelect(c, 100, 100, 300, 200)
	c.ZoomIn()

	// The committed rect is document-space; it remains selectable and
	// capturable at the new zoom.
	if _, ok := c.SelectionHighlight(); !ok {
		t.Fatal("committed selection dropped by a zoom change")
	}
	require.True(t, c.CopyText(context.Background()))
	pump(t, c, e)
	text, isText := c.Payload().(capture.TextPayload)
	require.True(t, isText)
	assert.Equal(t, "kept", text.Content)
}

func TestApplyOptionsZoomAndSelection(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "")
	c.ApplyOptions(Options{MinZoom: 0.5, MaxZoom: 5.0, ZoomStep: 0.5, MinSelectionArea: 10000})

	c.ZoomIn()
	assert.Equal(t, 1.5, c.View().Zoom, "configured step should apply")
	c.SetZoom(99)
	assert.Equal(t, 5.0, c.View().Zoom, "configured max should apply")
	c.SetZoom(0.01)
	assert.Equal(t, 0.5, c.View().Zoom, "configured min should apply")

	// A drag below the configured area threshold never commits.
	c.SetZoom(1.0)
	dragSelect(c, 0, 0, 90, 90)
	assert.False(t, c.CopyText(context.Background()), "8100 sq units is below the 10000 threshold")

	dragSelect(c, 0, 0, 150, 100)
	assert.True(t, c.CopyText(context.Background()), "15000 sq units clears the threshold")
}

func TestApplyOptionsOverlayLimits(t *testing.T) {
	c, e, _ := newTestCoordinator(t, "")
	c.ApplyOptions(Options{OverlayMinSize: 20, OverlayMaxFit: 100})

	// A 300x150 capture must fit within the configured 100px bound.
	dragSelect(c, 100, 100, 400, 250)
	require.True(t, c.CaptureScreenshot(context.Background()))
	pump(t, c, e)
	c.Paste()
	require.True(t, c.Overlay().Active())
	rect := c.Overlay().Rect()
	assert.Equal(t, 100.0, rect.W)
	assert.Equal(t, 50.0, rect.H)
}

func TestStaleCaptureResultDiscarded(t *testing.T) {
	c, e, _ := newTestCoordinator(t, "stale")

	dragSelect(c, 100, 100, 300, 200)
	require.True(t, c.CopyText(context.Background()))

	// The page changes while the capture is in flight.
	c.NextPage()
	pump(t, c, e)

	assert.Nil(t, c.Payload(), "stale result should be discarded silently")
}

func TestCaptureIgnoredWhilePlacementActive(t *testing.T) {
	c, e, _ := newTestCoordinator(t, "")

	dragSelect(c, 100, 100, 200, 200)
	require.True(t, c.CaptureScreenshot(context.Background()))
	pump(t, c, e)
	c.Paste()
	require.True(t, c.Overlay().Active())

	// Page gestures and capture triggers are shut out during placement.
	c.PagePointerDown(viewport.ScreenPoint{X: 50, Y: 50})
	if _, ok := c.SelectionHighlight(); ok {
		t.Fatal("page drag started during active placement")
	}
	assert.False(t, c.CopyText(context.Background()))
	assert.False(t, c.CaptureScreenshot(context.Background()))
}

func TestCancelKeepsPayload(t *testing.T) {
	c, e, s := newTestCoordinator(t, "")

	dragSelect(c, 100, 100, 200, 200)
	require.True(t, c.CaptureScreenshot(context.Background()))
	pump(t, c, e)
	c.Paste()
	require.True(t, c.Overlay().Active())

	c.CancelPlacement()
	assert.False(t, c.Overlay().Active())
	assert.Empty(t, s.imgDims, "cancel must not insert")
	assert.NotNil(t, c.Payload(), "cancel must keep the payload for retry")

	// The retained payload can be placed again.
	c.Paste()
	assert.True(t, c.Overlay().Active())
}

func TestSecondImagePasteWhileActiveRejected(t *testing.T) {
	c, e, _ := newTestCoordinator(t, "")

	dragSelect(c, 100, 100, 200, 200)
	require.True(t, c.CaptureScreenshot(context.Background()))
	pump(t, c, e)

	c.Paste()
	require.True(t, c.Overlay().Active())
	first := c.Overlay().Rect()

	// Move the overlay, then paste again: the active placement wins.
	c.NotesPointerDown(placement.Point{X: first.X + 5, Y: first.Y + 25})
	c.NotesPointerMove(placement.Point{X: first.X + 45, Y: first.Y + 25})
	c.NotesPointerUp()
	moved := c.Overlay().Rect()
	require.NotEqual(t, first, moved)

	c.Paste()
	assert.Equal(t, moved, c.Overlay().Rect(), "second paste must not reset the overlay")
}

func TestGoToPageBounds(t *testing.T) {
	c, _, _ := newTestCoordinator(t, "")

	c.GoToPage(-1)
	assert.Equal(t, 0, c.View().PageIndex)
	c.GoToPage(99)
	assert.Equal(t, 0, c.View().PageIndex)

	c.NextPage()
	assert.Equal(t, 1, c.View().PageIndex)
	c.NextPage()
	assert.Equal(t, 1, c.View().PageIndex, "already on the last page")
	c.PrevPage()
	assert.Equal(t, 0, c.View().PageIndex)
}
