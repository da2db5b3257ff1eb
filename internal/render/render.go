// Package render defines the document renderer consumed by the capture
// engine and page view, and a poppler-backed implementation.
//
// The renderer is deliberately narrow: page geometry, full-page raster,
// region raster, and region text extraction. Everything else about PDF
// internals stays behind this interface.
package render

import (
	"context"
	"image"

	"pdfnotes/internal/viewport"
)

// Oversample is the default raster supersampling factor. Pages are
// rendered at twice the nominal zoom resolution and scaled down for
// display, which also makes screenshot captures match what the user saw.
const Oversample = 2

// Renderer provides page rasters and region text for a single open
// document. Implementations must be safe for use from the capture
// engine's worker goroutine.
type Renderer interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageSize returns the page's media box size in document units
	// (points).
	PageSize(page int) (viewport.Size, error)

	// RenderPage rasterizes the full page at the given zoom factor.
	RenderPage(ctx context.Context, page int, zoom float64) (*image.RGBA, error)

	// ExtractText returns the text inside a document-space rectangle.
	// An empty string is a valid result, not an error.
	ExtractText(ctx context.Context, page int, rect viewport.Rect) (string, error)

	// RasterizeRegion rasterizes a document-space rectangle at the given
	// zoom factor, so capture resolution matches the on-screen view.
	RasterizeRegion(ctx context.Context, page int, rect viewport.Rect, zoom float64) (*image.RGBA, error)

	// Oversample returns the supersampling factor rasters are produced
	// at. The page view divides by it when drawing.
	Oversample() int
}

// ToRGBA converts a decoded image to *image.RGBA without copying when the
// underlying representation already matches.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return out
}
