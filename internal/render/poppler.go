package render

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"

	"pdfnotes/internal/viewport"
)

// Poppler renders pages by shelling out to the poppler-utils command line
// tools (pdfinfo, pdftoppm, pdftotext). Page geometry is read once at
// open time; raster and text calls run one subprocess each and honor the
// caller's context.
type Poppler struct {
	path  string
	pages []viewport.Size

	// oversample is read from the capture worker while the GUI thread
	// may rewrite it on a config reload.
	oversample atomic.Int32
}

// OpenPoppler probes the document with pdfinfo and returns a renderer
// for it.
func OpenPoppler(ctx context.Context, path string) (*Poppler, error) {
	out, err := exec.CommandContext(ctx, "pdfinfo", "-l", "-1", path).Output()
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}

	pages, err := parsePageSizes(out)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("probe %s: no pages", path)
	}

	p := &Poppler{path: path, pages: pages}
	p.oversample.Store(Oversample)
	return p, nil
}

// Oversample returns the current supersampling factor.
func (p *Poppler) Oversample() int { return int(p.oversample.Load()) }

// SetOversample changes the supersampling factor for subsequent rasters.
// Values outside [1,4] are ignored.
func (p *Poppler) SetOversample(n int) {
	if n < 1 || n > 4 {
		return
	}
	p.oversample.Store(int32(n))
}

// parsePageSizes reads "Page N size: W x H pts" lines from pdfinfo -l
// output.
func parsePageSizes(out []byte) ([]viewport.Size, error) {
	var pages []viewport.Size
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Page") || !strings.Contains(line, "size:") {
			continue
		}
		fields := strings.Fields(line)
		// Page 1 size: 612 x 792 pts
		if len(fields) < 7 {
			continue
		}
		w, errW := strconv.ParseFloat(fields[3], 64)
		h, errH := strconv.ParseFloat(fields[5], 64)
		if errW != nil || errH != nil {
			return nil, fmt.Errorf("malformed page size line: %q", line)
		}
		pages = append(pages, viewport.Size{W: w, H: h})
	}
	return pages, sc.Err()
}

// PageCount returns the number of pages.
func (p *Poppler) PageCount() int { return len(p.pages) }

// PageSize returns the media box size of a page in points.
func (p *Poppler) PageSize(page int) (viewport.Size, error) {
	if page < 0 || page >= len(p.pages) {
		return viewport.Size{}, fmt.Errorf("page %d out of range [0,%d)", page, len(p.pages))
	}
	return p.pages[page], nil
}

// RenderPage rasterizes the full page at zoom, supersampled by the
// oversample factor.
func (p *Poppler) RenderPage(ctx context.Context, page int, zoom float64) (*image.RGBA, error) {
	if _, err := p.PageSize(page); err != nil {
		return nil, err
	}
	return p.rasterize(ctx, page, zoom, nil)
}

// RasterizeRegion rasterizes a document-space rectangle at zoom. The
// rectangle is clamped to the page bounds first; regions reaching past a
// page edge capture only the in-page part.
func (p *Poppler) RasterizeRegion(ctx context.Context, page int, rect viewport.Rect, zoom float64) (*image.RGBA, error) {
	size, err := p.PageSize(page)
	if err != nil {
		return nil, err
	}
	rect = rect.Intersect(viewport.Rect{W: size.W, H: size.H})
	if rect.IsEmpty() {
		return nil, fmt.Errorf("region outside page %d", page)
	}
	return p.rasterize(ctx, page, zoom, &rect)
}

func (p *Poppler) rasterize(ctx context.Context, page int, zoom float64, clip *viewport.Rect) (*image.RGBA, error) {
	scale := zoom * float64(p.Oversample())
	dpi := 72 * scale

	args := []string{
		"-png",
		"-r", strconv.FormatFloat(dpi, 'f', 2, 64),
		"-f", strconv.Itoa(page + 1),
		"-l", strconv.Itoa(page + 1),
	}
	if clip != nil {
		// Crop coordinates are pixels at the requested resolution.
		args = append(args,
			"-x", strconv.Itoa(int(math.Floor(clip.X*scale))),
			"-y", strconv.Itoa(int(math.Floor(clip.Y*scale))),
			"-W", strconv.Itoa(int(math.Ceil(clip.W*scale))),
			"-H", strconv.Itoa(int(math.Ceil(clip.H*scale))),
		)
	}
	args = append(args, p.path)

	out, err := exec.CommandContext(ctx, "pdftoppm", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("rasterize page %d: %w", page, err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("decode page %d raster: %w", page, err)
	}
	return ToRGBA(img), nil
}

// ExtractText returns the text within a document-space rectangle. pdftotext
// crop units at the default resolution are points, matching document
// space directly. No extractable text yields "".
func (p *Poppler) ExtractText(ctx context.Context, page int, rect viewport.Rect) (string, error) {
	size, err := p.PageSize(page)
	if err != nil {
		return "", err
	}
	rect = rect.Intersect(viewport.Rect{W: size.W, H: size.H})
	if rect.IsEmpty() {
		return "", nil
	}

	args := []string{
		"-f", strconv.Itoa(page + 1),
		"-l", strconv.Itoa(page + 1),
		"-x", strconv.Itoa(int(math.Floor(rect.X))),
		"-y", strconv.Itoa(int(math.Floor(rect.Y))),
		"-W", strconv.Itoa(int(math.Ceil(rect.W))),
		"-H", strconv.Itoa(int(math.Ceil(rect.H))),
		"-layout",
		p.path,
		"-",
	}

	out, err := exec.CommandContext(ctx, "pdftotext", args...).Output()
	if err != nil {
		return "", fmt.Errorf("extract text page %d: %w", page, err)
	}
	return strings.TrimSpace(string(out)), nil
}
