// Package richtext models the notes editor's content: styled text runs
// and embedded images arranged in blocks, with a cursor for insertion.
//
// The model is independent of any widget toolkit. The GUI renders it and
// feeds it commands; the gesture coordinator only sees the two insertion
// operations. Content serializes to JSON for the notes store.
package richtext

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"pdfnotes/internal/logging"
)

// ListKind marks a block's list membership.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListNumbered
)

// Style is the character formatting applied to a text run.
type Style struct {
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
	Size      int    `json:"size,omitempty"`  // point size, 0 = default
	Color     string `json:"color,omitempty"` // "#rrggbb", "" = default
}

// Image is an embedded picture: encoded pixels plus its display size.
type Image struct {
	PNG []byte `json:"png"`
	W   int    `json:"w"`
	H   int    `json:"h"`
}

// Run is one inline element: styled text, or an image when Image is set.
type Run struct {
	Text  string `json:"text,omitempty"`
	Style Style  `json:"style,omitempty"`
	Image *Image `json:"image,omitempty"`
}

// IsImage reports whether the run is an embedded image.
func (r Run) IsImage() bool { return r.Image != nil }

// runLen is the run's extent in cursor units: rune count for text, 1 for
// an image.
func runLen(r Run) int {
	if r.IsImage() {
		return 1
	}
	return len([]rune(r.Text))
}

// Block is a paragraph-level element.
type Block struct {
	List ListKind `json:"list,omitempty"`
	Runs []Run    `json:"runs,omitempty"`
}

// Cursor addresses an insertion point: a run within a block and a rune
// offset within that run (0 or 1 around an image run).
type Cursor struct {
	Block  int
	Run    int
	Offset int
}

// Document is the notes content. Mutations go through the insertion and
// formatting methods, which keep Revision counting edits for autosave.
type Document struct {
	Blocks []Block

	cursor   Cursor
	style    Style
	revision uint64
}

// New returns an empty document with a single blank block.
func New() *Document {
	return &Document{Blocks: []Block{{}}}
}

// Revision increments on every mutation. The autosaver compares it with
// the last saved revision to decide whether the document is dirty.
func (d *Document) Revision() uint64 { return d.revision }

// Cursor returns the current insertion point.
func (d *Document) Cursor() Cursor { return d.cursor }

// SetCursor moves the insertion point, clamping out-of-range components.
func (d *Document) SetCursor(c Cursor) {
	d.cursor = c
	d.clampCursor()
}

// MoveCursorToEnd places the cursor after the last run of the last block.
func (d *Document) MoveCursorToEnd() {
	d.ensureBlock()
	b := len(d.Blocks) - 1
	d.cursor = Cursor{Block: b}
	if n := len(d.Blocks[b].Runs); n > 0 {
		d.cursor.Run = n - 1
		d.cursor.Offset = runLen(d.Blocks[b].Runs[n-1])
	}
}

// CurrentStyle returns the typing style applied to inserted text.
func (d *Document) CurrentStyle() Style { return d.style }

// Formatting commands toggle or set the typing style.

func (d *Document) ToggleBold()      { d.style.Bold = !d.style.Bold; d.revision++ }
func (d *Document) ToggleItalic()    { d.style.Italic = !d.style.Italic; d.revision++ }
func (d *Document) ToggleUnderline() { d.style.Underline = !d.style.Underline; d.revision++ }

func (d *Document) SetFontSize(size int) {
	if size < 0 {
		size = 0
	}
	d.style.Size = size
	d.revision++
}

func (d *Document) SetColor(color string) {
	d.style.Color = color
	d.revision++
}

// ToggleBulletList switches the cursor's block between bullet list and
// plain paragraph. ToggleNumberedList does the same for numbered lists.

func (d *Document) ToggleBulletList()   { d.toggleList(ListBullet) }
func (d *Document) ToggleNumberedList() { d.toggleList(ListNumbered) }

func (d *Document) toggleList(kind ListKind) {
	d.ensureBlock()
	d.clampCursor()
	b := &d.Blocks[d.cursor.Block]
	if b.List == kind {
		b.List = ListNone
	} else {
		b.List = kind
	}
	d.revision++
}

// InsertTextAtCursor inserts text at the cursor with the current typing
// style. Newlines split blocks, continuing the current list kind.
func (d *Document) InsertTextAtCursor(text string) {
	if text == "" {
		return
	}
	d.ensureBlock()
	d.clampCursor()

	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			d.splitBlockAtCursor()
		}
		if line != "" {
			d.insertRun(Run{Text: line, Style: d.style})
		}
	}
	d.revision++
}

// InsertImageAtCursor inserts an image at the cursor, displayed at w x h.
// Encoding failures are logged and dropped; the interaction must not
// fail.
func (d *Document) InsertImageAtCursor(img *image.RGBA, w, h int) {
	if img == nil || w < 1 || h < 1 {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logging.Warn("image encode failed on insert", "error", err)
		return
	}

	d.ensureBlock()
	d.clampCursor()
	d.insertRun(Run{Image: &Image{PNG: buf.Bytes(), W: w, H: h}})
	d.revision++
}

// PlainText flattens the document to text, one line per block. Image runs
// render as nothing.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range b.Runs {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// IsEmpty reports whether the document contains no text and no images.
func (d *Document) IsEmpty() bool {
	for _, b := range d.Blocks {
		for _, r := range b.Runs {
			if r.IsImage() || r.Text != "" {
				return false
			}
		}
	}
	return true
}

// DecodeImage decodes an image run's pixels for rendering or export.
func DecodeImage(img *Image) (image.Image, error) {
	return png.Decode(bytes.NewReader(img.PNG))
}

// insertRun places nr at the cursor, splitting the run under it, and
// leaves the cursor at the end of nr.
func (d *Document) insertRun(nr Run) {
	b := &d.Blocks[d.cursor.Block]
	if len(b.Runs) == 0 {
		b.Runs = []Run{nr}
		d.cursor.Run = 0
		d.cursor.Offset = runLen(nr)
		return
	}

	r := d.cursor.Run
	before, after := splitRun(b.Runs[r], d.cursor.Offset)

	out := make([]Run, 0, len(b.Runs)+2)
	out = append(out, b.Runs[:r]...)
	if before != nil {
		out = append(out, *before)
	}
	inserted := len(out)
	out = append(out, nr)
	if after != nil {
		out = append(out, *after)
	}
	out = append(out, b.Runs[r+1:]...)

	b.Runs = out
	d.cursor.Run = inserted
	d.cursor.Offset = runLen(nr)
}

// splitBlockAtCursor breaks the cursor's block in two and moves the
// cursor to the start of the second half.
func (d *Document) splitBlockAtCursor() {
	i := d.cursor.Block
	b := d.Blocks[i]

	var left, right []Run
	if len(b.Runs) > 0 {
		before, after := splitRun(b.Runs[d.cursor.Run], d.cursor.Offset)
		left = append(left, b.Runs[:d.cursor.Run]...)
		if before != nil {
			left = append(left, *before)
		}
		if after != nil {
			right = append(right, *after)
		}
		right = append(right, b.Runs[d.cursor.Run+1:]...)
	}

	d.Blocks[i].Runs = left
	rest := append([]Block{{List: b.List, Runs: right}}, d.Blocks[i+1:]...)
	d.Blocks = append(d.Blocks[:i+1], rest...)
	d.cursor = Cursor{Block: i + 1}
}

// splitRun divides a run at a cursor offset. Either half may be nil when
// the offset falls at an edge. Image runs never split; the offset only
// decides which side they land on.
func splitRun(r Run, offset int) (before, after *Run) {
	if offset <= 0 {
		return nil, &r
	}
	if r.IsImage() || offset >= runLen(r) {
		return &r, nil
	}
	runes := []rune(r.Text)
	left := Run{Text: string(runes[:offset]), Style: r.Style}
	right := Run{Text: string(runes[offset:]), Style: r.Style}
	return &left, &right
}

func (d *Document) ensureBlock() {
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{}}
	}
}

func (d *Document) clampCursor() {
	d.ensureBlock()
	if d.cursor.Block < 0 {
		d.cursor.Block = 0
	}
	if d.cursor.Block >= len(d.Blocks) {
		d.cursor.Block = len(d.Blocks) - 1
	}
	runs := d.Blocks[d.cursor.Block].Runs
	if len(runs) == 0 {
		d.cursor.Run = 0
		d.cursor.Offset = 0
		return
	}
	if d.cursor.Run < 0 {
		d.cursor.Run = 0
	}
	if d.cursor.Run >= len(runs) {
		d.cursor.Run = len(runs) - 1
		d.cursor.Offset = runLen(runs[d.cursor.Run])
		return
	}
	if d.cursor.Offset < 0 {
		d.cursor.Offset = 0
	}
	if max := runLen(runs[d.cursor.Run]); d.cursor.Offset > max {
		d.cursor.Offset = max
	}
}
