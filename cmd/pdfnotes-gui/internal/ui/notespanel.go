package ui

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"pdfnotes/cmd/pdfnotes-gui/internal/theme"
	"pdfnotes/internal/gesture"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/placement"
	"pdfnotes/internal/richtext"
)

// NotesPanel draws the note document and hosts the image placement
// overlay.
type NotesPanel struct {
	theme *theme.Theme
	coord *gesture.Coordinator
	doc   *richtext.Document

	list widget.List

	// Image ops are cached by run identity; pasted images never mutate.
	imgCache map[*richtext.Image]paint.ImageOp
}

// NewNotesPanel creates the notes panel.
func NewNotesPanel(t *theme.Theme, c *gesture.Coordinator, doc *richtext.Document) *NotesPanel {
	return &NotesPanel{
		theme:    t,
		coord:    c,
		doc:      doc,
		list:     widget.List{List: layout.List{Axis: layout.Vertical}},
		imgCache: make(map[*richtext.Image]paint.ImageOp),
	}
}

// Layout draws the panel. The placement overlay, when active, paints on
// top of the note content and swallows the panel's pointer events.
func (n *NotesPanel) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max

	n.coord.SetNotesBounds(placement.Rect{
		W: float64(size.X),
		H: float64(size.Y),
	})
	n.handlePointer(gtx)

	defer clip.Rect(image.Rectangle{Max: size}).Push(gtx.Ops).Pop()
	paint.Fill(gtx.Ops, n.theme.Palette.Panel)
	event.Op(gtx.Ops, n)

	layout.UniformInset(n.theme.Config.Padding).Layout(gtx, n.layoutBlocks)

	if overlay := n.coord.Overlay(); overlay.Active() {
		n.drawOverlay(gtx, overlay)
	}

	return layout.Dimensions{Size: size}
}

func (n *NotesPanel) layoutBlocks(gtx layout.Context) layout.Dimensions {
	blocks := n.doc.Blocks
	numbered := 0

	return material.List(n.theme.Theme, &n.list).Layout(gtx, len(blocks),
		func(gtx layout.Context, i int) layout.Dimensions {
			block := blocks[i]

			prefix := ""
			switch block.List {
			case richtext.ListBullet:
				numbered = 0
				prefix = "• "
			case richtext.ListNumbered:
				if i == 0 || blocks[i-1].List != richtext.ListNumbered {
					numbered = 0
				}
				numbered++
				prefix = fmt.Sprintf("%d. ", numbered)
			default:
				numbered = 0
			}

			return layout.Inset{Bottom: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return n.layoutBlock(gtx, prefix, block)
			})
		})
}

func (n *NotesPanel) layoutBlock(gtx layout.Context, prefix string, block richtext.Block) layout.Dimensions {
	children := make([]layout.FlexChild, 0, len(block.Runs)+1)

	if prefix != "" {
		children = append(children, layout.Rigid(n.runLabel(richtext.Run{Text: prefix})))
	}
	for _, run := range block.Runs {
		run := run
		if run.IsImage() {
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return n.layoutImageRun(gtx, run.Image)
			}))
			continue
		}
		children = append(children, layout.Rigid(n.runLabel(run)))
	}

	if len(children) == 0 {
		// Empty block still takes a line.
		children = append(children, layout.Rigid(n.runLabel(richtext.Run{Text: " "})))
	}

	return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Baseline}.Layout(gtx, children...)
}

func (n *NotesPanel) runLabel(run richtext.Run) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		l := material.Body1(n.theme.Theme, run.Text)
		l.Color = n.theme.Palette.Text

		s := run.Style
		if s.Bold {
			l.Font.Weight = font.Bold
		}
		if s.Italic {
			l.Font.Style = font.Italic
		}
		if s.Size > 0 {
			l.TextSize = unit.Sp(s.Size)
		}
		if c, ok := parseHexColor(s.Color); ok {
			l.Color = c
		}

		dims := l.Layout(gtx)
		if s.Underline {
			y := dims.Size.Y - gtx.Dp(2)
			line := image.Rect(0, y, dims.Size.X, y+gtx.Dp(1))
			paint.FillShape(gtx.Ops, l.Color, clip.Rect(line).Op())
		}
		return dims
	}
}

func (n *NotesPanel) layoutImageRun(gtx layout.Context, img *richtext.Image) layout.Dimensions {
	imgOp, ok := n.imgCache[img]
	if !ok {
		decoded, err := richtext.DecodeImage(img)
		if err != nil {
			logging.Warn("note image decode failed", "error", err)
			return layout.Dimensions{}
		}
		imgOp = paint.NewImageOp(decoded)
		n.imgCache[img] = imgOp
	}

	w := widget.Image{Src: imgOp, Fit: widget.Contain, Position: layout.NW}
	gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, img.W)
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, img.H)
	return w.Layout(gtx)
}

// drawOverlay paints the pending image at its current rect, a border,
// and the four corner resize handles.
func (n *NotesPanel) drawOverlay(gtx layout.Context, overlay *placement.Overlay) {
	img := overlay.Image()
	if img == nil {
		return
	}
	rect := overlay.Rect()

	imgOp := paint.NewImageOp(img)

	bounds := img.Bounds()
	sx := float32(rect.W) / float32(bounds.Dx())
	sy := float32(rect.H) / float32(bounds.Dy())

	func() {
		defer op.Affine(f32.Affine2D{}.
			Scale(f32.Pt(0, 0), f32.Pt(sx, sy)).
			Offset(f32.Pt(float32(rect.X), float32(rect.Y)))).Push(gtx.Ops).Pop()
		imgOp.Filter = paint.FilterLinear
		imgOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
	}()

	area := image.Rect(int(rect.X), int(rect.Y), int(rect.X+rect.W), int(rect.Y+rect.H))
	border := clip.Stroke{Path: clip.Rect(area).Path(), Width: 2}.Op()
	paint.FillShape(gtx.Ops, n.theme.Palette.Primary, border)

	for _, h := range overlay.HandleRects() {
		hr := image.Rect(int(h.X), int(h.Y), int(h.X+h.W), int(h.Y+h.H))
		paint.FillShape(gtx.Ops, n.theme.Palette.Handle, clip.Rect(hr).Op())
	}
}

func (n *NotesPanel) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: n,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		p := placement.Point{X: float64(e.Position.X), Y: float64(e.Position.Y)}
		switch e.Kind {
		case pointer.Press:
			n.coord.NotesPointerDown(p)
			gtx.Execute(op.InvalidateCmd{})
		case pointer.Drag:
			if n.coord.NotesPointerMove(p) {
				gtx.Execute(op.InvalidateCmd{})
			}
		case pointer.Release:
			n.coord.NotesPointerUp()
		}
	}
}

func parseHexColor(s string) (c color.NRGBA, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return c, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return c, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}, true
}
