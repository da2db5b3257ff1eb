// Package ui renders the viewer window: the page view on the left, the
// notes surface on the right, and the interaction loop between them.
package ui

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"pdfnotes/cmd/pdfnotes-gui/internal/theme"
	"pdfnotes/internal/capture"
	"pdfnotes/internal/config"
	"pdfnotes/internal/gesture"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/notify"
	"pdfnotes/internal/render"
	"pdfnotes/internal/richtext"
	"pdfnotes/internal/watcher"
)

// Params collects everything the window needs.
type Params struct {
	Theme       *theme.Theme
	Coordinator *gesture.Coordinator
	Engine      *capture.Engine
	Renderer    render.Renderer
	Document    *richtext.Document
	Watcher     *watcher.Watcher
	Notifier    *notify.Notifier
	Save        func() error

	// OnConfig applies a reloaded configuration to the components. It
	// runs on the frame thread.
	OnConfig func(*config.Config)
}

// App is the top-level window state.
type App struct {
	theme      *theme.Theme
	coord      *gesture.Coordinator
	engine     *capture.Engine
	docWatcher *watcher.Watcher
	notifier   *notify.Notifier
	saveFn     func() error
	onConfig   func(*config.Config)

	pages *PageView
	notes *NotesPanel

	// Results, document events, and config reloads arrive from
	// background goroutines and are applied on the frame thread.
	mu         sync.Mutex
	results    []capture.Result
	docStale   bool
	docGone    bool
	pendingCfg *config.Config
	invalidate func()

	status string
}

// New builds the window state.
func New(p Params) *App {
	return &App{
		theme:      p.Theme,
		coord:      p.Coordinator,
		engine:     p.Engine,
		docWatcher: p.Watcher,
		notifier:   p.Notifier,
		saveFn:     p.Save,
		onConfig:   p.OnConfig,
		pages:      NewPageView(p.Theme, p.Coordinator, p.Renderer),
		notes:      NewNotesPanel(p.Theme, p.Coordinator, p.Document),
		status:     "ready",
	}
}

// ConfigChanged queues a reloaded configuration for the next frame. Safe
// to call from the loader's watch goroutine.
func (a *App) ConfigChanged(cfg *config.Config) {
	a.mu.Lock()
	a.pendingCfg = cfg
	inv := a.invalidate
	a.mu.Unlock()
	if inv != nil {
		inv()
	}
}

// Loop runs the window event loop until the window closes.
func (a *App) Loop(w *app.Window) error {
	a.pages.SetInvalidator(w.Invalidate)
	a.mu.Lock()
	a.invalidate = w.Invalidate
	a.mu.Unlock()
	go a.forwardResults(w)
	go a.forwardDocEvents(w)

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.applyBackgroundEvents()
			a.handleKeys(gtx)
			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) forwardResults(w *app.Window) {
	for res := range a.engine.Results() {
		a.mu.Lock()
		a.results = append(a.results, res)
		a.mu.Unlock()
		w.Invalidate()
	}
}

func (a *App) forwardDocEvents(w *app.Window) {
	for ev := range a.docWatcher.Events() {
		a.mu.Lock()
		switch ev.Kind {
		case watcher.Changed:
			a.docStale = true
		case watcher.Removed:
			a.docGone = true
		}
		a.mu.Unlock()
		w.Invalidate()
	}
}

// applyBackgroundEvents runs on the frame thread, keeping coordinator
// mutation single-threaded.
func (a *App) applyBackgroundEvents() {
	a.mu.Lock()
	results := a.results
	a.results = nil
	stale := a.docStale
	a.docStale = false
	gone := a.docGone
	a.docGone = false
	cfg := a.pendingCfg
	a.pendingCfg = nil
	a.mu.Unlock()

	if cfg != nil && a.onConfig != nil {
		a.onConfig(cfg)
		a.pages.InvalidateRender()
		a.status = "configuration reloaded"
		logging.Info("configuration reloaded")
	}

	for _, res := range results {
		a.coord.HandleCaptureResult(res)
		switch p := a.coord.Payload().(type) {
		case capture.TextPayload:
			a.status = fmt.Sprintf("copied %d characters", len(p.Content))
		case capture.ImagePayload:
			a.status = "screenshot ready, press P to paste"
			a.notifier.Send("pdfnotes", "Screenshot captured")
		}
	}

	if stale {
		logging.Info("document changed on disk, re-rendering")
		a.pages.InvalidateRender()
		a.status = "document updated"
	}
	if gone {
		a.status = "document removed from disk"
		a.notifier.Send("pdfnotes", "The open document was removed from disk")
	}
}

func (a *App) handleKeys(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: "C"},
			key.Filter{Name: "S"},
			key.Filter{Name: "S", Required: key.ModCtrl},
			key.Filter{Name: "P"},
			key.Filter{Name: "V", Required: key.ModCtrl},
			key.Filter{Name: key.NameEscape},
			key.Filter{Name: key.NameLeftArrow},
			key.Filter{Name: key.NameRightArrow},
			key.Filter{Name: key.NamePageUp},
			key.Filter{Name: key.NamePageDown},
			key.Filter{Name: "+"},
			key.Filter{Name: "="},
			key.Filter{Name: "-"},
		)
		if !ok {
			break
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		a.handleKey(e)
	}
}

func (a *App) handleKey(e key.Event) {
	switch e.Name {
	case "C":
		if a.coord.CopyText(context.Background()) {
			a.status = "extracting text..."
		}
	case "S":
		if e.Modifiers.Contain(key.ModCtrl) {
			if err := a.saveFn(); err != nil {
				a.status = "save failed: " + err.Error()
			} else {
				a.status = "saved"
			}
			return
		}
		if a.coord.CaptureScreenshot(context.Background()) {
			a.status = "capturing region..."
		}
	case "P":
		a.coord.Paste()
	case "V":
		if e.Modifiers.Contain(key.ModCtrl) {
			a.coord.Paste()
		}
	case key.NameEscape:
		a.coord.CancelPlacement()
	case key.NameLeftArrow, key.NamePageUp:
		a.coord.PrevPage()
	case key.NameRightArrow, key.NamePageDown:
		a.coord.NextPage()
	case "+", "=":
		a.coord.ZoomIn()
	case "-":
		a.coord.ZoomOut()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, a.theme.Palette.Background)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(0.6, a.pages.Layout),
				layout.Rigid(a.divider),
				layout.Flexed(0.4, a.notes.Layout),
			)
		}),
		layout.Rigid(a.layoutStatusBar),
	)
}

func (a *App) divider(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)
	paint.FillShape(gtx.Ops, a.theme.Palette.Border, clip.Rect{Max: size}.Op())
	return layout.Dimensions{Size: size}
}

func (a *App) layoutStatusBar(gtx layout.Context) layout.Dimensions {
	view := a.coord.View()
	left := fmt.Sprintf("page %d/%d   zoom %.0f%%",
		view.PageIndex+1, a.pages.PageCount(), view.Zoom*100)

	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			size := gtx.Constraints.Min
			paint.FillShape(gtx.Ops, a.theme.Palette.Panel, clip.Rect{Max: size}.Op())
			return layout.Dimensions{Size: size}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						l := material.Body2(a.theme.Theme, left)
						l.Color = a.theme.Palette.TextMuted
						return l.Layout(gtx)
					}),
					layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						l := material.Body2(a.theme.Theme, a.status)
						l.Color = a.theme.Palette.TextMuted
						return l.Layout(gtx)
					}),
				)
			})
		},
	)
}
