// pdfnotes-gui is the desktop viewer: a PDF on the left, its note on
// the right, with region capture and image placement in between.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gioui.org/app"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"pdfnotes/cmd/pdfnotes-gui/internal/theme"
	"pdfnotes/cmd/pdfnotes-gui/internal/ui"
	"pdfnotes/internal/capture"
	"pdfnotes/internal/config"
	"pdfnotes/internal/gesture"
	"pdfnotes/internal/link"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/notes"
	"pdfnotes/internal/notify"
	"pdfnotes/internal/render"
	"pdfnotes/internal/richtext"
	"pdfnotes/internal/watcher"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <document.pdf>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}
	docPath := os.Args[1]

	if err := run(docPath); err != nil {
		logging.Error("fatal", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(docPath string) error {
	cfgPath := config.ConfigPath()
	loader := config.NewLoader(cfgPath)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		// First run: write the defaults so there is a file to edit, and
		// so the reload watcher has a directory to watch.
		if err := config.SaveConfig(config.Default(), cfgPath); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	defer loader.Close()

	logCfg := logging.DefaultConfig()
	if lvl, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = lvl
	}
	if format, err := logging.ParseFormat(cfg.Logging.Format); err == nil {
		logCfg.Format = format
	}
	if cfg.Logging.Output != "" {
		logCfg.Output = cfg.Logging.Output
	}
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	logging.SetDefault(logger)
	defer logger.Close()

	lock, err := notes.AcquireLock(cfg.Storage.DataDir)
	if err != nil {
		if errors.Is(err, notes.ErrLocked) {
			return fmt.Errorf("another pdfnotes instance is already running")
		}
		return err
	}
	defer lock.Release()

	store, err := notes.Open(filepath.Join(cfg.Storage.DataDir, "notes.db"))
	if err != nil {
		return fmt.Errorf("open notes database: %w", err)
	}
	defer store.Close()

	key, err := link.Resolve(docPath)
	if err != nil {
		return err
	}

	doc, found, err := store.Load(key)
	if err != nil {
		return fmt.Errorf("load note: %w", err)
	}
	if !found {
		doc = richtext.New()
	}
	logging.Info("note loaded", "key", key.Short(), "existing", found)

	renderer, err := render.OpenPoppler(context.Background(), docPath)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}

	notifier := notify.New("pdfnotes")
	defer notifier.Close()

	saver := notes.NewAutosaver(notes.AutosaveConfig{
		Interval: cfg.Autosave.Interval(),
		Save: func() error {
			return store.Save(key, docPath, doc)
		},
		OnSave: func() {
			logging.Debug("autosaved", "key", key.Short())
			if cfg.Autosave.Notify {
				notifier.Send("pdfnotes", "Notes saved")
			}
		},
		OnError: func(err error) {
			logging.Error("autosave failed", "error", err)
		},
	})
	if cfg.Autosave.Enabled {
		saver.Start()
		defer saver.Stop()
	}

	docWatcher, err := watcher.New(docPath, 0)
	if err != nil {
		return fmt.Errorf("watch document: %w", err)
	}
	if err := docWatcher.Start(); err != nil {
		return fmt.Errorf("watch document: %w", err)
	}
	defer docWatcher.Stop()

	engine := capture.NewEngine(renderer)
	coord, err := gesture.NewCoordinator(renderer, engine, &dirtySurface{doc: doc, saver: saver})
	if err != nil {
		return fmt.Errorf("read first page: %w", err)
	}

	// applyConfig pushes the tunable limits into the components. It runs
	// once at startup and again, on the frame thread, after each
	// successful hot reload.
	applyConfig := func(c *config.Config) {
		coord.ApplyOptions(gesture.Options{
			MinZoom:          c.View.MinZoom,
			MaxZoom:          c.View.MaxZoom,
			ZoomStep:         c.View.ZoomStep,
			MinSelectionArea: c.View.MinSelectionArea,
			OverlayMinSize:   float64(c.Overlay.MinSize),
			OverlayMaxFit:    float64(c.Overlay.MaxInitialSize),
		})
		renderer.SetOversample(c.View.Oversample)
	}
	applyConfig(cfg)

	view := ui.New(ui.Params{
		Theme:       theme.NewTheme(material.NewTheme()),
		Coordinator: coord,
		Engine:      engine,
		Renderer:    renderer,
		Document:    doc,
		Watcher:     docWatcher,
		Notifier:    notifier,
		Save:        saver.Flush,
		OnConfig:    applyConfig,
	})

	loader.OnChange(view.ConfigChanged)
	if err := loader.Watch(); err != nil {
		logging.Warn("config hot reload unavailable", "error", err)
	}
	go func() {
		for err := range loader.Errors() {
			logging.Warn("config reload rejected", "error", err)
		}
	}()

	// app.Main never returns, so shutdown happens in the window
	// goroutine once the event loop ends.
	shutdown := func() {
		loader.Close()
		if cfg.Autosave.Enabled {
			saver.Stop()
		} else {
			saver.Flush()
		}
		docWatcher.Stop()
		notifier.Close()
		store.Close()
		lock.Release()
		logger.Close()
	}

	go func() {
		w := new(app.Window)
		w.Option(app.Title(filepath.Base(docPath) + " - pdfnotes"))
		w.Option(app.Size(unit.Dp(1280), unit.Dp(800)))

		err := view.Loop(w)
		shutdown()
		if err != nil {
			logging.Error("window loop failed", "error", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

// dirtySurface feeds pasted content into the note and flags it for the
// autosaver.
type dirtySurface struct {
	doc   *richtext.Document
	saver *notes.Autosaver
}

func (s *dirtySurface) InsertTextAtCursor(text string) {
	s.doc.InsertTextAtCursor(text)
	s.saver.MarkDirty()
}

func (s *dirtySurface) InsertImageAtCursor(img *image.RGBA, w, h int) {
	s.doc.InsertImageAtCursor(img, w, h)
	s.saver.MarkDirty()
}
