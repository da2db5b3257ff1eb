package notes

import (
	"sync"
	"time"
)

// DefaultAutosaveInterval matches the 30 second timer the notes editor
// has always used.
const DefaultAutosaveInterval = 30 * time.Second

// AutosaveConfig configures the autosaver.
type AutosaveConfig struct {
	// Interval between autosave checks.
	Interval time.Duration

	// Save persists the current note. Called only when dirty.
	Save func() error

	// OnSave is called after a successful autosave (status line, desktop
	// notification). Optional.
	OnSave func()

	// OnError is called when a save fails. Optional.
	OnError func(error)
}

// Autosaver periodically saves the open note when it has unsaved
// changes. MarkDirty is safe to call from the interaction thread while
// the timer goroutine runs.
type Autosaver struct {
	cfg AutosaveConfig

	mu    sync.Mutex
	dirty bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAutosaver creates an autosaver. A zero or negative interval falls
// back to DefaultAutosaveInterval.
func NewAutosaver(cfg AutosaveConfig) *Autosaver {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultAutosaveInterval
	}
	return &Autosaver{cfg: cfg, done: make(chan struct{})}
}

// MarkDirty records that the note has unsaved changes.
func (a *Autosaver) MarkDirty() {
	a.mu.Lock()
	a.dirty = true
	a.mu.Unlock()
}

// Dirty reports whether there are unsaved changes.
func (a *Autosaver) Dirty() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// Start launches the timer goroutine.
func (a *Autosaver) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.saveIfDirty()
			case <-a.done:
				return
			}
		}
	}()
}

// Stop shuts the timer down and flushes any pending changes. Safe to
// call more than once; later calls still flush.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() { close(a.done) })
	a.wg.Wait()
	a.saveIfDirty()
}

// Flush saves immediately regardless of the timer, clearing the dirty
// flag on success. Used by the explicit save action.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	a.dirty = false
	a.mu.Unlock()

	if err := a.cfg.Save(); err != nil {
		a.MarkDirty()
		return err
	}
	if a.cfg.OnSave != nil {
		a.cfg.OnSave()
	}
	return nil
}

func (a *Autosaver) saveIfDirty() {
	a.mu.Lock()
	dirty := a.dirty
	a.dirty = false
	a.mu.Unlock()
	if !dirty {
		return
	}

	if err := a.cfg.Save(); err != nil {
		a.MarkDirty()
		if a.cfg.OnError != nil {
			a.cfg.OnError(err)
		}
		return
	}
	if a.cfg.OnSave != nil {
		a.cfg.OnSave()
	}
}
