// Package watcher monitors the open document for external changes.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies a document event.
type EventKind int

const (
	// Changed means the document was rewritten on disk and rendered
	// pages are stale.
	Changed EventKind = iota

	// Removed means the document disappeared from disk.
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes an external change to the open document.
type Event struct {
	Path      string
	Kind      EventKind
	Timestamp time.Time
}

// DefaultDebounce is how long the file must stay quiet before an event
// fires. PDF exporters often write in several bursts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a single document file for external modification.
// The viewer uses its events to re-render pages when the PDF is
// rewritten, for example by a LaTeX build.
type Watcher struct {
	path      string
	debounce  time.Duration
	fsWatcher *fsnotify.Watcher

	events chan Event
	errors chan error

	mu      sync.Mutex
	pending *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for the document at path. A zero debounce falls
// back to DefaultDebounce.
func New(path string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve document path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	return &Watcher{
		path:      abs,
		debounce:  debounce,
		fsWatcher: fsWatcher,
		events:    make(chan Event, 8),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}, nil
}

// Events returns the channel of document events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Path returns the watched document path.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. The parent directory is watched rather than
// the file itself so save-via-rename is caught.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch document directory: %w", err)
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()

	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()

	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.scheduleChanged()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.handleRemoval()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// scheduleChanged (re)arms the debounce timer so one event fires per
// burst of writes.
func (w *Watcher) scheduleChanged() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.emit(Event{Path: w.path, Kind: Changed, Timestamp: time.Now()})
	})
}

// handleRemoval distinguishes a true delete from a rename-over save,
// which surfaces as Rename immediately followed by Create.
func (w *Watcher) handleRemoval() {
	w.mu.Lock()
	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	w.mu.Unlock()

	if _, err := os.Stat(w.path); err == nil {
		w.scheduleChanged()
		return
	}
	w.emit(Event{Path: w.path, Kind: Removed, Timestamp: time.Now()})
}

func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
	}
}
