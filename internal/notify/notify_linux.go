//go:build linux

// Package notify shows desktop notifications for background events such
// as autosave and external document changes.
package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Freedesktop notification D-Bus constants.
const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"
)

// Notifier sends desktop notifications over the session bus.
type Notifier struct {
	appName string

	mu     sync.Mutex
	conn   *dbus.Conn
	lastID uint32
}

// New creates a notifier. The D-Bus connection is opened lazily on the
// first Send, so construction never fails on headless systems.
func New(appName string) *Notifier {
	return &Notifier{appName: appName}
}

// Send shows a notification with the given summary and body. It
// replaces the previous notification from this notifier so autosave
// ticks do not pile up in the shell.
func (n *Notifier) Send(summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("connect session bus: %w", err)
		}
		n.conn = conn
	}

	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyInterface+".Notify", 0,
		n.appName,                 // app_name
		n.lastID,                  // replaces_id
		"",                        // app_icon
		summary,                   // summary
		body,                      // body
		[]string{},                // actions
		map[string]dbus.Variant{}, // hints
		int32(5000),               // expire_timeout ms
	)
	if call.Err != nil {
		return fmt.Errorf("send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("read notification id: %w", err)
	}
	n.lastID = id
	return nil
}

// Close drops the bus connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}
