//go:build !linux

// Package notify shows desktop notifications for background events such
// as autosave and external document changes.
package notify

// Notifier is a no-op on platforms without a freedesktop notification
// service.
type Notifier struct{}

// New creates a notifier.
func New(appName string) *Notifier { return &Notifier{} }

// Send is a no-op.
func (n *Notifier) Send(summary, body string) error { return nil }

// Close is a no-op.
func (n *Notifier) Close() error { return nil }
