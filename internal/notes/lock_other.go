//go:build !unix

package notes

import "errors"

// ErrLocked means another pdfnotes instance holds the data directory.
var ErrLocked = errors.New("notes data directory is locked by another instance")

// Lock is a no-op on platforms without flock semantics.
type Lock struct{}

// AcquireLock is a no-op on platforms without flock semantics.
func AcquireLock(dir string) (*Lock, error) { return &Lock{}, nil }

// Release drops the lock.
func (l *Lock) Release() error { return nil }
