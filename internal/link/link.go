// Package link derives stable storage keys from document paths.
//
// Notes are looked up by the key of the document they belong to, so the
// derivation must be deterministic across runs and collision-resistant
// across paths. The key is a BLAKE2b-256 digest of the cleaned absolute
// path.
package link

import (
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// KeySize is the length of a Key in bytes.
const KeySize = 32

// Key is a fixed-length identifier for a source document.
type Key [KeySize]byte

// String returns the full lowercase hex form, used as the store's lookup
// column.
func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Short returns a 12-character prefix for display and file naming.
func (k Key) Short() string {
	return k.String()[:12]
}

// Resolve derives the key for a document path. The path is made absolute
// and cleaned first, so "a/../b.pdf" and "b.pdf" resolve identically from
// the same working directory.
func Resolve(path string) (Key, error) {
	if strings.TrimSpace(path) == "" {
		return Key{}, fmt.Errorf("resolve key: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Key{}, fmt.Errorf("resolve key for %q: %w", path, err)
	}
	return Key(blake2b.Sum256([]byte(abs))), nil
}

// ParseKey decodes the hex form produced by Key.String.
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != KeySize*2 {
		return k, fmt.Errorf("parse key: want %d hex chars, got %d", KeySize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("parse key: %w", err)
	}
	copy(k[:], b)
	return k, nil
}
