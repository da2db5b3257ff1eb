// Package notes persists note documents keyed by their source document's
// link key.
//
// Storage is a single SQLite database under the application data
// directory. Note content is the richtext JSON form, validated against an
// embedded JSON Schema on load so a corrupted row degrades to an empty
// note instead of a crash.
package notes

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pdfnotes/internal/link"
	"pdfnotes/internal/logging"
	"pdfnotes/internal/richtext"
)

// Schema for the notes store.
const schema = `
CREATE TABLE IF NOT EXISTS notes (
    link_key     TEXT PRIMARY KEY,
    source_path  TEXT NOT NULL,
    source_name  TEXT NOT NULL,
    content      TEXT NOT NULL,
    modified_ns  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_modified ON notes(modified_ns);
`

// Store is the SQLite-backed notes store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the notes database at the given path and applies
// the schema. The parent directory is created owner-only; notes can hold
// excerpts of private documents.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create notes directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open notes database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply notes schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save upserts the note for key. sourcePath is kept alongside for listing
// and diagnostics; the key alone identifies the row.
func (s *Store) Save(key link.Key, sourcePath string, doc *richtext.Document) error {
	content, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode note: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO notes (link_key, source_path, source_name, content, modified_ns)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(link_key) DO UPDATE SET
			source_path = excluded.source_path,
			source_name = excluded.source_name,
			content     = excluded.content,
			modified_ns = excluded.modified_ns`,
		key.String(), sourcePath, filepath.Base(sourcePath), string(content), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save note %s: %w", key.Short(), err)
	}
	return nil
}

// Load returns the note for key. found is false when no note exists or
// the stored content fails schema validation; the latter is logged but
// not an error, so the app opens with a fresh note instead of failing.
func (s *Store) Load(key link.Key) (doc *richtext.Document, found bool, err error) {
	var content string
	row := s.db.QueryRow(`SELECT content FROM notes WHERE link_key = ?`, key.String())
	switch err := row.Scan(&content); err {
	case nil:
	case sql.ErrNoRows:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("load note %s: %w", key.Short(), err)
	}

	if err := ValidateContent([]byte(content)); err != nil {
		logging.Warn("stored note failed validation, starting fresh",
			"key", key.Short(), "error", err)
		return nil, false, nil
	}

	doc = richtext.New()
	if err := json.Unmarshal([]byte(content), doc); err != nil {
		logging.Warn("stored note failed to decode, starting fresh",
			"key", key.Short(), "error", err)
		return nil, false, nil
	}
	return doc, true, nil
}

// Exists reports whether a note is stored for key.
func (s *Store) Exists(key link.Key) (bool, error) {
	var one int
	row := s.db.QueryRow(`SELECT 1 FROM notes WHERE link_key = ?`, key.String())
	switch err := row.Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, fmt.Errorf("check note: %w", err)
	}
}

// Entry describes a stored note for listings.
type Entry struct {
	Key        string
	SourcePath string
	SourceName string
	Modified   time.Time
}

// List returns all stored notes, most recently modified first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT link_key, source_path, source_name, modified_ns
		FROM notes ORDER BY modified_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ns int64
		if err := rows.Scan(&e.Key, &e.SourcePath, &e.SourceName, &ns); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		e.Modified = time.Unix(0, ns)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the note for key. Missing rows are not an error.
func (s *Store) Delete(key link.Key) error {
	if _, err := s.db.Exec(`DELETE FROM notes WHERE link_key = ?`, key.String()); err != nil {
		return fmt.Errorf("delete note %s: %w", key.Short(), err)
	}
	return nil
}
