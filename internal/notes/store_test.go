package notes

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfnotes/internal/link"
	"pdfnotes/internal/richtext"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := createTestStore(t)
	key, err := link.Resolve("/home/user/papers/attention.pdf")
	require.NoError(t, err)

	doc := richtext.New()
	doc.InsertTextAtCursor("Transformer notes\nkey idea: attention")
	require.NoError(t, s.Save(key, "/home/user/papers/attention.pdf", doc))

	got, found, err := s.Load(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, doc.PlainText(), got.PlainText())
}

func TestLoadMissingNote(t *testing.T) {
	s := createTestStore(t)
	key, _ := link.Resolve("/nowhere/missing.pdf")

	doc, found, err := s.Load(key)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestSaveOverwrites(t *testing.T) {
	s := createTestStore(t)
	key, _ := link.Resolve("/home/user/doc.pdf")

	first := richtext.New()
	first.InsertTextAtCursor("draft one")
	require.NoError(t, s.Save(key, "/home/user/doc.pdf", first))

	second := richtext.New()
	second.InsertTextAtCursor("draft two")
	require.NoError(t, s.Save(key, "/home/user/doc.pdf", second))

	got, found, err := s.Load(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "draft two", got.PlainText())
}

func TestExistsAndDelete(t *testing.T) {
	s := createTestStore(t)
	key, _ := link.Resolve("/home/user/doc.pdf")

	ok, err := s.Exists(key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(key, "/home/user/doc.pdf", richtext.New()))
	ok, err = s.Exists(key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(key))
	ok, _ = s.Exists(key)
	assert.False(t, ok)

	// Deleting a missing row is fine.
	require.NoError(t, s.Delete(key))
}

func TestList(t *testing.T) {
	s := createTestStore(t)

	for _, p := range []string{"/a/one.pdf", "/b/two.pdf"} {
		key, _ := link.Resolve(p)
		require.NoError(t, s.Save(key, p, richtext.New()))
	}

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two.pdf", entries[0].SourceName, "most recent first")
	assert.Equal(t, "one.pdf", entries[1].SourceName)
}

func TestCorruptContentDegradesToFresh(t *testing.T) {
	s := createTestStore(t)
	key, _ := link.Resolve("/home/user/doc.pdf")

	// Write a row that is JSON but violates the note schema.
	_, err := s.db.Exec(`
		INSERT INTO notes (link_key, source_path, source_name, content, modified_ns)
		VALUES (?, ?, ?, ?, ?)`,
		key.String(), "/home/user/doc.pdf", "doc.pdf", `{"version":"nope"}`, time.Now().UnixNano())
	require.NoError(t, err)

	doc, found, err := s.Load(key)
	require.NoError(t, err, "corrupt content must not surface as an error")
	assert.False(t, found)
	assert.Nil(t, doc)
}

func TestValidateContent(t *testing.T) {
	good := `{"version":1,"blocks":[{"runs":[{"text":"hi"}]}]}`
	assert.NoError(t, ValidateContent([]byte(good)))

	withImage := `{"version":1,"blocks":[{"runs":[{"image":{"png":"aGk=","w":10,"h":5}}]}]}`
	assert.NoError(t, ValidateContent([]byte(withImage)))

	cases := []string{
		`not json`,
		`{"blocks":[]}`,
		`{"version":1,"blocks":[{"runs":[{"image":{"png":"aGk="}}]}]}`,
		`{"version":1,"blocks":[{"list":9,"runs":[]}]}`,
	}
	for _, c := range cases {
		assert.Error(t, ValidateContent([]byte(c)), "should reject: %s", c)
	}
}

func TestAutosaverSavesOnlyWhenDirty(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(AutosaveConfig{
		Interval: 20 * time.Millisecond,
		Save: func() error {
			saves.Add(1)
			return nil
		},
	})
	a.Start()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), saves.Load(), "clean document must not be saved")

	a.MarkDirty()
	require.Eventually(t, func() bool { return saves.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, a.Dirty())

	a.Stop()
	assert.Equal(t, int32(1), saves.Load(), "stop without new changes must not save again")
}

func TestAutosaverStopFlushesPending(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(AutosaveConfig{
		Interval: time.Hour,
		Save: func() error {
			saves.Add(1)
			return nil
		},
	})
	a.Start()
	a.MarkDirty()
	a.Stop()
	assert.Equal(t, int32(1), saves.Load())
}

func TestAutosaverStopTwice(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(AutosaveConfig{
		Interval: time.Hour,
		Save: func() error {
			saves.Add(1)
			return nil
		},
	})
	a.Start()
	a.MarkDirty()

	// Both a deferred Stop and a shutdown-path Stop may run.
	a.Stop()
	a.Stop()
	assert.Equal(t, int32(1), saves.Load())

	// A late dirty mark still flushes through a repeated Stop.
	a.MarkDirty()
	a.Stop()
	assert.Equal(t, int32(2), saves.Load())
}

func TestAutosaverRetriesAfterError(t *testing.T) {
	var calls atomic.Int32
	var failed atomic.Bool
	a := NewAutosaver(AutosaveConfig{
		Interval: 15 * time.Millisecond,
		Save: func() error {
			if calls.Add(1) == 1 {
				return errors.New("disk full")
			}
			return nil
		},
		OnError: func(err error) { failed.Store(true) },
	})
	a.Start()
	defer a.Stop()

	a.MarkDirty()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.True(t, failed.Load(), "OnError should fire for the failed save")
}

func TestFlush(t *testing.T) {
	var saves atomic.Int32
	a := NewAutosaver(AutosaveConfig{
		Interval: time.Hour,
		Save: func() error {
			saves.Add(1)
			return nil
		},
	})
	a.MarkDirty()
	require.NoError(t, a.Flush())
	assert.Equal(t, int32(1), saves.Load())
	assert.False(t, a.Dirty())
}

func TestLockExcludesSecondInstance(t *testing.T) {
	dir := t.TempDir()

	l1, err := AcquireLock(dir)
	require.NoError(t, err)

	if _, err := AcquireLock(dir); err == nil {
		// Non-unix builds have a no-op lock; only assert exclusion when
		// the first acquisition is real.
		t.Skip("platform lock is a no-op")
	} else {
		assert.ErrorIs(t, err, ErrLocked)
	}

	require.NoError(t, l1.Release())
	l2, err := AcquireLock(dir)
	require.NoError(t, err, "lock should be reacquirable after release")
	require.NoError(t, l2.Release())
}
