package link

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestResolveDeterministic(t *testing.T) {
	a, err := Resolve("/home/user/papers/attention.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, err := Resolve("/home/user/papers/attention.pdf")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a != b {
		t.Error("same path produced different keys")
	}
}

func TestResolveCleansPath(t *testing.T) {
	a, _ := Resolve("/home/user/papers/attention.pdf")
	b, _ := Resolve("/home/user/drafts/../papers/./attention.pdf")
	if a != b {
		t.Error("equivalent paths produced different keys")
	}
}

func TestResolveRelativeMatchesAbsolute(t *testing.T) {
	rel := "notes/sample.pdf"
	abs, err := filepath.Abs(rel)
	if err != nil {
		t.Fatal(err)
	}

	a, _ := Resolve(rel)
	b, _ := Resolve(abs)
	if a != b {
		t.Error("relative path key differs from its absolute form")
	}
}

func TestResolveEmptyPath(t *testing.T) {
	if _, err := Resolve("   "); err == nil {
		t.Error("expected error for blank path")
	}
}

func TestNoCollisionsAcrossManyPaths(t *testing.T) {
	seen := make(map[Key]string, 12000)

	add := func(path string) {
		t.Helper()
		k, err := Resolve(path)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", path, err)
		}
		if prev, ok := seen[k]; ok {
			t.Fatalf("collision: %q and %q share key %s", prev, path, k)
		}
		seen[k] = path
	}

	for i := 0; i < 4000; i++ {
		add(fmt.Sprintf("/home/user/papers/doc-%d.pdf", i))
		add(fmt.Sprintf("/home/user/papers/sub%d/doc.pdf", i))
		add(fmt.Sprintf("/mnt/share/%d/doc-%d.pdf", i%97, i))
	}
	if len(seen) != 12000 {
		t.Fatalf("expected 12000 distinct keys, got %d", len(seen))
	}
}

func TestKeyStringAndParse(t *testing.T) {
	k, _ := Resolve("/tmp/x.pdf")

	s := k.String()
	if len(s) != 64 {
		t.Fatalf("hex key length = %d, want 64", len(s))
	}
	if len(k.Short()) != 12 {
		t.Errorf("short key length = %d, want 12", len(k.Short()))
	}

	back, err := ParseKey(s)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if back != k {
		t.Error("ParseKey did not round-trip")
	}

	if _, err := ParseKey("zz"); err == nil {
		t.Error("expected error for short input")
	}
	if _, err := ParseKey(s[:63] + "g"); err == nil {
		t.Error("expected error for non-hex input")
	}
}
