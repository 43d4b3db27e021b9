package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/samanthvittal/bookmark-browser/internal/store"
)

func TestReadMissing(t *testing.T) {
	b := New(t.TempDir())
	if _, err := b.Read(context.Background(), "bookmarks.json"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Read() error = %v, want store.ErrNotFound", err)
	}
}

func TestWriteCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	b := New(dir)
	ctx := context.Background()

	if err := b.Write(ctx, "bookmarks.json", []byte(`{"folders":[]}`)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := b.Read(ctx, "bookmarks.json")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != `{"folders":[]}` {
		t.Errorf("Read() = %s", got)
	}

	info, err := os.Stat(b.Path("bookmarks.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %v, want 0600", perm)
	}
}

func TestWriteReplacesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := New(dir)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		if err := b.Write(ctx, "settings.json", []byte(content)); err != nil {
			t.Fatalf("Write(%q) error = %v", content, err)
		}
	}

	got, _ := b.Read(ctx, "settings.json")
	if string(got) != "three" {
		t.Errorf("Read() = %s, want three", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("leftover files: %v", names)
	}
}

func TestInvalidKeys(t *testing.T) {
	b := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape", `a\b`, "sub/file"} {
		t.Run(key, func(t *testing.T) {
			if err := b.Write(ctx, key, []byte("x")); err == nil {
				t.Errorf("Write(%q) should fail", key)
			}
			if _, err := b.Read(ctx, key); err == nil {
				t.Errorf("Read(%q) should fail", key)
			}
		})
	}
}
