package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutWritesObjectAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root, "http://portal.test/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	url, err := store.Put(context.Background(), "events/e1/cover.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "http://portal.test/uploads/events/e1/cover.png" {
		t.Fatalf("unexpected url %q", url)
	}

	got, err := os.ReadFile(filepath.Join(root, "events", "e1", "cover.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "png" {
		t.Fatalf("unexpected content %q", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(root, "events", "e1", ".upload-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestPutRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://portal.test")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"../evil.png", "a/../../b.png", "/abs.png", "", "a//b.png"} {
		if _, err := store.Put(context.Background(), key, "image/png", strings.NewReader("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}
