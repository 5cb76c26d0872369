package storage

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}

	content := "%PDF-1.4 test bytes"
	n, err := dir.Save("u1_1700000000_hw1.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n != int64(len(content)) {
		t.Fatalf("expected %d bytes written, got %d", len(content), n)
	}

	f, err := dir.Open("u1_1700000000_hw1.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != content {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestSaveRejectsDuplicate(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if _, err := dir.Save("a.pdf", strings.NewReader("x")); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := dir.Save("a.pdf", strings.NewReader("y")); err == nil {
		t.Fatal("expected error on duplicate stored name")
	}
}

func TestOpenMissing(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if _, err := dir.Open("nothing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUnsafeNamesRejected(t *testing.T) {
	dir, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	for _, name := range []string{"", "../escape.pdf", "a/b.pdf", ".hidden"} {
		if _, err := dir.Save(name, strings.NewReader("x")); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
		if _, err := dir.Open(name); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}
