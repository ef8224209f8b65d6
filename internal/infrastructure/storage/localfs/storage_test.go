package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestListWalksSortedMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.xml"), "<b/>")
	writeFile(t, filepath.Join(root, "a.XML"), "<a/>")
	writeFile(t, filepath.Join(root, "2019", "c.xml"), "<c/>")
	writeFile(t, filepath.Join(root, "notes.txt"), "skip")
	writeFile(t, filepath.Join(root, ".hidden.xml"), "skip")
	writeFile(t, filepath.Join(root, ".cache", "d.xml"), "skip")

	storage, err := New(root, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ids, err := storage.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"2019/c.xml", "a.XML", "b.xml"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("List() = %v, want %v", ids, want)
	}
}

func TestOpenRelativeAndAbsolute(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "2019", "c.xml")
	writeFile(t, abs, "<c/>")

	storage, err := New(root, ".xml")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for _, key := range []string{"2019/c.xml", abs} {
		reader, err := storage.Open(context.Background(), key)
		if err != nil {
			t.Fatalf("Open(%q) error = %v", key, err)
		}
		raw, _ := io.ReadAll(reader)
		reader.Close()
		if string(raw) != "<c/>" {
			t.Fatalf("Open(%q) content = %q", key, raw)
		}
	}
	if _, err := storage.Open(context.Background(), "missing.xml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestNewRejectsMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestManifestSkipsBlankCommentsAndOtherSuffixes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.txt")
	writeFile(t, path, "# filings\n/data/a.xml\n\n  b.XML  \n#c.xml\nnotes.txt\nd.xml.bak\n")

	ids, err := NewManifest(path, "").List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"/data/a.xml", "b.XML"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("List() = %v, want %v", ids, want)
	}

	ids, err = NewManifest(path, ".TXT").List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"notes.txt"}) {
		t.Fatalf("List() with custom suffix = %v", ids)
	}
}
