package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return l
}

func TestLocalWriteReadRoundTrip(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Write(ctx, "aufgaben/a.yaml", []byte("title: test")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, err := l.Read(ctx, "aufgaben/a.yaml")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "title: test" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalReadMissing(t *testing.T) {
	l := newTestLocal(t)
	_, err := l.Read(context.Background(), "missing.yaml")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalDelete(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Write(ctx, "x.yaml", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := l.Delete(ctx, "x.yaml"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := l.Delete(ctx, "x.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalExists(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	ok, err := l.Exists(ctx, "y.yaml")
	if err != nil || ok {
		t.Errorf("Exists on missing file = (%v, %v)", ok, err)
	}
	if err := l.Write(ctx, "y.yaml", []byte("y")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	ok, err = l.Exists(ctx, "y.yaml")
	if err != nil || !ok {
		t.Errorf("Exists after write = (%v, %v)", ok, err)
	}
}

func TestLocalListSortedAndSkipsTempFiles(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	for _, name := range []string{"aufgaben/b.yaml", "aufgaben/a.yaml"} {
		if err := l.Write(ctx, name, []byte("x")); err != nil {
			t.Fatalf("Write %s failed: %v", name, err)
		}
	}
	// A leftover temp file from an interrupted write must be invisible.
	if err := os.WriteFile(filepath.Join(l.BaseDir(), "aufgaben", "c.yaml.tmp"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	paths, err := l.List(ctx, "aufgaben")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"aufgaben/a.yaml", "aufgaben/b.yaml"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], paths[i])
		}
	}
}

func TestLocalListMissingPrefix(t *testing.T) {
	l := newTestLocal(t)
	paths, err := l.List(context.Background(), "nirgends")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestLocalResolveStaysInsideBaseDir(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Write(ctx, "../escape.yaml", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(l.BaseDir(), "escape.yaml")); err != nil {
		t.Errorf("path traversal must be confined to the base dir: %v", err)
	}
}
