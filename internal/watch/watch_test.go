package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupWatcher(t *testing.T) (string, chan struct{}) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("write registry: %v", err)
	}

	changed := make(chan struct{}, 1)
	w, err := New(path, 20*time.Millisecond, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(w.Close)
	return path, changed
}

func waitForChange(t *testing.T, changed chan struct{}) {
	t.Helper()
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	path, changed := setupWatcher(t)

	if err := os.WriteFile(path, []byte(`{"version":"2.0.0"}`), 0644); err != nil {
		t.Fatalf("write registry: %v", err)
	}
	waitForChange(t, changed)
}

func TestWatcher_FiresOnAtomicReplace(t *testing.T) {
	path, changed := setupWatcher(t)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(`{"version":"2.0.0"}`), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
	waitForChange(t, changed)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path, changed := setupWatcher(t)

	other := filepath.Join(filepath.Dir(path), "notes.txt")
	if err := os.WriteFile(other, []byte("unrelated"), 0644); err != nil {
		t.Fatalf("write other file: %v", err)
	}

	select {
	case <-changed:
		t.Error("notification fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "registry.json"), 0, func() {})
	if err == nil {
		t.Fatal("expected error for a missing parent directory")
	}
}
