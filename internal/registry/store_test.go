package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.json")
	return NewStore(path, nil)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	store := setupStore(t)
	doc := validDocument(t)

	report, err := store.Save(doc)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if report.HasErrors() {
		t.Fatalf("Save() report errors: %v", report.Errors)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Agents) != 1 {
		t.Fatalf("loaded %d agents, want 1", len(loaded.Agents))
	}
	if loaded.Agents[0].ID != doc.Agents[0].ID {
		t.Errorf("agent ID = %q, want %q", loaded.Agents[0].ID, doc.Agents[0].ID)
	}
	if loaded.Version != doc.Version {
		t.Errorf("version = %q, want %q", loaded.Version, doc.Version)
	}
	if loaded.Config.PromotionThreshold != doc.Config.PromotionThreshold {
		t.Errorf("promotion_threshold = %v, want %v", loaded.Config.PromotionThreshold, doc.Config.PromotionThreshold)
	}
}

func TestStore_Save_RejectsInvalidDocument(t *testing.T) {
	store := setupStore(t)
	good := validDocument(t)
	if _, err := store.Save(good); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	bad := validDocument(t)
	bad.Agents[0].Metrics.PRSuccessRate = 2.0
	report, err := store.Save(bad)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("Save() error = %v, want ErrValidationFailed", err)
	}
	if !report.HasErrors() {
		t.Error("Save() returned no report errors for invalid document")
	}

	// The persisted copy must still be the last valid document.
	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Agents[0].Metrics.PRSuccessRate != 0.75 {
		t.Errorf("pr_success_rate = %v, invalid write reached disk", loaded.Agents[0].Metrics.PRSuccessRate)
	}
}

func TestStore_Save_AllowsWarnings(t *testing.T) {
	store := setupStore(t)
	doc := validDocument(t)
	doc.Agents[0].TotalContributions = 5 // drift warning

	report, err := store.Save(doc)
	if err != nil {
		t.Fatalf("Save() with warnings error: %v", err)
	}
	if !report.HasWarnings() {
		t.Error("expected drift warning in report")
	}
}

func TestStore_Load_MissingFile(t *testing.T) {
	store := setupStore(t)
	if _, err := store.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestStore_Init(t *testing.T) {
	store := setupStore(t)

	if _, err := store.Init(DefaultDocument()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if _, err := store.Init(DefaultDocument()); !errors.Is(err, ErrExists) {
		t.Errorf("second Init() error = %v, want ErrExists", err)
	}
}

func TestStore_TryLock(t *testing.T) {
	store := setupStore(t)

	lock, err := store.TryLock()
	if err != nil {
		t.Fatalf("TryLock() error: %v", err)
	}

	if _, err := store.TryLock(); !errors.Is(err, ErrLocked) {
		t.Errorf("second TryLock() error = %v, want ErrLocked", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}

	relock, err := store.TryLock()
	if err != nil {
		t.Fatalf("TryLock() after release error: %v", err)
	}
	relock.Release()
}

func TestStore_TryLock_ReclaimsStale(t *testing.T) {
	store := setupStore(t)
	lockPath := store.Path() + ".lock"

	if err := os.WriteFile(lockPath, []byte("pid=1 time=old\n"), 0644); err != nil {
		t.Fatalf("write stale lockfile: %v", err)
	}
	stale := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lockPath, stale, stale); err != nil {
		t.Fatalf("age lockfile: %v", err)
	}

	lock, err := store.TryLock()
	if err != nil {
		t.Fatalf("TryLock() with stale lockfile error: %v", err)
	}
	lock.Release()
}

func TestDefaultDocument_Valid(t *testing.T) {
	report := Validate(DefaultDocument())
	if report.HasErrors() {
		t.Errorf("DefaultDocument() has errors: %v", report.Errors)
	}
	if report.HasWarnings() {
		t.Errorf("DefaultDocument() has warnings: %v", report.Warnings)
	}
}
