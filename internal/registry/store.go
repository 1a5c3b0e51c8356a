// Package registry implements the agent registry document store and the
// validator that gates every write to it.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/pkg/models"
)

var (
	// ErrLocked is returned when another run holds the registry lock.
	ErrLocked = errors.New("registry is locked by another run")
	// ErrValidationFailed is returned when a document with validation
	// errors is submitted for persistence.
	ErrValidationFailed = errors.New("registry document failed validation")
	// ErrExists is returned when initializing a registry that is
	// already present.
	ErrExists = errors.New("registry document already exists")
)

// lockStaleAfter is how old a lockfile may grow before it is treated as
// the leftover of a crashed run and reclaimed.
const lockStaleAfter = 15 * time.Minute

// Store is the handle to the registry document. All reads load one
// consistent snapshot; all writes are validated and then atomically
// replace the persisted copy.
type Store struct {
	path   string
	logger *logging.Logger
}

// NewStore creates a store for the document at path. A nil logger
// disables debug logging.
func NewStore(path string, logger *logging.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and decodes the current document snapshot.
func (s *Store) Load() (*models.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return &doc, nil
}

// Save validates the document and atomically replaces the persisted
// copy. The validation report is returned in all cases; when it carries
// errors nothing is written and the error wraps ErrValidationFailed.
// Warnings never block the write.
func (s *Store) Save(doc *models.Document) (*Report, error) {
	report := Validate(doc)
	if report.HasErrors() {
		return report, fmt.Errorf("%w: %d errors", ErrValidationFailed, len(report.Errors))
	}

	if err := s.replace(doc); err != nil {
		return report, err
	}
	s.logger.Log("registry saved: %d agents, %d hall of fame", len(doc.Agents), len(doc.HallOfFame))
	return report, nil
}

// Init writes a fresh document, refusing to overwrite an existing one.
// The document is validated like any other write.
func (s *Store) Init(doc *models.Document) (*Report, error) {
	if _, err := os.Stat(s.path); err == nil {
		return nil, fmt.Errorf("init %s: %w", s.path, ErrExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat registry: %w", err)
	}
	return s.Save(doc)
}

// replace writes the document to a temp file in the target directory
// and renames it over the registry, so readers never observe a partial
// write.
func (s *Store) replace(doc *models.Document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp registry: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp registry: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Lock is a held registry lock. Release it when the run commits.
type Lock struct {
	path string
}

// TryLock acquires the registry's named lock, failing with ErrLocked
// when another run holds it. A lockfile older than lockStaleAfter is
// treated as abandoned and reclaimed once.
func (s *Store) TryLock() (*Lock, error) {
	lockPath := s.path + ".lock"

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "pid=%d time=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
			f.Close()
			s.logger.Log("registry lock acquired: %s", lockPath)
			return &Lock{path: lockPath}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lockfile: %w", err)
		}

		info, statErr := os.Stat(lockPath)
		if statErr != nil {
			// Holder released between our open and stat; retry.
			continue
		}
		if time.Since(info.ModTime()) < lockStaleAfter {
			return nil, fmt.Errorf("lockfile %s held: %w", lockPath, ErrLocked)
		}

		s.logger.Log("reclaiming stale registry lock: %s (age %s)", lockPath, time.Since(info.ModTime()).Round(time.Second))
		if err := os.Remove(lockPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("lockfile %s contested: %w", lockPath, ErrLocked)
}

// Release removes the lockfile. Safe to call once per acquired lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// DefaultDocument returns a valid empty registry with the standard
// thresholds and weights.
func DefaultDocument() *models.Document {
	return &models.Document{
		Version: "2.0.0",
		Agents:  []models.Agent{},
		Config: models.Config{
			EliminationThreshold: 0.30,
			PromotionThreshold:   0.85,
			MaxActiveAgents:      12,
			MetricsWeight: map[string]float64{
				models.WeightCodeQuality:    0.30,
				models.WeightIssuesResolved: 0.30,
				models.WeightPRSuccessRate:  0.25,
				models.WeightPeerReview:     0.15,
			},
			MinContributionsForRanking: models.DefaultMinContributions,
		},
		HallOfFame: []models.ArchiveRecord{},
	}
}
