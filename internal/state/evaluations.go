package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cadrekit/cadre/pkg/models"
)

// EvaluationRow is one recorded evaluation cycle summary.
type EvaluationRow struct {
	ID              string    `json:"id"`
	EvaluatedAt     time.Time `json:"evaluated_at"`
	RegistryVersion string    `json:"registry_version"`
	Promoted        int       `json:"promoted"`
	Eliminated      int       `json:"eliminated"`
	Maintained      int       `json:"maintained"`
}

// RecordEvaluation stores one cycle's summary counts for history.
func (db *DB) RecordEvaluation(results *models.EvaluationResults) error {
	evaluatedAt, err := models.ParseTimestamp(results.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO evaluations (id, evaluated_at, registry_version, promoted, eliminated, maintained)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), formatTime(evaluatedAt), results.RegistryVersion,
		len(results.Promoted), len(results.Eliminated), len(results.Maintained))
	if err != nil {
		return fmt.Errorf("record evaluation: %w", err)
	}
	return nil
}

// ListEvaluations lists recorded cycles, newest first. A non-positive
// limit lists them all.
func (db *DB) ListEvaluations(limit int) ([]EvaluationRow, error) {
	query := `
		SELECT id, evaluated_at, registry_version, promoted, eliminated, maintained
		FROM evaluations ORDER BY evaluated_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var evals []EvaluationRow
	for rows.Next() {
		var e EvaluationRow
		var evaluatedAt string
		if err := rows.Scan(&e.ID, &evaluatedAt, &e.RegistryVersion, &e.Promoted, &e.Eliminated, &e.Maintained); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		e.EvaluatedAt, _ = parseTime(evaluatedAt)
		evals = append(evals, e)
	}
	return evals, nil
}
