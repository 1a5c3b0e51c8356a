// Package state provides SQLite-based persistence for delegation state.
package state

import (
	"io"

	"github.com/cadrekit/cadre/pkg/models"
)

// ChainStore handles chain and sub-task persistence.
type ChainStore interface {
	CreateChain(chain *models.DelegationChain) error
	GetChain(id string) (*models.DelegationChain, error)
	ListChains() ([]models.DelegationChain, error)
	AddSubTask(st *models.SubTask) error
	GetSubTask(id string) (*models.SubTask, error)
	UpdateSubTask(st *models.SubTask) error
	ListSubTasksByChain(chainID string) ([]models.SubTask, error)
}

// LogStore appends to and reads the append-only delegation log.
type LogStore interface {
	AppendDelegation(rec *models.DelegationRecord) error
	AppendEscalation(rec *models.EscalationRecord) error
	ListDelegations(chainID string) ([]models.DelegationRecord, error)
	ListEscalations(chainID string) ([]models.EscalationRecord, error)
	Stats() (*models.DelegationStats, error)
}

// EvaluationStore records and reads evaluation cycle history.
type EvaluationStore interface {
	RecordEvaluation(results *models.EvaluationResults) error
	ListEvaluations(limit int) ([]EvaluationRow, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for delegation-state persistence. The
// delegation engine works against this rather than the concrete SQLite
// implementation. It composes focused sub-interfaces for modularity.
type Store interface {
	io.Closer
	Migrator
	ChainStore
	LogStore
	EvaluationStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store           = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
	_ ChainStore      = (*DB)(nil)
	_ LogStore        = (*DB)(nil)
	_ EvaluationStore = (*DB)(nil)
)
