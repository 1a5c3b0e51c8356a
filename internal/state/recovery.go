package state

import (
	"fmt"
	"time"

	"github.com/cadrekit/cadre/pkg/models"
)

// InterruptedChain summarizes a chain that still has work open: sub-tasks
// in progress or parked in the escalated state awaiting reassignment.
type InterruptedChain struct {
	ChainID    string
	RootTaskID string
	CreatedAt  time.Time
	InProgress int
	Escalated  int
}

// RecoveryManager inspects the chain tables for work that stalled, so
// startup and status checks can surface it.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a RecoveryManager over the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted returns every chain with open work, oldest first.
// A chain whose leaves are all completed never appears here.
func (rm *RecoveryManager) CheckForInterrupted() ([]InterruptedChain, error) {
	rows, err := rm.db.Query(`
		SELECT c.id, c.root_task_id, c.created_at,
			SUM(CASE WHEN s.status = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN s.status = ? THEN 1 ELSE 0 END)
		FROM chains c JOIN subtasks s ON s.chain_id = c.id
		GROUP BY c.id, c.root_task_id, c.created_at
		HAVING SUM(CASE WHEN s.status IN (?, ?) THEN 1 ELSE 0 END) > 0
		ORDER BY c.created_at
	`, string(models.SubTaskInProgress), string(models.SubTaskEscalated),
		string(models.SubTaskInProgress), string(models.SubTaskEscalated))
	if err != nil {
		return nil, fmt.Errorf("query interrupted chains: %w", err)
	}
	defer rows.Close()

	var interrupted []InterruptedChain
	for rows.Next() {
		var ic InterruptedChain
		var createdAt string
		if err := rows.Scan(&ic.ChainID, &ic.RootTaskID, &createdAt, &ic.InProgress, &ic.Escalated); err != nil {
			return nil, fmt.Errorf("scan interrupted chain: %w", err)
		}
		ic.CreatedAt, _ = parseTime(createdAt)
		interrupted = append(interrupted, ic)
	}
	return interrupted, nil
}

// StaleInProgress returns sub-tasks still in progress that were
// delegated before the cutoff. The caller escalates them through the
// normal escalation path; this method only reads.
func (rm *RecoveryManager) StaleInProgress(olderThan time.Duration) ([]models.SubTask, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	rows, err := rm.db.Query(`
		SELECT id, chain_id, level, target_role, agent_id, description, status, parent_subtask_id, created_at
		FROM subtasks WHERE status = ? AND created_at < ? ORDER BY created_at, id
	`, string(models.SubTaskInProgress), cutoff)
	if err != nil {
		return nil, fmt.Errorf("query stale subtasks: %w", err)
	}
	defer rows.Close()

	var stale []models.SubTask
	for rows.Next() {
		st, err := scanSubTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan stale subtask: %w", err)
		}
		stale = append(stale, *st)
	}
	return stale, nil
}
