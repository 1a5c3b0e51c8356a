package state

import (
	"database/sql"
	"fmt"

	"github.com/cadrekit/cadre/pkg/models"
)

// Log entry kinds. The delegation log is append-only: rows are never
// updated or deleted, so the audit trail survives chain pruning.
const (
	logKindDelegation = "delegation"
	logKindEscalation = "escalation"
)

// AppendDelegation records a granted delegation.
func (db *DB) AppendDelegation(rec *models.DelegationRecord) error {
	_, err := db.Exec(`
		INSERT INTO delegation_log (id, kind, chain_id, subtask_id, from_agent_id, to_agent_id, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, logKindDelegation, rec.ChainID, rec.SubTaskID, rec.FromAgentID, rec.ToAgentID, rec.Description, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("append delegation: %w", err)
	}
	return nil
}

// AppendEscalation records a raised escalation. TargetAgentID may be
// empty when routing was left to manual oversight.
func (db *DB) AppendEscalation(rec *models.EscalationRecord) error {
	var target *string
	if rec.TargetAgentID != "" {
		target = &rec.TargetAgentID
	}

	_, err := db.Exec(`
		INSERT INTO delegation_log (id, kind, chain_id, subtask_id, from_agent_id, to_agent_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, logKindEscalation, rec.ChainID, rec.SubTaskID, rec.FromAgentID, target, rec.Reason, formatTime(rec.CreatedAt))
	if err != nil {
		return fmt.Errorf("append escalation: %w", err)
	}
	return nil
}

// ListDelegations lists the delegation entries for a chain, oldest
// first. An empty chainID lists every chain's entries.
func (db *DB) ListDelegations(chainID string) ([]models.DelegationRecord, error) {
	rows, err := db.logRows(logKindDelegation, chainID)
	if err != nil {
		return nil, fmt.Errorf("list delegations: %w", err)
	}
	defer rows.Close()

	var records []models.DelegationRecord
	for rows.Next() {
		var rec models.DelegationRecord
		var toAgent, description, reason sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ChainID, &rec.SubTaskID, &rec.FromAgentID, &toAgent, &description, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan delegation: %w", err)
		}
		if toAgent.Valid {
			rec.ToAgentID = toAgent.String
		}
		if description.Valid {
			rec.Description = description.String
		}
		rec.CreatedAt, _ = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, nil
}

// ListEscalations lists the escalation entries for a chain, oldest
// first. An empty chainID lists every chain's entries.
func (db *DB) ListEscalations(chainID string) ([]models.EscalationRecord, error) {
	rows, err := db.logRows(logKindEscalation, chainID)
	if err != nil {
		return nil, fmt.Errorf("list escalations: %w", err)
	}
	defer rows.Close()

	var records []models.EscalationRecord
	for rows.Next() {
		var rec models.EscalationRecord
		var target, description, reason sql.NullString
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.ChainID, &rec.SubTaskID, &rec.FromAgentID, &target, &description, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("scan escalation: %w", err)
		}
		if target.Valid {
			rec.TargetAgentID = target.String
		}
		if reason.Valid {
			rec.Reason = reason.String
		}
		rec.CreatedAt, _ = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, nil
}

// logRows queries log entries of one kind, optionally chain-scoped.
func (db *DB) logRows(kind, chainID string) (*sql.Rows, error) {
	if chainID != "" {
		return db.Query(`
			SELECT id, chain_id, subtask_id, from_agent_id, to_agent_id, description, reason, created_at
			FROM delegation_log WHERE kind = ? AND chain_id = ? ORDER BY created_at, id
		`, kind, chainID)
	}
	return db.Query(`
		SELECT id, chain_id, subtask_id, from_agent_id, to_agent_id, description, reason, created_at
		FROM delegation_log WHERE kind = ? ORDER BY created_at, id
	`, kind)
}

// Stats computes the rolling delegation summary. A delegation counts
// as successful once its sub-task completes; average chain length is
// the mean number of sub-tasks per chain.
func (db *DB) Stats() (*models.DelegationStats, error) {
	stats := &models.DelegationStats{}

	row := db.QueryRow("SELECT COUNT(*) FROM delegation_log WHERE kind = ?", logKindDelegation)
	if err := row.Scan(&stats.TotalDelegations); err != nil {
		return nil, fmt.Errorf("count delegations: %w", err)
	}

	row = db.QueryRow("SELECT COUNT(*) FROM subtasks WHERE status = ?", string(models.SubTaskCompleted))
	if err := row.Scan(&stats.SuccessfulDelegations); err != nil {
		return nil, fmt.Errorf("count completed subtasks: %w", err)
	}

	row = db.QueryRow("SELECT COUNT(*) FROM delegation_log WHERE kind = ?", logKindEscalation)
	if err := row.Scan(&stats.Escalations); err != nil {
		return nil, fmt.Errorf("count escalations: %w", err)
	}

	var avg sql.NullFloat64
	row = db.QueryRow(`
		SELECT AVG(n) FROM (SELECT COUNT(*) AS n FROM subtasks GROUP BY chain_id)
	`)
	if err := row.Scan(&avg); err != nil {
		return nil, fmt.Errorf("average chain length: %w", err)
	}
	if avg.Valid {
		stats.AvgChainLength = avg.Float64
	}

	return stats, nil
}
