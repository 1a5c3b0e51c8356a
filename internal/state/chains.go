package state

import (
	"database/sql"
	"fmt"

	"github.com/cadrekit/cadre/pkg/models"
)

// Chain and sub-task CRUD operations. A missing row returns (nil, nil)
// rather than an error; callers decide whether absence is fatal.

// CreateChain persists a chain and all of its sub-tasks atomically.
func (db *DB) CreateChain(chain *models.DelegationChain) error {
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO chains (id, root_task_id, coordinator_id, created_at)
			VALUES (?, ?, ?, ?)
		`, chain.ID, chain.RootTaskID, chain.CoordinatorID, formatTime(chain.CreatedAt))
		if err != nil {
			return fmt.Errorf("create chain: %w", err)
		}

		for _, st := range chain.SubTasks() {
			if err := insertSubTask(tx, &st); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertSubTask writes one sub-task row inside an open transaction.
func insertSubTask(tx *sql.Tx, st *models.SubTask) error {
	_, err := tx.Exec(`
		INSERT INTO subtasks (id, chain_id, level, target_role, agent_id, description, status, parent_subtask_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.ID, st.ChainID, st.Level, string(st.TargetRole), st.AgentID, st.Description, string(st.Status), st.ParentSubTaskID, formatTime(st.CreatedAt))
	if err != nil {
		return fmt.Errorf("create subtask %s: %w", st.ID, err)
	}
	return nil
}

// AddSubTask appends one sub-task to an existing chain.
func (db *DB) AddSubTask(st *models.SubTask) error {
	return db.Transaction(func(tx *sql.Tx) error {
		return insertSubTask(tx, st)
	})
}

// GetChain retrieves a chain with its sub-tasks grouped by level.
func (db *DB) GetChain(id string) (*models.DelegationChain, error) {
	row := db.QueryRow(`
		SELECT id, root_task_id, coordinator_id, created_at
		FROM chains WHERE id = ?
	`, id)

	var chain models.DelegationChain
	var createdAt string
	err := row.Scan(&chain.ID, &chain.RootTaskID, &chain.CoordinatorID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chain: %w", err)
	}
	chain.CreatedAt, _ = parseTime(createdAt)

	subtasks, err := db.ListSubTasksByChain(chain.ID)
	if err != nil {
		return nil, err
	}
	chain.Levels = models.BuildLevels(subtasks)
	return &chain, nil
}

// ListChains lists every chain, oldest first, each with its sub-tasks.
func (db *DB) ListChains() ([]models.DelegationChain, error) {
	rows, err := db.Query(`
		SELECT id, root_task_id, coordinator_id, created_at
		FROM chains ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var chains []models.DelegationChain
	for rows.Next() {
		var chain models.DelegationChain
		var createdAt string
		if err := rows.Scan(&chain.ID, &chain.RootTaskID, &chain.CoordinatorID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		chain.CreatedAt, _ = parseTime(createdAt)
		chains = append(chains, chain)
	}

	for i := range chains {
		subtasks, err := db.ListSubTasksByChain(chains[i].ID)
		if err != nil {
			return nil, err
		}
		chains[i].Levels = models.BuildLevels(subtasks)
	}
	return chains, nil
}

// GetSubTask retrieves a sub-task by ID.
func (db *DB) GetSubTask(id string) (*models.SubTask, error) {
	row := db.QueryRow(`
		SELECT id, chain_id, level, target_role, agent_id, description, status, parent_subtask_id, created_at
		FROM subtasks WHERE id = ?
	`, id)

	st, err := scanSubTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subtask: %w", err)
	}
	return st, nil
}

// UpdateSubTask updates a sub-task's status and assignment.
func (db *DB) UpdateSubTask(st *models.SubTask) error {
	_, err := db.Exec(`
		UPDATE subtasks SET agent_id = ?, status = ?, parent_subtask_id = ?
		WHERE id = ?
	`, st.AgentID, string(st.Status), st.ParentSubTaskID, st.ID)
	if err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

// ListSubTasksByChain lists a chain's sub-tasks in level order.
func (db *DB) ListSubTasksByChain(chainID string) ([]models.SubTask, error) {
	rows, err := db.Query(`
		SELECT id, chain_id, level, target_role, agent_id, description, status, parent_subtask_id, created_at
		FROM subtasks WHERE chain_id = ? ORDER BY level, created_at, id
	`, chainID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks by chain: %w", err)
	}
	defer rows.Close()

	var subtasks []models.SubTask
	for rows.Next() {
		st, err := scanSubTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan subtask: %w", err)
		}
		subtasks = append(subtasks, *st)
	}
	return subtasks, nil
}

// scanSubTask scans one sub-task row via the given scan function.
func scanSubTask(scan func(dest ...any) error) (*models.SubTask, error) {
	var st models.SubTask
	var createdAt string
	var agentID, description, parentID sql.NullString
	err := scan(&st.ID, &st.ChainID, &st.Level, &st.TargetRole, &agentID, &description, &st.Status, &parentID, &createdAt)
	if err != nil {
		return nil, err
	}
	if agentID.Valid {
		st.AgentID = agentID.String
	}
	if description.Valid {
		st.Description = description.String
	}
	if parentID.Valid {
		st.ParentSubTaskID = parentID.String
	}
	st.CreatedAt, _ = parseTime(createdAt)
	return &st, nil
}
