package models

import "time"

// SubTaskStatus represents the state of one delegated sub-task.
type SubTaskStatus string

const (
	// SubTaskPending indicates the sub-task is waiting to start.
	SubTaskPending SubTaskStatus = "pending"
	// SubTaskInProgress indicates the assigned agent is working on it.
	SubTaskInProgress SubTaskStatus = "in_progress"
	// SubTaskCompleted indicates the sub-task finished.
	SubTaskCompleted SubTaskStatus = "completed"
	// SubTaskEscalated indicates the sub-task is blocked and was routed
	// up the hierarchy for reassignment.
	SubTaskEscalated SubTaskStatus = "escalated"
)

// Valid returns true if the status is a known value.
func (s SubTaskStatus) Valid() bool {
	switch s {
	case SubTaskPending, SubTaskInProgress, SubTaskCompleted, SubTaskEscalated:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if next is a legal successor state.
// Completion requires in_progress first, and only reassignment moves an
// escalated sub-task back to pending.
func (s SubTaskStatus) CanTransitionTo(next SubTaskStatus) bool {
	switch s {
	case SubTaskPending:
		return next == SubTaskInProgress || next == SubTaskEscalated
	case SubTaskInProgress:
		return next == SubTaskCompleted || next == SubTaskEscalated
	case SubTaskEscalated:
		return next == SubTaskPending
	default:
		return false
	}
}

// SubTask is one delegated unit of work inside a chain.
type SubTask struct {
	// ID is the unique sub-task identifier.
	ID string `json:"subtask_id"`
	// ChainID is the owning delegation chain.
	ChainID string `json:"chain_id"`
	// Level is the hierarchy depth, 1 for sub-tasks delegated by the
	// coordinator, 2 for sub-tasks delegated by a specialist.
	Level int `json:"level"`
	// TargetRole is the role the sub-task was delegated to.
	TargetRole Role `json:"target_role"`
	// AgentID is the agent assigned to the sub-task.
	AgentID string `json:"agent_id"`
	// Description says what the sub-task delivers.
	Description string `json:"description"`
	// Status is the sub-task's current state.
	Status SubTaskStatus `json:"status"`
	// ParentSubTaskID is the sub-task whose owner delegated this one.
	// Empty for sub-tasks delegated directly by the coordinator.
	ParentSubTaskID string `json:"parent_subtask_id,omitempty"`
	// CreatedAt is when the sub-task was delegated.
	CreatedAt time.Time `json:"created_at"`
}

// DelegationChain is the tree of sub-tasks produced when a task is
// decomposed and assigned down the hierarchy.
type DelegationChain struct {
	// ID is the unique chain identifier.
	ID string `json:"chain_id"`
	// RootTaskID is the task the chain decomposes.
	RootTaskID string `json:"root_task_id"`
	// CoordinatorID is the agent coordinating the chain.
	CoordinatorID string `json:"coordinator_id"`
	// Levels holds the chain's sub-tasks grouped by depth; Levels[0] is
	// level 1.
	Levels [][]SubTask `json:"levels"`
	// CreatedAt is when the chain was persisted.
	CreatedAt time.Time `json:"created_at"`
}

// SubTasks returns every sub-task in the chain in level order.
func (c *DelegationChain) SubTasks() []SubTask {
	var all []SubTask
	for _, level := range c.Levels {
		all = append(all, level...)
	}
	return all
}

// Leaves returns the sub-tasks no other sub-task descends from. Chain
// completion is judged on leaves only.
func (c *DelegationChain) Leaves() []SubTask {
	all := c.SubTasks()
	hasChild := make(map[string]bool, len(all))
	for _, st := range all {
		if st.ParentSubTaskID != "" {
			hasChild[st.ParentSubTaskID] = true
		}
	}
	var leaves []SubTask
	for _, st := range all {
		if !hasChild[st.ID] {
			leaves = append(leaves, st)
		}
	}
	return leaves
}

// Complete returns true only when every leaf sub-task is completed. A
// pending or escalated leaf blocks completion.
func (c *DelegationChain) Complete() bool {
	leaves := c.Leaves()
	if len(leaves) == 0 {
		return false
	}
	for _, st := range leaves {
		if st.Status != SubTaskCompleted {
			return false
		}
	}
	return true
}

// BuildLevels groups sub-tasks by level for chain assembly. Sub-tasks
// keep their given order within each level.
func BuildLevels(subtasks []SubTask) [][]SubTask {
	maxLevel := 0
	for _, st := range subtasks {
		if st.Level > maxLevel {
			maxLevel = st.Level
		}
	}
	levels := make([][]SubTask, maxLevel)
	for _, st := range subtasks {
		if st.Level < 1 {
			continue
		}
		levels[st.Level-1] = append(levels[st.Level-1], st)
	}
	return levels
}

// DelegationRecord is one append-only log entry for a granted
// delegation.
type DelegationRecord struct {
	// ID is the unique record identifier.
	ID string `json:"id"`
	// ChainID is the chain the delegation belongs to.
	ChainID string `json:"chain_id"`
	// SubTaskID is the sub-task the delegation created.
	SubTaskID string `json:"subtask_id"`
	// FromAgentID is the delegating agent.
	FromAgentID string `json:"from_agent"`
	// ToAgentID is the agent the work was handed to.
	ToAgentID string `json:"to_agent"`
	// Description says what was delegated.
	Description string `json:"description"`
	// CreatedAt is when the delegation was granted.
	CreatedAt time.Time `json:"created_at"`
}

// EscalationRecord is one append-only log entry for an escalation.
type EscalationRecord struct {
	// ID is the unique record identifier.
	ID string `json:"id"`
	// ChainID is the chain the escalation belongs to.
	ChainID string `json:"chain_id"`
	// SubTaskID is the blocked sub-task.
	SubTaskID string `json:"subtask_id"`
	// FromAgentID is the agent that raised the escalation.
	FromAgentID string `json:"from_agent"`
	// TargetAgentID is the agent the sub-task was routed to. Empty when
	// routing was left to manual oversight.
	TargetAgentID string `json:"target_agent,omitempty"`
	// Reason says why the sub-task is blocked.
	Reason string `json:"reason"`
	// CreatedAt is when the escalation was raised.
	CreatedAt time.Time `json:"created_at"`
}

// DelegationStats is the rolling summary kept alongside the delegation
// log.
type DelegationStats struct {
	// TotalDelegations counts every granted delegation.
	TotalDelegations int `json:"total_delegations"`
	// SuccessfulDelegations counts delegations whose sub-task completed.
	SuccessfulDelegations int `json:"successful_delegations"`
	// Escalations counts every escalation raised.
	Escalations int `json:"escalations"`
	// AvgChainLength is the mean number of sub-tasks per chain.
	AvgChainLength float64 `json:"avg_chain_length"`
}
