// Package delegation enforces the hierarchy's permission rules while
// building, advancing, and escalating delegation chains.
package delegation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/internal/state"
	"github.com/cadrekit/cadre/pkg/models"
)

var (
	// ErrPermissionDenied is returned when the delegation rules do not
	// grant the requested hand-off. Same-tier hand-offs are denied.
	ErrPermissionDenied = errors.New("delegation permission denied")
	// ErrChainNotFound is returned for operations on an unknown chain.
	ErrChainNotFound = errors.New("chain not found")
	// ErrSubTaskNotFound is returned for operations on an unknown sub-task.
	ErrSubTaskNotFound = errors.New("subtask not found")
	// ErrInvalidTransition is returned when a sub-task cannot legally
	// move to the requested state, including completing work that was
	// never started.
	ErrInvalidTransition = errors.New("invalid subtask transition")
	// ErrNoEscalationTarget is returned when an escalation cannot be
	// routed anywhere.
	ErrNoEscalationTarget = errors.New("no escalation target")
)

// AgentPicker selects an agent for a planned sub-task. It returns
// false when no agent fits; the sub-task is then created unassigned.
type AgentPicker func(role models.Role, domain string) (models.Agent, bool)

// Engine runs delegation chains against the permission rules. All
// operations on one chain are serialized.
type Engine struct {
	chains state.ChainStore
	log    state.LogStore
	config hierarchy.Config
	rules  map[models.Role][]models.Role
	logger *logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine over the given stores. Empty delegation
// rules in the config fall back to the default permission table.
func NewEngine(chains state.ChainStore, log state.LogStore, config hierarchy.Config, logger *logging.Logger) *Engine {
	rules := config.DelegationRules
	if rules == nil {
		rules = hierarchy.DefaultRules()
	}
	return &Engine{
		chains: chains,
		log:    log,
		config: config,
		rules:  rules,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// chainLock returns the mutex serializing operations on one chain.
func (e *Engine) chainLock(chainID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[chainID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[chainID] = lock
	}
	return lock
}

// CanDelegate reports whether the rules grant a hand-off from one role
// to another.
func (e *Engine) CanDelegate(from, to models.Role) bool {
	for _, allowed := range e.rules[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Delegate hands a new sub-task from one agent to another inside an
// existing chain. Coordinators delegate at level 1 and must own the
// chain; lower tiers delegate under one of their own sub-tasks via
// parentSubTaskID.
func (e *Engine) Delegate(from, to models.Agent, chainID, parentSubTaskID, description string) (*models.DelegationRecord, error) {
	if !e.CanDelegate(from.Role, to.Role) {
		return nil, fmt.Errorf("%w: %s cannot delegate to %s", ErrPermissionDenied, from.Role, to.Role)
	}

	lock := e.chainLock(chainID)
	lock.Lock()
	defer lock.Unlock()

	chain, err := e.chains.GetChain(chainID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}

	level := 1
	if parentSubTaskID != "" {
		parent, err := e.chains.GetSubTask(parentSubTaskID)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.ChainID != chainID {
			return nil, fmt.Errorf("%w: %s", ErrSubTaskNotFound, parentSubTaskID)
		}
		if parent.AgentID != from.ID {
			return nil, fmt.Errorf("%w: %s does not own sub-task %s", ErrPermissionDenied, from.ID, parentSubTaskID)
		}
		level = parent.Level + 1
	} else if chain.CoordinatorID != from.ID {
		return nil, fmt.Errorf("%w: %s does not coordinate chain %s", ErrPermissionDenied, from.ID, chainID)
	}

	now := e.now()
	st := &models.SubTask{
		ID:              "st-" + uuid.New().String(),
		ChainID:         chainID,
		Level:           level,
		TargetRole:      to.Role,
		AgentID:         to.ID,
		Description:     description,
		Status:          models.SubTaskPending,
		ParentSubTaskID: parentSubTaskID,
		CreatedAt:       now,
	}
	if err := e.chains.AddSubTask(st); err != nil {
		return nil, err
	}

	rec := &models.DelegationRecord{
		ID:          uuid.New().String(),
		ChainID:     chainID,
		SubTaskID:   st.ID,
		FromAgentID: from.ID,
		ToAgentID:   to.ID,
		Description: description,
		CreatedAt:   now,
	}
	if err := e.log.AppendDelegation(rec); err != nil {
		return nil, err
	}

	e.logger.Log("delegation: %s (%s) -> %s (%s), sub-task %s level %d",
		from.ID, from.Role, to.ID, to.Role, st.ID, level)
	return rec, nil
}

// BuildChain turns a coordination plan into a persisted chain. Simple
// plans become a single worker sub-task carrying the root description;
// decomposed plans create one sub-task per planned entry, assigned via
// the picker. Every hop is checked against the delegation rules.
func (e *Engine) BuildChain(plan *models.CoordinationPlan, rootDescription string, coordinator models.Agent, pick AgentPicker) (*models.DelegationChain, error) {
	if coordinator.Role != models.RoleCoordinator {
		return nil, fmt.Errorf("%w: %s is not a coordinator", ErrPermissionDenied, coordinator.ID)
	}

	now := e.now()
	chain := &models.DelegationChain{
		ID:            "chain-" + uuid.New().String(),
		RootTaskID:    plan.TaskID,
		CoordinatorID: coordinator.ID,
		CreatedAt:     now,
	}

	var subtasks []models.SubTask
	var records []models.DelegationRecord

	appendHop := func(fromID string, fromRole models.Role, st models.SubTask) error {
		if !e.CanDelegate(fromRole, st.TargetRole) {
			return fmt.Errorf("%w: %s cannot delegate to %s", ErrPermissionDenied, fromRole, st.TargetRole)
		}
		subtasks = append(subtasks, st)
		if st.AgentID == "" || fromID == "" {
			// Nothing was handed between two agents yet; no log entry.
			return nil
		}
		records = append(records, models.DelegationRecord{
			ID:          uuid.New().String(),
			ChainID:     chain.ID,
			SubTaskID:   st.ID,
			FromAgentID: fromID,
			ToAgentID:   st.AgentID,
			Description: st.Description,
			CreatedAt:   now,
		})
		return nil
	}

	if len(plan.SubTasks) == 0 {
		// Simple task: one worker sub-task, no decomposition.
		var agentID string
		if worker, ok := pick(models.RoleWorker, ""); ok {
			agentID = worker.ID
		}
		st := models.SubTask{
			ID:          "st-" + uuid.New().String(),
			ChainID:     chain.ID,
			Level:       1,
			TargetRole:  models.RoleWorker,
			AgentID:     agentID,
			Description: rootDescription,
			Status:      models.SubTaskPending,
			CreatedAt:   now,
		}
		if err := appendHop(coordinator.ID, coordinator.Role, st); err != nil {
			return nil, err
		}
	} else {
		// planned ID -> persisted sub-task index, for parent wiring.
		built := make(map[string]int, len(plan.SubTasks))
		for _, planID := range plan.ExecutionOrder {
			task, ok := plan.TaskByID(planID)
			if !ok {
				return nil, fmt.Errorf("%w: plan references unknown sub-task %s", ErrSubTaskNotFound, planID)
			}

			level := 1
			parentSubTaskID := ""
			fromID := coordinator.ID
			fromRole := coordinator.Role
			if task.ParentID != "" {
				idx, ok := built[task.ParentID]
				if !ok {
					return nil, fmt.Errorf("%w: plan parent %s not built yet", ErrSubTaskNotFound, task.ParentID)
				}
				parent := subtasks[idx]
				level = parent.Level + 1
				parentSubTaskID = parent.ID
				fromID = parent.AgentID
				fromRole = parent.TargetRole
			}

			var agentID string
			if agent, ok := pick(task.Role, task.Domain); ok {
				agentID = agent.ID
			}

			st := models.SubTask{
				ID:              "st-" + uuid.New().String(),
				ChainID:         chain.ID,
				Level:           level,
				TargetRole:      task.Role,
				AgentID:         agentID,
				Description:     task.Description,
				Status:          models.SubTaskPending,
				ParentSubTaskID: parentSubTaskID,
				CreatedAt:       now,
			}
			if err := appendHop(fromID, fromRole, st); err != nil {
				return nil, err
			}
			built[planID] = len(subtasks) - 1
		}
	}

	chain.Levels = models.BuildLevels(subtasks)
	if err := e.chains.CreateChain(chain); err != nil {
		return nil, err
	}
	for i := range records {
		if err := e.log.AppendDelegation(&records[i]); err != nil {
			return nil, err
		}
	}

	e.logger.Log("chain %s built for task %s: %d sub-tasks across %d levels",
		chain.ID, plan.TaskID, len(subtasks), len(chain.Levels))
	return chain, nil
}

// Start moves a pending sub-task to in_progress. The sub-task must be
// assigned to someone.
func (e *Engine) Start(subtaskID string) (*models.SubTask, error) {
	st, err := e.getSubTask(subtaskID)
	if err != nil {
		return nil, err
	}
	lock := e.chainLock(st.ChainID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the chain lock.
	st, err = e.getSubTask(subtaskID)
	if err != nil {
		return nil, err
	}
	if st.AgentID == "" {
		return nil, fmt.Errorf("%w: %s is unassigned", ErrInvalidTransition, subtaskID)
	}
	if !st.Status.CanTransitionTo(models.SubTaskInProgress) {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, subtaskID, st.Status)
	}

	st.Status = models.SubTaskInProgress
	if err := e.chains.UpdateSubTask(st); err != nil {
		return nil, err
	}
	e.logger.Log("sub-task %s started by %s", st.ID, st.AgentID)
	return st, nil
}

// Complete moves an in_progress sub-task to completed and reports
// whether the whole chain is now complete. Work that never started
// cannot complete.
func (e *Engine) Complete(subtaskID string) (*models.SubTask, bool, error) {
	st, err := e.getSubTask(subtaskID)
	if err != nil {
		return nil, false, err
	}
	lock := e.chainLock(st.ChainID)
	lock.Lock()
	defer lock.Unlock()

	st, err = e.getSubTask(subtaskID)
	if err != nil {
		return nil, false, err
	}
	if !st.Status.CanTransitionTo(models.SubTaskCompleted) {
		return nil, false, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, subtaskID, st.Status)
	}

	st.Status = models.SubTaskCompleted
	if err := e.chains.UpdateSubTask(st); err != nil {
		return nil, false, err
	}

	chain, err := e.chains.GetChain(st.ChainID)
	if err != nil {
		return nil, false, err
	}
	done := chain != nil && chain.Complete()
	if done {
		e.logger.Log("chain %s complete", st.ChainID)
	}
	e.logger.Log("sub-task %s completed", st.ID)
	return st, done, nil
}

// Reassign hands a sub-task to a new agent: an escalated sub-task
// returns to pending, and an unassigned pending sub-task gains its
// assignee. The new agent must hold the sub-task's target role.
func (e *Engine) Reassign(subtaskID string, to models.Agent) (*models.SubTask, error) {
	st, err := e.getSubTask(subtaskID)
	if err != nil {
		return nil, err
	}
	lock := e.chainLock(st.ChainID)
	lock.Lock()
	defer lock.Unlock()

	st, err = e.getSubTask(subtaskID)
	if err != nil {
		return nil, err
	}
	if to.Role != st.TargetRole {
		return nil, fmt.Errorf("%w: sub-task %s targets %s, %s is %s",
			ErrPermissionDenied, subtaskID, st.TargetRole, to.ID, to.Role)
	}

	switch st.Status {
	case models.SubTaskEscalated:
		st.Status = models.SubTaskPending
	case models.SubTaskPending:
		// Assignment only; no state change.
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, subtaskID, st.Status)
	}

	previous := st.AgentID
	st.AgentID = to.ID
	if err := e.chains.UpdateSubTask(st); err != nil {
		return nil, err
	}

	chain, err := e.chains.GetChain(st.ChainID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, st.ChainID)
	}
	// Reassignment is an oversight action taken on the coordinator's
	// behalf.
	rec := &models.DelegationRecord{
		ID:          uuid.New().String(),
		ChainID:     st.ChainID,
		SubTaskID:   st.ID,
		FromAgentID: chain.CoordinatorID,
		ToAgentID:   to.ID,
		Description: st.Description,
		CreatedAt:   e.now(),
	}
	if err := e.log.AppendDelegation(rec); err != nil {
		return nil, err
	}

	e.logger.Log("sub-task %s reassigned %s -> %s", st.ID, previous, to.ID)
	return st, nil
}

// getSubTask loads a sub-task, translating absence into
// ErrSubTaskNotFound.
func (e *Engine) getSubTask(subtaskID string) (*models.SubTask, error) {
	st, err := e.chains.GetSubTask(subtaskID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("%w: %s", ErrSubTaskNotFound, subtaskID)
	}
	return st, nil
}
