package delegation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cadrekit/cadre/pkg/models"
)

// Escalate routes a blocked sub-task up the hierarchy. The sub-task
// moves to escalated and waits there until reassigned; routing never
// reassigns by itself. Only the assigned agent may escalate its own
// sub-task.
//
// With auto escalation enabled the target is resolved one tier up:
// workers escalate to the specialist whose sub-task spawned theirs,
// specialists to the chain coordinator. With it disabled the record
// carries no target and routing is left to manual oversight.
func (e *Engine) Escalate(subtaskID string, from models.Agent, reason string) (*models.EscalationRecord, error) {
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
	if st.AgentID != from.ID {
		return nil, fmt.Errorf("%w: %s is not assigned to sub-task %s", ErrPermissionDenied, from.ID, subtaskID)
	}
	if !st.Status.CanTransitionTo(models.SubTaskEscalated) {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, subtaskID, st.Status)
	}

	chain, err := e.chains.GetChain(st.ChainID)
	if err != nil {
		return nil, err
	}
	if chain == nil {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, st.ChainID)
	}

	target := ""
	if e.config.AutoEscalationEnabled {
		target, err = e.resolveTarget(st, from, chain)
		if err != nil {
			return nil, err
		}
	}

	st.Status = models.SubTaskEscalated
	if err := e.chains.UpdateSubTask(st); err != nil {
		return nil, err
	}

	rec := &models.EscalationRecord{
		ID:            uuid.New().String(),
		ChainID:       st.ChainID,
		SubTaskID:     st.ID,
		FromAgentID:   from.ID,
		TargetAgentID: target,
		Reason:        reason,
		CreatedAt:     e.now(),
	}
	if err := e.log.AppendEscalation(rec); err != nil {
		return nil, err
	}

	display := target
	if display == "" {
		display = "manual"
	}
	e.logger.Log("escalation: sub-task %s by %s -> %s (%s)", st.ID, from.ID, display, reason)
	return rec, nil
}

// resolveTarget walks one step up the chain. A sub-task with a parent
// goes to the parent's assignee; a top-level sub-task goes to the
// chain coordinator. When no one is on record, the configured fallback
// coordinator catches it, but only while oversight is enabled.
func (e *Engine) resolveTarget(st *models.SubTask, from models.Agent, chain *models.DelegationChain) (string, error) {
	target := ""
	if st.ParentSubTaskID != "" {
		parent, err := e.chains.GetSubTask(st.ParentSubTaskID)
		if err != nil {
			return "", err
		}
		if parent != nil {
			target = parent.AgentID
		}
	} else {
		target = chain.CoordinatorID
	}

	// Never route an escalation back to the agent that raised it.
	if target == from.ID {
		target = ""
	}

	if target == "" {
		if !e.config.OversightEnabled {
			return "", fmt.Errorf("%w: sub-task %s has no delegator on record", ErrNoEscalationTarget, st.ID)
		}
		fallback, ok := e.config.FallbackCoordinator("")
		if !ok {
			return "", fmt.Errorf("%w: no fallback coordinator configured", ErrNoEscalationTarget)
		}
		target = fallback
	}
	return target, nil
}
