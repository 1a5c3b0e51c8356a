package delegation

import (
	"errors"
	"testing"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/pkg/models"
)

func TestEscalate_SpecialistRoutesToCoordinator(t *testing.T) {
	engine, db := testEngine(t)
	chain, err := engine.BuildChain(moderatePlan(), "harden the api", coord, pickFrom(spec1, spec2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	stID := chain.Levels[0][0].ID

	if _, err := engine.Start(stID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rec, err := engine.Escalate(stID, spec1, "blocked on credentials")
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}
	if rec.TargetAgentID != coord.ID {
		t.Errorf("target = %s, want coordinator %s", rec.TargetAgentID, coord.ID)
	}
	if rec.Reason != "blocked on credentials" {
		t.Errorf("reason = %q", rec.Reason)
	}

	st, err := db.GetSubTask(stID)
	if err != nil {
		t.Fatalf("GetSubTask failed: %v", err)
	}
	if st.Status != models.SubTaskEscalated {
		t.Errorf("status = %s, want escalated", st.Status)
	}

	logged, err := db.ListEscalations(chain.ID)
	if err != nil {
		t.Fatalf("ListEscalations failed: %v", err)
	}
	if len(logged) != 1 {
		t.Errorf("log has %d escalations, want 1", len(logged))
	}
}

func TestEscalate_WorkerRoutesToParentSpecialist(t *testing.T) {
	engine, _ := testEngine(t)
	chain, err := engine.BuildChain(complexPlan(), "overhaul storage", coord, pickFrom(spec1, work1, work2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	worker := chain.Levels[1][0]
	if _, err := engine.Start(worker.ID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	rec, err := engine.Escalate(worker.ID, work1, "tests are flaky")
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}
	if rec.TargetAgentID != spec1.ID {
		t.Errorf("target = %s, want parent specialist %s", rec.TargetAgentID, spec1.ID)
	}
}

func TestEscalate_PendingAllowed(t *testing.T) {
	engine, db := testEngine(t)
	chain, err := engine.BuildChain(moderatePlan(), "harden the api", coord, pickFrom(spec1, spec2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	stID := chain.Levels[0][0].ID

	if _, err := engine.Escalate(stID, spec1, "out of my depth"); err != nil {
		t.Fatalf("Escalate from pending failed: %v", err)
	}

	st, err := db.GetSubTask(stID)
	if err != nil {
		t.Fatalf("GetSubTask failed: %v", err)
	}
	if st.Status != models.SubTaskEscalated {
		t.Errorf("status = %s, want escalated", st.Status)
	}
}

func TestEscalate_OnlyAssigneeMayEscalate(t *testing.T) {
	engine, db := testEngine(t)
	chain, err := engine.BuildChain(moderatePlan(), "harden the api", coord, pickFrom(spec1, spec2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	stID := chain.Levels[0][0].ID

	if _, err := engine.Escalate(stID, spec2, "not mine to raise"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("Escalate() error = %v, want ErrPermissionDenied", err)
	}

	st, err := db.GetSubTask(stID)
	if err != nil {
		t.Fatalf("GetSubTask failed: %v", err)
	}
	if st.Status != models.SubTaskPending {
		t.Errorf("status = %s, want pending untouched", st.Status)
	}
}

func TestEscalate_CompletedRejected(t *testing.T) {
	engine, _ := testEngine(t)
	chain, err := engine.BuildChain(simplePlan(), "fix the banner typo", coord, pickFrom(work1))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	stID := chain.Levels[0][0].ID

	if _, err := engine.Start(stID); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, _, err := engine.Complete(stID); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if _, err := engine.Escalate(stID, work1, "too late"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Escalate() error = %v, want ErrInvalidTransition", err)
	}
}

func TestEscalate_ManualWhenAutoDisabled(t *testing.T) {
	config := hierarchy.Default()
	config.AutoEscalationEnabled = false
	engine, db := engineWith(t, config)

	chain, err := engine.BuildChain(moderatePlan(), "harden the api", coord, pickFrom(spec1, spec2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	stID := chain.Levels[0][0].ID

	rec, err := engine.Escalate(stID, spec1, "blocked on credentials")
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}
	if rec.TargetAgentID != "" {
		t.Errorf("target = %s, want empty for manual routing", rec.TargetAgentID)
	}

	st, err := db.GetSubTask(stID)
	if err != nil {
		t.Fatalf("GetSubTask failed: %v", err)
	}
	if st.Status != models.SubTaskEscalated {
		t.Errorf("status = %s, want escalated", st.Status)
	}
}

func TestEscalate_OrphanUsesFallbackCoordinator(t *testing.T) {
	config := hierarchy.Default()
	config.DefaultCoordinators = map[string]string{"default": "agent-1755700999"}
	engine, _ := engineWith(t, config)

	// Workers only: the parent specialist slot stays unassigned.
	chain, err := engine.BuildChain(complexPlan(), "overhaul storage", coord, pickFrom(work1, work2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	worker := chain.Levels[1][0]
	rec, err := engine.Escalate(worker.ID, work1, "nobody owns the parent")
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}
	if rec.TargetAgentID != "agent-1755700999" {
		t.Errorf("target = %s, want fallback coordinator", rec.TargetAgentID)
	}
}

func TestEscalate_OrphanFailsWithoutOversight(t *testing.T) {
	config := hierarchy.Default()
	config.OversightEnabled = false
	config.DefaultCoordinators = map[string]string{"default": "agent-1755700999"}
	engine, db := engineWith(t, config)

	chain, err := engine.BuildChain(complexPlan(), "overhaul storage", coord, pickFrom(work1, work2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	worker := chain.Levels[1][0]
	if _, err := engine.Escalate(worker.ID, work1, "nobody owns the parent"); !errors.Is(err, ErrNoEscalationTarget) {
		t.Errorf("Escalate() error = %v, want ErrNoEscalationTarget", err)
	}

	st, err := db.GetSubTask(worker.ID)
	if err != nil {
		t.Fatalf("GetSubTask failed: %v", err)
	}
	if st.Status != models.SubTaskPending {
		t.Errorf("status = %s, want pending after failed escalation", st.Status)
	}
}

func TestEscalate_NoFallbackConfigured(t *testing.T) {
	engine, _ := testEngine(t)

	chain, err := engine.BuildChain(complexPlan(), "overhaul storage", coord, pickFrom(work1, work2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}

	worker := chain.Levels[1][0]
	if _, err := engine.Escalate(worker.ID, work1, "nobody owns the parent"); !errors.Is(err, ErrNoEscalationTarget) {
		t.Errorf("Escalate() error = %v, want ErrNoEscalationTarget", err)
	}
}

// A blocked sub-task escalates, is handed to a fresh specialist, and the
// chain still reaches completion.
func TestEscalationRecoversThroughReassignment(t *testing.T) {
	engine, db := testEngine(t)
	chain, err := engine.BuildChain(moderatePlan(), "harden the api", coord, pickFrom(spec1, spec2))
	if err != nil {
		t.Fatalf("BuildChain failed: %v", err)
	}
	blocked, healthy := chain.Levels[0][0].ID, chain.Levels[0][1].ID

	if _, err := engine.Start(blocked); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := engine.Escalate(blocked, spec1, "blocked on credentials"); err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}

	if _, err := engine.Start(healthy); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, done, err := engine.Complete(healthy); err != nil || done {
		t.Fatalf("Complete = done %v, err %v; escalated sibling must block the chain", done, err)
	}

	// Escalated work cannot complete in place.
	if _, _, err := engine.Complete(blocked); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Complete() error = %v, want ErrInvalidTransition", err)
	}

	st, err := engine.Reassign(blocked, spec3)
	if err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}
	if st.AgentID != spec3.ID || st.Status != models.SubTaskPending {
		t.Errorf("after Reassign = %s/%s, want %s/pending", st.AgentID, st.Status, spec3.ID)
	}

	if _, err := engine.Start(blocked); err != nil {
		t.Fatalf("Start after Reassign failed: %v", err)
	}
	if _, done, err := engine.Complete(blocked); err != nil || !done {
		t.Fatalf("final Complete = done %v, err %v; want done", done, err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalDelegations != 3 {
		t.Errorf("TotalDelegations = %d, want 3 including the reassignment", stats.TotalDelegations)
	}
	if stats.SuccessfulDelegations != 2 {
		t.Errorf("SuccessfulDelegations = %d, want 2", stats.SuccessfulDelegations)
	}
	if stats.Escalations != 1 {
		t.Errorf("Escalations = %d, want 1", stats.Escalations)
	}
	if stats.AvgChainLength != 2 {
		t.Errorf("AvgChainLength = %.1f, want 2", stats.AvgChainLength)
	}
}
