package state

import (
	"testing"
	"time"

	"github.com/cadrekit/cadre/pkg/models"
)

func TestCheckForInterrupted(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	// chain-1 has open work; chain-2 is fully completed.
	open := sampleChain("chain-1")
	open.Levels[0][0].Status = models.SubTaskInProgress
	open.Levels[1][0].Status = models.SubTaskEscalated
	if err := db.CreateChain(open); err != nil {
		t.Fatalf("CreateChain failed: %v", err)
	}

	done := sampleChain("chain-2")
	done.CreatedAt = chainTime.Add(time.Minute)
	for i := range done.Levels {
		for j := range done.Levels[i] {
			done.Levels[i][j].Status = models.SubTaskCompleted
		}
	}
	if err := db.CreateChain(done); err != nil {
		t.Fatalf("CreateChain failed: %v", err)
	}

	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		t.Fatalf("CheckForInterrupted failed: %v", err)
	}

	if len(interrupted) != 1 {
		t.Fatalf("got %d interrupted chains, want 1", len(interrupted))
	}
	ic := interrupted[0]
	if ic.ChainID != "chain-1" {
		t.Errorf("interrupted chain = %s, want chain-1", ic.ChainID)
	}
	if ic.InProgress != 1 || ic.Escalated != 1 {
		t.Errorf("open counts = %d in progress, %d escalated, want 1 and 1",
			ic.InProgress, ic.Escalated)
	}
}

func TestCheckForInterrupted_Empty(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		t.Fatalf("CheckForInterrupted failed: %v", err)
	}
	if len(interrupted) != 0 {
		t.Errorf("got %d interrupted chains, want 0", len(interrupted))
	}
}

func TestStaleInProgress(t *testing.T) {
	db := setupTestDB(t)
	rm := NewRecoveryManager(db)

	chain := sampleChain("chain-1")
	// chain-1-api went in progress two hours ago; the others are fresh
	// or not started.
	chain.Levels[0][0].Status = models.SubTaskInProgress
	chain.Levels[0][0].CreatedAt = time.Now().Add(-2 * time.Hour)
	chain.Levels[0][1].Status = models.SubTaskInProgress
	chain.Levels[0][1].CreatedAt = time.Now().Add(-time.Minute)
	chain.Levels[1][0].CreatedAt = time.Now().Add(-time.Minute)
	if err := db.CreateChain(chain); err != nil {
		t.Fatalf("CreateChain failed: %v", err)
	}

	stale, err := rm.StaleInProgress(time.Hour)
	if err != nil {
		t.Fatalf("StaleInProgress failed: %v", err)
	}

	if len(stale) != 1 {
		t.Fatalf("got %d stale sub-tasks, want 1", len(stale))
	}
	if stale[0].ID != "chain-1-api" {
		t.Errorf("stale sub-task = %s, want chain-1-api", stale[0].ID)
	}
}
