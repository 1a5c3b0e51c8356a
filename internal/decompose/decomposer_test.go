package decompose

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cadrekit/cadre/pkg/models"
)

func TestDecompose_Simple(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantDomains int
	}{
		{"no recognized domain", "Fix typo in welcome banner", 0},
		{"single domain", "Update the docs for the installer", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := NewDecomposer().Decompose("task-1", tt.description, nil)

			if plan.Complexity != models.ComplexitySimple {
				t.Errorf("Complexity = %q, want simple", plan.Complexity)
			}
			if len(plan.Domains) != tt.wantDomains {
				t.Errorf("Domains = %v, want %d", plan.Domains, tt.wantDomains)
			}
			if len(plan.SubTasks) != 0 {
				t.Errorf("SubTasks = %v, want none for simple task", plan.SubTasks)
			}
			if len(plan.ExecutionOrder) != 0 {
				t.Errorf("ExecutionOrder = %v, want empty", plan.ExecutionOrder)
			}
		})
	}
}

func TestDecompose_Moderate(t *testing.T) {
	plan := NewDecomposer().Decompose("task-2", "Harden api auth and add tests", nil)

	if plan.Complexity != models.ComplexityModerate {
		t.Fatalf("Complexity = %q, want moderate", plan.Complexity)
	}
	if !reflect.DeepEqual(plan.Domains, []string{"api", "security", "testing"}) {
		t.Errorf("Domains = %v, want [api security testing]", plan.Domains)
	}
	if len(plan.SubTasks) != 3 {
		t.Fatalf("SubTasks = %d, want one specialist per domain", len(plan.SubTasks))
	}
	for _, st := range plan.SubTasks {
		if st.Role != models.RoleSpecialist {
			t.Errorf("sub-task %s role = %q, want specialist", st.ID, st.Role)
		}
		if st.ParentID != "" {
			t.Errorf("sub-task %s has parent %q, want none at specialist level", st.ID, st.ParentID)
		}
	}
}

func TestDecompose_ComplexByDomainCount(t *testing.T) {
	description := "Optimize database queries, fix api latency, update docs, add regression tests"
	plan := NewDecomposer().Decompose("task-3", description, nil)

	if plan.Complexity != models.ComplexityComplex {
		t.Fatalf("Complexity = %q, want complex", plan.Complexity)
	}
	if len(plan.Domains) < 4 {
		t.Fatalf("Domains = %v, want at least 4", plan.Domains)
	}

	specialists := 0
	workers := 0
	for _, st := range plan.SubTasks {
		switch st.Role {
		case models.RoleSpecialist:
			specialists++
		case models.RoleWorker:
			workers++
			if st.ParentID == "" {
				t.Errorf("worker %s has no parent specialist", st.ID)
			}
		}
	}
	if specialists != len(plan.Domains) {
		t.Errorf("specialists = %d, want %d", specialists, len(plan.Domains))
	}
	if workers != 2*specialists {
		t.Errorf("workers = %d, want tests and docs per specialist (%d)", workers, 2*specialists)
	}
}

func TestDecompose_ComplexByLabel(t *testing.T) {
	plan := NewDecomposer().Decompose("task-4", "Revamp the signup flow", []string{"complex"})

	if plan.Complexity != models.ComplexityComplex {
		t.Fatalf("Complexity = %q, want complex via label", plan.Complexity)
	}
	// Nothing recognized: the plan still seats the work under a
	// fallback domain.
	if !reflect.DeepEqual(plan.Domains, []string{"general"}) {
		t.Errorf("Domains = %v, want [general]", plan.Domains)
	}
	if len(plan.SubTasks) != 3 {
		t.Errorf("SubTasks = %d, want specialist plus two workers", len(plan.SubTasks))
	}
}

func TestDecompose_LabelCaseInsensitive(t *testing.T) {
	plan := NewDecomposer().Decompose("task-5", "Tidy the changelog", []string{"Complex"})
	if plan.Complexity != models.ComplexityComplex {
		t.Errorf("Complexity = %q, want complex for label %q", plan.Complexity, "Complex")
	}
}

func TestDecompose_LabelsContributeDomains(t *testing.T) {
	plan := NewDecomposer().Decompose("task-6", "Refresh branding", []string{"security"})

	if !reflect.DeepEqual(plan.Domains, []string{"security"}) {
		t.Errorf("Domains = %v, want [security] from label", plan.Domains)
	}
	if plan.Complexity != models.ComplexitySimple {
		t.Errorf("Complexity = %q, want simple for one domain", plan.Complexity)
	}
}

// TestDecompose_ExecutionOrder checks every specialist is ordered ahead
// of every worker, and workers follow their own parent.
func TestDecompose_ExecutionOrder(t *testing.T) {
	description := "Optimize database queries, fix api latency, update docs, add regression tests"
	plan := NewDecomposer().Decompose("task-7", description, nil)

	position := make(map[string]int, len(plan.ExecutionOrder))
	for i, id := range plan.ExecutionOrder {
		position[id] = i
	}
	if len(position) != len(plan.SubTasks) {
		t.Fatalf("ExecutionOrder has %d entries, want %d", len(position), len(plan.SubTasks))
	}

	for _, st := range plan.SubTasks {
		if st.ParentID == "" {
			continue
		}
		parentPos, ok := position[st.ParentID]
		if !ok {
			t.Fatalf("parent %s of %s missing from ExecutionOrder", st.ParentID, st.ID)
		}
		if parentPos >= position[st.ID] {
			t.Errorf("parent %s ordered at %d, after child %s at %d", st.ParentID, parentPos, st.ID, position[st.ID])
		}
	}

	// All specialists strictly precede all workers.
	maxSpecialist, minWorker := -1, len(plan.ExecutionOrder)
	for _, st := range plan.SubTasks {
		if st.Role == models.RoleSpecialist && position[st.ID] > maxSpecialist {
			maxSpecialist = position[st.ID]
		}
		if st.Role == models.RoleWorker && position[st.ID] < minWorker {
			minWorker = position[st.ID]
		}
	}
	if maxSpecialist >= minWorker {
		t.Errorf("specialist at %d ordered after worker at %d", maxSpecialist, minWorker)
	}
}

func TestDetectDomains_WholeTokenMatching(t *testing.T) {
	decomposer := NewDecomposer()

	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{"substring must not match", "Rapid prototyping of the mascot", nil},
		{"latest is not a test", "Ship the latest release notes", nil},
		{"punctuation-separated tokens match", "Tune latency; rewrite SQL.", []string{"database", "performance"}},
		{"case-insensitive match", "Review the API surface", []string{"api"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decomposer.DetectDomains(tt.description, nil)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectDomains(%q) = %v, want %v", tt.description, got, tt.want)
			}
		})
	}
}

func TestDecompose_GeneratesTaskID(t *testing.T) {
	plan := NewDecomposer().Decompose("", "Update the docs", nil)
	if plan.TaskID == "" {
		t.Fatal("TaskID empty, want generated")
	}
	if !strings.HasPrefix(plan.TaskID, "task-") {
		t.Errorf("TaskID = %q, want task- prefix", plan.TaskID)
	}

	given := NewDecomposer().Decompose("task-42", "Update the docs", nil)
	if given.TaskID != "task-42" {
		t.Errorf("TaskID = %q, want task-42 preserved", given.TaskID)
	}
}
