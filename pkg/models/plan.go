package models

// Complexity classifies a task by how many recognized domains it spans.
type Complexity string

const (
	// ComplexitySimple covers tasks touching at most one domain; they
	// go directly to a single worker without decomposition.
	ComplexitySimple Complexity = "simple"
	// ComplexityModerate covers tasks spanning two or three domains;
	// each domain gets a specialist sub-task.
	ComplexityModerate Complexity = "moderate"
	// ComplexityComplex covers tasks spanning four or more domains (or
	// carrying an explicit complex label); specialists additionally
	// spawn worker sub-tasks for concrete deliverables.
	ComplexityComplex Complexity = "complex"
)

// Valid returns true if the complexity is a known value.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	default:
		return false
	}
}

// PlanTask is one planned sub-task inside a coordination plan.
type PlanTask struct {
	// ID is the planned sub-task identifier, unique within the plan.
	ID string `json:"id"`
	// Domain is the recognized domain the sub-task covers.
	Domain string `json:"domain"`
	// Role is the hierarchy tier the sub-task targets.
	Role Role `json:"role"`
	// Description says what the sub-task delivers.
	Description string `json:"description"`
	// ParentID is the specialist sub-task this deliverable belongs to.
	// Empty for specialist-level and direct-assignment sub-tasks.
	ParentID string `json:"parent_id,omitempty"`
}

// CoordinationPlan is the decomposer's output: what to delegate, to
// which tiers, in which order.
type CoordinationPlan struct {
	// TaskID identifies the task the plan decomposes.
	TaskID string `json:"task_id"`
	// Complexity is the classified complexity of the task.
	Complexity Complexity `json:"complexity"`
	// Domains lists the recognized domains, in detection order.
	Domains []string `json:"domains"`
	// SubTasks lists the planned sub-tasks. Empty for simple tasks,
	// which are assigned directly to one worker.
	SubTasks []PlanTask `json:"sub_tasks"`
	// ExecutionOrder lists plan task IDs with every specialist
	// sub-task ahead of the worker sub-tasks it spawns.
	ExecutionOrder []string `json:"execution_order"`
}

// TaskByID returns the planned sub-task with the given ID.
func (p *CoordinationPlan) TaskByID(id string) (PlanTask, bool) {
	for _, t := range p.SubTasks {
		if t.ID == id {
			return t, true
		}
	}
	return PlanTask{}, false
}
