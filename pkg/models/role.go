package models

// Role represents an agent's tier in the delegation hierarchy.
type Role string

const (
	// RoleCoordinator plans and delegates work to specialists and workers.
	RoleCoordinator Role = "coordinator"
	// RoleSpecialist owns one domain and delegates deliverables to workers.
	RoleSpecialist Role = "specialist"
	// RoleWorker executes concrete deliverables and cannot delegate.
	RoleWorker Role = "worker"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleCoordinator, RoleSpecialist, RoleWorker:
		return true
	default:
		return false
	}
}

// Roles lists every known role, highest tier first.
func Roles() []Role {
	return []Role{RoleCoordinator, RoleSpecialist, RoleWorker}
}
