package hierarchy

import (
	"strings"

	"github.com/cadrekit/cadre/pkg/models"
)

// Classifier answers role questions from the configured
// specialization-to-role mapping. Pure lookup; no mutation.
type Classifier struct {
	assignments map[string]models.Role
}

// NewClassifier builds a classifier from the hierarchy config.
// Specialization matching is case-insensitive.
func NewClassifier(config Config) *Classifier {
	assignments := make(map[string]models.Role, len(config.RoleAssignments))
	for spec, role := range config.RoleAssignments {
		assignments[strings.ToLower(spec)] = role
	}
	return &Classifier{assignments: assignments}
}

// RoleFor maps a specialization to its role. Unknown specializations
// default to worker.
func (c *Classifier) RoleFor(specialization string) models.Role {
	if role, ok := c.assignments[strings.ToLower(specialization)]; ok {
		return role
	}
	return models.RoleWorker
}

// AgentsByRole returns the IDs of agents holding the given role. A
// non-empty specializationFilter keeps only matching specializations.
func (c *Classifier) AgentsByRole(agents []models.Agent, role models.Role, specializationFilter string) []string {
	var ids []string
	filter := strings.ToLower(specializationFilter)
	for _, agent := range agents {
		if agent.Role != role {
			continue
		}
		if filter != "" && strings.ToLower(agent.Specialization) != filter {
			continue
		}
		ids = append(ids, agent.ID)
	}
	return ids
}
