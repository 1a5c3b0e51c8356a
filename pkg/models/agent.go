package models

import (
	"fmt"
	"regexp"
	"time"
)

// AgentStatus represents the lifecycle state of an agent.
type AgentStatus string

const (
	// StatusSpawning indicates the agent was created but has not been evaluated yet.
	StatusSpawning AgentStatus = "spawning"
	// StatusActive indicates the agent is competing in the current cycle.
	StatusActive AgentStatus = "active"
	// StatusMaintained indicates the agent is kept without promotion or elimination.
	StatusMaintained AgentStatus = "maintained"
	// StatusEliminated indicates the agent was removed from the working set.
	StatusEliminated AgentStatus = "eliminated"
	// StatusHallOfFame indicates the agent earned permanent protected standing.
	StatusHallOfFame AgentStatus = "hall_of_fame"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case StatusSpawning, StatusActive, StatusMaintained,
		StatusEliminated, StatusHallOfFame:
		return true
	default:
		return false
	}
}

// Competing returns true if agents in this status occupy a slot against
// the max_active_agents capacity. Eliminated and hall-of-fame agents do
// not compete; everyone else does.
func (s AgentStatus) Competing() bool {
	switch s {
	case StatusSpawning, StatusActive, StatusMaintained:
		return true
	default:
		return false
	}
}

// Metrics holds the raw performance counters for one agent.
type Metrics struct {
	// CodeQualityScore is a normalized quality rating in [0,1].
	CodeQualityScore float64 `json:"code_quality_score"`
	// IssuesResolved counts issues the agent closed.
	IssuesResolved int `json:"issues_resolved"`
	// PRsMerged counts pull requests the agent landed.
	PRsMerged int `json:"prs_merged"`
	// PRSuccessRate is the fraction of the agent's PRs that merged, in [0,1].
	PRSuccessRate float64 `json:"pr_success_rate"`
	// PeerReviewScore is the agent's average review rating in [0,1].
	PeerReviewScore float64 `json:"peer_review_score"`
}

// Contributions returns the derived contribution count used for the
// statistical-significance gate: resolved issues plus merged PRs.
func (m Metrics) Contributions() int {
	return m.IssuesResolved + m.PRsMerged
}

// Agent represents one tracked unit of work capacity in the registry.
type Agent struct {
	// ID is the unique identifier, format agent-<10-digit-epoch>.
	ID string `json:"id"`
	// Name is the agent's display name.
	Name string `json:"name"`
	// Specialization is the free-text domain the agent works in. It
	// drives role assignment and protected-specialization matching.
	Specialization string `json:"specialization"`
	// Role is the agent's tier in the delegation hierarchy, derived
	// from Specialization via the hierarchy config.
	Role Role `json:"role"`
	// Status is the agent's lifecycle state.
	Status AgentStatus `json:"status"`
	// Protected marks an agent that can never be eliminated.
	Protected bool `json:"protected"`
	// Traits maps named attributes to scores bounded [0,100].
	Traits map[string]float64 `json:"traits,omitempty"`
	// Metrics holds the raw performance counters.
	Metrics Metrics `json:"metrics"`
	// TotalContributions is the stored contribution count. It is
	// refreshed from Metrics.Contributions on every evaluation; the
	// validator warns when the stored value drifts.
	TotalContributions int `json:"total_contributions"`
	// CreatedAt is the ISO-8601 creation timestamp.
	CreatedAt string `json:"created_at"`
	// LastActivity is the ISO-8601 timestamp of the agent's last work.
	LastActivity string `json:"last_activity"`
}

// agentIDPattern matches agent-<10-digit-epoch> identifiers.
var agentIDPattern = regexp.MustCompile(`^agent-\d{10}$`)

// ValidAgentID returns true if id matches the agent-<10-digit-epoch> format.
func ValidAgentID(id string) bool {
	return agentIDPattern.MatchString(id)
}

// NewAgentID builds an agent ID from the given creation time.
func NewAgentID(t time.Time) string {
	return fmt.Sprintf("agent-%010d", t.Unix())
}

// FormatTimestamp renders a time in the registry's ISO-8601 form.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseTimestamp parses a registry ISO-8601 timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
