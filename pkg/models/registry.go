package models

// Weight keys recognized in the registry config's metrics_weight map.
const (
	// WeightCodeQuality weights the normalized code quality score.
	WeightCodeQuality = "code_quality"
	// WeightIssuesResolved weights the normalized resolved-issue count.
	WeightIssuesResolved = "issues_resolved"
	// WeightPRSuccessRate weights the PR merge success rate.
	WeightPRSuccessRate = "pr_success_rate"
	// WeightPeerReview weights the peer review score.
	WeightPeerReview = "peer_review"
)

// WeightKeys lists the four weight keys every config must define.
func WeightKeys() []string {
	return []string{WeightCodeQuality, WeightIssuesResolved, WeightPRSuccessRate, WeightPeerReview}
}

// DefaultMinContributions is the significance gate applied when the
// config does not set min_contributions_for_ranking.
const DefaultMinContributions = 3

// Config holds the registry's lifecycle thresholds and scoring weights.
type Config struct {
	// EliminationThreshold is the score below which eligible agents are
	// eliminated, in [0,1].
	EliminationThreshold float64 `json:"elimination_threshold"`
	// PromotionThreshold is the score at or above which eligible agents
	// enter the hall of fame, in [0,1]. Must be >= EliminationThreshold.
	PromotionThreshold float64 `json:"promotion_threshold"`
	// MaxActiveAgents caps the competing population (spawning, active,
	// and maintained agents all occupy a slot).
	MaxActiveAgents int `json:"max_active_agents"`
	// MetricsWeight maps the four weight keys to their share of the
	// overall score. The shares should sum to 1.0.
	MetricsWeight map[string]float64 `json:"metrics_weight"`
	// ProtectedSpecializations lists specializations whose agents are
	// never eliminated.
	ProtectedSpecializations []string `json:"protected_specializations,omitempty"`
	// MinContributionsForRanking is the minimum contribution count
	// before an agent's score may trigger promotion or elimination.
	// Zero means unset; DefaultMinContributions applies.
	MinContributionsForRanking int `json:"min_contributions_for_ranking"`
}

// MinContributions returns the effective significance gate, applying
// the default when the config leaves it unset.
func (c Config) MinContributions() int {
	if c.MinContributionsForRanking <= 0 {
		return DefaultMinContributions
	}
	return c.MinContributionsForRanking
}

// SpecializationProtected returns true if the given specialization is
// in the protected set.
func (c Config) SpecializationProtected(spec string) bool {
	for _, s := range c.ProtectedSpecializations {
		if s == spec {
			return true
		}
	}
	return false
}

// ArchiveRecord is a self-contained snapshot of an agent at the moment
// it left active competition. Every field any later step needs is
// copied here; no record requires a lookup back into agents[].
type ArchiveRecord struct {
	// ID is the archived agent's ID.
	ID string `json:"id"`
	// Name is the archived agent's display name.
	Name string `json:"name"`
	// Specialization is the archived agent's domain, copied at the
	// moment of transition.
	Specialization string `json:"specialization"`
	// Score is the overall score that triggered the transition.
	Score float64 `json:"score"`
	// Reason describes why the agent was archived.
	Reason string `json:"reason"`
	// ArchivedAt is the ISO-8601 timestamp of the transition.
	ArchivedAt string `json:"archived_at"`
}

// Document is the registry: the single JSON document of truth for all
// agents, thresholds, and honors.
type Document struct {
	// Version is the document schema version, format MAJOR.MINOR.PATCH.
	Version string `json:"version"`
	// Agents holds every agent still present in the registry,
	// including hall-of-fame members.
	Agents []Agent `json:"agents"`
	// Config holds the lifecycle thresholds and scoring weights.
	Config Config `json:"config"`
	// HallOfFame mirrors promoted agents as self-contained records.
	HallOfFame []ArchiveRecord `json:"hall_of_fame"`
	// Archive holds the records of eliminated agents. Optional; older
	// documents omit it.
	Archive []ArchiveRecord `json:"archive,omitempty"`
}

// AgentByID returns a pointer to the agent with the given ID, or false
// if no such agent exists.
func (d *Document) AgentByID(id string) (*Agent, bool) {
	for i := range d.Agents {
		if d.Agents[i].ID == id {
			return &d.Agents[i], true
		}
	}
	return nil, false
}

// CompetingCount returns how many agents currently occupy a capacity
// slot (status spawning, active, or maintained).
func (d *Document) CompetingCount() int {
	n := 0
	for _, a := range d.Agents {
		if a.Status.Competing() {
			n++
		}
	}
	return n
}

// ResultEntry is one self-contained evaluation outcome. It carries
// specialization explicitly so downstream consumers never re-query the
// mutated agent list.
type ResultEntry struct {
	// ID is the evaluated agent's ID.
	ID string `json:"id"`
	// Name is the evaluated agent's display name.
	Name string `json:"name"`
	// Score is the overall score computed this cycle.
	Score float64 `json:"score"`
	// Specialization is the agent's domain at evaluation time.
	Specialization string `json:"specialization"`
	// Reason explains the outcome (threshold crossed, insufficient
	// data, protected).
	Reason string `json:"reason,omitempty"`
}

// EvaluationResults is the artifact one evaluation cycle produces.
type EvaluationResults struct {
	// EvaluatedAt is the ISO-8601 timestamp of the cycle.
	EvaluatedAt string `json:"evaluated_at"`
	// RegistryVersion is the document version that was evaluated.
	RegistryVersion string `json:"registry_version"`
	// Promoted lists agents that entered the hall of fame.
	Promoted []ResultEntry `json:"promoted"`
	// Eliminated lists agents removed from the working set.
	Eliminated []ResultEntry `json:"eliminated"`
	// Maintained lists agents kept for the next cycle.
	Maintained []ResultEntry `json:"maintained"`
}
