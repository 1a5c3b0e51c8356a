// Package lifecycle applies the registry's thresholds to agent scores:
// activation, promotion, elimination, and the evaluation artifact.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/internal/scoring"
	"github.com/cadrekit/cadre/pkg/models"
)

// Manager runs evaluation cycles over a registry document.
type Manager struct {
	scorer     *scoring.Scorer
	classifier *hierarchy.Classifier
	logger     *logging.Logger
	now        func() time.Time
}

// NewManager creates a lifecycle manager. A nil logger disables debug
// logging.
func NewManager(scorer *scoring.Scorer, classifier *hierarchy.Classifier, logger *logging.Logger) *Manager {
	return &Manager{
		scorer:     scorer,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// decision is one agent's computed transition, held until the whole
// snapshot is scored.
type decision struct {
	agent     models.Agent
	result    scoring.Result
	status    models.AgentStatus
	eliminate bool
	promote   bool
	reason    string
}

// Evaluate runs one cycle against the document, in place: spawning
// agents are activated, roles re-derived, contribution counts
// refreshed, every agent scored, and transitions applied in one batch
// after the whole snapshot is scored. No agent leaves the working set
// while others are still being scored.
//
// The returned results are self-contained: every entry carries the
// specialization copied at transition time, so downstream steps never
// re-query the mutated agent list.
func (m *Manager) Evaluate(doc *models.Document) *models.EvaluationResults {
	now := m.now()

	m.prepare(doc)

	// Score the whole snapshot before touching the working set.
	decisions := make([]decision, 0, len(doc.Agents))
	for _, agent := range doc.Agents {
		d := m.decide(agent, doc.Config)
		for _, clamp := range d.result.Clamped {
			m.logger.Log("agent %s: clamped %s", agent.ID, clamp)
		}
		decisions = append(decisions, d)
	}

	results := &models.EvaluationResults{
		EvaluatedAt:     models.FormatTimestamp(now),
		RegistryVersion: doc.Version,
		Promoted:        []models.ResultEntry{},
		Eliminated:      []models.ResultEntry{},
		Maintained:      []models.ResultEntry{},
	}

	// Batch commit: archive records copy every field downstream steps
	// need before the agent list is rebuilt.
	kept := make([]models.Agent, 0, len(doc.Agents))
	for _, d := range decisions {
		entry := models.ResultEntry{
			ID:             d.agent.ID,
			Name:           d.agent.Name,
			Score:          d.result.OverallScore,
			Specialization: d.agent.Specialization,
			Reason:         d.reason,
		}

		switch {
		case d.eliminate:
			results.Eliminated = append(results.Eliminated, entry)
			doc.Archive = append(doc.Archive, models.ArchiveRecord{
				ID:             d.agent.ID,
				Name:           d.agent.Name,
				Specialization: d.agent.Specialization,
				Score:          d.result.OverallScore,
				Reason:         d.reason,
				ArchivedAt:     models.FormatTimestamp(now),
			})
			m.logger.Log("agent %s (%s): eliminated, score %.3f", d.agent.ID, d.agent.Specialization, d.result.OverallScore)

		case d.promote:
			results.Promoted = append(results.Promoted, entry)
			doc.HallOfFame = append(doc.HallOfFame, models.ArchiveRecord{
				ID:             d.agent.ID,
				Name:           d.agent.Name,
				Specialization: d.agent.Specialization,
				Score:          d.result.OverallScore,
				Reason:         d.reason,
				ArchivedAt:     models.FormatTimestamp(now),
			})
			promoted := d.agent
			promoted.Status = models.StatusHallOfFame
			kept = append(kept, promoted)
			m.logger.Log("agent %s (%s): promoted to hall of fame, score %.3f", d.agent.ID, d.agent.Specialization, d.result.OverallScore)

		default:
			results.Maintained = append(results.Maintained, entry)
			maintained := d.agent
			maintained.Status = d.status
			kept = append(kept, maintained)
		}
	}
	doc.Agents = kept

	m.logger.Log("evaluation complete: %d promoted, %d eliminated, %d maintained",
		len(results.Promoted), len(results.Eliminated), len(results.Maintained))
	return results
}

// prepare activates spawning agents, re-derives roles from the
// hierarchy config, and refreshes stored contribution counts.
func (m *Manager) prepare(doc *models.Document) {
	for i := range doc.Agents {
		agent := &doc.Agents[i]

		if agent.Status == models.StatusSpawning {
			agent.Status = models.StatusActive
			m.logger.Log("agent %s: activated", agent.ID)
		}

		if m.classifier != nil {
			if role := m.classifier.RoleFor(agent.Specialization); role != agent.Role {
				m.logger.Log("agent %s: role %s -> %s", agent.ID, agent.Role, role)
				agent.Role = role
			}
		}

		if derived := agent.Metrics.Contributions(); agent.TotalContributions != derived {
			agent.TotalContributions = derived
		}
	}
}

// decide computes one agent's transition. Pure over (agent, config):
// rule order guarantees a protected agent is never eliminated and an
// ineligible score never promotes or eliminates.
func (m *Manager) decide(agent models.Agent, config models.Config) decision {
	result := m.scorer.Score(agent, config)
	d := decision{agent: agent, result: result, status: agent.Status}

	protected := agent.Protected || config.SpecializationProtected(agent.Specialization)

	switch {
	case protected:
		// Still scored, never eliminated; status stays as-is.
		d.reason = "protected"

	case agent.Status == models.StatusHallOfFame:
		d.reason = "hall of fame standing"

	case agent.Status == models.StatusEliminated:
		// Terminal. A document should never carry one, but if it does
		// the cycle archives it rather than resurrecting it.
		d.eliminate = true
		d.reason = "eliminated status carried over"

	case !result.Eligible:
		d.status = models.StatusMaintained
		d.reason = fmt.Sprintf("insufficient data: %d contributions below gate %d",
			agent.TotalContributions, config.MinContributions())

	case result.OverallScore < config.EliminationThreshold:
		d.eliminate = true
		d.reason = fmt.Sprintf("score %.3f below elimination threshold %.3f",
			result.OverallScore, config.EliminationThreshold)

	case result.OverallScore >= config.PromotionThreshold:
		d.promote = true
		d.reason = fmt.Sprintf("score %.3f reached promotion threshold %.3f",
			result.OverallScore, config.PromotionThreshold)

	default:
		d.status = models.StatusMaintained
		d.reason = fmt.Sprintf("score %.3f within thresholds", result.OverallScore)
	}

	return d
}
