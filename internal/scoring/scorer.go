// Package scoring turns raw agent performance counters into a single
// ranking score in [0,1].
package scoring

import (
	"fmt"
	"math"

	"github.com/cadrekit/cadre/pkg/models"
)

// DefaultTargetIssuesResolved is the resolved-issue count at which the
// issues_resolved metric saturates to 1.0.
const DefaultTargetIssuesResolved = 20

// Result is the outcome of scoring one agent.
type Result struct {
	// OverallScore is the weighted sum of normalized metrics, in [0,1].
	OverallScore float64
	// Eligible is false while the agent's contribution count is below
	// the significance gate. An ineligible score is computed for
	// visibility but must never drive promotion or elimination.
	Eligible bool
	// Clamped names the metrics that were out of range and clamped
	// before scoring. Clamping never aborts the run.
	Clamped []string
}

// Scorer computes overall scores against a count normalization target.
type Scorer struct {
	targetIssues int
}

// NewScorer creates a scorer. A non-positive target falls back to
// DefaultTargetIssuesResolved.
func NewScorer(targetIssues int) *Scorer {
	if targetIssues <= 0 {
		targetIssues = DefaultTargetIssuesResolved
	}
	return &Scorer{targetIssues: targetIssues}
}

// Score computes an agent's overall score under the config's weights.
// Each metric is normalized to [0,1]: rate metrics are used as-is,
// counts saturate at the target. A malformed metric is clamped into
// range and reported via Result.Clamped rather than failing the agent.
// Missing weights contribute 0.
func (s *Scorer) Score(agent models.Agent, config models.Config) Result {
	result := Result{
		Eligible: agent.TotalContributions >= config.MinContributions(),
	}

	codeQuality := s.clampRate("code_quality_score", agent.Metrics.CodeQualityScore, &result)
	prSuccess := s.clampRate("pr_success_rate", agent.Metrics.PRSuccessRate, &result)
	peerReview := s.clampRate("peer_review_score", agent.Metrics.PeerReviewScore, &result)

	issues := agent.Metrics.IssuesResolved
	if issues < 0 {
		result.Clamped = append(result.Clamped, fmt.Sprintf("issues_resolved %d -> 0", issues))
		issues = 0
	}
	normalizedIssues := math.Min(float64(issues)/float64(s.targetIssues), 1.0)

	score := config.MetricsWeight[models.WeightCodeQuality]*codeQuality +
		config.MetricsWeight[models.WeightIssuesResolved]*normalizedIssues +
		config.MetricsWeight[models.WeightPRSuccessRate]*prSuccess +
		config.MetricsWeight[models.WeightPeerReview]*peerReview

	if score > 1 {
		result.Clamped = append(result.Clamped, fmt.Sprintf("overall_score %.3f -> 1.0", score))
		score = 1
	}
	if score < 0 {
		result.Clamped = append(result.Clamped, fmt.Sprintf("overall_score %.3f -> 0.0", score))
		score = 0
	}
	result.OverallScore = score

	return result
}

// clampRate forces a rate metric into [0,1], recording the adjustment.
func (s *Scorer) clampRate(name string, v float64, result *Result) float64 {
	if v < 0 {
		result.Clamped = append(result.Clamped, fmt.Sprintf("%s %.3f -> 0.0", name, v))
		return 0
	}
	if v > 1 {
		result.Clamped = append(result.Clamped, fmt.Sprintf("%s %.3f -> 1.0", name, v))
		return 1
	}
	return v
}
