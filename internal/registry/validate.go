package registry

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/cadrekit/cadre/pkg/models"
)

// WeightSumTolerance is the no-warning band around a metrics_weight sum
// of 1.0. A sum of 1.002 passes clean; 1.003 warns. The tolerance is
// advisory: any deviation yields a warning, never an error.
const WeightSumTolerance = 0.002

// earliestPlausible is the floor under agent timestamps; anything older
// is flagged as implausible.
var earliestPlausible = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// versionPattern matches MAJOR.MINOR.PATCH document versions.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Report is the outcome of validating a document. Errors are blocking:
// no caller may persist a document whose report carries errors.
// Warnings are advisory only.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// HasErrors returns true if the report carries blocking errors.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the report carries advisory warnings.
func (r *Report) HasWarnings() bool {
	return len(r.Warnings) > 0
}

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a document's structure and semantics. It is a pure
// function over the document: no side effects, callers own persistence.
func Validate(doc *models.Document) *Report {
	return validateAt(doc, time.Now())
}

// validateAt is Validate with an injected clock for the timestamp
// sanity checks.
func validateAt(doc *models.Document, now time.Time) *Report {
	report := &Report{}

	if doc == nil {
		report.errorf("document is empty")
		return report
	}

	validateVersion(doc.Version, report)
	validateConfig(doc.Config, report)

	seen := make(map[string]bool, len(doc.Agents))
	for i, agent := range doc.Agents {
		validateAgent(i, agent, now, report)
		if seen[agent.ID] {
			report.errorf("agents[%d]: duplicate id %q", i, agent.ID)
		}
		seen[agent.ID] = true
	}

	if doc.Config.MaxActiveAgents > 0 {
		if n := doc.CompetingCount(); n > doc.Config.MaxActiveAgents {
			report.warnf("population: %d competing agents exceed max_active_agents %d", n, doc.Config.MaxActiveAgents)
		}
	}

	validateArchive("hall_of_fame", doc.HallOfFame, report)
	validateArchive("archive", doc.Archive, report)

	return report
}

func validateVersion(version string, report *Report) {
	if version == "" {
		report.errorf("version: missing")
		return
	}
	if !versionPattern.MatchString(version) {
		report.errorf("version: %q does not match MAJOR.MINOR.PATCH", version)
	}
}

func validateConfig(config models.Config, report *Report) {
	if config.EliminationThreshold < 0 || config.EliminationThreshold > 1 {
		report.errorf("config: elimination_threshold %.3f outside [0,1]", config.EliminationThreshold)
	}
	if config.PromotionThreshold < 0 || config.PromotionThreshold > 1 {
		report.errorf("config: promotion_threshold %.3f outside [0,1]", config.PromotionThreshold)
	}
	if config.PromotionThreshold < config.EliminationThreshold {
		report.errorf("config: promotion_threshold %.3f below elimination_threshold %.3f",
			config.PromotionThreshold, config.EliminationThreshold)
	}
	if config.MaxActiveAgents <= 0 {
		report.errorf("config: max_active_agents must be positive, got %d", config.MaxActiveAgents)
	}
	if config.MinContributionsForRanking < 0 {
		report.errorf("config: min_contributions_for_ranking must not be negative, got %d", config.MinContributionsForRanking)
	} else if config.MinContributionsForRanking == 0 {
		report.warnf("config: min_contributions_for_ranking unset, default %d applies", models.DefaultMinContributions)
	}

	validateWeights(config.MetricsWeight, report)
}

func validateWeights(weights map[string]float64, report *Report) {
	if len(weights) == 0 {
		report.errorf("config: metrics_weight missing")
		return
	}

	for _, key := range models.WeightKeys() {
		if _, ok := weights[key]; !ok {
			report.errorf("config: metrics_weight missing key %q", key)
		}
	}

	known := make(map[string]bool)
	for _, key := range models.WeightKeys() {
		known[key] = true
	}

	keys := make([]string, 0, len(weights))
	for key := range weights {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, key := range keys {
		w := weights[key]
		if !known[key] {
			report.warnf("config: metrics_weight has unknown key %q", key)
		}
		if w < 0 || w > 1 {
			report.errorf("config: metrics_weight[%s] %.3f outside [0,1]", key, w)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > WeightSumTolerance {
		report.warnf("config: metrics_weight sums to %.3f, expected 1.0 (±%.3f)", sum, WeightSumTolerance)
	}
}

func validateAgent(i int, agent models.Agent, now time.Time, report *Report) {
	label := fmt.Sprintf("agents[%d] (%s)", i, agent.ID)

	if !models.ValidAgentID(agent.ID) {
		report.errorf("agents[%d]: id %q does not match agent-<10-digit-epoch>", i, agent.ID)
	}
	if agent.Name == "" {
		report.errorf("%s: name missing", label)
	}
	if agent.Specialization == "" {
		report.errorf("%s: specialization missing", label)
	}
	if !agent.Role.Valid() {
		report.errorf("%s: unknown role %q", label, agent.Role)
	}
	if !agent.Status.Valid() {
		report.errorf("%s: unknown status %q", label, agent.Status)
	}

	traits := make([]string, 0, len(agent.Traits))
	for name := range agent.Traits {
		traits = append(traits, name)
	}
	sort.Strings(traits)
	for _, name := range traits {
		if v := agent.Traits[name]; v < 0 || v > 100 {
			report.errorf("%s: trait %q %.1f outside [0,100]", label, name, v)
		}
	}

	validateMetrics(label, agent.Metrics, report)

	if agent.TotalContributions < 0 {
		report.errorf("%s: total_contributions must not be negative, got %d", label, agent.TotalContributions)
	} else if derived := agent.Metrics.Contributions(); agent.TotalContributions != derived {
		report.warnf("%s: total_contributions %d drifted from derived %d", label, agent.TotalContributions, derived)
	}

	validateTimestamp(label, "created_at", agent.CreatedAt, now, report)
	validateTimestamp(label, "last_activity", agent.LastActivity, now, report)
}

func validateMetrics(label string, m models.Metrics, report *Report) {
	if m.CodeQualityScore < 0 || m.CodeQualityScore > 1 {
		report.errorf("%s: code_quality_score %.3f outside [0,1]", label, m.CodeQualityScore)
	}
	if m.IssuesResolved < 0 {
		report.errorf("%s: issues_resolved must not be negative, got %d", label, m.IssuesResolved)
	}
	if m.PRsMerged < 0 {
		report.errorf("%s: prs_merged must not be negative, got %d", label, m.PRsMerged)
	}
	if m.PRSuccessRate < 0 || m.PRSuccessRate > 1 {
		report.errorf("%s: pr_success_rate %.3f outside [0,1]", label, m.PRSuccessRate)
	}
	if m.PeerReviewScore < 0 || m.PeerReviewScore > 1 {
		report.errorf("%s: peer_review_score %.3f outside [0,1]", label, m.PeerReviewScore)
	}
}

// validateTimestamp flags unparseable timestamps as errors; future or
// implausibly old values are only warnings.
func validateTimestamp(label, field, value string, now time.Time, report *Report) {
	if value == "" {
		report.errorf("%s: %s missing", label, field)
		return
	}
	t, err := models.ParseTimestamp(value)
	if err != nil {
		report.errorf("%s: %s %q is not ISO-8601", label, field, value)
		return
	}
	if t.After(now) {
		report.warnf("%s: %s %s is in the future", label, field, value)
	}
	if t.Before(earliestPlausible) {
		report.warnf("%s: %s %s is implausibly old", label, field, value)
	}
}

// validateArchive checks self-contained records. Gaps here are the
// trace of the old propagation defect, so they surface as warnings
// rather than blocking legacy documents.
func validateArchive(section string, records []models.ArchiveRecord, report *Report) {
	for i, rec := range records {
		if rec.ID == "" {
			report.warnf("%s[%d]: id missing", section, i)
		}
		if rec.Specialization == "" {
			report.warnf("%s[%d] (%s): specialization missing", section, i, rec.ID)
		}
		if rec.Score < 0 || rec.Score > 1 {
			report.warnf("%s[%d] (%s): score %.3f outside [0,1]", section, i, rec.ID, rec.Score)
		}
		if rec.ArchivedAt != "" {
			if _, err := models.ParseTimestamp(rec.ArchivedAt); err != nil {
				report.warnf("%s[%d] (%s): archived_at %q is not ISO-8601", section, i, rec.ID, rec.ArchivedAt)
			}
		}
	}
}
