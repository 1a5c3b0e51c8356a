package decompose

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/cadrekit/cadre/pkg/models"
)

// Decomposer classifies tasks by domain spread and plans their
// delegation. Classification is deterministic keyword counting; no
// model calls are involved.
type Decomposer struct {
	keywords map[string][]string
	order    []string
}

// NewDecomposer creates a decomposer with the default domain keywords.
func NewDecomposer() *Decomposer {
	return &Decomposer{
		keywords: DomainKeywords,
		order:    domainOrder,
	}
}

// Decompose builds a coordination plan for the task. An empty taskID is
// replaced with a generated one.
//
// Complexity follows the domain count: zero or one domain is simple
// (direct single-worker assignment, no sub-tasks), two or three domains
// is moderate (one specialist sub-task per domain), and four or more
// (or an explicit complex label) is complex (specialists additionally
// spawn worker sub-tasks for tests and docs deliverables).
func (d *Decomposer) Decompose(taskID, description string, labels []string) *models.CoordinationPlan {
	if taskID == "" {
		taskID = "task-" + uuid.New().String()
	}

	domains := d.DetectDomains(description, labels)
	complexity := classify(len(domains), labels)

	plan := &models.CoordinationPlan{
		TaskID:         taskID,
		Complexity:     complexity,
		Domains:        domains,
		SubTasks:       []models.PlanTask{},
		ExecutionOrder: []string{},
	}

	if complexity == models.ComplexitySimple {
		return plan
	}

	planDomains := domains
	if len(planDomains) == 0 {
		// Complex label with nothing recognized still needs a seat for
		// the work.
		planDomains = []string{fallbackDomain}
		plan.Domains = planDomains
	}

	var workers []models.PlanTask
	for _, domain := range planDomains {
		specialist := models.PlanTask{
			ID:          fmt.Sprintf("%s-%s", taskID, domain),
			Domain:      domain,
			Role:        models.RoleSpecialist,
			Description: fmt.Sprintf("Handle %s work: %s", domain, description),
		}
		plan.SubTasks = append(plan.SubTasks, specialist)
		plan.ExecutionOrder = append(plan.ExecutionOrder, specialist.ID)

		if complexity == models.ComplexityComplex {
			workers = append(workers,
				models.PlanTask{
					ID:          specialist.ID + "-tests",
					Domain:      domain,
					Role:        models.RoleWorker,
					Description: fmt.Sprintf("Write tests covering the %s changes", domain),
					ParentID:    specialist.ID,
				},
				models.PlanTask{
					ID:          specialist.ID + "-docs",
					Domain:      domain,
					Role:        models.RoleWorker,
					Description: fmt.Sprintf("Update documentation for the %s changes", domain),
					ParentID:    specialist.ID,
				},
			)
		}
	}

	// Every specialist is ordered ahead of every worker it spawned.
	for _, worker := range workers {
		plan.SubTasks = append(plan.SubTasks, worker)
		plan.ExecutionOrder = append(plan.ExecutionOrder, worker.ID)
	}

	return plan
}

// DetectDomains returns the distinct recognized domains whose keywords
// appear in the description or labels, in planning order. Matching is
// whole-token, so "rapid" never triggers the api domain.
func (d *Decomposer) DetectDomains(description string, labels []string) []string {
	tokens := tokenize(description)
	for _, label := range labels {
		for token := range tokenize(label) {
			tokens[token] = true
		}
	}

	var domains []string
	for _, domain := range d.order {
		for _, keyword := range d.keywords[domain] {
			if tokens[keyword] {
				domains = append(domains, domain)
				break
			}
		}
	}
	return domains
}

// classify applies the complexity heuristic to a domain count.
func classify(domainCount int, labels []string) models.Complexity {
	for _, label := range labels {
		if strings.EqualFold(strings.TrimSpace(label), LabelComplex) {
			return models.ComplexityComplex
		}
	}
	switch {
	case domainCount >= 4:
		return models.ComplexityComplex
	case domainCount >= 2:
		return models.ComplexityModerate
	default:
		return models.ComplexitySimple
	}
}

// tokenize lowercases text and splits it on non-alphanumeric runes.
func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[field] = true
	}
	return tokens
}
