package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/pkg/models"
)

// ErrAtCapacity is returned when admitting an agent would push the
// competing count past max_active_agents.
var ErrAtCapacity = errors.New("registry at capacity")

// Spawner admits new agents into a registry document.
type Spawner struct {
	classifier *hierarchy.Classifier
	now        func() time.Time
}

// NewSpawner creates a spawner. The classifier assigns the initial
// role from the specialization; nil defaults every spawn to worker.
func NewSpawner(classifier *hierarchy.Classifier) *Spawner {
	return &Spawner{classifier: classifier, now: time.Now}
}

// Spawn appends a new agent in the spawning state. The agent occupies
// a capacity slot immediately; the next evaluation cycle activates it.
func (s *Spawner) Spawn(doc *models.Document, name, specialization string) (*models.Agent, error) {
	if name == "" {
		return nil, errors.New("agent name required")
	}
	if specialization == "" {
		return nil, errors.New("agent specialization required")
	}
	if competing := doc.CompetingCount(); competing >= doc.Config.MaxActiveAgents {
		return nil, fmt.Errorf("%w: %d competing agents, max %d",
			ErrAtCapacity, competing, doc.Config.MaxActiveAgents)
	}

	now := s.now()
	id := models.NewAgentID(now)
	// Spawns within the same second would collide on the epoch ID.
	for bump := 1; ; bump++ {
		if _, ok := doc.AgentByID(id); !ok {
			break
		}
		id = models.NewAgentID(now.Add(time.Duration(bump) * time.Second))
	}

	role := models.RoleWorker
	if s.classifier != nil {
		role = s.classifier.RoleFor(specialization)
	}

	doc.Agents = append(doc.Agents, models.Agent{
		ID:             id,
		Name:           name,
		Specialization: specialization,
		Role:           role,
		Status:         models.StatusSpawning,
		Traits:         map[string]float64{},
		CreatedAt:      models.FormatTimestamp(now),
		LastActivity:   models.FormatTimestamp(now),
	})
	return &doc.Agents[len(doc.Agents)-1], nil
}
