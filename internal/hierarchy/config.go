// Package hierarchy maps agent specializations onto the three-tier
// delegation hierarchy and loads the hierarchy configuration.
package hierarchy

import (
	"errors"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/cadrekit/cadre/pkg/models"
)

// Config is the hierarchy configuration: who maps where, who may
// delegate to whom, and how escalations behave.
type Config struct {
	// RoleAssignments maps specializations to roles. Specializations
	// not listed here default to worker.
	RoleAssignments map[string]models.Role `yaml:"role_assignments"`
	// DelegationRules maps each role to the roles it may delegate to.
	// Empty falls back to DefaultRules.
	DelegationRules map[models.Role][]models.Role `yaml:"delegation_rules"`
	// DefaultCoordinators maps a domain to the coordinator agent that
	// catches escalations with no recorded parent. The "default" key is
	// the global fallback.
	DefaultCoordinators map[string]string `yaml:"default_coordinators"`
	// OversightEnabled allows orphaned escalations to fall back to a
	// default coordinator. When false they fail instead.
	OversightEnabled bool `yaml:"oversight_enabled"`
	// AutoEscalationEnabled lets the escalation handler resolve targets
	// automatically. When false, escalations are recorded for manual
	// routing and carry no target.
	AutoEscalationEnabled bool `yaml:"auto_escalation_enabled"`
}

// DefaultRules returns the delegation permission table: coordinators
// reach down two tiers, specialists one, workers none. Same-tier
// delegation is not granted.
func DefaultRules() map[models.Role][]models.Role {
	return map[models.Role][]models.Role{
		models.RoleCoordinator: {models.RoleSpecialist, models.RoleWorker},
		models.RoleSpecialist:  {models.RoleWorker},
		models.RoleWorker:      {},
	}
}

// Default returns the built-in hierarchy configuration.
func Default() Config {
	return Config{
		RoleAssignments: map[string]models.Role{
			"orchestration":  models.RoleCoordinator,
			"coordination":   models.RoleCoordinator,
			"architecture":   models.RoleCoordinator,
			"strategy":       models.RoleCoordinator,
			"api":            models.RoleSpecialist,
			"backend":        models.RoleSpecialist,
			"database":       models.RoleSpecialist,
			"frontend":       models.RoleSpecialist,
			"infrastructure": models.RoleSpecialist,
			"performance":    models.RoleSpecialist,
			"security":       models.RoleSpecialist,
			"testing":        models.RoleSpecialist,
		},
		DelegationRules:       DefaultRules(),
		DefaultCoordinators:   map[string]string{},
		OversightEnabled:      true,
		AutoEscalationEnabled: true,
	}
}

// Load reads a hierarchy config from path. A missing file yields the
// default configuration; a present but invalid file is an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read hierarchy config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse hierarchy config: %w", err)
	}

	if config.DelegationRules == nil {
		config.DelegationRules = DefaultRules()
	}
	if config.DefaultCoordinators == nil {
		config.DefaultCoordinators = map[string]string{}
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate rejects configs that name unknown roles.
func (c Config) Validate() error {
	for spec, role := range c.RoleAssignments {
		if !role.Valid() {
			return fmt.Errorf("role_assignments[%s]: unknown role %q", spec, role)
		}
	}
	for role, targets := range c.DelegationRules {
		if !role.Valid() {
			return fmt.Errorf("delegation_rules: unknown role %q", role)
		}
		for _, target := range targets {
			if !target.Valid() {
				return fmt.Errorf("delegation_rules[%s]: unknown target role %q", role, target)
			}
		}
	}
	return nil
}

// FallbackCoordinator resolves the default coordinator for a domain,
// trying the domain key first and then the global "default" key.
func (c Config) FallbackCoordinator(domain string) (string, bool) {
	if id, ok := c.DefaultCoordinators[domain]; ok && id != "" {
		return id, true
	}
	if id, ok := c.DefaultCoordinators["default"]; ok && id != "" {
		return id, true
	}
	return "", false
}
