package hierarchy

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cadrekit/cadre/pkg/models"
)

func TestClassifier_RoleFor(t *testing.T) {
	classifier := NewClassifier(Default())

	tests := []struct {
		name           string
		specialization string
		want           models.Role
	}{
		{"orchestration maps to coordinator", "orchestration", models.RoleCoordinator},
		{"architecture maps to coordinator", "architecture", models.RoleCoordinator},
		{"security maps to specialist", "security", models.RoleSpecialist},
		{"performance maps to specialist", "performance", models.RoleSpecialist},
		{"case-insensitive lookup", "Security", models.RoleSpecialist},
		{"unknown specialization defaults to worker", "origami", models.RoleWorker},
		{"empty specialization defaults to worker", "", models.RoleWorker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.RoleFor(tt.specialization); got != tt.want {
				t.Errorf("RoleFor(%q) = %q, want %q", tt.specialization, got, tt.want)
			}
		})
	}
}

func TestClassifier_RoleFor_CustomAssignments(t *testing.T) {
	config := Config{
		RoleAssignments: map[string]models.Role{
			"triage": models.RoleCoordinator,
		},
	}
	classifier := NewClassifier(config)

	if got := classifier.RoleFor("triage"); got != models.RoleCoordinator {
		t.Errorf("RoleFor(triage) = %q, want coordinator", got)
	}
	if got := classifier.RoleFor("security"); got != models.RoleWorker {
		t.Errorf("RoleFor(security) without assignment = %q, want worker", got)
	}
}

func TestClassifier_AgentsByRole(t *testing.T) {
	agents := []models.Agent{
		{ID: "agent-0000000001", Role: models.RoleCoordinator, Specialization: "orchestration"},
		{ID: "agent-0000000002", Role: models.RoleSpecialist, Specialization: "security"},
		{ID: "agent-0000000003", Role: models.RoleSpecialist, Specialization: "performance"},
		{ID: "agent-0000000004", Role: models.RoleWorker, Specialization: "general"},
	}
	classifier := NewClassifier(Default())

	tests := []struct {
		name   string
		role   models.Role
		filter string
		want   []string
	}{
		{"all specialists", models.RoleSpecialist, "", []string{"agent-0000000002", "agent-0000000003"}},
		{"specialists filtered by specialization", models.RoleSpecialist, "security", []string{"agent-0000000002"}},
		{"filter is case-insensitive", models.RoleSpecialist, "Performance", []string{"agent-0000000003"}},
		{"coordinators", models.RoleCoordinator, "", []string{"agent-0000000001"}},
		{"no matches", models.RoleCoordinator, "security", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.AgentsByRole(agents, tt.role, tt.filter)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AgentsByRole(%q, %q) = %v, want %v", tt.role, tt.filter, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default config is valid", Default(), false},
		{
			"unknown assignment role",
			Config{RoleAssignments: map[string]models.Role{"ops": "manager"}},
			true,
		},
		{
			"unknown rule role",
			Config{DelegationRules: map[models.Role][]models.Role{"manager": {models.RoleWorker}}},
			true,
		},
		{
			"unknown rule target",
			Config{DelegationRules: map[models.Role][]models.Role{models.RoleCoordinator: {"intern"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_FallbackCoordinator(t *testing.T) {
	config := Config{
		DefaultCoordinators: map[string]string{
			"security": "agent-0000000007",
			"default":  "agent-0000000001",
		},
	}

	tests := []struct {
		name   string
		domain string
		wantID string
		wantOK bool
	}{
		{"domain-specific coordinator", "security", "agent-0000000007", true},
		{"global fallback", "frontend", "agent-0000000001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := config.FallbackCoordinator(tt.domain)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("FallbackCoordinator(%q) = %q, %v; want %q, %v", tt.domain, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}

	empty := Config{DefaultCoordinators: map[string]string{}}
	if _, ok := empty.FallbackCoordinator("security"); ok {
		t.Error("FallbackCoordinator with no defaults = ok, want not ok")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load("/nonexistent/hierarchy.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(config.DelegationRules, DefaultRules()) {
		t.Errorf("DelegationRules = %v, want defaults", config.DelegationRules)
	}
	if !config.OversightEnabled {
		t.Error("OversightEnabled = false, want default true")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	content := `role_assignments:
  triage: coordinator
  security: specialist
default_coordinators:
  default: agent-0000000001
oversight_enabled: true
auto_escalation_enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := config.RoleAssignments["triage"]; got != models.RoleCoordinator {
		t.Errorf("role_assignments[triage] = %q, want coordinator", got)
	}
	if config.AutoEscalationEnabled {
		t.Error("AutoEscalationEnabled = true, want false")
	}
	// Omitted delegation_rules fall back to the default table.
	if !reflect.DeepEqual(config.DelegationRules, DefaultRules()) {
		t.Errorf("DelegationRules = %v, want defaults", config.DelegationRules)
	}
}

func TestLoad_RejectsUnknownRole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hierarchy.yaml")
	content := "role_assignments:\n  ops: manager\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with unknown role expected error, got nil")
	}
}
