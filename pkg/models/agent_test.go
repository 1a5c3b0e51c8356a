package models

import (
	"testing"
	"time"
)

func TestAgentStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status AgentStatus
		want   bool
	}{
		{"spawning is valid", StatusSpawning, true},
		{"active is valid", StatusActive, true},
		{"maintained is valid", StatusMaintained, true},
		{"eliminated is valid", StatusEliminated, true},
		{"hall_of_fame is valid", StatusHallOfFame, true},
		{"empty string is invalid", AgentStatus(""), false},
		{"unknown status is invalid", AgentStatus("retired"), false},
		{"typo status is invalid", AgentStatus("activ"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("AgentStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestAgentStatus_Competing(t *testing.T) {
	tests := []struct {
		name   string
		status AgentStatus
		want   bool
	}{
		{"spawning occupies a slot", StatusSpawning, true},
		{"active occupies a slot", StatusActive, true},
		{"maintained occupies a slot", StatusMaintained, true},
		{"eliminated does not", StatusEliminated, false},
		{"hall_of_fame does not", StatusHallOfFame, false},
		{"unknown does not", AgentStatus("retired"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Competing(); got != tt.want {
				t.Errorf("AgentStatus(%q).Competing() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestValidAgentID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"ten digit epoch", "agent-1755718260", true},
		{"another ten digit epoch", "agent-0000000001", true},
		{"nine digits", "agent-175571826", false},
		{"eleven digits", "agent-17557182601", false},
		{"missing prefix", "1755718260", false},
		{"wrong prefix", "bot-1755718260", false},
		{"letters in epoch", "agent-17557a8260", false},
		{"trailing garbage", "agent-1755718260x", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidAgentID(tt.id); got != tt.want {
				t.Errorf("ValidAgentID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestNewAgentID(t *testing.T) {
	created := time.Date(2025, 8, 20, 18, 51, 0, 0, time.UTC)
	id := NewAgentID(created)
	if id != "agent-1755715860" {
		t.Errorf("NewAgentID() = %q, want %q", id, "agent-1755715860")
	}
	if !ValidAgentID(id) {
		t.Errorf("NewAgentID() produced invalid ID %q", id)
	}
}

func TestMetrics_Contributions(t *testing.T) {
	tests := []struct {
		name    string
		metrics Metrics
		want    int
	}{
		{"zero metrics", Metrics{}, 0},
		{"issues only", Metrics{IssuesResolved: 4}, 4},
		{"prs only", Metrics{PRsMerged: 3}, 3},
		{"issues and prs", Metrics{IssuesResolved: 5, PRsMerged: 3}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metrics.Contributions(); got != tt.want {
				t.Errorf("Metrics.Contributions() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	orig := time.Date(2025, 8, 20, 18, 51, 0, 0, time.UTC)
	s := FormatTimestamp(orig)
	if s != "2025-08-20T18:51:00Z" {
		t.Errorf("FormatTimestamp() = %q, want %q", s, "2025-08-20T18:51:00Z")
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) error: %v", s, err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("ParseTimestamp() = %v, want %v", parsed, orig)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not a timestamp", "yesterday"},
		{"date only", "2025-08-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTimestamp(tt.in); err == nil {
				t.Errorf("ParseTimestamp(%q) expected error, got nil", tt.in)
			}
		})
	}
}
