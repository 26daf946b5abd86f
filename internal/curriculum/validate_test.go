package curriculum

import (
	"strings"
	"testing"
)

func valid(id string, prereqs ...string) Skill {
	return Skill{ID: id, Name: "skill " + id, Subject: "Math", Grade: "3", Prerequisites: prereqs}
}

func TestValidate_SeedPasses(t *testing.T) {
	if _, err := LoadCatalog(seedYAML); err != nil {
		t.Fatalf("seed curriculum validation failed: %v", err)
	}
}

func TestValidateSkills_DetectsCycle(t *testing.T) {
	err := validateSkills([]Skill{valid("a", "b"), valid("b", "a")})
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should mention cycle, got: %v", err)
	}
}

func TestValidateSkills_DetectsDanglingPrereq(t *testing.T) {
	err := validateSkills([]Skill{valid("a"), valid("b", "nonexistent")})
	if err == nil {
		t.Fatal("expected error for dangling prerequisite, got nil")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should mention the missing ID, got: %v", err)
	}
}

func TestValidateSkills_DetectsDuplicateID(t *testing.T) {
	err := validateSkills([]Skill{valid("a"), valid("a")})
	if err == nil {
		t.Fatal("expected error for duplicate ID, got nil")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention duplicate, got: %v", err)
	}
}

func TestValidateSkills_FieldChecks(t *testing.T) {
	tests := []struct {
		name  string
		skill Skill
		want  string
	}{
		{"missing id", Skill{Name: "x", Subject: "Math", Grade: "3"}, "has no ID"},
		{"missing name", Skill{ID: "a", Subject: "Math", Grade: "3"}, "has no name"},
		{"missing subject", Skill{ID: "a", Name: "x", Grade: "3"}, "has no subject"},
		{"bad grade", Skill{ID: "a", Name: "x", Subject: "Math", Grade: "senior"}, "invalid grade"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSkills([]Skill{tt.skill})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error should mention %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidateSkills_ReportsAllProblems(t *testing.T) {
	err := validateSkills([]Skill{
		{ID: "a", Subject: "Math", Grade: "3"},
		valid("b", "ghost"),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "has no name") || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should list every problem, got: %v", err)
	}
}
