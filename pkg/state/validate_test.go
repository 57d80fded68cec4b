package state

import (
	"strings"
	"testing"
)

func validPersona(id string) (p Persona) {
	p = Persona{
		ID:        id,
		Industry:  "FA and robotics",
		JobType:   "Control engineer",
		Companies: []string{"Fanuc", "Yaskawa", "Omron"},
	}
	return p
}

func TestValidatePersonas(t *testing.T) {
	cases := []struct {
		name     string
		personas []Persona
		expected int
		wantErr  string
	}{
		{
			name:     "valid list",
			personas: []Persona{validPersona("P1"), validPersona("P2"), validPersona("P3")},
			expected: 3,
		},
		{
			name:     "count mismatch",
			personas: []Persona{validPersona("P1")},
			expected: 3,
			wantErr:  "expected 3 personas",
		},
		{
			name:     "skip count check",
			personas: []Persona{validPersona("P1")},
			expected: -1,
		},
		{
			name: "too few companies",
			personas: []Persona{{
				ID: "P1", Industry: "x", JobType: "y",
				Companies: []string{"a", "b"},
			}},
			expected: 1,
			wantErr:  "must have 3-10 companies",
		},
		{
			name: "too many companies",
			personas: []Persona{{
				ID: "P1", Industry: "x", JobType: "y",
				Companies: []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"},
			}},
			expected: 1,
			wantErr:  "must have 3-10 companies",
		},
		{
			name:     "duplicate ids",
			personas: []Persona{validPersona("P1"), validPersona("P1")},
			expected: 2,
			wantErr:  "duplicate persona id",
		},
		{
			name: "missing industry",
			personas: []Persona{{
				ID: "P1", JobType: "y", Companies: []string{"a", "b", "c"},
			}},
			expected: 1,
			wantErr:  "missing industry",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePersonas(tc.personas, tc.expected)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tc.wantErr, err)
			}
			if _, ok := err.(*SchemaError); !ok {
				t.Errorf("Expected *SchemaError, got %T", err)
			}
		})
	}
}

func TestValidateAxes(t *testing.T) {
	err := ValidateAxes(nil)
	if err == nil {
		t.Error("Expected error for empty axis list")
	}

	err = ValidateAxes([]Axis{{Category: "Flow", Item: "customer negotiation"}})
	if err != nil {
		t.Errorf("Expected no error for valid axis, got: %v", err)
	}

	// Non-standard categories are accepted, only warned about.
	err = ValidateAxes([]Axis{{Category: "Certifications", Item: "PE license"}})
	if err != nil {
		t.Errorf("Expected non-standard category to be accepted, got: %v", err)
	}

	err = ValidateAxes([]Axis{{Category: "Flow"}})
	if err == nil {
		t.Error("Expected error for axis missing item")
	}
}

func TestValidateMatrix(t *testing.T) {
	grid := [][]string{
		{"Persona/Age", "Industry", "Job Type", "Companies", "Flow - a"},
		{"P1/25-29", "x", "y", "a, b, c", "〇"},
		{"P1/30-39", "x", "y", "a, b, c", "△"},
	}

	if err := ValidateMatrix(grid, 2); err != nil {
		t.Errorf("Expected valid matrix, got: %v", err)
	}

	if err := ValidateMatrix(grid, 3); err == nil {
		t.Error("Expected row count violation")
	}

	ragged := [][]string{
		{"Persona/Age", "Industry"},
		{"P1/25-29"},
	}
	if err := ValidateMatrix(ragged, 1); err == nil {
		t.Error("Expected column count violation")
	}

	if err := ValidateMatrix(nil, -1); err == nil {
		t.Error("Expected error for empty matrix")
	}
}

func TestMaxPersonaNumber(t *testing.T) {
	personas := []Persona{validPersona("P1"), validPersona("P3"), validPersona("P2")}
	if got := MaxPersonaNumber(personas); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := MaxPersonaNumber(nil); got != 0 {
		t.Errorf("Expected 0 for empty list, got %d", got)
	}
}

func TestSessionClone(t *testing.T) {
	session := Session{
		Personas: []Persona{validPersona("P1")},
		Matrix:   [][]string{{"h"}, {"v"}},
	}

	clone := session.Clone()
	clone.Personas[0].Companies[0] = "changed"
	clone.Matrix[1][0] = "changed"

	if session.Personas[0].Companies[0] == "changed" {
		t.Error("Clone aliased the companies slice")
	}
	if session.Matrix[1][0] == "changed" {
		t.Error("Clone aliased the matrix rows")
	}
}
