package state

import (
	"fmt"
	"strings"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
)

// Company-count bounds for a persona, enforced after every mutation.
const (
	MinCompanies = 3
	MaxCompanies = 10
)

// SchemaError indicates a parsed record failed structural validation.
type SchemaError struct {
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema violation: %s", e.Reason)
}

func schemaErrorf(format string, args ...any) (err *SchemaError) {
	err = &SchemaError{Reason: fmt.Sprintf(format, args...)}
	return err
}

// ValidateAnalysis checks the required fields of a job analysis.
func ValidateAnalysis(analysis JobAnalysis) (err error) {
	if strings.TrimSpace(analysis.JobTitle) == "" {
		return schemaErrorf("analysis is missing job_title")
	}
	if strings.TrimSpace(analysis.JobDomain) == "" {
		return schemaErrorf("analysis is missing job_domain")
	}
	if strings.TrimSpace(analysis.Role) == "" {
		return schemaErrorf("analysis is missing role")
	}
	if len(analysis.KeySkills) == 0 {
		return schemaErrorf("analysis has no key_skills")
	}
	return err
}

// ValidatePersona checks one persona's required fields and company bounds.
func ValidatePersona(p Persona) (err error) {
	if strings.TrimSpace(p.ID) == "" {
		return schemaErrorf("persona is missing id")
	}
	if strings.TrimSpace(p.Industry) == "" {
		return schemaErrorf("persona %s is missing industry", p.ID)
	}
	if strings.TrimSpace(p.JobType) == "" {
		return schemaErrorf("persona %s is missing job_type", p.ID)
	}
	if len(p.Companies) < MinCompanies || len(p.Companies) > MaxCompanies {
		return schemaErrorf("persona %s must have %d-%d companies, got %d", p.ID, MinCompanies, MaxCompanies, len(p.Companies))
	}
	return err
}

// ValidatePersonas checks a persona list. expectedCount < 0 skips the count
// check. IDs must be unique.
func ValidatePersonas(personas []Persona, expectedCount int) (err error) {
	if expectedCount >= 0 && len(personas) != expectedCount {
		return schemaErrorf("expected %d personas, got %d", expectedCount, len(personas))
	}

	seen := make(map[string]bool, len(personas))
	for _, p := range personas {
		if err = ValidatePersona(p); err != nil {
			return err
		}
		if seen[p.ID] {
			return schemaErrorf("duplicate persona id %s", p.ID)
		}
		seen[p.ID] = true
	}

	return err
}

// ValidateAxes checks an axis list. Non-standard categories are accepted
// with a warning.
func ValidateAxes(axes []Axis) (err error) {
	if len(axes) == 0 {
		return schemaErrorf("axis list is empty")
	}

	standard := make(map[string]bool, len(StandardCategories))
	for _, c := range StandardCategories {
		standard[c] = true
	}

	for i, axis := range axes {
		if strings.TrimSpace(axis.Category) == "" {
			return schemaErrorf("axis[%d] is missing category", i)
		}
		if strings.TrimSpace(axis.Item) == "" {
			return schemaErrorf("axis[%d] is missing item", i)
		}
		if !standard[axis.Category] {
			logger.Log.WithField("category", axis.Category).Warnf("axis[%d] uses a non-standard category", i)
		}
	}

	return err
}

// ValidateMatrix checks the assembled grid: expectedDataRows data rows under
// one header, and a uniform column count. expectedDataRows < 0 skips the row
// count check.
func ValidateMatrix(matrix [][]string, expectedDataRows int) (err error) {
	if len(matrix) == 0 {
		return schemaErrorf("matrix is empty")
	}

	if expectedDataRows >= 0 && len(matrix) != expectedDataRows+1 {
		return schemaErrorf("expected %d matrix rows including header, got %d", expectedDataRows+1, len(matrix))
	}

	headerCols := len(matrix[0])
	for i, row := range matrix[1:] {
		if len(row) != headerCols {
			return schemaErrorf("matrix row %d has %d columns, header has %d", i+1, len(row), headerCols)
		}
	}

	return err
}

// ValidateDiscussion checks the discussion guide is non-blank.
func ValidateDiscussion(discussion string) (err error) {
	if strings.TrimSpace(discussion) == "" {
		return schemaErrorf("discussion guide is empty")
	}
	return err
}
