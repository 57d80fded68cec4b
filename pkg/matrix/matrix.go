package matrix

import (
	"strings"

	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Identity column labels. Column positions are not a contract; consumers
// locate columns by these labels.
const (
	ColPersonaAge = "Persona/Age"
	ColIndustry   = "Industry"
	ColJobType    = "Job Type"
	ColCompanies  = "Companies"
)

// CompanySeparator joins a persona's company list into the companies cell.
const CompanySeparator = ", "

// Row is one persona/age evaluation record as produced by the model, before
// grid assembly.
type Row struct {
	PersonaID   string            `json:"persona_id"`
	AgeRange    string            `json:"age_range"`
	Industry    string            `json:"industry"`
	JobType     string            `json:"job_type"`
	Companies   []string          `json:"companies"`
	Evaluations map[string]string `json:"evaluations"`
}

// Header builds the shared header row: four identity columns plus one
// column per axis.
func Header(axes []state.Axis) (header []string) {
	header = []string{ColPersonaAge, ColIndustry, ColJobType, ColCompanies}
	for _, axis := range axes {
		header = append(header, axis.ColumnLabel())
	}
	return header
}

// Assemble converts model-produced rows into the 2-D grid under the shared
// header. Rows keep their input order; evaluation cells are looked up by
// axis column label, missing entries become the empty symbol.
func Assemble(rows []Row, axes []state.Axis) (grid [][]string) {
	header := Header(axes)
	grid = [][]string{header}

	for _, r := range rows {
		row := []string{
			r.PersonaID + "/" + r.AgeRange,
			r.Industry,
			r.JobType,
			strings.Join(r.Companies, CompanySeparator),
		}
		for _, axis := range axes {
			row = append(row, r.Evaluations[axis.ColumnLabel()])
		}
		grid = append(grid, row)
	}

	return grid
}

// ToMarkdown renders the grid as a markdown table for prompt context.
func ToMarkdown(grid [][]string) (md string) {
	if len(grid) == 0 {
		return md
	}

	var lines []string
	lines = append(lines, "| "+strings.Join(grid[0], " | ")+" |")

	sep := make([]string, len(grid[0]))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(sep, " | ")+" |")

	for _, row := range grid[1:] {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}

	md = strings.Join(lines, "\n")
	return md
}

// columnIndex returns the index of the column with the given header label,
// or -1 when absent.
func columnIndex(header []string, label string) (idx int) {
	for i, h := range header {
		if h == label {
			return i
		}
	}
	idx = -1
	return idx
}
