package matrix

import (
	"strings"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Resync re-derives the companies column from the authoritative persona
// company lists after any operation that can change them.
//
// Columns are located by header label, not position. Rows whose leading id
// token (text before "/") matches a known persona get only their companies
// cell overwritten; rows with unknown ids or too few cells are skipped.
// Partial desynchronization is preferable to aborting the whole table on
// one bad row. Resync is idempotent for unchanged personas.
func Resync(grid [][]string, personas []state.Persona) (out [][]string) {
	out = grid
	if len(grid) < 2 {
		return out
	}

	header := grid[0]
	idCol := columnIndex(header, ColPersonaAge)
	companiesCol := columnIndex(header, ColCompanies)
	if idCol < 0 || companiesCol < 0 {
		return out
	}

	byID := make(map[string][]string, len(personas))
	for _, p := range personas {
		if p.ID != "" {
			byID[p.ID] = p.Companies
		}
	}

	out = make([][]string, len(grid))
	out[0] = append([]string(nil), header...)

	updated := 0
	for i, row := range grid[1:] {
		newRow := append([]string(nil), row...)
		out[i+1] = newRow

		if len(newRow) <= idCol || len(newRow) <= companiesCol {
			continue
		}

		personaID := strings.TrimSpace(strings.SplitN(newRow[idCol], "/", 2)[0])
		if personaID == "" {
			continue
		}

		companies, known := byID[personaID]
		if !known {
			continue
		}

		newRow[companiesCol] = strings.Join(companies, CompanySeparator)
		updated++
	}

	if updated > 0 {
		logger.Log.WithField("rows", updated).Info("resynchronized companies column from personas")
	}

	return out
}
