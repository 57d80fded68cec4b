package modify

import (
	"fmt"

	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// MinimalContext extracts only the slice of canonical state the classified
// target needs, bounding the prompt size. Matrix-cell edits in particular
// see only the header and counts, never the full grid.
func MinimalContext(route Route, session state.Session) (context map[string]any) {
	switch route.Target {
	case TargetPersonas:
		context = map[string]any{
			"personas": session.Personas,
		}

	case TargetAxes:
		type personaSummary struct {
			ID       string `json:"id"`
			Industry string `json:"industry"`
		}
		summaries := make([]personaSummary, 0, len(session.Personas))
		for _, p := range session.Personas {
			summaries = append(summaries, personaSummary{ID: p.ID, Industry: p.Industry})
		}
		context = map[string]any{
			"axes":             session.Axes,
			"personas_summary": summaries,
		}

	case TargetMatrix:
		var header []string
		if len(session.Matrix) > 0 {
			header = session.Matrix[0]
		}
		ids := make([]string, 0, len(session.Personas))
		for _, p := range session.Personas {
			ids = append(ids, p.ID)
		}
		context = map[string]any{
			"matrix_header": header,
			"personas":      ids,
			"row_count":     len(session.Matrix),
			"axes_count":    len(session.Axes),
			"note":          "The full matrix is not included. Name the cells to change by row_index and col_index.",
		}

	case TargetDiscussion:
		context = map[string]any{
			"discussion_points": session.Discussion,
		}

	default: // TargetGeneral
		context = map[string]any{
			"personas_count":        len(session.Personas),
			"axes_count":            len(session.Axes),
			"matrix_size":           fmt.Sprintf("%d rows", len(session.Matrix)),
			"has_discussion_points": session.Discussion != "",
			"warning":               "Name a concrete modification target.",
		}
	}

	return context
}
