package modify

import (
	"encoding/json"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/matrix"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Delta is the subsystem-specific partial record proposed by the model.
// Only the fields for the classified target are populated.
type Delta struct {
	Personas         []PersonaDelta `json:"personas,omitempty"`
	Axes             []state.Axis   `json:"axes,omitempty"`
	CellUpdates      []CellUpdate   `json:"cell_updates,omitempty"`
	DiscussionPoints string         `json:"discussion_points,omitempty"`
}

// PersonaDelta is a partial persona update matched to an existing persona
// by id. Nil fields are left untouched.
type PersonaDelta struct {
	ID        string    `json:"id"`
	Industry  *string   `json:"industry,omitempty"`
	JobType   *string   `json:"job_type,omitempty"`
	Companies *[]string `json:"companies,omitempty"`
}

// CellUpdate overwrites exactly one matrix cell.
type CellUpdate struct {
	RowIndex *int   `json:"row_index"`
	ColIndex *int   `json:"col_index"`
	Value    string `json:"value"`
}

// Result describes one applied modification.
type Result struct {
	Target        Target `json:"modification_type"`
	ChangeSummary string `json:"change_summary"`
}

// modificationEnvelope matches the model's modification response shape.
type modificationEnvelope struct {
	ModificationType string          `json:"modification_type"`
	ModifiedData     json.RawMessage `json:"modified_data"`
	ChangeSummary    string          `json:"change_summary"`
}

// Merge applies a delta to canonical state under the target's merge rules
// and returns a new session. The input session is never mutated.
//
// Rules per target:
//   - personas: field-wise partial overwrite matched by id; unmatched delta
//     ids are ignored (new personas are never created through this path).
//   - axes: the delta list, if present, wholly replaces the axis list.
//   - matrix_cells: each in-bounds update overwrites exactly one cell; row 0
//     is the header and is never patched.
//   - discussion_points: the delta text, if present, replaces the text.
//   - general: pass-through.
func Merge(target Target, delta Delta, session state.Session) (out state.Session) {
	out = session.Clone()

	switch target {
	case TargetPersonas:
		for _, mod := range delta.Personas {
			for i := range out.Personas {
				if out.Personas[i].ID != mod.ID {
					continue
				}
				if mod.Industry != nil {
					out.Personas[i].Industry = *mod.Industry
				}
				if mod.JobType != nil {
					out.Personas[i].JobType = *mod.JobType
				}
				if mod.Companies != nil {
					out.Personas[i].Companies = append([]string(nil), (*mod.Companies)...)
				}
				break
			}
		}
		out.Matrix = matrix.Resync(out.Matrix, out.Personas)

	case TargetAxes:
		if len(delta.Axes) > 0 {
			out.Axes = append([]state.Axis(nil), delta.Axes...)
		}

	case TargetMatrix:
		for _, update := range delta.CellUpdates {
			if update.RowIndex == nil || update.ColIndex == nil {
				continue
			}
			r, c := *update.RowIndex, *update.ColIndex
			if r < 1 || r >= len(out.Matrix) {
				continue
			}
			if c < 0 || c >= len(out.Matrix[r]) {
				continue
			}
			out.Matrix[r][c] = update.Value
		}

	case TargetDiscussion:
		if delta.DiscussionPoints != "" {
			out.Discussion = delta.DiscussionPoints
		}

	default:
		logger.Log.Warn("general modification request, nothing merged; re-dispatch with a more specific request")
	}

	return out
}
