package modify

import "strings"

// Target identifies the subsystem a modification request affects.
type Target string

// Modification targets.
const (
	TargetPersonas   Target = "personas"
	TargetAxes       Target = "axes"
	TargetMatrix     Target = "matrix_cells"
	TargetDiscussion Target = "discussion_points"
	TargetGeneral    Target = "general"
)

// Route pairs a classified target with the constraint text injected into
// the modification prompt.
type Route struct {
	Target      Target
	Constraints string
}

// Keyword tables, checked in fixed priority order: personas, axes, matrix,
// discussion, else general. First match wins. A request can match several
// tables ("change the axis for P1's companies"); the priority order is a
// deliberate simple tie-break, not semantic disambiguation.
var (
	personaKeywords = []string{"persona", "company", "companies", "industry", "job type", "candidate", "employer"}

	axesKeywords = []string{"axis", "axes", "category", "flow", "role", "technology", "experience", "skill column"}

	matrixKeywords = []string{"matrix", "evaluation", "cell", "row", "column", "score", "symbol", "rating"}

	discussionKeywords = []string{"discussion", "point", "agenda", "talking", "confirm", "meeting"}
)

// Classify routes a natural-language modification request to a target
// subsystem with its merge constraints.
func Classify(request string) (route Route) {
	lowered := strings.ToLower(request)

	if containsAny(lowered, personaKeywords) {
		route = Route{
			Target:      TargetPersonas,
			Constraints: "Keep every companies array within 3-10 entries. Never change existing persona ids. Replace existing companies when increasing variety.",
		}
		return route
	}

	if containsAny(lowered, axesKeywords) {
		route = Route{
			Target:      TargetAxes,
			Constraints: "Categories must be one of Flow, Role, Technology, Experience. Keep the total between 20 and 30 axes.",
		}
		return route
	}

	if containsAny(lowered, matrixKeywords) {
		route = Route{
			Target:      TargetMatrix,
			Constraints: "Evaluation symbols must be 〇, △, ▲, or empty. Identify cells by row index and column index against the provided header.",
		}
		return route
	}

	if containsAny(lowered, discussionKeywords) {
		route = Route{
			Target:      TargetDiscussion,
			Constraints: "Keep three discussion points in markdown format.",
		}
		return route
	}

	route = Route{
		Target:      TargetGeneral,
		Constraints: "Keep the existing structure and change only what the request names.",
	}
	return route
}

// containsAny reports whether s contains any of the keywords.
func containsAny(s string, keywords []string) (found bool) {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return found
}
