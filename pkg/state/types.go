package state

import "fmt"

// Evaluation symbols used in matrix cells. The empty string means the axis
// is not applicable to the row.
const (
	SymbolFilled  = "〇"
	SymbolPartial = "△"
	SymbolMinimal = "▲"
	SymbolNone    = ""
)

// StandardCategories is the default grouping for evaluation axes. Other
// categories are accepted with a warning.
var StandardCategories = []string{"Flow", "Role", "Technology", "Experience"}

// JobAnalysis is the structured breakdown of a job posting, produced once
// and read-only afterwards.
type JobAnalysis struct {
	JobTitle         string   `json:"job_title"`
	KeySkills        []string `json:"key_skills"`
	JobDomain        string   `json:"job_domain"`
	Role             string   `json:"role"`
	MustRequirements []string `json:"must_requirements"`
	WantRequirements []string `json:"want_requirements"`
	BusinessScope    string   `json:"business_scope"`
}

// Persona is one synthetic target-candidate profile.
type Persona struct {
	ID        string   `json:"id"`
	Industry  string   `json:"industry"`
	JobType   string   `json:"job_type"`
	Companies []string `json:"companies"`
}

// Axis is one evaluation dimension; Category groups axes for display.
type Axis struct {
	Category string `json:"category"`
	Item     string `json:"item"`
}

// ColumnLabel returns the matrix header label for this axis.
func (a Axis) ColumnLabel() string {
	return fmt.Sprintf("%s - %s", a.Category, a.Item)
}

// ReviewIssue is one defect reported by the self-review stage. RowIndex and
// ColIndex are optional structured locators; when absent only the free-text
// Location describes the defect.
type ReviewIssue struct {
	Location     string `json:"location"`
	Description  string `json:"description"`
	SuggestedFix string `json:"suggested_fix"`
	RowIndex     *int   `json:"row_index,omitempty"`
	ColIndex     *int   `json:"col_index,omitempty"`
}

// ReviewResult is the transient outcome of one self-review pass.
type ReviewResult struct {
	HasIssues      bool          `json:"has_issues"`
	Issues         []ReviewIssue `json:"issues"`
	OverallQuality string        `json:"overall_quality"`
	Confidence     float64       `json:"confidence_score"`
}

// QATurn is one question/answer exchange.
type QATurn struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// Session is the canonical state handed to and received from callers. Core
// operations take a Session and return a new one; the controller owns the
// single writable slot.
type Session struct {
	JobDescription string      `json:"job_description"`
	Analysis       JobAnalysis `json:"analysis"`
	Personas       []Persona   `json:"personas"`
	Axes           []Axis      `json:"axes"`
	Matrix         [][]string  `json:"matrix"`
	Discussion     string      `json:"discussion"`
	QAHistory      []QATurn    `json:"qa_history"`
}

// Clone returns a deep copy of the session so merges never alias the
// caller's slices.
func (s Session) Clone() (out Session) {
	out = s

	out.Personas = make([]Persona, len(s.Personas))
	for i, p := range s.Personas {
		out.Personas[i] = p
		out.Personas[i].Companies = append([]string(nil), p.Companies...)
	}

	out.Axes = append([]Axis(nil), s.Axes...)

	out.Matrix = make([][]string, len(s.Matrix))
	for i, row := range s.Matrix {
		out.Matrix[i] = append([]string(nil), row...)
	}

	out.QAHistory = append([]QATurn(nil), s.QAHistory...)

	return out
}

// MaxPersonaNumber returns the highest numeric suffix among persona IDs of
// the form "P<n>".
func MaxPersonaNumber(personas []Persona) (max int) {
	for _, p := range personas {
		var n int
		if _, err := fmt.Sscanf(p.ID, "P%d", &n); err == nil && n > max {
			max = n
		}
	}
	return max
}
