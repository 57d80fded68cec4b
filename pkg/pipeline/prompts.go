package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recruiterlab/persona-matrix/pkg/matrix"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// systemDirective is the default system message for every pipeline call.
const systemDirective = "You are a recruiting consultant. Follow the instructions exactly and answer precisely."

// systemDirectiveJSON is the system message for calls that must return JSON.
const systemDirectiveJSON = "You are a recruiting consultant. Output strict JSON only: no explanations, no markdown, no annotations."

// buildAnalysisPrompt creates the job-posting analysis prompt.
func buildAnalysisPrompt(jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`Analyze the following job posting and extract its structure.

JOB POSTING:
%s

Extract:
1. The job title
2. Key skills the role requires, most important first
3. The business domain the role operates in
4. The role itself (what the hire will do day to day)
5. Must-have requirements
6. Nice-to-have requirements
7. The business scope (team, product, or market the role covers)

Return ONLY valid JSON in this exact format:
{
  "job_title": "extracted title",
  "key_skills": ["skill1", "skill2"],
  "job_domain": "business domain",
  "role": "role description",
  "must_requirements": ["req1", "req2"],
  "want_requirements": ["req1", "req2"],
  "business_scope": "scope description"
}`, jobDescription)

	return prompt
}

// buildPersonasPrompt creates the persona generation prompt.
func buildPersonasPrompt(jobDescription string, analysis state.JobAnalysis, n int) (prompt string) {
	analysisJSON, _ := json.MarshalIndent(analysis, "", "  ")

	prompt = fmt.Sprintf(`Based on the job posting and its analysis, infer %d distinct target-candidate personas: profiles of people currently employed elsewhere who would fit this role.

JOB POSTING:
%s

ANALYSIS:
%s

Each persona needs:
- "id": sequential token "P1", "P2", ...
- "industry": the industry the candidate currently works in
- "job_type": the candidate's current job type
- "companies": 3-10 distinct example companies the candidate might currently work at

The %d personas must differ meaningfully in industry or job type.

Return ONLY valid JSON in this exact format:
{
  "personas": [
    {"id": "P1", "industry": "...", "job_type": "...", "companies": ["...", "...", "..."]}
  ]
}`, n, jobDescription, string(analysisJSON), n)

	return prompt
}

// buildAdditionalPersonasPrompt extends the persona prompt with a summary of
// existing personas and an instruction to differ from them.
func buildAdditionalPersonasPrompt(jobDescription string, analysis state.JobAnalysis, existing []state.Persona, n int) (prompt string) {
	prompt = buildPersonasPrompt(jobDescription, analysis, n)

	var summary []string
	for _, p := range existing {
		summary = append(summary, fmt.Sprintf("- %s / %s", p.Industry, p.JobType))
	}

	prompt += fmt.Sprintf(`

EXISTING PERSONAS (generate personas that differ from all of these):
%s

Generate %d personas that differ from the existing ones above.`, strings.Join(summary, "\n"), n)

	return prompt
}

// buildAxesPrompt creates the evaluation-axis generation prompt.
func buildAxesPrompt(jobDescription string, analysis state.JobAnalysis, personas []state.Persona) (prompt string) {
	analysisJSON, _ := json.MarshalIndent(analysis, "", "  ")
	personasJSON, _ := json.MarshalIndent(personas, "", "  ")

	prompt = fmt.Sprintf(`Based on the job posting, its analysis, and the target personas, generate the evaluation axes for a candidate-fit matrix.

JOB POSTING:
%s

ANALYSIS:
%s

PERSONAS:
%s

Generate 20-30 axes across the four categories %q, %q, %q, and %q: work-flow steps the role performs, roles played within those steps, technologies used, and concrete experience examples. Each axis is one column of the matrix.

Return ONLY valid JSON in this exact format:
{
  "axes": [
    {"category": "Flow", "item": "customer negotiation"}
  ]
}`, jobDescription, string(analysisJSON), string(personasJSON),
		state.StandardCategories[0], state.StandardCategories[1], state.StandardCategories[2], state.StandardCategories[3])

	return prompt
}

// buildUpdateAxesPrompt asks the model whether newly added personas need
// additional axes.
func buildUpdateAxesPrompt(existingAxes []state.Axis, newPersonas []state.Persona, jobDescription string) (prompt string) {
	axesJSON, _ := json.MarshalIndent(existingAxes, "", "  ")
	personasJSON, _ := json.MarshalIndent(newPersonas, "", "  ")

	prompt = fmt.Sprintf(`New personas were added to an existing candidate-fit matrix. Judge whether the existing axes evaluate them sufficiently or whether additional axes are needed. Never remove existing axes.

NEW PERSONAS:
%s

EXISTING AXES:
%s

JOB POSTING:
%s

If additions are needed, return:
{
  "needs_update": true,
  "additional_axes": [{"category": "...", "item": "..."}]
}

If not, return:
{
  "needs_update": false,
  "additional_axes": []
}`, string(personasJSON), string(axesJSON), jobDescription)

	return prompt
}

// buildMatrixPrompt creates the per-persona matrix evaluation prompt. One
// call covers exactly one persona across all age ranges, keeping the output
// inside generation-length limits.
func buildMatrixPrompt(p state.Persona, axes []state.Axis, ageRanges []string) (prompt string) {
	personaJSON, _ := json.MarshalIndent([]state.Persona{p}, "", "  ")
	axesJSON, _ := json.MarshalIndent(axes, "", "  ")

	var labels []string
	for _, axis := range axes {
		labels = append(labels, axis.ColumnLabel())
	}

	prompt = fmt.Sprintf(`Evaluate the following persona against every evaluation axis, once per age range. Produce exactly %d rows: one per age range %s.

PERSONA:
%s

AXES:
%s

For each row, rate every axis with one symbol:
- %q the candidate does this
- %q the candidate may do this
- %q the candidate does not do this
- "" the axis is not applicable

The "evaluations" object must contain one entry per axis, keyed exactly by the axis column labels:
%s

Return ONLY valid JSON in this exact format:
{
  "matrix": [
    {
      "persona_id": "%s",
      "age_range": "%s",
      "industry": "%s",
      "job_type": "%s",
      "companies": %s,
      "evaluations": {"<axis column label>": "%s"}
    }
  ]
}`, len(ageRanges), strings.Join(ageRanges, ", "),
		string(personaJSON), string(axesJSON),
		state.SymbolFilled, state.SymbolPartial, state.SymbolMinimal,
		strings.Join(labels, "\n"),
		p.ID, ageRanges[0], p.Industry, p.JobType, mustJSON(p.Companies), state.SymbolFilled)

	return prompt
}

// buildReviewPrompt creates the self-review prompt over a rendered matrix.
func buildReviewPrompt(grid [][]string, jobDescription string) (prompt string) {
	prompt = fmt.Sprintf(`Review the generated candidate-fit matrix for completeness and consistency against the job posting. Check for missing evaluations, contradictory symbols within a persona, and rows that don't fit their persona's background.

JOB POSTING:
%s

MATRIX:
%s

Return ONLY valid JSON in this exact format:
{
  "has_issues": false,
  "issues": [
    {"location": "P1, 25-29, Flow - customer negotiation", "description": "...", "suggested_fix": "..."}
  ],
  "overall_quality": "short verdict",
  "confidence_score": 0.9
}`, jobDescription, matrix.ToMarkdown(grid))

	return prompt
}

// buildDiscussionPrompt creates the discussion-guide extraction prompt.
func buildDiscussionPrompt(grid [][]string, jobDescription string, personas []state.Persona, axes []state.Axis) (prompt string) {
	personasJSON, _ := json.MarshalIndent(personas, "", "  ")
	axesJSON, _ := json.MarshalIndent(axes, "", "  ")

	prompt = fmt.Sprintf(`From the candidate-fit matrix below, extract three discussion points for the alignment meeting with the hiring manager. For each point state the hypothesis, its supporting evidence from the matrix, and the open question to confirm.

JOB POSTING:
%s

MATRIX:
%s

PERSONAS:
%s

AXES:
%s

Format each point in markdown:

## Point 1: <title>
- Hypothesis and evidence: ...
- Question to confirm: ...

Return the markdown only, no JSON and no code fences.`, jobDescription, matrix.ToMarkdown(grid), string(personasJSON), string(axesJSON))

	return prompt
}

// mustJSON marshals v, returning "[]" on failure. Inputs here are plain
// string slices, which cannot fail to marshal.
func mustJSON(v any) (s string) {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	s = string(data)
	return s
}
