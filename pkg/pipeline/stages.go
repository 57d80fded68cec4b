package pipeline

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/matrix"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Analyze extracts the structured job analysis from a raw posting.
func (p *Pipeline) Analyze(ctx context.Context, jobDescription string) (analysis state.JobAnalysis, err error) {
	logger.Log.Info("analyzing job posting")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildAnalysisPrompt(jobDescription),
		MaxTokens:   p.cfg.Tokens.Analysis,
		Temperature: p.cfg.LLM.Temperature,
	}
	err = p.client.GenerateStructured(ctx, req, &analysis)
	if err != nil {
		err = errors.Wrap(err, "job analysis failed")
		return analysis, err
	}

	err = state.ValidateAnalysis(analysis)
	if err != nil {
		return analysis, err
	}

	logger.Log.WithFields(map[string]any{
		"title":  analysis.JobTitle,
		"domain": analysis.JobDomain,
		"skills": len(analysis.KeySkills),
	}).Info("job analysis complete")

	return analysis, err
}

// personasEnvelope matches the model's persona response shape.
type personasEnvelope struct {
	Personas []state.Persona `json:"personas"`
}

// GeneratePersonas infers n target-candidate personas from the posting and
// its analysis.
func (p *Pipeline) GeneratePersonas(ctx context.Context, jobDescription string, analysis state.JobAnalysis, n int) (personas []state.Persona, err error) {
	logger.Log.WithField("count", n).Info("generating personas")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildPersonasPrompt(jobDescription, analysis, n),
		MaxTokens:   p.cfg.Tokens.Personas,
		Temperature: p.cfg.LLM.Temperature,
	}
	var envelope personasEnvelope
	err = p.client.GenerateStructured(ctx, req, &envelope)
	if err != nil {
		err = errors.Wrap(err, "persona generation failed")
		return personas, err
	}

	personas = envelope.Personas
	// Ids are assigned here, once, regardless of what the model emitted.
	for i := range personas {
		personas[i].ID = fmt.Sprintf("P%d", i+1)
	}

	err = state.ValidatePersonas(personas, n)
	if err != nil {
		return personas, err
	}

	return personas, err
}

// GenerateAdditionalPersonas generates n personas distinct from the
// existing ones. Ids continue the existing sequence and are never
// renumbered afterwards.
func (p *Pipeline) GenerateAdditionalPersonas(ctx context.Context, jobDescription string, analysis state.JobAnalysis, existing []state.Persona, n int) (personas []state.Persona, err error) {
	logger.Log.WithField("count", n).Info("generating additional personas")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildAdditionalPersonasPrompt(jobDescription, analysis, existing, n),
		MaxTokens:   p.cfg.Tokens.Personas,
		Temperature: p.cfg.LLM.Temperature,
	}
	var envelope personasEnvelope
	err = p.client.GenerateStructured(ctx, req, &envelope)
	if err != nil {
		err = errors.Wrap(err, "additional persona generation failed")
		return personas, err
	}

	personas = envelope.Personas
	start := state.MaxPersonaNumber(existing)
	for i := range personas {
		personas[i].ID = fmt.Sprintf("P%d", start+i+1)
	}

	err = state.ValidatePersonas(personas, n)
	if err != nil {
		return personas, err
	}

	return personas, err
}

// axesEnvelope matches the model's axis response shape.
type axesEnvelope struct {
	Axes []state.Axis `json:"axes"`
}

// GenerateAxes produces the evaluation axes for the matrix columns.
func (p *Pipeline) GenerateAxes(ctx context.Context, jobDescription string, analysis state.JobAnalysis, personas []state.Persona) (axes []state.Axis, err error) {
	logger.Log.Info("generating evaluation axes")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildAxesPrompt(jobDescription, analysis, personas),
		MaxTokens:   p.cfg.Tokens.Axes,
		Temperature: p.cfg.LLM.Temperature,
	}
	var envelope axesEnvelope
	err = p.client.GenerateStructured(ctx, req, &envelope)
	if err != nil {
		err = errors.Wrap(err, "axis generation failed")
		return axes, err
	}

	axes = envelope.Axes
	err = state.ValidateAxes(axes)
	if err != nil {
		return axes, err
	}

	logger.Log.WithField("axes", len(axes)).Info("axis generation complete")

	return axes, err
}

// axisUpdateEnvelope matches the model's axis sufficiency judgement.
type axisUpdateEnvelope struct {
	NeedsUpdate    bool         `json:"needs_update"`
	AdditionalAxes []state.Axis `json:"additional_axes"`
}

// UpdateAxes lets the model judge whether newly added personas need extra
// axes. Additions are appended; existing axes are never removed here.
func (p *Pipeline) UpdateAxes(ctx context.Context, existingAxes []state.Axis, newPersonas []state.Persona, jobDescription string) (axes []state.Axis, err error) {
	logger.Log.Info("checking axis sufficiency for new personas")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildUpdateAxesPrompt(existingAxes, newPersonas, jobDescription),
		MaxTokens:   p.cfg.Tokens.Axes,
		Temperature: p.cfg.LLM.Temperature,
	}
	var envelope axisUpdateEnvelope
	err = p.client.GenerateStructured(ctx, req, &envelope)
	if err != nil {
		err = errors.Wrap(err, "axis update failed")
		return axes, err
	}

	axes = append([]state.Axis(nil), existingAxes...)
	if envelope.NeedsUpdate && len(envelope.AdditionalAxes) > 0 {
		axes = append(axes, envelope.AdditionalAxes...)
		logger.Log.WithField("added", len(envelope.AdditionalAxes)).Info("axes extended for new personas")
	}

	err = state.ValidateAxes(axes)
	if err != nil {
		return axes, err
	}

	return axes, err
}

// matrixEnvelope matches the model's per-persona matrix response shape.
type matrixEnvelope struct {
	Matrix []matrix.Row `json:"matrix"`
}

// EvaluateMatrix builds the full grid. The matrix is not generated in one
// call: each persona gets its own call producing one sub-block of rows (one
// per age range), which keeps each response inside generation-length limits
// no matter how many personas exist. Sub-blocks are assembled strictly in
// persona-input order under the shared header.
func (p *Pipeline) EvaluateMatrix(ctx context.Context, personas []state.Persona, axes []state.Axis) (grid [][]string, err error) {
	ageRanges := p.cfg.Matrix.AgeRanges

	logger.Log.WithFields(map[string]any{
		"personas":   len(personas),
		"axes":       len(axes),
		"age_ranges": len(ageRanges),
	}).Info("evaluating matrix, one call per persona")

	var rows []matrix.Row
	for i, persona := range personas {
		logger.Log.WithFields(map[string]any{
			"persona":  persona.ID,
			"progress": fmt.Sprintf("%d/%d", i+1, len(personas)),
		}).Info("evaluating persona block")

		req := llm.CompletionRequest{
			System:      systemDirectiveJSON,
			Prompt:      buildMatrixPrompt(persona, axes, ageRanges),
			MaxTokens:   p.cfg.Tokens.Matrix,
			Temperature: p.cfg.LLM.Temperature,
		}
		var envelope matrixEnvelope
		err = p.client.GenerateStructured(ctx, req, &envelope)
		if err != nil {
			err = errors.Wrapf(err, "matrix evaluation failed for persona %s", persona.ID)
			return grid, err
		}

		rows = append(rows, envelope.Matrix...)
	}

	grid = matrix.Assemble(rows, axes)

	err = state.ValidateMatrix(grid, len(personas)*len(ageRanges))
	if err != nil {
		return grid, err
	}

	return grid, err
}

// ExtractDiscussion produces the markdown discussion guide for the
// alignment meeting.
func (p *Pipeline) ExtractDiscussion(ctx context.Context, grid [][]string, jobDescription string, personas []state.Persona, axes []state.Axis) (discussion string, err error) {
	logger.Log.Info("extracting discussion points")

	req := llm.CompletionRequest{
		System:      systemDirective,
		Prompt:      buildDiscussionPrompt(grid, jobDescription, personas, axes),
		MaxTokens:   p.cfg.Tokens.Discussion,
		Temperature: p.cfg.LLM.Temperature,
	}
	discussion, err = p.client.Generate(ctx, req)
	if err != nil {
		err = errors.Wrap(err, "discussion extraction failed")
		return discussion, err
	}

	err = state.ValidateDiscussion(discussion)
	if err != nil {
		return discussion, err
	}

	return discussion, err
}
