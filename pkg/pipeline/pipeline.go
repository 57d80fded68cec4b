package pipeline

import (
	"context"

	"github.com/recruiterlab/persona-matrix/pkg/config"
	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/matrix"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Pipeline sequences the generation stages over a generation client. Stages
// run strictly one after another; each consumes the previous stage's
// validated output. A Pipeline holds no per-session state.
type Pipeline struct {
	client *llm.Client
	cfg    config.Config
}

// New creates a pipeline over a generation client.
func New(client *llm.Client, cfg config.Config) (p *Pipeline) {
	p = &Pipeline{client: client, cfg: cfg}
	return p
}

// Run executes the full initial pipeline: analysis, personas, axes, matrix,
// self-review, discussion. A failing stage propagates its error; outputs of
// the stages before it remain populated in the returned session so the
// caller can retry from the failed stage rather than from scratch.
func (p *Pipeline) Run(ctx context.Context, jobDescription string, numPersonas int) (session state.Session, err error) {
	session.JobDescription = jobDescription

	session.Analysis, err = p.Analyze(ctx, jobDescription)
	if err != nil {
		return session, err
	}

	session.Personas, err = p.GeneratePersonas(ctx, jobDescription, session.Analysis, numPersonas)
	if err != nil {
		return session, err
	}

	session.Axes, err = p.GenerateAxes(ctx, jobDescription, session.Analysis, session.Personas)
	if err != nil {
		return session, err
	}

	session.Matrix, err = p.EvaluateMatrix(ctx, session.Personas, session.Axes)
	if err != nil {
		return session, err
	}

	review := p.Review(ctx, session.Matrix, jobDescription)
	session.Matrix = p.ApplyFixes(session.Matrix, review)

	session.Discussion, err = p.ExtractDiscussion(ctx, session.Matrix, jobDescription, session.Personas, session.Axes)
	if err != nil {
		return session, err
	}

	logger.Log.WithFields(map[string]any{
		"personas": len(session.Personas),
		"axes":     len(session.Axes),
		"rows":     len(session.Matrix) - 1,
	}).Info("pipeline run complete")

	return session, err
}

// AddPersonas generates n additional personas (distinct from the existing
// ones, ids continuing the sequence), lets the model extend the axis set if
// needed, then re-evaluates the matrix over the full persona set. The full
// re-evaluation is required because axis changes can affect every row's
// column set.
func (p *Pipeline) AddPersonas(ctx context.Context, session state.Session, n int) (out state.Session, err error) {
	out = session.Clone()

	var added []state.Persona
	added, err = p.GenerateAdditionalPersonas(ctx, out.JobDescription, out.Analysis, out.Personas, n)
	if err != nil {
		return out, err
	}
	out.Personas = append(out.Personas, added...)

	out.Axes, err = p.UpdateAxes(ctx, out.Axes, added, out.JobDescription)
	if err != nil {
		return out, err
	}

	out.Matrix, err = p.EvaluateMatrix(ctx, out.Personas, out.Axes)
	if err != nil {
		return out, err
	}
	out.Matrix = matrix.Resync(out.Matrix, out.Personas)

	review := p.Review(ctx, out.Matrix, out.JobDescription)
	out.Matrix = p.ApplyFixes(out.Matrix, review)

	out.Discussion, err = p.ExtractDiscussion(ctx, out.Matrix, out.JobDescription, out.Personas, out.Axes)
	if err != nil {
		return out, err
	}

	logger.Log.WithField("added", len(added)).Info("persona addition complete")

	return out, err
}
