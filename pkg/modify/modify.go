package modify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Engine processes natural-language modification requests against canonical
// state: classify, build minimal context, generate a delta, merge.
type Engine struct {
	client    *llm.Client
	maxTokens int
	temp      float64
}

// NewEngine creates a modification engine.
func NewEngine(client *llm.Client, maxTokens int, temperature float64) (e *Engine) {
	e = &Engine{client: client, maxTokens: maxTokens, temp: temperature}
	return e
}

// Apply processes one modification request and returns the merged session
// with a summary of the change. On any failure the input session is
// returned unchanged, so a failed edit never corrupts prior state.
//
// Apply does not re-evaluate the matrix after persona or axis merges; the
// caller re-enters the pipeline explicitly, so a failed recomputation
// cannot lose the already-merged edit.
func (e *Engine) Apply(ctx context.Context, request string, session state.Session) (out state.Session, result Result, err error) {
	out = session

	route := Classify(request)
	logger.Log.WithField("target", string(route.Target)).Info("classified modification request")

	prompt := buildModificationPrompt(request, route, session)

	var envelope modificationEnvelope
	err = e.client.GenerateStructured(ctx, llm.CompletionRequest{
		System:      "You edit recruiting data. Output strict JSON only: no explanations, no markdown, no annotations.",
		Prompt:      prompt,
		MaxTokens:   e.maxTokens,
		Temperature: e.temp,
	}, &envelope)
	if err != nil {
		err = errors.Wrap(err, "modification generation failed")
		return out, result, err
	}

	// The classified route is authoritative; the model's echoed type is
	// logged when they disagree but never trusted for dispatch.
	if envelope.ModificationType != "" && envelope.ModificationType != string(route.Target) {
		logger.Log.WithFields(map[string]any{
			"classified": string(route.Target),
			"model":      envelope.ModificationType,
		}).Warn("model echoed a different modification type")
	}

	var delta Delta
	if len(envelope.ModifiedData) > 0 {
		err = json.Unmarshal(envelope.ModifiedData, &delta)
		if err != nil {
			err = errors.Wrap(err, "failed to decode modification delta")
			return out, result, err
		}
	}

	merged := Merge(route.Target, delta, session)

	// Invariants the merge must preserve, rechecked before the merged state
	// replaces the input.
	err = validateMerged(route.Target, session, merged)
	if err != nil {
		return out, result, err
	}

	out = merged
	result = Result{
		Target:        route.Target,
		ChangeSummary: envelope.ChangeSummary,
	}
	if result.ChangeSummary == "" {
		result.ChangeSummary = "change summary unavailable"
	}

	logger.Log.WithField("summary", result.ChangeSummary).Info("modification merged")

	return out, result, err
}

// validateMerged rechecks the invariants a merge must preserve.
func validateMerged(target Target, before, after state.Session) (err error) {
	switch target {
	case TargetPersonas:
		err = state.ValidatePersonas(after.Personas, len(before.Personas))
		if err != nil {
			return err
		}
		for i := range before.Personas {
			if before.Personas[i].ID != after.Personas[i].ID {
				err = errors.Errorf("merge changed persona id %s to %s", before.Personas[i].ID, after.Personas[i].ID)
				return err
			}
		}
	case TargetAxes:
		err = state.ValidateAxes(after.Axes)
	case TargetMatrix:
		err = state.ValidateMatrix(after.Matrix, len(before.Matrix)-1)
	}
	return err
}

// buildModificationPrompt renders the minimal-context modification prompt.
func buildModificationPrompt(request string, route Route, session state.Session) (prompt string) {
	contextJSON, _ := json.MarshalIndent(MinimalContext(route, session), "", "  ")

	extra := ""
	if route.Target == TargetPersonas {
		ids := make([]string, 0, len(session.Personas))
		for _, p := range session.Personas {
			ids = append(ids, p.ID)
		}
		extra = fmt.Sprintf(`
HARD CONSTRAINTS:
- Keep exactly %d personas.
- Never change the existing persona ids (%s).
- To "add companies", extend the companies array of an existing persona.
- Never create new personas (no new ids).
- Keep every companies array within 3-10 entries.

EXAMPLE OUTPUT (extending company lists):
{
  "modification_type": "personas",
  "modified_data": {
    "personas": [
      {"id": "P1", "companies": ["A Corp", "B Inc", "C Ltd", "D Co", "E GmbH", "F SA"]}
    ]
  },
  "change_summary": "Extended the company lists of the existing personas"
}
`, len(session.Personas), strings.Join(ids, ", "))
	}

	prompt = fmt.Sprintf(`Apply the modification request to the data below.

TARGET: %s
CURRENT DATA:
%s

MODIFICATION REQUEST:
%s
%s
OUTPUT FORMAT (JSON containing only the parts that change):
{
  "modification_type": "%s",
  "modified_data": {},
  "change_summary": "what changed"
}

Notes:
- Do not include parts the request leaves untouched.
- Keep the current data structures.
- %s`, string(route.Target), string(contextJSON), request, extra, string(route.Target), route.Constraints)

	return prompt
}
