package pipeline

import (
	"context"

	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// Review asks the model to judge the assembled matrix for completeness and
// consistency.
//
// Review is best-effort diagnostics, not load-bearing: any failure (of the
// call or of parsing) is swallowed and replaced with a neutral "no issues,
// quality unknown, confidence 0.5" result so a failing diagnostic never
// blocks the pipeline.
func (p *Pipeline) Review(ctx context.Context, grid [][]string, jobDescription string) (result state.ReviewResult) {
	logger.Log.Info("running self-review over the matrix")

	req := llm.CompletionRequest{
		System:      systemDirectiveJSON,
		Prompt:      buildReviewPrompt(grid, jobDescription),
		MaxTokens:   p.cfg.Tokens.Review,
		Temperature: p.cfg.LLM.Temperature,
	}
	err := p.client.GenerateStructured(ctx, req, &result)
	if err != nil {
		logger.Log.WithField("error", err.Error()).Warn("self-review failed, continuing with neutral result")
		result = state.ReviewResult{
			HasIssues:      false,
			Issues:         nil,
			OverallQuality: "unknown",
			Confidence:     0.5,
		}
		return result
	}

	logger.Log.WithFields(map[string]any{
		"quality":    result.OverallQuality,
		"confidence": result.Confidence,
		"issues":     len(result.Issues),
	}).Info("self-review complete")

	return result
}

// ApplyFixes records each review issue and applies the suggested fix when
// the issue carries a structured in-bounds locator.
//
// Free-text locations are not reliably machine-addressable, so issues
// without row/col indices are logged against their stated location and the
// grid cell is left untouched. Row 0 is the header and is never patched.
func (p *Pipeline) ApplyFixes(grid [][]string, review state.ReviewResult) (out [][]string) {
	out = grid
	if len(review.Issues) == 0 {
		return out
	}

	out = make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}

	applied := 0
	for _, issue := range review.Issues {
		if issue.RowIndex != nil && issue.ColIndex != nil {
			r, c := *issue.RowIndex, *issue.ColIndex
			if r >= 1 && r < len(out) && c >= 0 && c < len(out[r]) {
				out[r][c] = issue.SuggestedFix
				applied++
				continue
			}
		}
		logger.Log.WithFields(map[string]any{
			"location": issue.Location,
			"fix":      issue.SuggestedFix,
		}).Info("review suggested a fix without an addressable locator")
	}

	if applied > 0 {
		logger.Log.WithField("applied", applied).Info("applied located review fixes")
	}

	return out
}
