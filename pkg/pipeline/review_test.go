package pipeline

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

func reviewGrid() (grid [][]string) {
	grid = [][]string{
		{"Persona/Age", "Industry", "Job Type", "Companies", "Flow - a"},
		{"P1/25-29", "FA", "x", "a, b, c", "〇"},
		{"P1/30-39", "FA", "x", "a, b, c", "△"},
	}
	return grid
}

func TestReviewFailureReturnsNeutralResult(t *testing.T) {
	mock := &llm.MockModel{Err: errors.New("boom")}
	client := llm.NewClient(mock, llm.RetryPolicy{MaxAttempts: 1}, 0, 0)
	p := New(client, testConfig())

	result := p.Review(context.Background(), reviewGrid(), "posting")

	if result.HasIssues {
		t.Error("Neutral result must not report issues")
	}
	if result.OverallQuality != "unknown" {
		t.Errorf("Expected quality \"unknown\", got %q", result.OverallQuality)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Expected confidence 0.5, got %f", result.Confidence)
	}
}

func TestReviewMalformedResponseReturnsNeutralResult(t *testing.T) {
	p, _ := newTestPipeline("The matrix looks fine to me overall.")

	result := p.Review(context.Background(), reviewGrid(), "posting")

	if result.HasIssues || result.Confidence != 0.5 {
		t.Errorf("Expected the neutral result, got %+v", result)
	}
}

func TestApplyFixesLocatedIssue(t *testing.T) {
	p, _ := newTestPipeline()
	grid := reviewGrid()

	row, col := 1, 4
	review := state.ReviewResult{
		HasIssues: true,
		Issues: []state.ReviewIssue{
			{
				Location:     "P1/25-29, Flow - a",
				Description:  "overstated",
				SuggestedFix: "△",
				RowIndex:     &row,
				ColIndex:     &col,
			},
		},
	}

	out := p.ApplyFixes(grid, review)

	if out[1][4] != "△" {
		t.Errorf("Expected fix applied, got %q", out[1][4])
	}
	if grid[1][4] != "〇" {
		t.Error("Input grid must not be mutated")
	}
}

func TestApplyFixesSkipsUnaddressableIssues(t *testing.T) {
	p, _ := newTestPipeline()
	grid := reviewGrid()

	header, oob := 0, 99
	zero := 0
	review := state.ReviewResult{
		HasIssues: true,
		Issues: []state.ReviewIssue{
			// No locator at all.
			{Location: "somewhere in P1", SuggestedFix: "▲"},
			// Header row is never patched.
			{Location: "header", SuggestedFix: "▲", RowIndex: &header, ColIndex: &zero},
			// Out of bounds.
			{Location: "off the grid", SuggestedFix: "▲", RowIndex: &oob, ColIndex: &zero},
		},
	}

	out := p.ApplyFixes(grid, review)

	if !reflect.DeepEqual(out, grid) {
		t.Error("Expected grid unchanged when no issue is addressable")
	}
}

func TestApplyFixesNoIssuesReturnsSameGrid(t *testing.T) {
	p, _ := newTestPipeline()
	grid := reviewGrid()

	out := p.ApplyFixes(grid, state.ReviewResult{HasIssues: false})

	if &out[0] != &grid[0] {
		t.Error("Expected the input grid back without copying")
	}
}
