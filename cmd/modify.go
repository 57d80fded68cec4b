package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/modify"
	"github.com/recruiterlab/persona-matrix/pkg/pipeline"
)

//nolint:gochecknoglobals // Cobra boilerplate
var reevaluate bool

//nolint:gochecknoglobals // Cobra boilerplate
var modifyCmd = &cobra.Command{
	Use:   "modify <request>",
	Short: "Apply a natural-language edit to the generated state",
	Long: `Apply a natural-language modification request to the current session.

The request is classified (personas, axes, matrix cells, or discussion
points), the model proposes a delta against a minimal context slice, and the
delta is merged under the target's invariants. Persona and axis edits can
invalidate matrix evaluations; pass --reevaluate to regenerate the matrix and
discussion points afterwards. The merged edit is saved before regeneration,
so a failed regeneration never loses it.

Example:
  persona-matrix modify "add more companies to P1"
  persona-matrix modify "replace the Technology axes with cloud-native topics" --reevaluate`,
	Args: cobra.ExactArgs(1),
	RunE: runModify,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(modifyCmd)
	modifyCmd.Flags().BoolVar(&reevaluate, "reevaluate", false, "Regenerate matrix and discussion points after a persona or axis edit")
}

func runModify(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	request := args[0]

	var a app
	a, err = setup()
	if err != nil {
		return err
	}

	session, err := loadSession()
	if err != nil {
		return err
	}

	engine := modify.NewEngine(a.client, a.cfg.Tokens.Modification, a.cfg.LLM.Temperature)
	session, result, err := engine.Apply(ctx, request, session)
	if err != nil {
		return err
	}

	err = saveSession(session)
	if err != nil {
		return err
	}

	ledgerErr := a.ledger.LogModification(string(result.Target), request)
	if ledgerErr != nil {
		logger.Log.WithField("error", ledgerErr.Error()).Warn("failed to record modification")
	}

	fmt.Printf("Modified %s: %s\n", result.Target, result.ChangeSummary)

	needsReeval := result.Target == modify.TargetPersonas || result.Target == modify.TargetAxes
	if reevaluate && needsReeval {
		p := pipeline.New(a.client, a.cfg)

		session.Matrix, err = p.EvaluateMatrix(ctx, session.Personas, session.Axes)
		if err != nil {
			return err
		}
		review := p.Review(ctx, session.Matrix, session.JobDescription)
		session.Matrix = p.ApplyFixes(session.Matrix, review)
		session.Discussion, err = p.ExtractDiscussion(ctx, session.Matrix, session.JobDescription, session.Personas, session.Axes)
		if err != nil {
			return err
		}

		err = saveSession(session)
		if err != nil {
			return err
		}
		fmt.Println("Matrix and discussion points regenerated")
	} else if needsReeval {
		fmt.Println("Note: matrix evaluations may be stale; rerun with --reevaluate to regenerate")
	}

	return err
}
