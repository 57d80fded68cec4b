package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recruiterlab/persona-matrix/pkg/jd"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/pipeline"
)

//nolint:gochecknoglobals // Cobra boilerplate
var numPersonas int

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate <jd-file-or-url>",
	Short: "Generate a target-candidate matrix from a job posting",
	Long: `Generate a complete target-candidate matrix from a job posting.

The job posting can be provided as:
- A file path (e.g., posting.txt)
- A URL (e.g., https://example.com/jobs/123)

Example:
  persona-matrix generate posting.txt
  persona-matrix generate https://example.com/jobs/123 --personas 4`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVar(&numPersonas, "personas", 0, "Number of personas to generate (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	var a app
	a, err = setup()
	if err != nil {
		return err
	}

	n := numPersonas
	if n <= 0 {
		n = a.cfg.Matrix.DefaultPersonas
	}

	var jobDescription string
	jobDescription, err = jd.Fetch(ctx, args[0])
	if err != nil {
		return err
	}

	p := pipeline.New(a.client, a.cfg)
	session, err := p.Run(ctx, jobDescription, n)
	if err != nil {
		return err
	}

	err = saveSession(session)
	if err != nil {
		return err
	}

	ledgerErr := a.ledger.LogMatrixGeneration(session.Analysis.JobTitle, session.Analysis.JobDomain)
	if ledgerErr != nil {
		logger.Log.WithField("error", ledgerErr.Error()).Warn("failed to record matrix generation")
	}

	fmt.Printf("Generated matrix: %d personas, %d axes, %d rows\n", len(session.Personas), len(session.Axes), len(session.Matrix)-1)
	fmt.Printf("Session saved to %s\n", sessionFile)

	return err
}
