package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/recruiterlab/persona-matrix/pkg/pipeline"
)

//nolint:gochecknoglobals // Cobra boilerplate
var addPersonasCmd = &cobra.Command{
	Use:   "add-personas <count>",
	Short: "Add personas to an existing matrix",
	Long: `Add personas to an existing session. New personas are generated to
differ from the existing ones, the axis set is extended if needed, and the
matrix and discussion points are regenerated over the full persona set.

Example:
  persona-matrix add-personas 2`,
	Args: cobra.ExactArgs(1),
	RunE: runAddPersonas,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(addPersonasCmd)
}

func runAddPersonas(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	var n int
	n, err = strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		err = errors.Errorf("count must be a positive integer, got %q", args[0])
		return err
	}

	var a app
	a, err = setup()
	if err != nil {
		return err
	}

	session, err := loadSession()
	if err != nil {
		return err
	}

	p := pipeline.New(a.client, a.cfg)
	session, err = p.AddPersonas(ctx, session, n)
	if err != nil {
		return err
	}

	err = saveSession(session)
	if err != nil {
		return err
	}

	fmt.Printf("Matrix now covers %d personas, %d axes, %d rows\n", len(session.Personas), len(session.Axes), len(session.Matrix)-1)

	return err
}
