package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/recruiterlab/persona-matrix/pkg/export"
)

//nolint:gochecknoglobals // Cobra boilerplate
var exportFormat string

//nolint:gochecknoglobals // Cobra boilerplate
var exportOutput string

//nolint:gochecknoglobals // Cobra boilerplate
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the matrix and discussion points",
	Long: `Export the current session's matrix as TSV or HTML. The HTML export
includes symbol-based color classes and the rendered discussion points.

Example:
  persona-matrix export --format tsv --output matrix.tsv
  persona-matrix export --format html --output matrix.html`,
	RunE: runExport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "tsv", "Export format: tsv or html")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Output file (stdout if empty)")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	session, err := loadSession()
	if err != nil {
		return err
	}

	if len(session.Matrix) == 0 {
		err = errors.New("session has no matrix to export")
		return err
	}

	var out string
	switch exportFormat {
	case "tsv":
		out = export.GridTSV(session.Matrix)
	case "html":
		out = export.GridHTML(session.Matrix)
		if session.Discussion != "" {
			var discussionHTML string
			discussionHTML, err = export.DiscussionHTML(session.Discussion)
			if err != nil {
				return err
			}
			out += "\n" + discussionHTML
		}
	default:
		err = errors.Errorf("unknown export format: %s (want tsv or html)", exportFormat)
		return err
	}

	if exportOutput == "" {
		fmt.Print(out)
		return err
	}

	err = os.WriteFile(exportOutput, []byte(out), 0o644)
	if err != nil {
		err = errors.Wrapf(err, "failed to write export file: %s", exportOutput)
		return err
	}
	fmt.Printf("Exported %s to %s\n", exportFormat, exportOutput)

	return err
}
