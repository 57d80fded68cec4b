package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var sessionFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "persona-matrix",
	Short: "Generate target-candidate matrices from job postings",
	Long: `persona-matrix turns a free-text job posting into a structured
target-candidate matrix: it analyzes the posting, infers candidate personas,
derives evaluation axes, scores every persona/age combination against them,
and extracts discussion points for the hiring alignment meeting.

The generated state can then be patched with natural-language modification
requests or queried with free-form questions.`,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.persona-matrix/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session", "persona-matrix-session.json", "session state file")
}
