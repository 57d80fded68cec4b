package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/qa"
)

//nolint:gochecknoglobals // Cobra boilerplate
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the generated matrix",
	Long: `Ask a free-form question about the current session. The answer is
grounded in the generated state and the recent conversation history; it never
changes the generated data.

Example:
  persona-matrix ask "why does P2 score low on customer negotiation?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()
	question := args[0]

	var a app
	a, err = setup()
	if err != nil {
		return err
	}

	session, err := loadSession()
	if err != nil {
		return err
	}

	engine := qa.NewEngine(a.client, a.cfg.Tokens.QA, a.cfg.LLM.Temperature)
	answer, updatedHistory, err := engine.Answer(ctx, question, session)
	if err != nil {
		return err
	}

	session.QAHistory = updatedHistory
	err = saveSession(session)
	if err != nil {
		return err
	}

	ledgerErr := a.ledger.LogQA(question, answer)
	if ledgerErr != nil {
		logger.Log.WithField("error", ledgerErr.Error()).Warn("failed to record Q&A exchange")
	}

	fmt.Println(answer)

	return err
}
