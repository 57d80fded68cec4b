package cmd

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/recruiterlab/persona-matrix/pkg/config"
	"github.com/recruiterlab/persona-matrix/pkg/history"
	"github.com/recruiterlab/persona-matrix/pkg/llm"
	"github.com/recruiterlab/persona-matrix/pkg/logger"
	"github.com/recruiterlab/persona-matrix/pkg/state"
)

// app bundles everything a command needs: configuration, the generation
// client, and the history ledger. The cmd layer is the session controller,
// the single owner of the writable canonical-state slot.
type app struct {
	cfg    config.Config
	client *llm.Client
	ledger *history.Ledger
}

// setup loads configuration, initializes logging, and wires the generation
// client and history ledger.
func setup() (a app, err error) {
	a.cfg, err = config.Load(configFile)
	if err != nil {
		return a, err
	}

	err = logger.Init(a.cfg.Log.Level, a.cfg.Log.File)
	if err != nil {
		err = errors.Wrap(err, "failed to initialize logging")
		return a, err
	}

	var model *llm.OpenAIModel
	model, err = llm.NewOpenAIModel(a.cfg.LLM.APIKey, a.cfg.LLM.BaseURL, a.cfg.LLM.Model)
	if err != nil {
		err = errors.Wrap(err, "failed to initialize generation model")
		return a, err
	}

	a.client = llm.NewClient(model, llm.RetryPolicy{
		MaxAttempts: a.cfg.Retry.MaxAttempts,
		Delay:       time.Duration(a.cfg.Retry.DelaySeconds) * time.Second,
	}, a.cfg.Rate.RPM, a.cfg.Rate.Burst)

	a.ledger, err = history.New(a.cfg.DataDir)
	if err != nil {
		return a, err
	}

	return a, err
}

// loadSession reads the canonical state from the session file.
func loadSession() (session state.Session, err error) {
	var data []byte
	data, err = os.ReadFile(sessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("no session found at %s (run 'persona-matrix generate' first)", sessionFile)
			return session, err
		}
		err = errors.Wrapf(err, "failed to read session file: %s", sessionFile)
		return session, err
	}

	err = json.Unmarshal(data, &session)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse session file: %s", sessionFile)
		return session, err
	}

	return session, err
}

// saveSession writes the canonical state back to the session file.
func saveSession(session state.Session) (err error) {
	var data []byte
	data, err = json.MarshalIndent(session, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to serialize session")
		return err
	}

	err = os.WriteFile(sessionFile, data, 0o644)
	if err != nil {
		err = errors.Wrapf(err, "failed to write session file: %s", sessionFile)
		return err
	}

	return err
}
