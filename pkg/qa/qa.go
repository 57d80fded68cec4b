package qa

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

// History bounds: at most maxTurns recent turns, trimmed from the front
// until the serialized history fits maxChars.
const (
	maxTurns = 10
	maxChars = 10000
)

// Engine answers free-form questions against the current session state plus
// a bounded conversation history. It never mutates canonical state.
type Engine struct {
	client    *llm.Client
	maxTokens int
	temp      float64
}

// NewEngine creates a QA engine.
func NewEngine(client *llm.Client, maxTokens int, temperature float64) (e *Engine) {
	e = &Engine{client: client, maxTokens: maxTokens, temp: temperature}
	return e
}

// Answer responds to one question and returns the updated history. The
// session is read-only context; only the returned history changes.
func (e *Engine) Answer(ctx context.Context, question string, session state.Session) (answer string, history []state.QATurn, err error) {
	history = Trim(session.QAHistory)

	contextJSON, jsonErr := json.MarshalIndent(sessionContext(session), "", "  ")
	if jsonErr != nil {
		contextJSON = []byte(fmt.Sprintf("%v", session))
	}

	var historyText strings.Builder
	for i, turn := range history {
		if i > 0 {
			historyText.WriteString("\n\n")
		}
		fmt.Fprintf(&historyText, "Q: %s\nA: %s", turn.Question, turn.Answer)
	}

	prompt := fmt.Sprintf(`CONTEXT_JSON:
%s

HISTORY:
%s

QUESTION:
%s

---
Constraints: answer concisely, at most 2000 characters. Name the context item your answer is grounded on. No code blocks, no unnecessary caveats.`,
		string(contextJSON), historyText.String(), question)

	answer, err = e.client.Generate(ctx, llm.CompletionRequest{
		System:      "You are an assistant versed in recruiting. Answer from the provided context and always name the item you grounded the answer on.",
		Prompt:      prompt,
		MaxTokens:   e.maxTokens,
		Temperature: e.temp,
	})
	if err != nil {
		err = errors.Wrap(err, "question answering failed")
		return answer, session.QAHistory, err
	}

	answer = strings.TrimSpace(answer)
	history = append(history, state.QATurn{Question: question, Answer: answer})
	history = Trim(history)

	logger.Log.WithField("answer_chars", len(answer)).Info("answered question")

	return answer, history, err
}

// Trim bounds the history to the most recent turns and drops from the
// front until the serialized size fits the character budget.
func Trim(history []state.QATurn) (trimmed []state.QATurn) {
	if len(history) == 0 {
		return trimmed
	}

	start := 0
	if len(history) > maxTurns {
		start = len(history) - maxTurns
	}
	trimmed = append([]state.QATurn(nil), history[start:]...)

	for len(trimmed) > 0 && serializedLen(trimmed) > maxChars {
		trimmed = trimmed[1:]
	}

	return trimmed
}

// serializedLen measures the history as it would appear in the prompt.
func serializedLen(history []state.QATurn) (total int) {
	for _, turn := range history {
		data, err := json.Marshal(turn)
		if err != nil {
			continue
		}
		total += len(data)
	}
	return total
}

// sessionContext is the read-only state slice exposed to the model.
func sessionContext(session state.Session) (context map[string]any) {
	context = map[string]any{
		"analysis":          session.Analysis,
		"personas":          session.Personas,
		"axes":              session.Axes,
		"matrix":            session.Matrix,
		"discussion_points": session.Discussion,
	}
	return context
}
