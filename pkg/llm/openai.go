package llm

import (
	"context"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"
)

// OpenAIModel implements ChatModel using the official openai-go SDK
// (chat completions).
type OpenAIModel struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIModel creates an OpenAI-backed chat model.
func NewOpenAIModel(apiKey, baseURL, model string) (m *OpenAIModel, err error) {
	if apiKey == "" {
		err = errors.New("api key is required")
		return m, err
	}
	if model == "" {
		err = errors.New("model name is required")
		return m, err
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	m = &OpenAIModel{model: model, opts: opts}
	return m, err
}

// Complete implements ChatModel.
func (m *OpenAIModel) Complete(ctx context.Context, req CompletionRequest) (resp CompletionResponse, err error) {
	client := openai.NewClient(m.opts...)

	msgs := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: msgs,
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isRateLimited(err) {
			err = &RateLimitError{Cause: err}
		}
		return resp, err
	}
	if len(completion.Choices) == 0 {
		err = errors.New("openai: response contained no choices")
		return resp, err
	}

	choice := completion.Choices[0]
	resp.Text = choice.Message.Content
	resp.FinishReason = normalizeFinishReason(string(choice.FinishReason))
	resp.Usage = Usage{
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
		TotalTokens:      int(completion.Usage.TotalTokens),
	}

	return resp, err
}

// normalizeFinishReason maps provider finish reasons onto the contract set.
func normalizeFinishReason(reason string) (normalized string) {
	switch reason {
	case "stop":
		normalized = FinishCompleted
	case "length":
		normalized = FinishTruncated
	default:
		normalized = FinishOther
	}
	return normalized
}
