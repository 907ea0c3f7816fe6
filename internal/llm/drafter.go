package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ErrEmptyCompletion marks a provider response that succeeded at the transport
// level but carried no usable content. Callers treat it differently from a
// provider failure when deciding fallback behaviour.
var ErrEmptyCompletion = eris.New("completion content is empty")

// Turn is a single transcript entry replayed as model memory.
type Turn struct {
	Role    string
	Content string
}

// DraftRequest describes one bounded completion.
type DraftRequest struct {
	SystemPrompt string
	History      []Turn
	UserMessage  string
	MaxTokens    int64
	Temperature  float64
}

// Drafter produces the first-pass completion from the draft provider.
type Drafter interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
}

// DrafterOptions configures the provider-backed drafter.
type DrafterOptions struct {
	Client      *Client
	Model       string
	Temperature float64
}

type providerDrafter struct {
	client      *Client
	logger      *logrus.Logger
	model       string
	temperature float64
}

const defaultDraftTemperature = 0.7

// NewDrafter constructs a Drafter backed by an OpenAI-compatible provider.
func NewDrafter(opts DrafterOptions) (Drafter, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, eris.New("draft model is required")
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultDraftTemperature
	}

	return &providerDrafter{
		client:      opts.Client,
		logger:      opts.Client.logger,
		model:       model,
		temperature: temperature,
	}, nil
}

func (d *providerDrafter) Draft(ctx context.Context, req DraftRequest) (string, error) {
	if strings.TrimSpace(req.UserMessage) == "" {
		return "", eris.New("user message is required")
	}
	if req.MaxTokens <= 0 {
		return "", eris.New("token ceiling is required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	for _, turn := range req.History {
		if turn.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.UserMessage))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(d.model),
		Messages:    messages,
		MaxTokens:   openai.Int(req.MaxTokens),
		Temperature: openai.Float(d.temperature),
	}

	completion, err := d.client.chat.New(ctx, params)
	if err != nil {
		d.logError(logrus.Fields{"model": d.model}, err, "requesting draft completion")
		return "", eris.Wrap(err, "requesting draft completion")
	}

	content, err := extractContent(completion)
	if err != nil {
		d.logError(logrus.Fields{"model": d.model}, err, "processing draft completion")
		return "", err
	}

	return content, nil
}

func (d *providerDrafter) logError(fields logrus.Fields, err error, message string) {
	if d.logger == nil || err == nil {
		return
	}

	entry := d.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}

func extractContent(completion *openai.ChatCompletion) (string, error) {
	if len(completion.Choices) == 0 {
		return "", eris.New("llm completion returned no choices")
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		return "", eris.New("llm blocked the request via content filter")
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		return "", eris.Errorf("llm refused to generate content: %s", refusal)
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", eris.Wrap(ErrEmptyCompletion, "extracting completion content")
	}

	return content, nil
}
