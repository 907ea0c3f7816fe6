package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// RefineRequest describes one polishing pass over a draft.
type RefineRequest struct {
	SystemPrompt string
	Draft        string
	MaxTokens    int64
}

// Refiner runs the polishing pass. Implementations report which provider
// produced the result so callers can log the fallback chain.
type Refiner interface {
	Refine(ctx context.Context, req RefineRequest) (content string, provider string, err error)
}

// RefineProvider is one capability-equivalent credential in the priority list.
type RefineProvider struct {
	Client *Client
	Model  string
}

// RefinerOptions configures the strategy-list refiner.
type RefinerOptions struct {
	Providers   []RefineProvider
	Temperature float64
	Logger      *logrus.Logger
}

type fallbackRefiner struct {
	providers   []RefineProvider
	temperature float64
	logger      *logrus.Logger
}

const defaultRefineTemperature = 0.4

// NewRefiner constructs a Refiner that tries each provider in order, stopping
// at the first success.
func NewRefiner(opts RefinerOptions) (Refiner, error) {
	if len(opts.Providers) == 0 {
		return nil, eris.New("at least one refine provider is required")
	}

	for idx, provider := range opts.Providers {
		if provider.Client == nil {
			return nil, eris.Errorf("refine provider %d has no client", idx)
		}
		if strings.TrimSpace(provider.Model) == "" {
			return nil, eris.Errorf("refine provider %d has no model", idx)
		}
	}

	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultRefineTemperature
	}

	return &fallbackRefiner{
		providers:   opts.Providers,
		temperature: temperature,
		logger:      opts.Logger,
	}, nil
}

func (r *fallbackRefiner) Refine(ctx context.Context, req RefineRequest) (string, string, error) {
	if strings.TrimSpace(req.Draft) == "" {
		return "", "", eris.New("draft content is required")
	}
	if req.MaxTokens <= 0 {
		return "", "", eris.New("token ceiling is required")
	}

	var lastErr error
	for _, provider := range r.providers {
		params := openai.ChatCompletionNewParams{
			Model: shared.ChatModel(provider.Model),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(req.SystemPrompt),
				openai.UserMessage(req.Draft),
			},
			MaxTokens:   openai.Int(req.MaxTokens),
			Temperature: openai.Float(r.temperature),
		}

		completion, err := provider.Client.chat.New(ctx, params)
		if err == nil {
			var content string
			content, err = extractContent(completion)
			if err == nil {
				return content, provider.Client.Name(), nil
			}
		}

		lastErr = err
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{
				"provider": provider.Client.Name(),
				"error":    err.Error(),
			}).Warn("refine provider failed, trying next")
		}
	}

	return "", "", eris.Wrap(lastErr, "all refine providers failed")
}
