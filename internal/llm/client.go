package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ClientOptions controls how a provider client is initialised. Both the draft
// provider (Groq) and the refinement providers expose OpenAI-compatible chat
// completion endpoints, so one wrapper serves them all.
type ClientOptions struct {
	Name       string
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// Client wraps the OpenAI SDK chat service for a single provider credential.
type Client struct {
	name   string
	chat   chatCompletionClient
	logger *logrus.Logger
}

type chatCompletionClient interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// NewClient constructs a Client for the given provider endpoint.
func NewClient(opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("llm api key is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, eris.New("llm base url is required")
	}

	requestOptions := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(strings.TrimSpace(opts.BaseURL)),
	}

	if opts.HTTPClient != nil {
		requestOptions = append(requestOptions, option.WithHTTPClient(opts.HTTPClient))
	}

	apiClient := openai.NewClient(requestOptions...)

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "llm"
	}

	return &Client{
		name:   name,
		chat:   &apiClient.Chat.Completions,
		logger: opts.Logger,
	}, nil
}

// Name returns the provider label used in logs and fallback reporting.
func (c *Client) Name() string {
	return c.name
}
