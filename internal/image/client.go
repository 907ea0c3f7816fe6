package image

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Sentinel errors so the transport layer can differentiate provider failures.
var (
	ErrRateLimited  = eris.New("image provider rate limited")
	ErrUnauthorized = eris.New("image provider rejected credentials")
)

// Generator produces an image URL for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures the REST-backed image client.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *logrus.Logger
}

// Client is a pass-through adapter for an OpenAI-compatible image endpoint.
type Client struct {
	http   *resty.Client
	model  string
	logger *logrus.Logger
}

var _ Generator = (*Client)(nil)

// NewClient constructs the image adapter.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("image api key is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, eris.New("image base url is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, eris.New("image model is required")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:   client,
		model:  opts.Model,
		logger: opts.Logger,
	}, nil
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate requests a single image and returns its URL. Upstream rate-limit
// and credential failures map to typed errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", eris.New("prompt is required")
	}

	var parsed imageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":  c.model,
			"prompt": trimmed,
			"n":      1,
		}).
		SetResult(&parsed).
		Post("/images/generations")
	if err != nil {
		c.logError(err, "image request failed")
		return "", eris.Wrap(err, "requesting image generation")
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return "", eris.Wrap(ErrRateLimited, "image generation")
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", eris.Wrap(ErrUnauthorized, "image generation")
	default:
		err := eris.Errorf("image provider returned status %d", resp.StatusCode())
		c.logError(err, "image request rejected")
		return "", err
	}

	if len(parsed.Data) == 0 || strings.TrimSpace(parsed.Data[0].URL) == "" {
		return "", eris.New("image provider returned no image url")
	}

	return parsed.Data[0].URL, nil
}

func (c *Client) logError(err error, message string) {
	if c.logger == nil {
		return
	}
	c.logger.WithField("error", err.Error()).Error(message)
}
