package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Source is a single web citation surfaced to the caller alongside the
// generated content.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Data is the adapter output: a text block usable as model context plus the
// structured citation list.
type Data struct {
	Context string
	Sources []Source
}

// DegradedContext is returned when the search provider is unavailable. The
// pipeline treats it as usable context, never as a failure.
const DegradedContext = "No real-time data found."

// Searcher acquires web context for a prompt.
type Searcher interface {
	Search(ctx context.Context, query string) Data
}

// TavilyOptions configures the Tavily-backed searcher.
type TavilyOptions struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	Logger     *logrus.Logger
}

// TavilyClient calls the Tavily search API over REST.
type TavilyClient struct {
	http       *resty.Client
	maxResults int
	logger     *logrus.Logger
}

var _ Searcher = (*TavilyClient)(nil)

const (
	defaultMaxResults = 5
	searchDepth       = "advanced"
)

// NewTavilyClient constructs the search adapter.
func NewTavilyClient(opts TavilyOptions) (*TavilyClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, eris.New("tavily api key is required")
	}
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, eris.New("tavily base url is required")
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")

	return &TavilyClient{
		http:       client,
		maxResults: maxResults,
		logger:     opts.Logger,
	}, nil
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search queries Tavily with the raw prompt. On any transport or provider
// error it degrades to the documented placeholder with an empty citation list
// instead of propagating the failure.
func (t *TavilyClient) Search(ctx context.Context, query string) Data {
	degraded := Data{Context: DegradedContext, Sources: []Source{}}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return degraded
	}

	var parsed tavilyResponse
	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"query":        trimmed,
			"search_depth": searchDepth,
			"max_results":  t.maxResults,
			"topic":        "general",
		}).
		SetResult(&parsed).
		Post("/search")
	if err != nil {
		t.logWarn(trimmed, eris.Wrap(err, "tavily request failed"))
		return degraded
	}

	if resp.StatusCode() != http.StatusOK {
		t.logWarn(trimmed, eris.Errorf("tavily returned status %d", resp.StatusCode()))
		return degraded
	}

	if len(parsed.Results) == 0 {
		return degraded
	}

	blocks := make([]string, 0, len(parsed.Results))
	sources := make([]Source, 0, len(parsed.Results))
	for _, result := range parsed.Results {
		blocks = append(blocks, fmt.Sprintf("SOURCE: %s\nCONTENT: %s\nURL: %s", result.Title, result.Content, result.URL))
		sources = append(sources, Source{Title: result.Title, URL: result.URL})
	}

	return Data{
		Context: strings.Join(blocks, "\n\n"),
		Sources: sources,
	}
}

func (t *TavilyClient) logWarn(query string, err error) {
	if t.logger == nil {
		return
	}

	t.logger.WithFields(logrus.Fields{
		"query": query,
		"error": err.Error(),
	}).Warn("search degraded to placeholder context")
}
