package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSearchBuildsContextAndSources(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "First", "content": "first content", "url": "https://one.example"},
				{"title": "Second", "content": "second content", "url": "https://two.example"},
			},
		})
	}))
	t.Cleanup(server.Close)

	client := newTestTavily(t, server.URL)

	data := client.Search(context.Background(), " best niches 2026 ")

	if !strings.Contains(data.Context, "SOURCE: First") || !strings.Contains(data.Context, "URL: https://two.example") {
		t.Fatalf("unexpected context block: %q", data.Context)
	}

	if len(data.Sources) != 2 || data.Sources[0].URL != "https://one.example" {
		t.Fatalf("unexpected sources: %#v", data.Sources)
	}

	if gotAuth != "Bearer test-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}

	if gotBody["query"] != "best niches 2026" {
		t.Fatalf("expected trimmed query, got %v", gotBody["query"])
	}

	if gotBody["search_depth"] != searchDepth {
		t.Fatalf("expected search depth %q, got %v", searchDepth, gotBody["search_depth"])
	}
}

func TestSearchDegradesOnProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := newTestTavily(t, server.URL)

	data := client.Search(context.Background(), "anything")

	if data.Context != DegradedContext {
		t.Fatalf("expected degraded context, got %q", data.Context)
	}
	if len(data.Sources) != 0 {
		t.Fatalf("expected empty sources, got %#v", data.Sources)
	}
}

func TestSearchDegradesOnTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable endpoint

	client := newTestTavily(t, server.URL)

	data := client.Search(context.Background(), "anything")

	if data.Context != DegradedContext || len(data.Sources) != 0 {
		t.Fatalf("expected degraded output, got %#v", data)
	}
}

func TestSearchDegradesOnEmptyQuery(t *testing.T) {
	t.Parallel()

	client := newTestTavily(t, "http://127.0.0.1:0")

	data := client.Search(context.Background(), "   ")

	if data.Context != DegradedContext {
		t.Fatalf("expected degraded context for empty query, got %q", data.Context)
	}
}

func newTestTavily(t *testing.T, baseURL string) *TavilyClient {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewTavilyClient(TavilyOptions{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewTavilyClient returned error: %v", err)
	}

	return client
}
