package image

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

func TestGenerateReturnsImageURL(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"url": "https://img.example/pic.png"}},
		})
	}))
	t.Cleanup(server.Close)

	client := newTestImageClient(t, server.URL)

	url, err := client.Generate(context.Background(), " a neon fox ")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if url != "https://img.example/pic.png" {
		t.Fatalf("unexpected image url %q", url)
	}

	if gotBody["prompt"] != "a neon fox" || gotBody["model"] != "stub-image-model" {
		t.Fatalf("unexpected request body: %#v", gotBody)
	}
}

func TestGenerateMapsRateLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client := newTestImageClient(t, server.URL)

	_, err := client.Generate(context.Background(), "prompt")
	if !eris.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestGenerateMapsAuthFailures(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := newTestImageClient(t, server.URL)

		_, err := client.Generate(context.Background(), "prompt")
		server.Close()

		if !eris.Is(err, ErrUnauthorized) {
			t.Fatalf("status %d: expected ErrUnauthorized, got %v", status, err)
		}
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	t.Parallel()

	client := newTestImageClient(t, "http://127.0.0.1:0")

	if _, err := client.Generate(context.Background(), "   "); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func newTestImageClient(t *testing.T, baseURL string) *Client {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(Options{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "stub-image-model",
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	return client
}
