package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

type generateInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Prompt string `json:"prompt" minLength:"1"`
		ChatID uint   `json:"chatId,omitempty" required:"false" doc:"Existing conversation to continue"`
	}
}

type generateOutput struct {
	Body struct {
		Content string            `json:"content"`
		ChatID  uint              `json:"chatId"`
		Sources []citationPayload `json:"sources"`
	}
}

func (s *Server) registerGenerateRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generate",
		Method:      stdhttp.MethodPost,
		Path:        "/api/generate",
		Summary:     "Generate content through the search, draft and refine pipeline",
	}, s.generateHandler)
}

func (s *Server) generateHandler(ctx context.Context, input *generateInput) (*generateOutput, error) {
	identity, err := s.identify(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Body.Prompt) == "" {
		return nil, huma.Error400BadRequest("Prompt is required")
	}

	result, err := s.generator.Generate(ctx, identity.UserID, input.Body.Prompt, input.Body.ChatID)
	if err != nil {
		// Pipeline internals never leak to the caller.
		s.recordError(ctx, err, "generation pipeline failed", logrus.Fields{
			"user_id": identity.UserID,
			"chat_id": input.Body.ChatID,
		})
		return nil, huma.Error500InternalServerError("Generation temporarily unavailable.")
	}

	out := &generateOutput{}
	out.Body.Content = result.Content
	out.Body.ChatID = result.ChatID
	out.Body.Sources = make([]citationPayload, 0, len(result.Sources))
	for _, source := range result.Sources {
		out.Body.Sources = append(out.Body.Sources, citationPayload{Title: source.Title, URL: source.URL})
	}

	return out, nil
}
