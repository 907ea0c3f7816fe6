package http

import (
	"context"
	stdhttp "net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rotisserie/eris"

	"github.com/abhi01978/NechGen/internal/image"
)

type imageInput struct {
	Body struct {
		Prompt string `json:"prompt"`
	}
}

type imageOutput struct {
	Body struct {
		ImageURL string `json:"imageUrl"`
	}
}

func (s *Server) registerImageRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generate-image",
		Method:      stdhttp.MethodPost,
		Path:        "/generate-image",
		Summary:     "Generate an image from a prompt",
	}, s.imageHandler)
}

func (s *Server) imageHandler(ctx context.Context, input *imageInput) (*imageOutput, error) {
	if strings.TrimSpace(input.Body.Prompt) == "" {
		return nil, huma.Error400BadRequest("Prompt is required")
	}

	if s.images == nil {
		return nil, huma.Error500InternalServerError("Image generation is not configured")
	}

	url, err := s.images.Generate(ctx, input.Body.Prompt)
	if err != nil {
		switch {
		case eris.Is(err, image.ErrRateLimited):
			return nil, huma.Error500InternalServerError("Image provider is rate limited, try again shortly")
		case eris.Is(err, image.ErrUnauthorized):
			return nil, huma.Error500InternalServerError("Image provider rejected the configured credentials")
		default:
			s.recordError(ctx, err, "image generation failed", nil)
			return nil, huma.Error500InternalServerError("Image generation failed")
		}
	}

	out := &imageOutput{}
	out.Body.ImageURL = url
	return out, nil
}
