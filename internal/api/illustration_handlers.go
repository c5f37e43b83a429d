package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
)

func (s *Server) registerIllustrationRoutes() {
	if s.services.Translator == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "generateIllustration",
		Method:      http.MethodPost,
		Path:        "/api/v1/illustrations",
		Summary:     "Generate a page illustration",
		Description: "Asks the generative model for one page image from a scene description. The image comes back inline as a data URI.",
		Tags:        []string{"Illustrations"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGenerateIllustration)
}

// === DTOs ===

// IllustrationRequest describes the scene to draw.
type IllustrationRequest struct {
	Prompt string `json:"prompt" minLength:"1" maxLength:"2000" doc:"Scene description for the illustration"`
}

// IllustrationInput wraps the illustration request for Huma.
type IllustrationInput struct {
	Body IllustrationRequest
}

// IllustrationResponse carries the generated image as a data URI ready
// for a page's image slot.
type IllustrationResponse struct {
	ImageURL string `json:"image_url" doc:"data: URI with the generated image"`
	MIMEType string `json:"mime_type" doc:"MIME type of the generated image"`
}

// IllustrationOutput wraps the illustration response for Huma.
type IllustrationOutput struct {
	Body IllustrationResponse
}

// === Handlers ===

func (s *Server) handleGenerateIllustration(ctx context.Context, input *IllustrationInput) (*IllustrationOutput, error) {
	ill, err := s.services.Translator.Illustrate(ctx, input.Body.Prompt)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate illustration")
	}

	return &IllustrationOutput{
		Body: IllustrationResponse{
			ImageURL: ill.DataURI(),
			MIMEType: ill.MIMEType,
		},
	}, nil
}
