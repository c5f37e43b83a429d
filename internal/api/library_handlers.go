package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "setLanguage",
		Method:      http.MethodPut,
		Path:        "/api/v1/library/language",
		Summary:     "Switch display language",
		Description: "Translates the whole library for display. Stored books are never modified; a failed or superseded run leaves the display unchanged.",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetLanguage)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/refresh",
		Summary:     "Refresh from remote",
		Description: "Re-runs the pull-merge against the remote store for the authenticated account. No-op for guests.",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRefreshLibrary)
}

// === DTOs ===

// SetLanguageRequest is the request body for a display language switch.
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required,max=8" doc:"Target language code (en, de, fr, es, it, pt, nl, pl, ru, sv, hr)"`
}

// SetLanguageInput wraps the language switch request for Huma.
type SetLanguageInput struct {
	GuestName string `header:"X-Guest-Name" doc:"Guest display name for unauthenticated requests"`
	Body      SetLanguageRequest
}

// RefreshInput carries session hints for a library refresh.
type RefreshInput struct {
	SessionHeaders
}

// === Handlers ===

func (s *Server) handleSetLanguage(ctx context.Context, input *SetLanguageInput) (*LibraryOutput, error) {
	sess := s.session(ctx, input.GuestName, "")
	sess.Language = domain.LanguageCode(input.Body.Language)

	if err := s.services.Library.SetLanguage(ctx, sess); err != nil {
		return nil, err
	}

	return &LibraryOutput{
		Body: LibraryResponse{
			Books:           s.services.Library.Books(),
			DisplayLanguage: string(s.services.Library.DisplayLanguage()),
			LastSyncedAt:    s.services.Library.LastSync(),
		},
	}, nil
}

func (s *Server) handleRefreshLibrary(ctx context.Context, input *RefreshInput) (*LibraryOutput, error) {
	sess := s.session(ctx, input.GuestName, input.Language)

	if err := s.services.Library.Login(ctx, sess); err != nil {
		return nil, err
	}

	return &LibraryOutput{
		Body: LibraryResponse{
			Books:           s.services.Library.Books(),
			DisplayLanguage: string(s.services.Library.DisplayLanguage()),
			LastSyncedAt:    s.services.Library.LastSync(),
		},
	}, nil
}
