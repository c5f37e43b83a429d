package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List library",
		Description: "Returns the display list in its current display language.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUniversalBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/universal",
		Summary:     "List universal library",
		Description: "Returns the shared universal collection from the remote store.",
		Tags:        []string{"Books"},
	}, s.handleListUniversal)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Save book",
		Description: "Creates or updates a book. The local store is authoritative; the remote mirror is best effort.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSaveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "approveBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/approve",
		Summary:     "Approve book",
		Description: "Marks a book approved and publishes a copy to the universal collection. Admin only.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleApproveBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "rateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/rating",
		Summary:     "Rate book",
		Description: "Sets one of the two independent rating axes on a book.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRateBook)
}

// === DTOs ===

// SessionHeaders carry per-request session hints. Both are optional;
// authenticated requests resolve identity from the Bearer token instead.
type SessionHeaders struct {
	GuestName string `header:"X-Guest-Name" doc:"Guest display name for unauthenticated requests"`
	Language  string `header:"X-Story-Language" doc:"Display language override"`
}

// ListBooksInput contains parameters for listing the library.
type ListBooksInput struct {
	SessionHeaders
}

// LibraryResponse contains the display list and sync state.
type LibraryResponse struct {
	Books           []*domain.Book `json:"books" doc:"Display list in creation order, newest first"`
	DisplayLanguage string         `json:"display_language,omitempty" doc:"Current display language, empty when showing stored languages"`
	LastSyncedAt    time.Time      `json:"last_synced_at,omitzero" doc:"When a store-affecting operation last completed"`
}

// LibraryOutput wraps the library response for Huma.
type LibraryOutput struct {
	Body LibraryResponse
}

// BookIDInput identifies a single book.
type BookIDInput struct {
	SessionHeaders
	ID string `path:"id" maxLength:"64" doc:"Book ID"`
}

// BookOutput wraps a single book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BooksOutput wraps a book list for Huma.
type BooksOutput struct {
	Body []*domain.Book
}

// SaveBookInput wraps a book save request for Huma.
type SaveBookInput struct {
	SessionHeaders
	Body domain.Book
}

// RateRequest is the request body for rating a book.
type RateRequest struct {
	Axis  string  `json:"axis" validate:"required,oneof=personal universal" doc:"Rating axis: personal or universal"`
	Value float64 `json:"value" validate:"gte=0,lte=5" doc:"Rating value, 0 to 5"`
}

// RateBookInput wraps a rating request for Huma.
type RateBookInput struct {
	SessionHeaders
	ID   string `path:"id" maxLength:"64" doc:"Book ID"`
	Body RateRequest
}

// DeleteBookOutput is the empty response for a delete.
type DeleteBookOutput struct {
	Status int
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*LibraryOutput, error) {
	_ = s.session(ctx, input.GuestName, input.Language)

	return &LibraryOutput{
		Body: LibraryResponse{
			Books:           s.services.Library.Books(),
			DisplayLanguage: string(s.services.Library.DisplayLanguage()),
			LastSyncedAt:    s.services.Library.LastSync(),
		},
	}, nil
}

func (s *Server) handleListUniversal(ctx context.Context, _ *struct{}) (*BooksOutput, error) {
	books, err := s.services.Library.Universal(ctx)
	if err != nil {
		return nil, err
	}

	return &BooksOutput{Body: books}, nil
}

func (s *Server) handleGetBook(_ context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Library.Book(input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleSaveBook(ctx context.Context, input *SaveBookInput) (*BookOutput, error) {
	sess := s.session(ctx, input.GuestName, input.Language)

	book, err := s.services.Library.Save(ctx, sess, &input.Body)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*DeleteBookOutput, error) {
	sess := s.session(ctx, input.GuestName, input.Language)

	if err := s.services.Library.Delete(ctx, sess, input.ID); err != nil {
		return nil, err
	}

	return &DeleteBookOutput{Status: http.StatusNoContent}, nil
}

func (s *Server) handleApproveBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	sess := s.session(ctx, input.GuestName, input.Language)

	book, err := s.services.Library.Approve(ctx, sess, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleRateBook(ctx context.Context, input *RateBookInput) (*BookOutput, error) {
	sess := s.session(ctx, input.GuestName, input.Language)

	book, err := s.services.Library.Rate(ctx, sess, input.ID, domain.RatingAxis(input.Body.Axis), input.Body.Value)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}
