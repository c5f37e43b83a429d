package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storytimeapp/storytime-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	if s.services.Search == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search library",
		Description: "Full-text search over titles, authors and creators with fuzzy matching.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the library.
type SearchInput struct {
	Query        string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search query"`
	Language     string `query:"language" maxLength:"8" doc:"Exact language code filter"`
	AgeGroup     int    `query:"age_group" minimum:"0" maximum:"7" doc:"Exact age group filter (0 = any)"`
	ApprovedOnly bool   `query:"approved_only" doc:"Only approved books"`
	Limit        int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset       int    `query:"offset" minimum:"0" doc:"Pagination offset"`
	SortBy       string `query:"sort" enum:",relevance,title,recent" doc:"Sort order (default relevance)"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultParams()
	params.Query = input.Query
	params.Language = input.Language
	params.AgeGroup = input.AgeGroup
	params.ApprovedOnly = input.ApprovedOnly
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: result}, nil
}
