package api

import (
	"github.com/storytimeapp/storytime-server/internal/search"
	"github.com/storytimeapp/storytime-server/internal/service"
	"github.com/storytimeapp/storytime-server/internal/translate"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth       *service.AuthService
	Library    *service.LibraryService
	Search     *search.Index
	Translator translate.Translator
}
