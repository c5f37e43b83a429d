// Package di provides dependency injection configuration for the StoryTime server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/di/providers"
	"github.com/storytimeapp/storytime-server/internal/logger"
	"github.com/storytimeapp/storytime-server/internal/remote"
	"github.com/storytimeapp/storytime-server/internal/service"
	"github.com/storytimeapp/storytime-server/internal/session"
	syncengine "github.com/storytimeapp/storytime-server/internal/sync"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Remote and AI capabilities
	do.Provide(injector, providers.ProvideRemoteStore)
	do.Provide(injector, providers.ProvideTranslateClient)
	do.Provide(injector, providers.ProvideSessionManager)
	do.Provide(injector, providers.ProvideSyncEngine)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideLibraryService)

	// Workers
	do.Provide(injector, providers.ProvideImporter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of the full dependency graph.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SearchIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[remote.Store](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.TranslateClientHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*session.Manager](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*syncengine.Engine](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.AuthService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.LibraryService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ImporterHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
