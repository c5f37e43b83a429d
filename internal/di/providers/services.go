package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/logger"
	"github.com/storytimeapp/storytime-server/internal/remote"
	"github.com/storytimeapp/storytime-server/internal/service"
	"github.com/storytimeapp/storytime-server/internal/session"
	syncengine "github.com/storytimeapp/storytime-server/internal/sync"
)

// ProvideSyncEngine provides the local/remote reconciliation engine.
func ProvideSyncEngine(i do.Injector) (*syncengine.Engine, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	remoteStore := do.MustInvoke[remote.Store](i)
	log := do.MustInvoke[*logger.Logger](i)

	return syncengine.NewEngine(storeHandle.Store, remoteStore, log.Logger), nil
}

// ProvideAuthService provides the account service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideLibraryService provides the book lifecycle service with the
// library loaded from the local store. The starter library is seeded on
// first run.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*syncengine.Engine](i)
	sessions := do.MustInvoke[*session.Manager](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	library := service.NewLibraryService(storeHandle.Store, engine, sessions, searchHandle.Index, log.Logger)

	if err := library.Load(context.Background()); err != nil {
		return nil, err
	}

	return library, nil
}
