package providers

import (
	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/logger"
	"github.com/storytimeapp/storytime-server/internal/remote"
)

// ProvideRemoteStore provides the remote mirror client. When remote sync
// is disabled or unconfigured, the disabled store stands in and behaves
// like a permanently unreachable remote.
func ProvideRemoteStore(i do.Injector) (remote.Store, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Remote.Enabled || cfg.Remote.BaseURL == "" {
		log.Info("Remote sync disabled, running local-only")
		return remote.Disabled{}, nil
	}

	log.Info("Remote sync enabled", "base_url", cfg.Remote.BaseURL)
	return remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, log.Logger), nil
}
