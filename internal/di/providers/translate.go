package providers

import (
	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/logger"
	"github.com/storytimeapp/storytime-server/internal/session"
	"github.com/storytimeapp/storytime-server/internal/translate"
)

// TranslateClientHandle wraps the generative API client with shutdown capability.
type TranslateClientHandle struct {
	*translate.Client
}

// Shutdown implements do.Shutdownable.
func (h *TranslateClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideTranslateClient provides the generative API client.
func ProvideTranslateClient(i do.Injector) (*TranslateClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client := translate.NewClient(translate.Options{
		BaseURL: cfg.Translate.BaseURL,
		APIKey:  cfg.Translate.APIKey,
		Model:   cfg.Translate.Model,
		Timeout: cfg.Translate.Timeout,
		RPS:     cfg.Translate.RPS,
		Burst:   cfg.Translate.Burst,
	}, log.Logger)

	if cfg.Translate.APIKey == "" {
		log.Warn("No translate API key configured, language switches will keep original text")
	}

	return &TranslateClientHandle{Client: client}, nil
}

// ProvideSessionManager provides the translation session manager.
func ProvideSessionManager(i do.Injector) (*session.Manager, error) {
	client := do.MustInvoke[*TranslateClientHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return session.NewManager(client.Client, log.Logger), nil
}
