package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/importer"
	"github.com/storytimeapp/storytime-server/internal/logger"
	"github.com/storytimeapp/storytime-server/internal/service"
)

// ImporterHandle wraps the inbox importer with its context for lifecycle management.
type ImporterHandle struct {
	*importer.Importer
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *ImporterHandle) Shutdown() error {
	if h.Importer == nil {
		return nil
	}
	h.cancel()
	return h.Close()
}

// ProvideImporter provides the inbox importer, watching the inbox
// directory for dropped book files. Disabled config yields a nil
// importer handle.
func ProvideImporter(i do.Injector) (*ImporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Importer.Enabled {
		log.Info("Inbox importer disabled")
		return &ImporterHandle{}, nil
	}

	library := do.MustInvoke[*service.LibraryService](i)

	// Imported books stay on this device until their owner claims them.
	sess := domain.Session{
		Identity: domain.Guest("Importer"),
		Language: domain.LangEnglish,
	}

	imp, err := importer.New(library, sess, cfg.Importer.InboxPath, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := imp.Start(ctx); err != nil && ctx.Err() == nil {
			log.Error("Inbox importer stopped", "error", err)
		}
	}()

	log.Info("Inbox importer watching", "path", cfg.Importer.InboxPath)

	return &ImporterHandle{Importer: imp, cancel: cancel}, nil
}
