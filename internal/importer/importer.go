// Package importer watches an inbox directory and imports book JSON
// files dropped into it. It exists for bulk-loading a library from
// files: drop exported books into {data}/inbox and they appear in the
// local store a moment later.
package importer

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/storytimeapp/storytime-server/internal/domain"
	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
	"github.com/storytimeapp/storytime-server/internal/normalize"
)

// defaultSettle is how long a file must stay quiet before we read it,
// so half-written files are not picked up mid-copy.
const defaultSettle = 500 * time.Millisecond

// Library is the slice of the library service the importer drives.
type Library interface {
	Save(ctx context.Context, sess domain.Session, book *domain.Book) (*domain.Book, error)
}

// Importer watches the inbox and feeds valid book files into the
// library service.
type Importer struct {
	library Library
	sess    domain.Session
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	inbox   string
	settle  time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// New creates an importer over the given inbox directory, creating the
// directory if needed. Imported books are saved under sess, so the
// identity's role decides whether imports are auto-approved.
func New(library Library, sess domain.Session, inboxPath string, logger *slog.Logger) (*Importer, error) {
	if err := os.MkdirAll(inboxPath, 0o755); err != nil {
		return nil, fmt.Errorf("create inbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(inboxPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch inbox: %w", err)
	}

	return &Importer{
		library: library,
		sess:    sess,
		logger:  logger,
		watcher: watcher,
		inbox:   inboxPath,
		settle:  defaultSettle,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start sweeps files already waiting in the inbox, then watches for
// new ones. Blocks until the context is canceled.
func (imp *Importer) Start(ctx context.Context) error {
	imp.sweep(ctx)

	imp.logger.Info("inbox importer started", "path", imp.inbox)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-imp.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				imp.schedule(ctx, event.Name)
			}
		case err, ok := <-imp.watcher.Errors:
			if !ok {
				return nil
			}
			imp.logger.Warn("inbox watch error", "error", err)
		}
	}
}

// Close stops watching and waits for in-flight imports.
func (imp *Importer) Close() error {
	err := imp.watcher.Close()
	imp.wg.Wait()
	return err
}

// sweep imports files that were already in the inbox before we
// started watching.
func (imp *Importer) sweep(ctx context.Context) {
	entries, err := os.ReadDir(imp.inbox)
	if err != nil {
		imp.logger.Warn("inbox sweep failed", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if path := filepath.Join(imp.inbox, entry.Name()); importable(path) {
			imp.importFile(ctx, path)
		}
	}
}

// schedule debounces one file: the timer resets on every write and the
// import runs only after the file has settled.
func (imp *Importer) schedule(ctx context.Context, path string) {
	if !importable(path) {
		return
	}

	imp.mu.Lock()
	defer imp.mu.Unlock()

	if timer, exists := imp.pending[path]; exists {
		timer.Reset(imp.settle)
		return
	}

	imp.wg.Add(1)
	imp.pending[path] = time.AfterFunc(imp.settle, func() {
		defer imp.wg.Done()
		imp.mu.Lock()
		delete(imp.pending, path)
		imp.mu.Unlock()

		imp.importFile(ctx, path)
	})
}

// importFile reads one book file and saves it into the library.
// Success removes the file, a busy library reschedules it, and any
// other failure renames it aside so it cannot retrigger an import
// loop.
func (imp *Importer) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path) //#nosec G304 -- Path comes from the watched inbox
	if err != nil {
		imp.logger.Warn("inbox read failed", "path", path, "error", err)
		return
	}

	var book domain.Book
	if err := json.Unmarshal(data, &book); err != nil {
		imp.fail(path, fmt.Errorf("parse book: %w", err))
		return
	}

	// The library assigns fresh IDs; an imported file never collides
	// with an existing book.
	book.ID = ""

	// Exported files spell their language loosely ("deu", "German",
	// "de-AT"); squeeze them onto a supported code before validation.
	if code, ok := normalize.Language(string(book.Language)); ok {
		book.Language = code
	}

	saved, err := imp.library.Save(ctx, imp.sess, &book)
	if err != nil {
		// A busy library is transient. Put the file back on the
		// debounce timer instead of setting it aside.
		if domainerrors.Is(err, domainerrors.ErrBusy) {
			imp.logger.Debug("library busy, retrying import", "path", path)
			imp.schedule(ctx, path)
			return
		}
		imp.fail(path, err)
		return
	}

	if err := os.Remove(path); err != nil {
		imp.logger.Warn("failed to remove imported file", "path", path, "error", err)
	}
	imp.logger.Info("book imported from inbox",
		"file", filepath.Base(path),
		"book_id", saved.ID,
		"title", saved.Title,
	)
}

func (imp *Importer) fail(path string, err error) {
	imp.logger.Warn("inbox import failed", "path", path, "error", err)
	if renameErr := os.Rename(path, path+".failed"); renameErr != nil {
		imp.logger.Warn("failed to set aside bad import", "path", path, "error", renameErr)
	}
}

func importable(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
