// Package sync reconciles the local book store with the remote one.
//
// The relationship is deliberately asymmetric. The local store is the
// source of truth for reading and writing; the remote is a mirror plus
// a shared universal library. Pulling merges remote books in without
// ever deleting or overwriting local ones, and pushing is best effort:
// a dead remote never breaks a save.
//
// Guest identities have no remote collection at all, so every
// per-user operation short-circuits for them.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/remote"
	"github.com/storytimeapp/storytime-server/internal/store"
)

// ErrLocalWrite marks a pull failure caused by the local store rather
// than the remote. Callers surface it as a storage fault instead of
// degrading to local-only mode.
var ErrLocalWrite = errors.New("local write failed during pull")

// Engine moves books between the local and remote stores.
type Engine struct {
	local  *store.Store
	remote remote.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a sync engine over the given stores.
func NewEngine(local *store.Store, rs remote.Store, logger *slog.Logger) *Engine {
	return &Engine{
		local:  local,
		remote: rs,
		logger: logger,
		now:    time.Now,
	}
}

// PullMerge folds the identity's remote collection into the local
// store. It only ever adds: a remote book whose ID already exists
// locally is skipped, and nothing local is deleted. Running it twice
// is a no-op the second time.
//
// Returns the number of books added. Guests have no remote collection,
// so the call returns (0, nil) without touching the network. A failure
// of the local store is wrapped in ErrLocalWrite so callers can tell
// it apart from an unreachable remote.
func (e *Engine) PullMerge(ctx context.Context, ident domain.Identity) (int, error) {
	if ident.IsGuest() {
		return 0, nil
	}

	remoteBooks, err := e.remote.ListBooks(ctx, ident.ID)
	if err != nil {
		return 0, fmt.Errorf("list remote books: %w", err)
	}

	localIDs, err := e.local.BookIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: list local book ids: %w", ErrLocalWrite, err)
	}

	added := 0
	for _, book := range remoteBooks {
		if _, exists := localIDs[book.ID]; exists {
			// Local copy wins; diverged remote copies are left alone.
			continue
		}
		if err := e.local.PutBook(ctx, book); err != nil {
			return added, fmt.Errorf("%w: store pulled book %s: %w", ErrLocalWrite, book.ID, err)
		}
		added++
	}

	e.logger.Info("pull merge complete",
		"user_id", ident.ID,
		"remote_books", len(remoteBooks),
		"added", added,
	)
	return added, nil
}

// MirrorSave pushes one book to the identity's remote collection.
// Best effort: failures are logged and swallowed, because the local
// save has already succeeded and must stand on its own.
func (e *Engine) MirrorSave(ctx context.Context, ident domain.Identity, book *domain.Book) {
	if ident.IsGuest() {
		return
	}
	if err := e.remote.PutBook(ctx, ident.ID, book); err != nil {
		e.logger.Warn("remote mirror save failed",
			"user_id", ident.ID,
			"book_id", book.ID,
			"error", err,
		)
		return
	}
	e.logger.Debug("book mirrored to remote", "book_id", book.ID)
}

// MirrorDelete removes one book from the identity's remote collection.
// Best effort, same as MirrorSave.
func (e *Engine) MirrorDelete(ctx context.Context, ident domain.Identity, bookID string) {
	if ident.IsGuest() {
		return
	}
	if err := e.remote.DeleteBook(ctx, ident.ID, bookID); err != nil {
		e.logger.Warn("remote mirror delete failed",
			"user_id", ident.ID,
			"book_id", bookID,
			"error", err,
		)
		return
	}
	e.logger.Debug("book deleted from remote", "book_id", bookID)
}

// Publish places a copy of the book into the shared universal library.
// The copy is stamped as published; the caller's book is not mutated.
// Publishing is additive: the universal library never loses a book
// because its source copy changed or was deleted.
func (e *Engine) Publish(ctx context.Context, book *domain.Book) error {
	published := book.Clone()
	published.MarkPublished(e.now())

	if err := e.remote.PublishBook(ctx, published); err != nil {
		return fmt.Errorf("publish book %s: %w", book.ID, err)
	}

	e.logger.Info("book published to universal library", "book_id", book.ID)
	return nil
}

// Universal returns the shared library, newest first.
func (e *Engine) Universal(ctx context.Context) ([]*domain.Book, error) {
	books, err := e.remote.ListUniversal(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universal books: %w", err)
	}
	return books, nil
}
