// Package remote talks to the cloud story service. It mirrors each
// user's personal collection and hosts the shared universal library.
// Every caller must treat it as optional: the app works fully offline
// and callers degrade gracefully when the remote is unreachable.
package remote

import (
	"context"
	"errors"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

var (
	// ErrUnavailable means the remote could not be reached at all.
	ErrUnavailable = errors.New("remote unavailable")
	// ErrNotFound means the requested resource does not exist remotely.
	ErrNotFound = errors.New("remote resource not found")
	// ErrUnauthorized means the remote rejected our credentials.
	ErrUnauthorized = errors.New("remote rejected request as unauthorized")
	// ErrRateLimited means the remote asked us to back off.
	ErrRateLimited = errors.New("remote rate limit exceeded")
	// ErrServer means the remote returned a 5xx response.
	ErrServer = errors.New("remote server error")
)

// Store is the remote side of the sync engine. The per-user methods
// operate on a single user's cloud collection; the universal methods
// operate on the shared library every user can read.
type Store interface {
	// ListBooks returns the user's cloud collection, newest first.
	ListBooks(ctx context.Context, userID string) ([]*domain.Book, error)

	// PutBook writes a book into the user's cloud collection,
	// replacing any existing book with the same ID.
	PutBook(ctx context.Context, userID string, book *domain.Book) error

	// DeleteBook removes a book from the user's cloud collection.
	// Deleting a book that does not exist is not an error.
	DeleteBook(ctx context.Context, userID, bookID string) error

	// PublishBook adds a copy of the book to the universal library.
	PublishBook(ctx context.Context, book *domain.Book) error

	// ListUniversal returns approved universal books, newest first.
	ListUniversal(ctx context.Context) ([]*domain.Book, error)
}
