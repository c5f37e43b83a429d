package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/storytimeapp/storytime-server/internal/domain"
)

const bookPrefix = "book:"

// Book Operations
//
// The contract is deliberately small: callers (the lifecycle
// controller and the sync engine) re-sort and filter in memory. Each
// call is all-or-nothing; partial success is never observable.

// PutBook upserts one book by ID. Idempotent.
func (s *Store) PutBook(ctx context.Context, book *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(bookPrefix + book.ID)
	if err := s.set(key, book); err != nil {
		return fmt.Errorf("put book %s: %w", book.ID, err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "book written",
			slog.String("id", book.ID),
			slog.String("title", book.Title),
			slog.Int("pages", len(book.Pages)),
		)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var book domain.Book
	err := s.get([]byte(bookPrefix+id), &book)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %s: %w", id, err)
	}
	return &book, nil
}

// ListBooks returns every stored book. Order is unspecified; callers
// re-sort.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var books []*domain.Book
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var book domain.Book
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &book)
			})
			if err != nil {
				return fmt.Errorf("unmarshal book %s: %w", it.Item().Key(), err)
			}
			books = append(books, &book)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

// BookIDs returns the set of stored book IDs without deserializing full
// records. The pull-merge uses this to decide which remote books are
// new.
func (s *Store) BookIDs(ctx context.Context) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ids := make(map[string]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = false // keys only

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			key := string(it.Item().Key())
			ids[key[len(bookPrefix):]] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list book ids: %w", err)
	}
	return ids, nil
}

// DeleteBook removes one book. No-op if absent.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.delete([]byte(bookPrefix + id)); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "book deleted", slog.String("id", id))
	}
	return nil
}

// ReplaceAllBooks atomically clears the collection and inserts exactly
// the given set. Used only for first-run seeding.
func (s *Store) ReplaceAllBooks(ctx context.Context, books []*domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		// Collect existing keys first; deleting while iterating the
		// same transaction is not safe.
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(bookPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		var stale [][]byte
		for it.Seek([]byte(bookPrefix)); it.ValidForPrefix([]byte(bookPrefix)); it.Next() {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range stale {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}

		for _, book := range books {
			data, err := json.Marshal(book)
			if err != nil {
				return fmt.Errorf("marshal book %s: %w", book.ID, err)
			}
			if err := txn.Set([]byte(bookPrefix+book.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace all books: %w", err)
	}

	if s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book collection replaced",
			slog.Int("count", len(books)),
		)
	}
	return nil
}

// CountBooks returns the number of stored books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	ids, err := s.BookIDs(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// SeedIfEmpty inserts the starter library when the store holds no
// books. Returns true when seeding happened.
func (s *Store) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.CountBooks(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	if err := s.ReplaceAllBooks(ctx, domain.SeedBooks()); err != nil {
		return false, fmt.Errorf("seed library: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("seeded empty library", "book_id", domain.SeedBookID)
	}
	return true, nil
}
