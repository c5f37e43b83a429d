package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/storytimeapp/storytime-server/internal/domain"
)

const (
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:"
)

// normalizeEmail lowercases and trims an email for case-insensitive
// lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores a new account and its email index entry.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(userPrefix + user.ID)
	emailKey := []byte(userByEmailPrefix + normalizeEmail(user.Email))

	exists, err := s.exists(emailKey)
	if err != nil {
		return fmt.Errorf("check user email: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	if err := s.set(key, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(emailKey, []byte(user.ID))
	}); err != nil {
		return fmt.Errorf("index user email: %w", err)
	}
	return nil
}

// GetUser retrieves an account by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user domain.User
	err := s.get([]byte(userPrefix+id), &user)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

// GetUserByEmail retrieves an account via the email index.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userByEmailPrefix + normalizeEmail(email)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return s.GetUser(ctx, id)
}

// UpdateUser re-persists an existing account. The email index is
// rewritten when the address changed.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	current, err := s.GetUser(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := s.set([]byte(userPrefix+user.ID), user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	oldEmail := normalizeEmail(current.Email)
	newEmail := normalizeEmail(user.Email)
	if oldEmail != newEmail {
		if err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete([]byte(userByEmailPrefix + oldEmail)); err != nil {
				return err
			}
			return txn.Set([]byte(userByEmailPrefix+newEmail), []byte(user.ID))
		}); err != nil {
			return fmt.Errorf("reindex user email: %w", err)
		}
	}
	return nil
}
