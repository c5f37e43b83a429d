package remote

import (
	"context"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

// Disabled is a Store for deployments running without a remote. Every
// call fails with ErrUnavailable, which callers already handle as the
// offline path.
type Disabled struct{}

func (Disabled) ListBooks(context.Context, string) ([]*domain.Book, error) {
	return nil, ErrUnavailable
}

func (Disabled) PutBook(context.Context, string, *domain.Book) error {
	return ErrUnavailable
}

func (Disabled) DeleteBook(context.Context, string, string) error {
	return ErrUnavailable
}

func (Disabled) PublishBook(context.Context, *domain.Book) error {
	return ErrUnavailable
}

func (Disabled) ListUniversal(context.Context) ([]*domain.Book, error) {
	return nil, ErrUnavailable
}
