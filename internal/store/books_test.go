package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testBook(id, title string) *domain.Book {
	return &domain.Book{
		ID:            id,
		Title:         title,
		Author:        "Alex J.",
		CreatorName:   "Explorer",
		Language:      domain.LangEnglish,
		AgeGroup:      3,
		PublishStatus: domain.PublishLocal,
		CreatedAt:     time.Now(),
		Pages: []domain.Page{
			{ID: "p1", ImageURL: "https://example.com/1.png", Text: "Page one."},
		},
	}
}

func TestStore_PutGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "Test")
	require.NoError(t, s.PutBook(ctx, book))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Test", got.Title)
	assert.Equal(t, domain.LangEnglish, got.Language)
	require.Len(t, got.Pages, 1)
	assert.Equal(t, "Page one.", got.Pages[0].Text)
}

func TestStore_PutBook_Upsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := testBook("book-1", "First")
	require.NoError(t, s.PutBook(ctx, book))

	book.Title = "Second"
	require.NoError(t, s.PutBook(ctx, book))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)

	count, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_GetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStore_DeleteBook_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "Test")))
	require.NoError(t, s.DeleteBook(ctx, "book-1"))

	_, err := s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, ErrBookNotFound)

	// Deleting again is a no-op.
	require.NoError(t, s.DeleteBook(ctx, "book-1"))
	require.NoError(t, s.DeleteBook(ctx, "never-existed"))
}

func TestStore_ListBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "One")))
	require.NoError(t, s.PutBook(ctx, testBook("book-2", "Two")))
	require.NoError(t, s.PutBook(ctx, testBook("book-3", "Three")))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 3)

	titles := make(map[string]bool)
	for _, b := range books {
		titles[b.Title] = true
	}
	assert.True(t, titles["One"] && titles["Two"] && titles["Three"])
}

func TestStore_BookIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "One")))
	require.NoError(t, s.PutBook(ctx, testBook("book-2", "Two")))

	ids, err := s.BookIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "book-1")
	assert.Contains(t, ids, "book-2")
}

func TestStore_ReplaceAllBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("old-1", "Old")))
	require.NoError(t, s.PutBook(ctx, testBook("old-2", "Older")))

	replacement := []*domain.Book{testBook("new-1", "New")}
	require.NoError(t, s.ReplaceAllBooks(ctx, replacement))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "new-1", books[0].ID)

	_, err = s.GetBook(ctx, "old-1")
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStore_SeedIfEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seeded, err := s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, domain.SeedBookID, books[0].ID)

	// Second call must not reseed.
	seeded, err = s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)
}

func TestStore_SeedIfEmpty_NonEmptyStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBook(ctx, testBook("book-1", "Mine")))

	seeded, err := s.SeedIfEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	_, err = s.GetBook(ctx, domain.SeedBookID)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.PutBook(ctx, testBook("book-1", "Durable")))
	require.NoError(t, s.Close())

	s2, err := New(dir, nil)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Durable", got.Title)
}

func TestStore_ContextCancellation(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.PutBook(ctx, testBook("book-1", "Test")))
	_, err := s.ListBooks(ctx)
	assert.Error(t, err)
}
