package search

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(Options{
		DataPath: t.TempDir(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func indexedBook(id, title, author string, lang domain.LanguageCode, age int, approved bool) *domain.Book {
	return &domain.Book{
		ID:         id,
		Title:      title,
		Author:     author,
		Language:   lang,
		AgeGroup:   age,
		IsApproved: approved,
		CreatedAt:  time.Now(),
		Pages:      []domain.Page{{ID: "p1", Text: "text"}},
	}
}

func TestIndexAndSearchByTitle(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "The Brave Little Lion", "Alex J.", domain.LangEnglish, 3, true))))
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b2", "The Sleepy Fox", "Sam K.", domain.LangEnglish, 4, false))))

	params := DefaultParams()
	params.Query = "lion"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "b1", result.Hits[0].ID)
	assert.Equal(t, "The Brave Little Lion", result.Hits[0].Title)
}

func TestSearchByAuthor(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "The Brave Little Lion", "Alex Johnson", domain.LangEnglish, 3, true))))

	params := DefaultParams()
	params.Query = "johnson"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "b1", result.Hits[0].ID)
}

func TestSearchLanguageFilter(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks([]*BookDocument{
		FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true)),
		FromBook(indexedBook("b2", "Löwe", "A", domain.LangGerman, 3, true)),
	}))

	params := DefaultParams()
	params.Language = "de"
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "b2", result.Hits[0].ID)
}

func TestSearchAgeGroupFilter(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks([]*BookDocument{
		FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true)),
		FromBook(indexedBook("b2", "Fox", "A", domain.LangEnglish, 6, true)),
	}))

	params := DefaultParams()
	params.AgeGroup = 6
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "b2", result.Hits[0].ID)
}

func TestSearchApprovedOnly(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBooks([]*BookDocument{
		FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true)),
		FromBook(indexedBook("b2", "Fox", "A", domain.LangEnglish, 3, false)),
	}))

	params := DefaultParams()
	params.ApprovedOnly = true
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "b1", result.Hits[0].ID)
}

func TestSearchFuzzyMatch(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "The Brave Little Lion", "A", domain.LangEnglish, 3, true))))

	params := DefaultParams()
	params.Query = "brve" // typo
	result, err := idx.Search(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
}

func TestDeleteBook(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true))))
	require.NoError(t, idx.DeleteBook("b1"))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestRebuildEmptiesIndex(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true))))
	require.NoError(t, idx.Rebuild())

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexPersistence(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	idx, err := NewIndex(Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, idx.IndexBook(FromBook(indexedBook("b1", "Lion", "A", domain.LangEnglish, 3, true))))
	require.NoError(t, idx.Close())

	idx2, err := NewIndex(Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	defer idx2.Close()

	count, err := idx2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}
