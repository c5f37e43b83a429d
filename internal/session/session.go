// Package session coordinates whole-library translation runs. A run
// fans out one generation call per book, recombines results in the
// original order, and never produces a partial library: a book whose
// translation failed keeps its stored text.
//
// Runs carry monotonic sequence numbers. Starting a new run supersedes
// every run before it, and a superseded run's results are discarded so
// a slow older run can never overwrite a newer language choice.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/translate"
)

// ErrSuperseded means a newer run started while this one was in
// flight. The caller must discard the result.
var ErrSuperseded = errors.New("translation run superseded by a newer run")

// maxConcurrent bounds in-flight generation calls per run.
const maxConcurrent = 4

// Manager runs translation sessions. Safe for concurrent use.
type Manager struct {
	translator translate.Translator
	logger     *slog.Logger

	mu      sync.Mutex
	current uint64
}

// NewManager creates a session manager.
func NewManager(translator translate.Translator, logger *slog.Logger) *Manager {
	return &Manager{
		translator: translator,
		logger:     logger,
	}
}

// begin claims the next sequence number, superseding all earlier runs.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current++
	return m.current
}

// isCurrent reports whether seq is still the latest run.
func (m *Manager) isCurrent(seq uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return seq == m.current
}

// Translate renders every book into the target language and returns a
// new slice in the same order. Input books are never mutated; each
// result is a deep copy. A translated copy carries the target language
// code. Books already in the target language are copied through
// untouched, and a book whose generation call fails keeps its original
// text and language.
//
// Returns ErrSuperseded when a newer call to Translate started while
// this one was running, and the context error when canceled. In both
// cases the caller keeps its current library.
func (m *Manager) Translate(ctx context.Context, books []*domain.Book, target domain.LanguageCode) ([]*domain.Book, error) {
	seq := m.begin()

	m.logger.Info("translation run started",
		"run", seq,
		"target", target,
		"books", len(books),
	)

	results := make([]*domain.Book, len(books))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, book := range books {
		wg.Add(1)
		go func(i int, book *domain.Book) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = m.translateBook(ctx, book, target)
		}(i, book)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !m.isCurrent(seq) {
		m.logger.Debug("translation run discarded", "run", seq)
		return nil, ErrSuperseded
	}

	m.logger.Info("translation run finished", "run", seq)
	return results, nil
}

// translateBook produces the target-language copy of one book. On any
// failure the copy keeps the stored text and language code.
func (m *Manager) translateBook(ctx context.Context, book *domain.Book, target domain.LanguageCode) *domain.Book {
	out := book.Clone()
	if book.Language == target {
		return out
	}

	result, err := m.translator.Translate(ctx, translate.Request{
		Title:  book.Title,
		Pages:  book.PageTexts(),
		Source: book.Language,
		Target: target,
	})
	if err != nil {
		m.logger.Warn("book translation failed, keeping original text",
			"book_id", book.ID,
			"target", target,
			"error", err,
		)
		return out
	}

	out.Title = result.Title
	for i := range out.Pages {
		if i < len(result.Pages) {
			out.Pages[i].Text = result.Pages[i]
		}
	}
	out.Language = target
	return out
}
