package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	stdsync "sync"
	"time"

	"github.com/storytimeapp/storytime-server/internal/color"
	"github.com/storytimeapp/storytime-server/internal/domain"
	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
	"github.com/storytimeapp/storytime-server/internal/id"
	"github.com/storytimeapp/storytime-server/internal/media/images"
	"github.com/storytimeapp/storytime-server/internal/search"
	"github.com/storytimeapp/storytime-server/internal/session"
	"github.com/storytimeapp/storytime-server/internal/store"
	syncengine "github.com/storytimeapp/storytime-server/internal/sync"
)

// LibraryService is the single place that mutates the book library.
// It owns two in-memory lists: the master list mirrors the local store
// exactly, and the display list is the master list rendered in the
// reader's chosen language. Outside of an in-flight translation run
// the two lists hold the same books.
//
// Mutating operations are single-flight per operation kind: a second
// save arriving while one is in flight is rejected with a busy error
// instead of interleaving.
type LibraryService struct {
	store    *store.Store
	engine   *syncengine.Engine
	sessions *session.Manager
	index    *search.Index
	logger   *slog.Logger
	now      func() time.Time

	mu          stdsync.Mutex
	master      []*domain.Book
	display     []*domain.Book
	displayLang domain.LanguageCode
	lastSync    time.Time
	inflight    map[string]struct{}
}

// NewLibraryService creates the library service. The search index may
// be nil, in which case indexing is skipped.
func NewLibraryService(
	st *store.Store,
	engine *syncengine.Engine,
	sessions *session.Manager,
	index *search.Index,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		store:    st,
		engine:   engine,
		sessions: sessions,
		index:    index,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// begin claims the single-flight slot for an operation kind.
func (s *LibraryService) begin(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[op]; busy {
		return domainerrors.Busy(fmt.Sprintf("a %s operation is already in flight", op))
	}
	s.inflight[op] = struct{}{}
	return nil
}

func (s *LibraryService) end(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, op)
}

// Load initializes the in-memory lists from the local store, seeding
// the starter book on a fresh installation. Call once at startup.
func (s *LibraryService) Load(ctx context.Context) error {
	seeded, err := s.store.SeedIfEmpty(ctx)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	if seeded {
		s.logger.Info("seeded starter library")
	}

	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	sortByCreated(books)

	s.mu.Lock()
	s.master = books
	s.display = cloneList(books)
	s.displayLang = ""
	s.mu.Unlock()

	if s.index != nil {
		docs := make([]*search.BookDocument, len(books))
		for i, b := range books {
			docs[i] = search.FromBook(b)
		}
		if err := s.index.IndexBooks(docs); err != nil {
			s.logger.Warn("initial search indexing failed", "error", err)
		}
	}

	s.logger.Info("library loaded", "books", len(books))
	return nil
}

// Login reconciles the identity's remote collection into the local
// library. A dead remote degrades to local-only: the error is logged
// and the locally stored library is served unchanged. A failure of the
// local store is not degradation, it is a storage fault, and surfaces.
func (s *LibraryService) Login(ctx context.Context, sess domain.Session) error {
	added, err := s.engine.PullMerge(ctx, sess.Identity)
	if err != nil {
		if domainerrors.Is(err, syncengine.ErrLocalWrite) {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "store pulled books")
		}
		s.logger.Warn("pull merge failed, continuing with local library",
			"user_id", sess.Identity.ID,
			"error", err,
		)
	}

	if added > 0 {
		books, err := s.store.ListBooks(ctx)
		if err != nil {
			return fmt.Errorf("reload books: %w", err)
		}
		sortByCreated(books)

		s.mu.Lock()
		s.master = books
		s.display = cloneList(books)
		s.mu.Unlock()

		if s.index != nil {
			docs := make([]*search.BookDocument, len(books))
			for i, b := range books {
				docs[i] = search.FromBook(b)
			}
			if err := s.index.IndexBooks(docs); err != nil {
				s.logger.Warn("search reindex failed after pull", "error", err)
			}
		}
	}

	s.markSynced()
	return nil
}

// Save persists a book. A book without an ID is treated as new: it
// gets a fresh ID, the saving identity as creator, and auto-approval
// when the identity is an admin. Editing an existing book preserves
// its creation time, creator and ratings.
//
// The local write decides success; the remote mirror is best effort.
func (s *LibraryService) Save(ctx context.Context, sess domain.Session, book *domain.Book) (*domain.Book, error) {
	if err := s.begin("save"); err != nil {
		return nil, err
	}
	defer s.end("save")

	saved := book.Clone()
	if saved.ID == "" {
		bookID, err := id.Generate("book")
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate book id")
		}
		saved.ID = bookID
		saved.CreatedAt = s.now()
		if saved.CreatorName == "" {
			saved.CreatorName = sess.Identity.Name
		}
		saved.CreatorRole = sess.Identity.Role
		saved.IsApproved = sess.Identity.IsAdmin()
	} else {
		existing, err := s.store.GetBook(ctx, saved.ID)
		if err != nil {
			if domainerrors.Is(err, store.ErrBookNotFound) {
				return nil, domainerrors.NotFoundf("book %s not found", saved.ID)
			}
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "read book")
		}
		saved.CreatedAt = existing.CreatedAt
		saved.CreatorName = existing.CreatorName
		saved.CreatorRole = existing.CreatorRole
		saved.PersonalRating = existing.PersonalRating
		saved.UniversalRating = existing.UniversalRating
	}
	if saved.PublishStatus == "" {
		saved.PublishStatus = domain.PublishLocal
	}

	if err := validate.Validate(saved); err != nil {
		return nil, err
	}
	if !saved.Language.IsValid() {
		return nil, domainerrors.Validationf("unsupported language %q", saved.Language)
	}

	saved.DeriveCover()
	if saved.BackgroundColor == "" {
		saved.BackgroundColor = color.ForBook(saved.ID)
	}
	if hash, err := images.FromDataURI(saved.CoverImage); err == nil {
		saved.CoverHash = hash
	}

	if err := s.store.PutBook(ctx, saved); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "save book")
	}
	s.upsertLists(saved)
	s.indexBook(saved)

	s.engine.MirrorSave(ctx, sess.Identity, saved)
	s.markSynced()

	s.logger.Info("book saved", "book_id", saved.ID, "title", saved.Title)
	return saved.Clone(), nil
}

// Delete removes a book from both stores and both lists. A remote
// failure is not retried; the local deletion is authoritative.
func (s *LibraryService) Delete(ctx context.Context, sess domain.Session, bookID string) error {
	if err := s.begin("delete"); err != nil {
		return err
	}
	defer s.end("delete")

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return domainerrors.NotFoundf("book %s not found", bookID)
		}
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "read book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "delete book")
	}
	s.removeFromLists(bookID)
	if s.index != nil {
		if err := s.index.DeleteBook(bookID); err != nil {
			s.logger.Warn("search delete failed", "book_id", bookID, "error", err)
		}
	}

	s.engine.MirrorDelete(ctx, sess.Identity, bookID)
	s.markSynced()

	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// Approve marks a book approved and mirrors it into the shared
// universal library. Only admins approve, and only books created by
// non-admin identities enter the universal collection. The universal
// publish is best effort; local approval stands even when the remote
// is down.
func (s *LibraryService) Approve(ctx context.Context, sess domain.Session, bookID string) (*domain.Book, error) {
	if err := s.begin("approve"); err != nil {
		return nil, err
	}
	defer s.end("approve")

	if !sess.Identity.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can approve books")
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "read book")
	}

	book.IsApproved = true
	if err := s.store.PutBook(ctx, book); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "save approval")
	}
	s.upsertLists(book)
	s.indexBook(book)

	if book.AdminOwned() {
		s.logger.Debug("admin-owned book stays out of the universal library", "book_id", bookID)
	} else if err := s.engine.Publish(ctx, book); err != nil {
		s.logger.Warn("universal publish failed, approval kept locally",
			"book_id", bookID,
			"error", err,
		)
	}
	s.markSynced()

	s.logger.Info("book approved", "book_id", bookID)
	return book.Clone(), nil
}

// Rate sets one rating axis on a book, leaving the other untouched.
// The full record is re-read and re-persisted, never patched.
func (s *LibraryService) Rate(ctx context.Context, sess domain.Session, bookID string, axis domain.RatingAxis, value float64) (*domain.Book, error) {
	if err := s.begin("rate"); err != nil {
		return nil, err
	}
	defer s.end("rate")

	if value < 0 || value > 5 {
		return nil, domainerrors.Validationf("rating must be between 0 and 5, got %g", value)
	}

	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if domainerrors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "read book")
	}

	switch axis {
	case domain.RatingPersonal:
		book.PersonalRating = value
	case domain.RatingUniversal:
		book.UniversalRating = value
	default:
		return nil, domainerrors.Validationf("unknown rating axis %q", axis)
	}

	if err := s.store.PutBook(ctx, book); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "save rating")
	}
	s.upsertLists(book)
	s.indexBook(book)

	s.engine.MirrorSave(ctx, sess.Identity, book)
	s.markSynced()

	return book.Clone(), nil
}

// SetLanguage runs a translation session against the master list and
// swaps the display list atomically when it completes. A session
// superseded by a newer one is silently discarded; the master list and
// local store are never touched.
func (s *LibraryService) SetLanguage(ctx context.Context, sess domain.Session) error {
	target := sess.Language
	if !target.IsValid() {
		return domainerrors.Validationf("unsupported language %q", target)
	}

	s.mu.Lock()
	source := cloneList(s.master)
	s.mu.Unlock()

	translated, err := s.sessions.Translate(ctx, source, target)
	if err != nil {
		if domainerrors.Is(err, session.ErrSuperseded) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.display = translated
	s.displayLang = target
	s.mu.Unlock()

	s.logger.Info("display language set", "language", target)
	return nil
}

// Books returns the display list: the library in the reader's chosen
// language, newest first.
func (s *LibraryService) Books() []*domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.display)
}

// MasterBooks returns the canonical list in stored languages.
func (s *LibraryService) MasterBooks() []*domain.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneList(s.master)
}

// Book returns one book from the display list.
func (s *LibraryService) Book(bookID string) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.display {
		if b.ID == bookID {
			return b.Clone(), nil
		}
	}
	return nil, domainerrors.NotFoundf("book %s not found", bookID)
}

// DisplayLanguage returns the language of the current display list.
// Empty means the display list carries stored languages.
func (s *LibraryService) DisplayLanguage() domain.LanguageCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayLang
}

// Universal returns the shared universal library.
func (s *LibraryService) Universal(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.engine.Universal(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load universal library")
	}
	return books, nil
}

// LastSync reports when a store-affecting operation last completed.
func (s *LibraryService) LastSync() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSync
}

func (s *LibraryService) markSynced() {
	s.mu.Lock()
	s.lastSync = s.now()
	s.mu.Unlock()
}

// upsertLists places the book into master and display in lockstep.
// The display copy is untranslated until the next translation run.
func (s *LibraryService) upsertLists(book *domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = upsert(s.master, book.Clone())
	s.display = upsert(s.display, book.Clone())
}

func (s *LibraryService) removeFromLists(bookID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.master = remove(s.master, bookID)
	s.display = remove(s.display, bookID)
}

func (s *LibraryService) indexBook(book *domain.Book) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexBook(search.FromBook(book)); err != nil {
		s.logger.Warn("search indexing failed", "book_id", book.ID, "error", err)
	}
}

func upsert(list []*domain.Book, book *domain.Book) []*domain.Book {
	for i, b := range list {
		if b.ID == book.ID {
			list[i] = book
			return list
		}
	}
	list = append(list, book)
	sortByCreated(list)
	return list
}

func remove(list []*domain.Book, bookID string) []*domain.Book {
	out := list[:0]
	for _, b := range list {
		if b.ID != bookID {
			out = append(out, b)
		}
	}
	return out
}

func cloneList(list []*domain.Book) []*domain.Book {
	out := make([]*domain.Book, len(list))
	for i, b := range list {
		out[i] = b.Clone()
	}
	return out
}

// sortByCreated orders newest first, with ID as the tiebreaker so the
// order is stable across loads.
func sortByCreated(list []*domain.Book) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}
