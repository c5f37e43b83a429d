package api

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/config"
	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/remote"
	"github.com/storytimeapp/storytime-server/internal/search"
	"github.com/storytimeapp/storytime-server/internal/service"
	"github.com/storytimeapp/storytime-server/internal/session"
	"github.com/storytimeapp/storytime-server/internal/store"
	syncengine "github.com/storytimeapp/storytime-server/internal/sync"
	"github.com/storytimeapp/storytime-server/internal/translate"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int       `json:"v"`
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

// fakeRemote is an in-memory remote store.
type fakeRemote struct {
	mu        stdsync.Mutex
	books     map[string]map[string]*domain.Book // userID -> bookID -> book
	universal map[string]*domain.Book
	down      bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		books:     make(map[string]map[string]*domain.Book),
		universal: make(map[string]*domain.Book),
	}
}

func (f *fakeRemote) ListBooks(_ context.Context, userID string) ([]*domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, remote.ErrUnavailable
	}
	var out []*domain.Book
	for _, b := range f.books[userID] {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (f *fakeRemote) PutBook(_ context.Context, userID string, book *domain.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return remote.ErrUnavailable
	}
	if f.books[userID] == nil {
		f.books[userID] = make(map[string]*domain.Book)
	}
	f.books[userID][book.ID] = book.Clone()
	return nil
}

func (f *fakeRemote) DeleteBook(_ context.Context, userID, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return remote.ErrUnavailable
	}
	delete(f.books[userID], bookID)
	return nil
}

func (f *fakeRemote) PublishBook(_ context.Context, book *domain.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return remote.ErrUnavailable
	}
	f.universal[book.ID] = book.Clone()
	return nil
}

func (f *fakeRemote) ListUniversal(_ context.Context) ([]*domain.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, remote.ErrUnavailable
	}
	var out []*domain.Book
	for _, b := range f.universal {
		out = append(out, b.Clone())
	}
	return out, nil
}

// fakeTranslator prefixes text with the target language code.
type fakeTranslator struct{}

func (fakeTranslator) Translate(_ context.Context, req translate.Request) (*translate.Result, error) {
	pages := make([]string, len(req.Pages))
	for i, p := range req.Pages {
		pages[i] = string(req.Target) + ":" + p
	}
	return &translate.Result{
		Title: string(req.Target) + ":" + req.Title,
		Pages: pages,
	}, nil
}

func (fakeTranslator) Illustrate(_ context.Context, prompt string) (*translate.Illustration, error) {
	return &translate.Illustration{Data: []byte(prompt), MIMEType: "image/png"}, nil
}

// testServer bundles the API server with direct handles for test setup.
type testServer struct {
	*Server
	api     humatest.TestAPI
	st      *store.Store
	remote  *fakeRemote
	tokens  *auth.TokenService
	library *service.LibraryService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.New(filepath.Join(tmpDir, "db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	keyHex, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute)
	require.NoError(t, err)

	idx, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	rem := newFakeRemote()
	engine := syncengine.NewEngine(st, rem, logger)
	sessions := session.NewManager(fakeTranslator{}, logger)

	library := service.NewLibraryService(st, engine, sessions, idx, logger)
	require.NoError(t, library.Load(context.Background()))

	authService := service.NewAuthService(st, tokens, logger)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Name:        "StoryTime Test",
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
	}

	srv := NewServer(cfg, st, &Services{
		Auth:       authService,
		Library:    library,
		Search:     idx,
		Translator: fakeTranslator{},
	}, logger)

	return &testServer{
		Server:  srv,
		api:     humatest.Wrap(t, srv.api),
		st:      st,
		remote:  rem,
		tokens:  tokens,
		library: library,
	}
}

// registerUser registers an account through the API and returns its token.
func (ts *testServer) registerUser(t *testing.T, email, name string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "SecurePassword123!",
		"name":     name,
	})
	require.Equal(t, 200, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	return envelope.Data.AccessToken
}

// adminToken creates an admin account directly in the store and issues a token for it.
func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword("AdminPassword123!")
	require.NoError(t, err)

	admin := &domain.User{
		ID:           "user-admin-test",
		Email:        "admin@example.com",
		Name:         "Librarian",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, ts.st.CreateUser(context.Background(), admin))

	token, err := ts.tokens.GenerateAccessToken(admin)
	require.NoError(t, err)
	return token
}

// testBook returns a valid book body for save requests.
func testBook(title string) map[string]any {
	return map[string]any{
		"id":               "",
		"title":            title,
		"author":           "Test Author",
		"creator_name":     "",
		"language":         "en",
		"age_group":        4,
		"is_approved":      false,
		"publish_status":   "local",
		"universal_rating": 0,
		"personal_rating":  0,
		"created_at":       time.Time{},
		"pages": []map[string]any{
			{"id": "p1", "image_url": "", "text": "Once upon a time."},
			{"id": "p2", "image_url": "", "text": "The end."},
		},
	}
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

func unmarshalBody(data []byte, dest any) error {
	return json.Unmarshal(data, dest)
}

func TestServer_RoutesRegistered(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/health",
		"/api/v1/books",
		"/api/v1/books/universal",
		"/api/v1/search",
	} {
		resp := ts.api.Get(path + "?q=lion")
		require.NotEqual(t, 404, resp.Code, "route %s not registered", path)
	}
}

func TestServer_EnvelopeShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books")
	require.Equal(t, 200, resp.Code)

	body := resp.Body.String()
	require.True(t, strings.Contains(body, `"v":1`), "missing version field: %s", body)
	require.True(t, strings.Contains(body, `"success":true`), "missing success field: %s", body)
}
