package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func TestListBooks_Seeded(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books")

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[LibraryResponse]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))

	require.NotEmpty(t, envelope.Data.Books)
	assert.Equal(t, domain.SeedBookID, envelope.Data.Books[0].ID)
	assert.Empty(t, envelope.Data.DisplayLanguage)
}

func TestSaveBook_Guest(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books",
		"X-Guest-Name: Lina",
		testBook("The Sleepy Dragon"))

	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))

	book := envelope.Data
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Sleepy Dragon", book.Title)
	assert.Equal(t, "Lina", book.CreatorName)
	assert.False(t, book.IsApproved, "guest saves are not auto-approved")

	// Guest books never reach the remote store.
	ts.remote.mu.Lock()
	defer ts.remote.mu.Unlock()
	assert.Empty(t, ts.remote.books)
}

func TestSaveBook_AuthenticatedMirrorsRemote(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "maria@example.com", "Maria")

	resp := ts.api.Post("/api/v1/books",
		bearer(token),
		testBook("Maria's Story"))

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))

	ident, err := ts.services.Auth.VerifyToken(token)
	require.NoError(t, err)

	ts.remote.mu.Lock()
	defer ts.remote.mu.Unlock()
	assert.Contains(t, ts.remote.books[ident.ID], envelope.Data.ID)
}

func TestSaveBook_RemoteDownStillPersists(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "maria@example.com", "Maria")

	ts.remote.mu.Lock()
	ts.remote.down = true
	ts.remote.mu.Unlock()

	resp := ts.api.Post("/api/v1/books",
		bearer(token),
		testBook("Offline Story"))

	require.Equal(t, http.StatusOK, resp.Code, "remote faults must not surface on save")

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))

	_, err := ts.library.Book(envelope.Data.ID)
	assert.NoError(t, err)
}

func TestGetBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/" + domain.SeedBookID)

	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, domain.SeedBookID, envelope.Data.ID)
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")

	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[any]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/books/" + domain.SeedBookID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + domain.SeedBookID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestApproveBook_RequiresAdmin(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "maria@example.com", "Maria")

	resp := ts.api.Post("/api/v1/books/"+domain.SeedBookID+"/approve",
		bearer(token), map[string]any{})

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestApproveBook_AdminPublishesUniversal(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.adminToken(t)

	resp := ts.api.Post("/api/v1/books/"+domain.SeedBookID+"/approve",
		bearer(token), map[string]any{})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.IsApproved)

	// The universal copy carries the published stamp; the local record is
	// approved but otherwise unchanged.
	ts.remote.mu.Lock()
	published, ok := ts.remote.universal[domain.SeedBookID]
	ts.remote.mu.Unlock()
	require.True(t, ok, "approval should publish a universal copy")
	assert.Equal(t, domain.PublishUniversal, published.PublishStatus)
	assert.NotNil(t, published.PublishedAt)
}

func TestRateBook_PersonalAxis(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/books/"+domain.SeedBookID+"/rating", map[string]any{
		"axis":  "personal",
		"value": 4,
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 4.0, envelope.Data.PersonalRating)
	assert.Equal(t, 0.0, envelope.Data.UniversalRating, "axes are independent")
}

func TestRateBook_InvalidAxis(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/books/"+domain.SeedBookID+"/rating", map[string]any{
		"axis":  "stars",
		"value": 4,
	})

	assert.GreaterOrEqual(t, resp.Code, 400)
	assert.Less(t, resp.Code, 500)
}

func TestListUniversal(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.adminToken(t)

	resp := ts.api.Post("/api/v1/books/"+domain.SeedBookID+"/approve",
		bearer(token), map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/books/universal")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[[]*domain.Book]
	require.NoError(t, unmarshalBody(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, domain.SeedBookID, envelope.Data[0].ID)
}
