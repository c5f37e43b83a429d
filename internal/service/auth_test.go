package service

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/domain"
	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
	"github.com/storytimeapp/storytime-server/internal/store"
)

func newTestAuth(t *testing.T) *AuthService {
	t.Helper()
	st, err := store.New(t.TempDir(), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	keyHex := hex.EncodeToString([]byte(strings.Repeat("k", 32)))
	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	return NewAuthService(st, tokens, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{
		Email:    "robin@example.com",
		Password: "hunter2hunter2",
		Name:     "Robin",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Empty(t, reg.User.PasswordHash)
	assert.Equal(t, domain.RoleUser, reg.User.Role)

	login, err := svc.Login(ctx, LoginRequest{
		Email:    "robin@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	req := RegisterRequest{Email: "robin@example.com", Password: "hunter2hunter2", Name: "Robin"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "hunter2hunter2", Name: "Robin"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.Register(ctx, RegisterRequest{Email: "robin@example.com", Password: "short", Name: "Robin"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "robin@example.com", Password: "hunter2hunter2", Name: "Robin"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "robin@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := newTestAuth(t)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Email: "robin@example.com", Password: "hunter2hunter2", Name: "Robin"})
	require.NoError(t, err)

	ident, err := svc.VerifyToken(reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, ident.ID)
	assert.Equal(t, "Robin", ident.Name)
	assert.False(t, ident.IsGuest())

	_, err = svc.VerifyToken("v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestGuestSession(t *testing.T) {
	svc := newTestAuth(t)

	sess := svc.GuestSession("Explorer", domain.LangGerman)
	assert.True(t, sess.Identity.IsGuest())
	assert.Equal(t, "Explorer", sess.Identity.Name)
	assert.Equal(t, domain.LangGerman, sess.Language)

	// Unknown language falls back to English.
	sess = svc.GuestSession("", "xx")
	assert.Equal(t, domain.LangEnglish, sess.Language)
	assert.Equal(t, "Explorer", sess.Identity.Name)
}
