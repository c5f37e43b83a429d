package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/storytimeapp/storytime-server/internal/auth"
	"github.com/storytimeapp/storytime-server/internal/domain"
	domainerrors "github.com/storytimeapp/storytime-server/internal/errors"
	"github.com/storytimeapp/storytime-server/internal/id"
	"github.com/storytimeapp/storytime-server/internal/store"
)

// AuthService handles account registration, login and token
// verification. Guest sessions bypass it entirely: they carry no
// token and never touch the user store.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the access token and user data.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates a new user account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "hash password")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate user id")
	}

	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Name:         req.Name,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if domainerrors.Is(err, store.ErrUserExists) {
			return nil, domainerrors.AlreadyExists("an account with this email already exists")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "create user")
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issueToken(user)
}

// Login verifies credentials and returns an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if domainerrors.Is(err, store.ErrUserNotFound) {
			// Same error as a wrong password so login probing can't
			// enumerate accounts.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "look up user")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "verify password")
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issueToken(user)
}

// GuestSession builds a session for a local-only guest identity.
// Guests get no token and their identity never reaches the remote.
func (s *AuthService) GuestSession(name string, language domain.LanguageCode) domain.Session {
	if language == "" || !language.IsValid() {
		language = domain.LangEnglish
	}
	return domain.Session{
		Identity: domain.Guest(name),
		Language: language,
	}
}

// VerifyToken validates an access token and returns the identity it
// carries.
func (s *AuthService) VerifyToken(token string) (domain.Identity, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return domain.Identity{}, domainerrors.Unauthorized(fmt.Sprintf("invalid access token: %v", err))
	}
	return claims.Identity(), nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate access token")
	}

	sanitized := *user
	sanitized.PasswordHash = ""

	return &AuthResponse{
		User:        &sanitized,
		AccessToken: token,
		ExpiresAt:   time.Now().Add(s.tokenService.AccessTokenDuration()),
	}, nil
}
