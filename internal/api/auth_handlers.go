package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storytimeapp/storytime-server/internal/domain"
	"github.com/storytimeapp/storytime-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register new account",
		Description: "Creates a new account and returns an access token. The new account is logged in immediately.",
		Tags:        []string{"Authentication"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates an account, returns an access token and reconciles the account's remote library into the local store.",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "guestSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/guest",
		Summary:     "Start guest session",
		Description: "Starts a local-only session. Guest books never leave this device.",
		Tags:        []string{"Authentication"},
	}, s.handleGuest)
}

// === DTOs ===

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Account email address"`
	Password string `json:"password" validate:"required,min=8,max=1024" doc:"Account password"`
	Name     string `json:"name" validate:"required,min=1,max=100" doc:"Display name shown on created books"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" doc:"Account email"`
	Password string `json:"password" validate:"required,max=1024" doc:"Account password"`
	Language string `json:"language,omitempty" validate:"omitempty,max=8" doc:"Display language for this session"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// GuestRequest is the request body for starting a guest session.
type GuestRequest struct {
	Name     string `json:"name,omitempty" validate:"omitempty,max=100" doc:"Guest display name (defaults to Explorer)"`
	Language string `json:"language,omitempty" validate:"omitempty,max=8" doc:"Display language for this session"`
}

// GuestInput wraps the guest request for Huma.
type GuestInput struct {
	Body GuestRequest
}

// UserResponse contains account information in auth responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"Account ID"`
	Email       string    `json:"email" doc:"Account email"`
	Name        string    `json:"name" doc:"Display name"`
	Role        string    `json:"role" doc:"Account role (admin or user)"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation timestamp"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Last login timestamp"`
}

// AuthResponse contains the access token and account info.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Token type (Bearer)"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Authenticated account"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// SessionResponse describes the session an operation will run under.
type SessionResponse struct {
	Identity domain.Identity `json:"identity" doc:"Acting identity"`
	Language string          `json:"language" doc:"Session display language"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	// Pull the account's remote collection into the local library. A dead
	// remote degrades to local-only inside the service.
	sess := domain.Session{
		Identity: resp.User.Identity(),
		Language: sessionLanguage(input.Body.Language),
	}
	if err := s.services.Library.Login(ctx, sess); err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleGuest(_ context.Context, input *GuestInput) (*SessionOutput, error) {
	sess := s.services.Auth.GuestSession(input.Body.Name, domain.LanguageCode(input.Body.Language))

	return &SessionOutput{
		Body: SessionResponse{
			Identity: sess.Identity,
			Language: string(sess.Language),
		},
	}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   resp.ExpiresAt,
		User: UserResponse{
			ID:          resp.User.ID,
			Email:       resp.User.Email,
			Name:        resp.User.Name,
			Role:        string(resp.User.Role),
			CreatedAt:   resp.User.CreatedAt,
			LastLoginAt: resp.User.LastLoginAt,
		},
	}
}

func sessionLanguage(raw string) domain.LanguageCode {
	lang := domain.LanguageCode(raw)
	if !lang.IsValid() {
		return domain.LangEnglish
	}
	return lang
}
