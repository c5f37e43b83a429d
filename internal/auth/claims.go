package auth

import (
	"time"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable
// without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// Identity converts the claims to the domain identity they represent.
func (c *AccessClaims) Identity() domain.Identity {
	return domain.Identity{
		ID:   c.UserID,
		Name: c.Name,
		Role: domain.Role(c.Role),
	}
}
