package domain

import "time"

// Role determines write permissions. Admin saves are auto-approved.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// GuestID is the sentinel identifier for local-only identities.
// Guests never touch the remote store; their books live on this device
// only.
const GuestID = "guest"

// Identity is the authenticated principal behind an operation.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsGuest reports whether this identity is local-only. All remote store
// calls must short-circuit for guests.
func (i Identity) IsGuest() bool {
	return i.ID == GuestID || i.ID == ""
}

// IsAdmin reports whether the identity may approve books and has its
// own saves auto-approved.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Guest returns the local-only identity with the given display name.
func Guest(name string) Identity {
	if name == "" {
		name = "Explorer"
	}
	return Identity{ID: GuestID, Name: name, Role: RoleUser}
}

// Session carries the per-request context every storage, sync and
// translation call needs: who is acting and which language the UI is
// showing. It is threaded explicitly instead of living in a global.
type Session struct {
	Identity Identity     `json:"identity"`
	Language LanguageCode `json:"language"`
}

// User is a stored account. Guests are never persisted.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// Identity returns the identity value presented to services for this
// account.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Role: u.Role}
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
