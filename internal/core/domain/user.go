package domain

import "time"

// AuthProvider records how a user signs in.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User represents a user of the application in the domain.
// Only one refresh token is valid per user at a time: issuing a new one overwrites the stored hash.
type User struct {
	UserID         string       `json:"id"`
	Username       string       `json:"username"`
	Email          string       `json:"email"`
	PasswordHash   *string      `json:"-"` // nil for OAuth-only accounts
	AuthProvider   AuthProvider `json:"authProvider"`
	ProviderUserID *string      `json:"-"`

	RefreshTokenHash       *string    `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`

	AuditFields
}

func (u *User) GetUserID() string   { return u.UserID }
func (u *User) GetUsername() string { return u.Username }
func (u *User) GetEmail() string    { return u.Email }

// Sanitized returns a copy of the user with secret fields cleared.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = nil
	c.RefreshTokenHash = nil
	c.RefreshTokenExpiryTime = nil
	c.ProviderUserID = nil
	return &c
}
