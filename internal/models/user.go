package models

import (
	"database/sql"
)

// User is a row of the users table.
type User struct {
	UserID         string         `db:"user_id"`
	Username       string         `db:"username"`
	Email          string         `db:"email"`
	PasswordHash   sql.NullString `db:"password_hash"`
	AuthProvider   string         `db:"auth_provider"`
	ProviderUserID sql.NullString `db:"provider_user_id"`
	AuditFields

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`        // Store hash of the refresh token
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"` // Expiry of the stored refresh token
}
