package mapping

import (
	"database/sql"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	m := models.User{
		UserID:         d.UserID,
		Username:       d.Username,
		Email:          d.Email,
		PasswordHash:   nullString(d.PasswordHash),
		AuthProvider:   string(d.AuthProvider),
		ProviderUserID: nullString(d.ProviderUserID),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	m.RefreshTokenHash = nullString(d.RefreshTokenHash)
	if d.RefreshTokenExpiryTime != nil {
		m.RefreshTokenExpiryTime = sql.NullTime{Time: *d.RefreshTokenExpiryTime, Valid: true}
	}
	return m
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	d := domain.User{
		UserID:           m.UserID,
		Username:         m.Username,
		Email:            m.Email,
		PasswordHash:     stringPtr(m.PasswordHash),
		AuthProvider:     domain.AuthProvider(m.AuthProvider),
		ProviderUserID:   stringPtr(m.ProviderUserID),
		RefreshTokenHash: stringPtr(m.RefreshTokenHash),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
	if m.RefreshTokenExpiryTime.Valid {
		t := m.RefreshTokenExpiryTime.Time
		d.RefreshTokenExpiryTime = &t
	}
	return d
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
