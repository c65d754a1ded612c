package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	"github.com/echoprep/echoprep_backend/internal/models"
	"github.com/echoprep/echoprep_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var (
	_ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)
	_ portsrepo.TransactionManager   = (*PgxUserRepository)(nil)
)

const (
	selectUserFields = `
		user_id, username, email, password_hash, auth_provider, provider_user_id,
		refresh_token_hash, refresh_token_expiry_time, created_at, updated_at
	`

	insertUserQuery = `
		INSERT INTO users (
			user_id, username, email, password_hash, auth_provider, provider_user_id,
			refresh_token_hash, refresh_token_expiry_time, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	findUserByIDQuery       = `SELECT ` + selectUserFields + ` FROM users WHERE user_id = $1`
	findUserByEmailQuery    = `SELECT ` + selectUserFields + ` FROM users WHERE lower(email) = lower($1)`
	findUserByUsernameQuery = `SELECT ` + selectUserFields + ` FROM users WHERE username = $1`

	updateRefreshTokenQuery = `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expiry_time = $3, updated_at = NOW()
		WHERE user_id = $1
	`

	clearRefreshTokenQuery = `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL, updated_at = NOW()
		WHERE user_id = $1
	`
)

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Username,
		&m.Email,
		&m.PasswordHash,
		&m.AuthProvider,
		&m.ProviderUserID,
		&m.RefreshTokenHash,
		&m.RefreshTokenExpiryTime,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, query, arg string) (*domain.User, error) {
	m, err := scanUser(r.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	d := mapping.ToDomainUser(*m)
	return &d, nil
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	_, err := r.Pool.Exec(ctx, insertUserQuery,
		m.UserID,
		m.Username,
		m.Email,
		m.PasswordHash,
		m.AuthProvider,
		m.ProviderUserID,
		m.RefreshTokenHash,
		m.RefreshTokenExpiryTime,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, findUserByIDQuery, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, findUserByEmailQuery, email)
}

func (r *PgxUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, findUserByUsernameQuery, username)
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, updateRefreshTokenQuery, userID, refreshTokenHash, refreshTokenExpiryTime)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	cmdTag, err := r.Pool.Exec(ctx, clearRefreshTokenQuery, userID)
	if err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	return nil
}

// DeleteUserCascade removes the user's interviews and resumes before the user row, in one transaction.
func (r *PgxUserRepository) DeleteUserCascade(ctx context.Context, userID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM interviews WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete interviews: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM resumes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete resumes: %w", err)
	}
	cmdTag, err := tx.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return r.Commit(ctx, tx)
}
