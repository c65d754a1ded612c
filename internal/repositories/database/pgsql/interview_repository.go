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
	"github.com/echoprep/echoprep_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInterviewRepository struct {
	BaseRepository
}

func newPgxInterviewRepository(db *pgxpool.Pool) portsrepo.InterviewRepositoryFacade {
	return &PgxInterviewRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.InterviewRepositoryFacade = (*PgxInterviewRepository)(nil)

const (
	selectInterviewFields = `
		interview_id, user_id, job_role, tech_stack, difficulty, status,
		conversation, feedback, created_at, updated_at
	`

	insertInterviewQuery = `
		INSERT INTO interviews (
			interview_id, user_id, job_role, tech_stack, difficulty, status,
			conversation, feedback, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	findInterviewByIDQuery = `SELECT ` + selectInterviewFields + ` FROM interviews WHERE interview_id = $1`

	listInterviewsByUserQuery = `
		SELECT ` + selectInterviewFields + `
		FROM interviews
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR (created_at, interview_id) < ($2, $3))
		ORDER BY created_at DESC, interview_id DESC
		LIMIT $4
	`

	// A single statement keeps concurrent appends from overwriting each other.
	appendTurnsQuery = `
		UPDATE interviews
		SET conversation = conversation || $2::jsonb, status = 'in_progress', updated_at = $3
		WHERE interview_id = $1 AND status <> 'ended'
		RETURNING ` + selectInterviewFields

	finalizeInterviewQuery = `
		UPDATE interviews
		SET conversation = $2::jsonb, feedback = $3::jsonb, status = 'ended', updated_at = $4
		WHERE interview_id = $1 AND status <> 'ended'
		RETURNING ` + selectInterviewFields
)

func scanInterview(row pgx.Row) (*models.Interview, error) {
	var m models.Interview
	err := row.Scan(
		&m.InterviewID,
		&m.UserID,
		&m.JobRole,
		&m.TechStack,
		&m.Difficulty,
		&m.Status,
		&m.Conversation,
		&m.Feedback,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxInterviewRepository) SaveInterview(ctx context.Context, interview domain.Interview) error {
	m := mapping.ToModelInterview(interview)
	_, err := r.Pool.Exec(ctx, insertInterviewQuery,
		m.InterviewID,
		m.UserID,
		m.JobRole,
		m.TechStack,
		m.Difficulty,
		m.Status,
		m.Conversation,
		m.Feedback,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save interview: %w", err)
	}
	return nil
}

func (r *PgxInterviewRepository) FindInterviewByID(ctx context.Context, interviewID string) (*domain.Interview, error) {
	return r.updateOrFind(ctx, findInterviewByIDQuery, interviewID)
}

// ListInterviewsByUser uses keyset pagination on (created_at, interview_id).
// One extra row is fetched to learn whether a next page exists.
func (r *PgxInterviewRepository) ListInterviewsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Interview, *string, error) {
	var cursorCreatedAt *time.Time
	var cursorID string
	if nextToken != nil && *nextToken != "" {
		createdAt, id, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewBadRequestError("invalid nextToken")
		}
		cursorCreatedAt, cursorID = &createdAt, id
	}

	// NULL means no limit in Postgres
	var fetchLimit *int
	if limit > 0 {
		n := limit + 1
		fetchLimit = &n
	}

	rows, err := r.Pool.Query(ctx, listInterviewsByUserQuery, userID, cursorCreatedAt, cursorID, fetchLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query interviews: %w", err)
	}
	defer rows.Close()

	ms := []models.Interview{}
	for rows.Next() {
		m, err := scanInterview(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan interview row: %w", err)
		}
		ms = append(ms, *m)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating interview rows: %w", rows.Err())
	}

	var nextTokenVal *string
	if limit > 0 && len(ms) > limit {
		last := ms[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.InterviewID)
		nextTokenVal = &token
		ms = ms[:limit]
	}
	return mapping.ToDomainInterviewSlice(ms), nextTokenVal, nil
}

func (r *PgxInterviewRepository) AppendTurns(ctx context.Context, interviewID string, turns []domain.Turn, updatedAt time.Time) (*domain.Interview, error) {
	return r.updateOrFind(ctx, appendTurnsQuery, interviewID, mapping.ToModelTurns(turns), updatedAt)
}

func (r *PgxInterviewRepository) FinalizeInterview(ctx context.Context, interviewID string, conversation []domain.Turn, feedback domain.Feedback, updatedAt time.Time) (*domain.Interview, error) {
	return r.updateOrFind(ctx, finalizeInterviewQuery, interviewID,
		mapping.ToModelTurns(conversation), mapping.ToModelFeedback(feedback), updatedAt)
}

// updateOrFind runs a statement returning one interview row. No row means not found, or not open for writes.
func (r *PgxInterviewRepository) updateOrFind(ctx context.Context, query string, args ...any) (*domain.Interview, error) {
	m, err := scanInterview(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("interview query failed: %w", err)
	}
	d := mapping.ToDomainInterview(*m)
	return &d, nil
}
