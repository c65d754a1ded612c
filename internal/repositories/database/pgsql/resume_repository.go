package pgsql

import (
	"context"
	"fmt"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	"github.com/echoprep/echoprep_backend/internal/models"
	"github.com/echoprep/echoprep_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxResumeRepository struct {
	BaseRepository
}

func newPgxResumeRepository(db *pgxpool.Pool) portsrepo.ResumeRepositoryFacade {
	return &PgxResumeRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ResumeRepositoryFacade = (*PgxResumeRepository)(nil)

const (
	insertResumeQuery = `
		INSERT INTO resumes (
			resume_id, user_id, original_name, stored_name, ats_score, feedback, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	listResumesByUserQuery = `
		SELECT resume_id, user_id, original_name, stored_name, ats_score, feedback, created_at, updated_at
		FROM resumes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
)

func (r *PgxResumeRepository) SaveResume(ctx context.Context, resume domain.Resume) error {
	m := mapping.ToModelResume(resume)
	_, err := r.Pool.Exec(ctx, insertResumeQuery,
		m.ResumeID,
		m.UserID,
		m.OriginalName,
		m.StoredName,
		m.ATSScore,
		m.Feedback,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save resume: %w", err)
	}
	return nil
}

func (r *PgxResumeRepository) ListResumesByUser(ctx context.Context, userID string) ([]domain.Resume, error) {
	rows, err := r.Pool.Query(ctx, listResumesByUserQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resumes: %w", err)
	}
	defer rows.Close()

	ms := []models.Resume{}
	for rows.Next() {
		var m models.Resume
		if err := rows.Scan(&m.ResumeID, &m.UserID, &m.OriginalName, &m.StoredName, &m.ATSScore, &m.Feedback, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan resume row: %w", err)
		}
		ms = append(ms, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating resume rows: %w", rows.Err())
	}
	return mapping.ToDomainResumeSlice(ms), nil
}
