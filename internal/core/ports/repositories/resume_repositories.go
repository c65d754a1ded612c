package repositories

import (
	"context"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// ResumeRepositoryFacade defines persistence for graded resumes. Resumes are never updated.
type ResumeRepositoryFacade interface {
	SaveResume(ctx context.Context, resume domain.Resume) error
	ListResumesByUser(ctx context.Context, userID string) ([]domain.Resume, error)
}
