package repositories

import (
	"context"
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// InterviewReader defines read operations for interviews
type InterviewReader interface {
	// FindInterviewByID retrieves an interview regardless of owner. Ownership is checked by the caller.
	FindInterviewByID(ctx context.Context, interviewID string) (*domain.Interview, error)

	// ListInterviewsByUser returns a page of the user's interviews, newest first, and the token of the next page.
	// A limit of zero or less returns every remaining interview. A malformed nextToken fails with a BadRequest AppError.
	ListInterviewsByUser(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.Interview, *string, error)
}

// InterviewWriter defines write operations for interviews
type InterviewWriter interface {
	// SaveInterview inserts a new interview.
	SaveInterview(ctx context.Context, interview domain.Interview) error

	// AppendTurns atomically appends turns to an interview that has not ended and moves it to in_progress.
	// Returns apperrors.ErrNotFound when no open interview with that ID exists.
	AppendTurns(ctx context.Context, interviewID string, turns []domain.Turn, updatedAt time.Time) (*domain.Interview, error)

	// FinalizeInterview replaces the conversation, sets the feedback and marks the interview ended.
	// Returns apperrors.ErrNotFound when no open interview with that ID exists.
	FinalizeInterview(ctx context.Context, interviewID string, conversation []domain.Turn, feedback domain.Feedback, updatedAt time.Time) (*domain.Interview, error)
}

// InterviewRepositoryFacade combines all interview repository interfaces
type InterviewRepositoryFacade interface {
	InterviewReader
	InterviewWriter
}
