package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/dto"
	"github.com/echoprep/echoprep_backend/internal/metrics"
	"github.com/echoprep/echoprep_backend/internal/utils/aijson"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	defaultAITimeout    = 30 * time.Second
	resumeExcerptRunes  = 300
	judgementPromptHead = "You are a senior technical interviewer. Grade the candidate's mock interview below.\n" +
		"Respond with ONLY a valid JSON object, no markdown, using exactly these keys:\n" +
		`{"overallScore": 0-100 integer, "technicalScore": 0-100 integer, "communicationScore": 0-100 integer, ` +
		`"summary": string, "strengths": [string], "improvements": [string], "actions": [string]}`
)

// interviewService drives the interview lifecycle: start, append, end-and-grade.
type interviewService struct {
	BaseService
	repo      portsrepo.InterviewRepositoryFacade
	ai        external.AIClient
	aiTimeout time.Duration
	now       func() time.Time
}

// InterviewServiceOption is a functional option for configuring the interview service
type InterviewServiceOption func(*interviewService)

// WithAITimeout bounds each AI call made by the pipeline.
func WithAITimeout(d time.Duration) InterviewServiceOption {
	return func(s *interviewService) {
		if d > 0 {
			s.aiTimeout = d
		}
	}
}

// WithInterviewClock overrides the time source, for tests.
func WithInterviewClock(now func() time.Time) InterviewServiceOption {
	return func(s *interviewService) {
		s.now = now
	}
}

// NewInterviewService creates a new interview service with the provided options
func NewInterviewService(repo portsrepo.InterviewRepositoryFacade, ai external.AIClient, options ...InterviewServiceOption) portssvc.InterviewSvcFacade {
	svc := &interviewService{
		repo:      repo,
		ai:        ai,
		aiTimeout: defaultAITimeout,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.InterviewSvcFacade = (*interviewService)(nil)

func (s *interviewService) StartInterview(ctx context.Context, userID string, req dto.StartInterviewRequest) (*domain.Interview, error) {
	jobRole := strings.TrimSpace(req.JobRole)
	if jobRole == "" {
		return nil, apperrors.NewBadRequestError("Job Role is required")
	}
	difficulty := strings.TrimSpace(req.Difficulty)
	if difficulty == "" {
		difficulty = domain.DefaultDifficulty
	}
	techStack := req.TechStack
	if techStack == nil {
		techStack = []string{}
	}

	now := s.now()
	interview := domain.Interview{
		InterviewID:  uuid.NewString(),
		UserID:       userID,
		JobRole:      jobRole,
		TechStack:    techStack,
		Difficulty:   difficulty,
		Status:       domain.InterviewCreated,
		Conversation: domain.OpeningTurns(jobRole),
		Feedback:     domain.PendingFeedback(),
		AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if err := s.repo.SaveInterview(ctx, interview); err != nil {
		s.LogError(ctx, err, "Failed to save interview", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to save interview: %w", err)
	}
	s.LogInfo(ctx, "Interview started", slog.String("interview_id", interview.InterviewID), slog.String("job_role", jobRole))
	return &interview, nil
}

func (s *interviewService) GetInterview(ctx context.Context, userID, interviewID string) (*domain.Interview, error) {
	interview, err := s.repo.FindInterviewByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Interview not found")
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	if !interview.IsOwnedBy(userID) {
		return nil, apperrors.NewNotFoundError("Interview not found")
	}
	return interview, nil
}

func (s *interviewService) ListInterviews(ctx context.Context, userID string, params dto.ListInterviewsParams) (*dto.ListInterviewsResponse, error) {
	interviews, nextToken, err := s.repo.ListInterviewsByUser(ctx, userID, params.Limit, params.NextToken)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	if interviews == nil {
		interviews = []domain.Interview{}
	}
	return &dto.ListInterviewsResponse{Interviews: interviews, NextToken: nextToken}, nil
}

func (s *interviewService) AppendMessage(ctx context.Context, userID, interviewID string, req dto.AppendMessageRequest) (*domain.Interview, error) {
	interview, err := s.ownedOpenInterview(ctx, userID, interviewID)
	if err != nil {
		return nil, err
	}
	// Empty content is stored as sent.
	if !req.Role.Valid() {
		return nil, apperrors.NewBadRequestError("Invalid role")
	}

	turn := domain.Turn{Role: req.Role, Content: req.Content}
	turns := []domain.Turn{turn}
	if req.Role == domain.RoleUser {
		history := make([]domain.Turn, 0, len(interview.Conversation)+1)
		history = append(history, interview.Conversation...)
		history = append(history, turn)
		turns = append(turns, domain.Turn{Role: domain.RoleAssistant, Content: s.reply(ctx, interview, history)})
	}

	updated, err := s.repo.AppendTurns(ctx, interviewID, turns, s.now())
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Ended between the ownership check and the write.
			return nil, apperrors.NewBadRequestError("Interview has already ended")
		}
		s.LogError(ctx, err, "Failed to append turns", slog.String("interview_id", interviewID))
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return updated, nil
}

// reply asks the AI for the interviewer's next turn and degrades to a fixed line on any failure.
func (s *interviewService) reply(ctx context.Context, interview *domain.Interview, history []domain.Turn) string {
	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	text, err := s.ai.GenerateReply(aiCtx, history, external.ReplyContext{
		JobRole:    interview.JobRole,
		TechStack:  interview.TechStack,
		Difficulty: interview.Difficulty,
	})
	if err == nil && strings.TrimSpace(text) != "" {
		return strings.TrimSpace(text)
	}
	if err == nil {
		err = errors.New("empty reply")
	}
	metrics.RecordFallback(metrics.OperationReply, metrics.ReasonUnavailable)
	s.LogWarn(ctx, err, "AI reply unavailable, using fallback turn", slog.String("interview_id", interview.InterviewID))
	return domain.FallbackReply
}

func (s *interviewService) ownedOpenInterview(ctx context.Context, userID, interviewID string) (*domain.Interview, error) {
	interview, err := s.repo.FindInterviewByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Interview not found")
		}
		return nil, fmt.Errorf("failed to get interview: %w", err)
	}
	if !interview.IsOwnedBy(userID) {
		return nil, apperrors.NewForbiddenError("You are not authorized to update this interview")
	}
	if interview.Ended() {
		return nil, apperrors.NewBadRequestError("Interview has already ended")
	}
	return interview, nil
}

func (s *interviewService) EndInterview(ctx context.Context, userID string, req dto.EndInterviewRequest) (*portssvc.EndInterviewResult, error) {
	var existing *domain.Interview
	if req.InterviewID != "" {
		found, err := s.repo.FindInterviewByID(ctx, req.InterviewID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError("Interview not found")
			}
			return nil, fmt.Errorf("failed to get interview: %w", err)
		}
		if !found.IsOwnedBy(userID) {
			return nil, apperrors.NewForbiddenError("You are not authorized to update this interview")
		}
		if found.Ended() {
			return storedResult(found), nil
		}
		existing = found
	}

	// An empty transcript finalizing a live session grades what was appended to it.
	conversation := req.Transcript.Normalize()
	persisted := conversation
	if len(req.Transcript) == 0 && existing != nil {
		if stored, ok := domain.GradableTurns(existing.Conversation); ok {
			conversation = stored
			persisted = existing.Conversation
		}
	}

	judgement := s.grade(ctx, req.ResumeText, conversation)
	feedback := judgement.ToFeedback()

	jobRole := strings.TrimSpace(req.JobRole)
	if jobRole == "" && existing != nil {
		jobRole = existing.JobRole
	}
	if jobRole == "" {
		jobRole = domain.DefaultJobRole
	}

	now := s.now()
	var (
		saved *domain.Interview
		err   error
	)
	if existing != nil {
		saved, err = s.repo.FinalizeInterview(ctx, existing.InterviewID, persisted, feedback, now)
		if errors.Is(err, apperrors.ErrNotFound) {
			if current, ferr := s.repo.FindInterviewByID(ctx, existing.InterviewID); ferr == nil && current.Ended() {
				return storedResult(current), nil
			}
		}
	} else {
		record := domain.Interview{
			InterviewID:  uuid.NewString(),
			UserID:       userID,
			JobRole:      jobRole,
			TechStack:    []string{},
			Difficulty:   domain.DefaultDifficulty,
			Status:       domain.InterviewEnded,
			Conversation: conversation,
			Feedback:     feedback,
			AuditFields:  domain.AuditFields{CreatedAt: now, UpdatedAt: now},
		}
		err = s.repo.SaveInterview(ctx, record)
		saved = &record
	}

	if err != nil {
		metrics.InterviewPersistFailures.Inc()
		s.LogError(ctx, err, "Interview persistence failed, returning unsaved feedback", slog.String("user_id", userID))
		return &portssvc.EndInterviewResult{Feedback: judgement, Saved: false}, nil
	}

	s.LogInfo(ctx, "Interview graded", slog.String("interview_id", saved.InterviewID), slog.Int("overall_score", feedback.OverallScore))
	return &portssvc.EndInterviewResult{Feedback: judgement, InterviewID: saved.InterviewID, Saved: true}, nil
}

// grade never fails: every collaborator problem resolves to a well-formed default judgement.
func (s *interviewService) grade(ctx context.Context, resumeText string, conversation []domain.Turn) domain.Judgement {
	prompt, err := buildJudgementPrompt(resumeText, conversation)
	if err != nil {
		s.LogError(ctx, err, "Failed to build judgement prompt")
		return domain.UnavailableJudgement()
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	raw, err := s.ai.GenerateJudgement(aiCtx, prompt)
	if err != nil {
		metrics.RecordFallback(metrics.OperationJudgement, metrics.ReasonUnavailable)
		s.LogWarn(ctx, err, "AI judgement unavailable, using default feedback")
		return domain.UnavailableJudgement()
	}

	res := aijson.Decode(raw, domain.DefaultJudgement())
	if !res.OK() {
		metrics.RecordFallback(metrics.OperationJudgement, res.Outcome.String())
		s.LogWarn(ctx, res.Err, "AI judgement unavailable, using default feedback", slog.String("outcome", res.Outcome.String()))
		return domain.UnavailableJudgement()
	}
	return res.Value.Normalized()
}

func storedResult(interview *domain.Interview) *portssvc.EndInterviewResult {
	return &portssvc.EndInterviewResult{
		Feedback:    domain.JudgementFromFeedback(interview.Feedback),
		InterviewID: interview.InterviewID,
		Saved:       true,
	}
}

func buildJudgementPrompt(resumeText string, conversation []domain.Turn) (string, error) {
	transcript, err := json.Marshal(conversation)
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	excerpt := truncateRunes(strings.TrimSpace(resumeText), resumeExcerptRunes)
	if excerpt == "" {
		excerpt = "N/A"
	}

	var b strings.Builder
	b.WriteString(judgementPromptHead)
	b.WriteString("\n\nRESUME EXCERPT:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nTRANSCRIPT (JSON):\n")
	b.Write(transcript)
	return b.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
