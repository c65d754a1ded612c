package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/echoprep/echoprep_backend/internal/apperrors"
	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	portsrepo "github.com/echoprep/echoprep_backend/internal/core/ports/repositories"
	portssvc "github.com/echoprep/echoprep_backend/internal/core/ports/services"
	"github.com/echoprep/echoprep_backend/internal/metrics"
	"github.com/echoprep/echoprep_backend/internal/utils/aijson"
	"github.com/google/uuid"
	"github.com/rs/xid"
)

const (
	atsExcerptRunes = 2000
	atsTargetRole   = "Software Engineer"
	atsPromptHead   = "You are an Applicant Tracking System (ATS) expert. Analyze the resume below for a %s role.\n" +
		"Respond with ONLY a valid JSON object, no markdown, using exactly these keys:\n" +
		`{"score": 0-100 integer, "status": one of "Excellent", "Good", "Needs Improvement", "Critical", ` +
		`"message": short summary string, "issues": [5 to 7 specific, actionable strings]}`
)

const noFileMessage = "No file uploaded. Make sure the key is 'resume'"

// resumeService parses uploaded resumes and grades them for ATS compatibility.
type resumeService struct {
	BaseService
	repo      portsrepo.ResumeRepositoryFacade
	ai        external.AIClient
	extractor external.TextExtractor
	archive   external.ObjectStore
	aiTimeout time.Duration
	now       func() time.Time
}

// ResumeServiceOption is a functional option for configuring the resume service
type ResumeServiceOption func(*resumeService)

// WithObjectArchive stores every successfully graded upload in archive.
func WithObjectArchive(archive external.ObjectStore) ResumeServiceOption {
	return func(s *resumeService) {
		s.archive = archive
	}
}

// WithATSTimeout bounds the grading call.
func WithATSTimeout(d time.Duration) ResumeServiceOption {
	return func(s *resumeService) {
		if d > 0 {
			s.aiTimeout = d
		}
	}
}

// NewResumeService creates a new resume service with the provided options
func NewResumeService(repo portsrepo.ResumeRepositoryFacade, ai external.AIClient, extractor external.TextExtractor, options ...ResumeServiceOption) portssvc.ResumeSvcFacade {
	svc := &resumeService{
		repo:      repo,
		ai:        ai,
		extractor: extractor,
		aiTimeout: defaultAITimeout,
		now:       time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ResumeSvcFacade = (*resumeService)(nil)

func (s *resumeService) ExtractText(ctx context.Context, file portssvc.UploadedFile) (string, error) {
	if len(file.Data) == 0 {
		return "", apperrors.NewBadRequestError(noFileMessage)
	}
	text, err := s.extractor.ExtractText(ctx, file.Data)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to parse resume", slog.String("file", file.Name))
		return "", apperrors.NewBadRequestError("Failed to parse PDF")
	}
	return text, nil
}

// CheckATSScore always yields a renderable report. Only real grades are stored.
func (s *resumeService) CheckATSScore(ctx context.Context, userID string, file portssvc.UploadedFile) (domain.ATSReport, error) {
	if len(file.Data) == 0 {
		return domain.ATSReport{}, apperrors.NewBadRequestError(noFileMessage)
	}

	report, reason, err := s.grade(ctx, file)
	if err != nil {
		metrics.RecordFallback(metrics.OperationATS, reason)
		s.LogWarn(ctx, err, "ATS analysis failed, using fallback report", slog.String("reason", reason), slog.String("file", file.Name))
		return domain.FallbackATSReport(), nil
	}

	s.record(ctx, userID, file, report)
	return report, nil
}

func (s *resumeService) grade(ctx context.Context, file portssvc.UploadedFile) (domain.ATSReport, string, error) {
	text, err := s.extractor.ExtractText(ctx, file.Data)
	if err != nil {
		return domain.ATSReport{}, metrics.ReasonExtractionError, err
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	raw, err := s.ai.GenerateJudgement(aiCtx, buildATSPrompt(text))
	if err != nil {
		return domain.ATSReport{}, metrics.ReasonUnavailable, err
	}

	res := aijson.Decode(raw, domain.ATSReport{})
	if !res.OK() {
		return domain.ATSReport{}, res.Outcome.String(), res.Err
	}
	return res.Value, "", nil
}

// record persists and archives a graded resume. Failures here never change the response.
func (s *resumeService) record(ctx context.Context, userID string, file portssvc.UploadedFile, report domain.ATSReport) {
	originalName := filepath.Base(file.Name)
	if originalName == "." || originalName == string(filepath.Separator) {
		originalName = "resume.pdf"
	}
	now := s.now()
	resume := domain.Resume{
		ResumeID:     uuid.NewString(),
		UserID:       userID,
		OriginalName: originalName,
		StoredName:   xid.New().String() + "-" + originalName,
		ATSScore:     report.Score.Int(),
		Feedback: domain.ResumeFeedback{
			Status:  report.Status,
			Message: report.Message,
			Issues:  report.Issues,
		},
		AuditFields: domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.SaveResume(ctx, resume); err != nil {
		s.LogError(ctx, err, "Failed to save resume record", slog.String("user_id", userID))
		return
	}

	if s.archive == nil {
		return
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := s.archive.Put(ctx, ResumeArchiveKey(userID, resume.StoredName), file.Data, contentType); err != nil {
		s.LogWarn(ctx, err, "Failed to archive resume", slog.String("resume_id", resume.ResumeID))
	}
}

func buildATSPrompt(resumeText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, atsPromptHead, atsTargetRole)
	b.WriteString("\n\nRESUME:\n")
	b.WriteString(truncateRunes(strings.TrimSpace(resumeText), atsExcerptRunes))
	return b.String()
}
