package services

import (
	"context"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/dto"
)

// EndInterviewResult is the outcome of grading a session.
// Feedback is the judgement as the AI produced it (or its fallback); Saved is false when persistence failed.
type EndInterviewResult struct {
	Feedback    domain.Judgement
	InterviewID string
	Saved       bool
}

// InterviewReaderSvc defines read operations on interviews
type InterviewReaderSvc interface {
	// GetInterview returns an interview owned by userID. Other users' interviews are reported as not found.
	GetInterview(ctx context.Context, userID, interviewID string) (*domain.Interview, error)

	// ListInterviews returns a page of the user's interviews, newest first.
	ListInterviews(ctx context.Context, userID string, params dto.ListInterviewsParams) (*dto.ListInterviewsResponse, error)
}

// InterviewPipelineSvc drives the session lifecycle
type InterviewPipelineSvc interface {
	// StartInterview creates a session seeded with the system framing and the greeting.
	StartInterview(ctx context.Context, userID string, req dto.StartInterviewRequest) (*domain.Interview, error)

	// AppendMessage appends a turn and, for user turns, the interviewer's reply or a fixed fallback.
	AppendMessage(ctx context.Context, userID, interviewID string, req dto.AppendMessageRequest) (*domain.Interview, error)

	// EndInterview normalizes the transcript, grades it and persists the result.
	// Collaborator and store failures degrade to defaults and never surface as errors.
	EndInterview(ctx context.Context, userID string, req dto.EndInterviewRequest) (*EndInterviewResult, error)
}

// InterviewSvcFacade combines all interview service interfaces
type InterviewSvcFacade interface {
	InterviewReaderSvc
	InterviewPipelineSvc
}
