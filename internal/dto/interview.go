package dto

import "github.com/echoprep/echoprep_backend/internal/core/domain"

// StartInterviewRequest is the body of POST /interview/start.
type StartInterviewRequest struct {
	JobRole    string   `json:"jobRole"`
	TechStack  []string `json:"techStack"`
	Difficulty string   `json:"difficulty"`
}

// AppendMessageRequest is the body of POST /interview/:id/message.
type AppendMessageRequest struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// EndInterviewRequest is the body of POST /interview/end.
// InterviewID is optional: when set, that session is finalized instead of creating a new record.
type EndInterviewRequest struct {
	Transcript  domain.Transcript `json:"transcript" swaggertype:"array,object"`
	ResumeText  string            `json:"resumeText"`
	JobRole     string            `json:"jobRole"`
	InterviewID string            `json:"interviewId"`
}

// EndInterviewResponse carries the judgement and, when persisted, the record id.
type EndInterviewResponse struct {
	Feedback    domain.Judgement `json:"feedback"`
	InterviewID string           `json:"interviewId,omitempty"`
	Saved       bool             `json:"saved"`
}

// ListInterviewsParams are the query parameters of GET /interview/history.
// Without a limit the whole history is returned.
type ListInterviewsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListInterviewsResponse is a page of the caller's history, newest first.
// Handlers render Interviews as the response data and NextToken out of band.
type ListInterviewsResponse struct {
	Interviews []domain.Interview
	NextToken  *string
}
