package domain

import (
	"encoding/json"
	"fmt"
)

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the stored roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Turn is one role-tagged message of an interview conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// InterviewStatus is the lifecycle state of an interview. ended is terminal.
type InterviewStatus string

const (
	InterviewCreated    InterviewStatus = "created"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewEnded      InterviewStatus = "ended"
)

const (
	DefaultJobRole    = "Technical Interview"
	DefaultDifficulty = "Medium"

	// FallbackReply is appended when the chat collaborator cannot produce a reply.
	FallbackReply = "I'm having trouble processing that. Could you repeat?"
	// PlaceholderTurn stands in for an empty transcript.
	PlaceholderTurn = "Session started"
)

// Feedback is the persisted grading sub-record. Numeric fields are always set once ended.
type Feedback struct {
	OverallScore       int      `json:"overallScore"`
	TechnicalScore     int      `json:"technicalScore"`
	CommunicationScore int      `json:"communicationScore"`
	Rating             int      `json:"rating"`
	Comments           string   `json:"comments"`
	Strengths          []string `json:"strengths"`
	Improvements       []string `json:"improvements"`
	Actions            []string `json:"actions"`
}

// PendingFeedback is the feedback of an interview that has not been graded yet.
func PendingFeedback() Feedback {
	return Feedback{
		Comments:     "Analysis pending",
		Strengths:    []string{},
		Improvements: []string{},
		Actions:      []string{},
	}
}

// Interview is a mock interview session owned by exactly one user.
type Interview struct {
	InterviewID  string          `json:"id"`
	UserID       string          `json:"user"`
	JobRole      string          `json:"jobRole"`
	TechStack    []string        `json:"techStack"`
	Difficulty   string          `json:"difficulty"`
	Status       InterviewStatus `json:"status"`
	Conversation []Turn          `json:"conversation"`
	Feedback     Feedback        `json:"feedback"`
	AuditFields
}

// MarshalJSON also emits the id as "_id", which history clients key their cards on.
func (i Interview) MarshalJSON() ([]byte, error) {
	type plain Interview
	return json.Marshal(struct {
		plain
		LegacyID string `json:"_id"`
	}{plain: plain(i), LegacyID: i.InterviewID})
}

// IsOwnedBy reports whether userID owns the interview.
func (i *Interview) IsOwnedBy(userID string) bool {
	return i.UserID == userID
}

// Ended reports whether the interview reached its terminal state.
func (i *Interview) Ended() bool {
	return i.Status == InterviewEnded
}

// OpeningTurns seeds a new conversation with the system framing and the greeting.
func OpeningTurns(jobRole string) []Turn {
	return []Turn{
		{Role: RoleSystem, Content: fmt.Sprintf("You are an interviewer for a %s position.", jobRole)},
		{Role: RoleAssistant, Content: fmt.Sprintf("Hello! I see you are applying for the %s role. Are you ready to begin?", jobRole)},
	}
}
