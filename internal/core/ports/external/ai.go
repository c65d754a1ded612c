// Package external declares the collaborators the core depends on but does not implement.
package external

import (
	"context"
	"errors"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
)

// ErrAIDisabled is returned by AI clients built without credentials.
var ErrAIDisabled = errors.New("ai client is not configured")

// ReplyContext carries the interview framing for a chat reply.
type ReplyContext struct {
	JobRole    string
	TechStack  []string
	Difficulty string
}

// AIClient is the generative model used for grading and for interviewer replies.
type AIClient interface {
	// GenerateJudgement sends prompt and returns the raw model text, expected to contain a JSON object.
	GenerateJudgement(ctx context.Context, prompt string) (string, error)

	// GenerateReply returns the interviewer's next turn for the given conversation.
	GenerateReply(ctx context.Context, history []domain.Turn, rc ReplyContext) (string, error)
}
