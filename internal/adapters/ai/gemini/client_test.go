package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
)

type fakeGenerator struct {
	calls int
	model string
	last  *generativelanguage.GenerateContentRequest
	text  string
	err   error
}

func (f *fakeGenerator) generate(ctx context.Context, model string, req *generativelanguage.GenerateContentRequest) (*generativelanguage.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &generativelanguage.GenerateContentResponse{
		Candidates: []*generativelanguage.Candidate{{
			Content: &generativelanguage.Content{Parts: []*generativelanguage.Part{{Text: f.text}}},
		}},
	}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateJudgementRequestsJSON(t *testing.T) {
	gen := &fakeGenerator{text: `{"overallScore":80}`}
	c := newClient(gen, Options{Model: "gemini-flash-latest", Temperature: 0.2}, quietLogger())

	out, err := c.GenerateJudgement(context.Background(), "grade this")

	require.NoError(t, err)
	assert.Equal(t, `{"overallScore":80}`, out)
	assert.Equal(t, "models/gemini-flash-latest", gen.model)
	assert.Equal(t, "application/json", gen.last.GenerationConfig.ResponseMimeType)
	assert.Equal(t, "grade this", gen.last.Contents[0].Parts[0].Text)
}

func TestGenerateReplyMapsRoles(t *testing.T) {
	gen := &fakeGenerator{text: "What is an index?"}
	c := newClient(gen, Options{}, quietLogger())
	history := append(domain.OpeningTurns("Backend Engineer"), domain.Turn{Role: domain.RoleUser, Content: "I know SQL"})

	out, err := c.GenerateReply(context.Background(), history, external.ReplyContext{JobRole: "Backend Engineer", TechStack: []string{"Go", "SQL"}})

	require.NoError(t, err)
	assert.Equal(t, "What is an index?", out)
	require.Len(t, gen.last.Contents, 3)
	assert.Equal(t, "user", gen.last.Contents[0].Role)
	assert.Equal(t, "model", gen.last.Contents[1].Role)
	assert.Equal(t, "user", gen.last.Contents[2].Role)
	assert.Contains(t, gen.last.SystemInstruction.Parts[0].Text, "Go, SQL")
	assert.Contains(t, gen.last.SystemInstruction.Parts[0].Text, "You are an interviewer for a Backend Engineer position.")
}

func TestEmptyResponseIsError(t *testing.T) {
	c := newClient(&fakeGenerator{text: "   "}, Options{}, quietLogger())
	_, err := c.GenerateJudgement(context.Background(), "p")
	assert.ErrorIs(t, err, errEmptyResponse)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("503 unavailable")}
	c := newClient(gen, Options{}, quietLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.GenerateJudgement(ctx, "p")
		require.Error(t, err)
	}
	_, err := c.GenerateJudgement(ctx, "p")

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, gen.calls)
}

func TestDisabledClient(t *testing.T) {
	c, err := NewClient(context.Background(), Options{Logger: quietLogger()})
	require.NoError(t, err)

	_, err = c.GenerateJudgement(context.Background(), "p")
	assert.ErrorIs(t, err, external.ErrAIDisabled)
	_, err = c.GenerateReply(context.Background(), nil, external.ReplyContext{})
	assert.ErrorIs(t, err, external.ErrAIDisabled)
}
