// Package gemini implements the AI collaborator on top of the Gemini generateContent API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/echoprep/echoprep_backend/internal/core/domain"
	"github.com/echoprep/echoprep_backend/internal/core/ports/external"
	"github.com/echoprep/echoprep_backend/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const breakerName = "gemini"

var errEmptyResponse = errors.New("model returned no text")

// Options configure the Gemini client.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	Logger      *slog.Logger
}

// generator issues one generateContent call.
type generator interface {
	generate(ctx context.Context, model string, req *generativelanguage.GenerateContentRequest) (*generativelanguage.GenerateContentResponse, error)
}

type serviceGenerator struct {
	svc *generativelanguage.Service
}

func (g serviceGenerator) generate(ctx context.Context, model string, req *generativelanguage.GenerateContentRequest) (*generativelanguage.GenerateContentResponse, error) {
	return g.svc.Models.GenerateContent(model, req).Context(ctx).Do()
}

// Client calls Gemini through a circuit breaker so a failing upstream is not hammered.
// A tripped breaker fails fast and the pipeline falls back to its defaults.
type Client struct {
	gen         generator
	model       string
	temperature float64
	cb          *gobreaker.CircuitBreaker[string]
	logger      *slog.Logger
}

var _ external.AIClient = (*Client)(nil)

// NewClient returns a Gemini-backed client, or a disabled client when no API key is configured.
func NewClient(ctx context.Context, opts Options) (external.AIClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, AI features will serve fallback responses")
		return Disabled{}, nil
	}

	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini service: %w", err)
	}
	return newClient(serviceGenerator{svc: svc}, opts, logger), nil
}

func newClient(gen generator, opts Options, logger *slog.Logger) *Client {
	model := opts.Model
	if model == "" {
		model = "gemini-flash-latest"
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return &Client{
		gen:         gen,
		model:       model,
		temperature: opts.Temperature,
		cb:          newBreaker(logger),
		logger:      logger,
	}
}

// newBreaker opens after 5 consecutive failures and probes again after 30 seconds.
func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	metrics.AICircuitState.WithLabelValues(breakerName).Set(0)
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("AI circuit breaker state change",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.AICircuitState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return 0
}

// GenerateJudgement asks for a JSON object. The response MIME type is pinned to application/json.
func (c *Client) GenerateJudgement(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{Role: "user", Parts: []*generativelanguage.Part{{Text: prompt}}},
		},
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature:      c.temperature,
			ResponseMimeType: "application/json",
		},
	}
	return c.execute(ctx, metrics.OperationJudgement, req)
}

func (c *Client) GenerateReply(ctx context.Context, history []domain.Turn, rc external.ReplyContext) (string, error) {
	system, contents := toContents(history)
	req := &generativelanguage.GenerateContentRequest{
		SystemInstruction: &generativelanguage.Content{
			Parts: []*generativelanguage.Part{{Text: replyInstruction(rc, system)}},
		},
		Contents: contents,
		GenerationConfig: &generativelanguage.GenerationConfig{
			Temperature: c.temperature,
		},
	}
	return c.execute(ctx, metrics.OperationReply, req)
}

func (c *Client) execute(ctx context.Context, operation string, req *generativelanguage.GenerateContentRequest) (string, error) {
	start := time.Now()
	text, err := c.cb.Execute(func() (string, error) {
		resp, err := c.gen.generate(ctx, c.model, req)
		if err != nil {
			return "", err
		}
		return responseText(resp)
	})
	metrics.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.AIRequests.WithLabelValues(operation, outcome).Inc()
		return "", fmt.Errorf("gemini %s: %w", operation, err)
	}
	metrics.AIRequests.WithLabelValues(operation, "success").Inc()
	return text, nil
}

func responseText(resp *generativelanguage.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyResponse
	}
	return b.String(), nil
}

// toContents maps the conversation onto Gemini roles. System turns are lifted into the system
// instruction, consecutive turns of one role are merged and the history always opens with a user turn.
func toContents(history []domain.Turn) (system []string, contents []*generativelanguage.Content) {
	for _, t := range history {
		if t.Role == domain.RoleSystem {
			system = append(system, t.Content)
			continue
		}
		role := "user"
		if t.Role == domain.RoleAssistant {
			role = "model"
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, &generativelanguage.Part{Text: t.Content})
			continue
		}
		contents = append(contents, &generativelanguage.Content{
			Role:  role,
			Parts: []*generativelanguage.Part{{Text: t.Content}},
		})
	}
	if len(contents) == 0 || contents[0].Role != "user" {
		opener := &generativelanguage.Content{Role: "user", Parts: []*generativelanguage.Part{{Text: "Let's begin the interview."}}}
		contents = append([]*generativelanguage.Content{opener}, contents...)
	}
	return system, contents
}

func replyInstruction(rc external.ReplyContext, system []string) string {
	var b strings.Builder
	jobRole := rc.JobRole
	if jobRole == "" {
		jobRole = domain.DefaultJobRole
	}
	fmt.Fprintf(&b, "You are a professional technical interviewer conducting a mock interview for a %s position.", jobRole)
	if len(rc.TechStack) > 0 {
		fmt.Fprintf(&b, " Focus on: %s.", strings.Join(rc.TechStack, ", "))
	}
	if rc.Difficulty != "" {
		fmt.Fprintf(&b, " Difficulty: %s.", rc.Difficulty)
	}
	b.WriteString(" Ask exactly one question at a time, react briefly to the candidate's last answer and keep replies under 80 words.")
	for _, s := range system {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// Disabled is the AI client used without credentials. Every call fails with ErrAIDisabled.
type Disabled struct{}

func (Disabled) GenerateJudgement(ctx context.Context, prompt string) (string, error) {
	return "", external.ErrAIDisabled
}

func (Disabled) GenerateReply(ctx context.Context, history []domain.Turn, rc external.ReplyContext) (string, error) {
	return "", external.ErrAIDisabled
}
