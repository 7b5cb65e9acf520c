// Package assistant answers natural-language math questions through an LLM.
// Failures never surface as Go errors; they become chat text the user sees.
package assistant

import (
	"context"
	"strings"

	"github.com/codefionn/gencalc/internal/llm"
	"github.com/codefionn/gencalc/internal/logger"
)

// SystemInstruction steers the model towards concise, Markdown-formatted math answers.
const SystemInstruction = `You are an expert mathematical assistant.
Your goal is to solve math problems provided by the user.

Rules:
1. If the input is a direct math expression (e.g., "5 + 5"), return ONLY the numeric result or the simplified expression.
2. If the input is a word problem (e.g., "Volume of a sphere with radius 5"), provide the formula used, the step-by-step substitution, and the final result.
3. Keep explanations concise.
4. Use Markdown for formatting (e.g., bold for the final answer).
5. If the request is not math-related, politely decline.`

const (
	// DefaultTemperature keeps answers close to deterministic.
	DefaultTemperature = 0.1

	// EmptyReplyText is shown when the model returns no text.
	EmptyReplyText = "Could not generate a response."
	// UnavailableText is shown for any transport, auth or configuration failure.
	UnavailableText = "Error: Unable to connect to AI service. Please check your API key."
)

// Reply is the user-visible outcome of a query.
type Reply struct {
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

// Solver sends math questions to an LLM.
type Solver struct {
	client      llm.Client
	unavailable error
	temperature float64
	maxTokens   int
	log         *logger.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float64) Option {
	return func(s *Solver) {
		if t > 0 {
			s.temperature = t
		}
	}
}

// WithMaxTokens caps the reply length. Zero leaves the provider default.
func WithMaxTokens(n int) Option {
	return func(s *Solver) {
		s.maxTokens = n
	}
}

// New creates a Solver backed by client.
func New(client llm.Client, opts ...Option) *Solver {
	s := &Solver{
		client:      client,
		temperature: DefaultTemperature,
		log:         logger.Global().WithPrefix("assistant"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Unavailable returns a Solver that answers every query with UnavailableText.
// It is used when no client could be built, for example without an API key.
func Unavailable(cause error) *Solver {
	s := New(nil)
	s.unavailable = cause
	return s
}

// Available reports whether the solver has a working client.
func (s *Solver) Available() bool {
	return s.client != nil && s.unavailable == nil
}

// Model returns the model name, or "" when unavailable.
func (s *Solver) Model() string {
	if !s.Available() {
		return ""
	}
	return s.client.GetModelName()
}

func (s *Solver) request(query string) *llm.CompletionRequest {
	return &llm.CompletionRequest{
		Messages:     []*llm.Message{{Role: llm.RoleUser, Content: query}},
		SystemPrompt: SystemInstruction,
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
	}
}

// Solve sends a single query and waits for the full answer.
func (s *Solver) Solve(ctx context.Context, query string) Reply {
	query = strings.TrimSpace(query)
	if !s.Available() {
		s.log.Warn("solve skipped, assistant unavailable: %v", s.unavailable)
		return Reply{Text: UnavailableText, IsError: true}
	}

	resp, err := s.client.CompleteWithRequest(ctx, s.request(query))
	if err != nil {
		s.log.Error("solve %q failed: %v", query, err)
		return Reply{Text: UnavailableText, IsError: true}
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return Reply{Text: EmptyReplyText}
	}
	return Reply{Text: resp.Content}
}

// Stream sends a query and passes text chunks to onChunk as they arrive.
// The returned Reply holds the full text, or the error text if the stream
// failed. Chunks already delivered before a failure are not retracted.
func (s *Solver) Stream(ctx context.Context, query string, onChunk func(string) error) Reply {
	query = strings.TrimSpace(query)
	if !s.Available() {
		s.log.Warn("stream skipped, assistant unavailable: %v", s.unavailable)
		return Reply{Text: UnavailableText, IsError: true}
	}

	var sb strings.Builder
	err := s.client.Stream(ctx, s.request(query), func(chunk string) error {
		sb.WriteString(chunk)
		if onChunk == nil {
			return nil
		}
		return onChunk(chunk)
	})
	if err != nil {
		s.log.Error("stream %q failed: %v", query, err)
		return Reply{Text: UnavailableText, IsError: true}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return Reply{Text: EmptyReplyText}
	}
	return Reply{Text: sb.String()}
}
