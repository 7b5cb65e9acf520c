// Package provider resolves AI provider settings (name, key, model, rate
// limits) into a ready-to-use llm.Client.
package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/codefionn/gencalc/internal/llm"
	"github.com/codefionn/gencalc/internal/logger"
)

// Name is a canonical provider name.
type Name string

const (
	Google    Name = "google"
	Anthropic Name = "anthropic"
	OpenAI    Name = "openai"
)

// Names lists the supported providers.
func Names() []Name {
	return []Name{Google, Anthropic, OpenAI}
}

// Canonical normalizes provider aliases. An empty name selects Google.
func Canonical(name string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "google", "googleai", "gemini":
		return Google, nil
	case "anthropic", "claude":
		return Anthropic, nil
	case "openai":
		return OpenAI, nil
	default:
		return "", fmt.Errorf("unknown AI provider %q", name)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(name Name) string {
	switch name {
	case Anthropic:
		return llm.DefaultAnthropicModel
	case OpenAI:
		return llm.DefaultOpenAIModel
	default:
		return llm.DefaultGoogleModel
	}
}

// RateLimitConfig controls how quickly requests are sent to a provider.
type RateLimitConfig struct {
	// RequestsPerMinute enforces a ceiling on request throughput.
	// If both fields are set, the slower effective interval wins.
	RequestsPerMinute int `json:"requests_per_minute,omitempty"`
	// MinIntervalMillis enforces a fixed delay between the start of each request.
	MinIntervalMillis int `json:"min_interval_ms,omitempty"`
	// TokensPerMinute limits how many prompt tokens are sent per minute.
	TokensPerMinute int `json:"tokens_per_minute,omitempty"`
}

// Interval returns the effective minimum spacing between requests.
func (r *RateLimitConfig) Interval() time.Duration {
	if r == nil {
		return 0
	}

	var interval time.Duration
	if r.MinIntervalMillis > 0 {
		interval = time.Duration(r.MinIntervalMillis) * time.Millisecond
	}
	if rpm := llm.IntervalForRequestsPerMinute(r.RequestsPerMinute); rpm > interval {
		interval = rpm
	}
	return interval
}

func (r *RateLimitConfig) tokensPerMinute() int {
	if r == nil {
		return 0
	}
	return r.TokensPerMinute
}

// Settings selects and configures a provider.
type Settings struct {
	Provider  string
	APIKey    string
	Model     string
	RateLimit *RateLimitConfig
}

// constructors is swapped in tests.
var constructors = map[Name]func(apiKey, model string) (llm.Client, error){
	Google:    llm.NewGoogleAIClient,
	Anthropic: llm.NewAnthropicClient,
	OpenAI:    llm.NewOpenAIClient,
}

// NewClient builds a client for the settings. A missing key falls back to the
// provider's environment variables; if none is set the returned error wraps
// llm.ErrMissingAPIKey.
func NewClient(s Settings) (llm.Client, error) {
	name, err := Canonical(s.Provider)
	if err != nil {
		return nil, err
	}

	key := resolveAPIKey(name, s.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%s: %w (set one of %s)", name, llm.ErrMissingAPIKey, strings.Join(providerEnvVars[name], ", "))
	}

	model := strings.TrimSpace(s.Model)
	if model == "" {
		model = DefaultModel(name)
	}

	client, err := constructors[name](key, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", name, err)
	}

	logger.Debug("created %s client for model %s", name, client.GetModelName())
	return llm.NewRateLimitedClient(client, s.RateLimit.Interval(), s.RateLimit.tokensPerMinute()), nil
}
