package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/gencalc/internal/llm"
)

type stubClient struct {
	key   string
	model string
}

func (s *stubClient) CompleteWithRequest(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "ok"}, nil
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "ok", nil
}

func (s *stubClient) Stream(ctx context.Context, req *llm.CompletionRequest, callback func(string) error) error {
	return callback("ok")
}

func (s *stubClient) GetModelName() string {
	return s.model
}

func stubConstructors(t *testing.T) {
	t.Helper()
	saved := constructors
	stub := func(key, model string) (llm.Client, error) {
		return &stubClient{key: key, model: model}, nil
	}
	constructors = map[Name]func(string, string) (llm.Client, error){
		Google:    stub,
		Anthropic: stub,
		OpenAI:    stub,
	}
	t.Cleanup(func() { constructors = saved })
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want Name
	}{
		{"", Google},
		{"Gemini", Google},
		{"googleai", Google},
		{"claude", Anthropic},
		{"ANTHROPIC", Anthropic},
		{"openai", OpenAI},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := Canonical("ollama")
	assert.Error(t, err)
}

func TestNewClientDefaultsModel(t *testing.T) {
	stubConstructors(t)

	client, err := NewClient(Settings{Provider: "google", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, llm.DefaultGoogleModel, client.GetModelName())

	stub, ok := client.(*stubClient)
	require.True(t, ok, "no rate limit configured, expected the bare client")
	assert.Equal(t, "k", stub.key)
}

func TestNewClientUsesEnvironmentKey(t *testing.T) {
	stubConstructors(t)
	t.Setenv("ANTHROPIC_API_KEY", "from-env")

	client, err := NewClient(Settings{Provider: "anthropic", Model: "claude-x"})
	require.NoError(t, err)
	assert.Equal(t, "claude-x", client.GetModelName())
	assert.Equal(t, "from-env", client.(*stubClient).key)
}

func TestNewClientMissingKey(t *testing.T) {
	stubConstructors(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClient(Settings{Provider: "openai"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewClientWrapsRateLimit(t *testing.T) {
	stubConstructors(t)

	client, err := NewClient(Settings{
		Provider:  "google",
		APIKey:    "k",
		RateLimit: &RateLimitConfig{RequestsPerMinute: 60},
	})
	require.NoError(t, err)
	_, isStub := client.(*stubClient)
	assert.False(t, isStub)
	assert.Equal(t, llm.DefaultGoogleModel, client.GetModelName())
}

func TestRateLimitInterval(t *testing.T) {
	var nilCfg *RateLimitConfig
	assert.Equal(t, time.Duration(0), nilCfg.Interval())
	assert.Equal(t, time.Second, (&RateLimitConfig{RequestsPerMinute: 60}).Interval())
	assert.Equal(t, 2*time.Second, (&RateLimitConfig{RequestsPerMinute: 60, MinIntervalMillis: 2000}).Interval())
	assert.Equal(t, time.Second, (&RateLimitConfig{RequestsPerMinute: 60, MinIntervalMillis: 100}).Interval())
}
