package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultAnthropicModel is used when no model is configured for the anthropic provider.
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	// The Messages API requires max_tokens; math answers are short.
	defaultAnthropicMaxTokens = 1024
)

var errNoAnthropicMessages = errors.New("anthropic: request has no user or assistant message")

// AnthropicClient answers completions through the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates a client for modelName, or DefaultAnthropicModel.
func NewAnthropicClient(apiKey, modelName string) (Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, fmt.Errorf("anthropic client: %w", ErrMissingAPIKey)
	}
	model := strings.TrimSpace(modelName)
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		model:  model,
	}, nil
}

func (c *AnthropicClient) GetModelName() string {
	return c.model
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CompleteWithRequest(ctx, &CompletionRequest{
		Messages: []*Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *AnthropicClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	params, err := anthropicParams(c.model, req)
	if err != nil {
		return nil, err
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion failed: %w", err)
	}
	return &CompletionResponse{
		Content:    anthropicText(msg.Content),
		StopReason: string(msg.StopReason),
	}, nil
}

// Stream forwards text deltas only; tool and thinking deltas never occur
// because the request carries no tools.
func (c *AnthropicClient) Stream(ctx context.Context, req *CompletionRequest, callback func(chunk string) error) error {
	params, err := anthropicParams(c.model, req)
	if err != nil {
		return err
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		if event.Type != "content_block_delta" || event.Delta.Type != "text_delta" {
			continue
		}
		if err := callback(event.Delta.Text); err != nil {
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream failed: %w", err)
	}
	return nil
}

// anthropicParams maps a request onto the Messages API. System messages are
// merged into the top-level system prompt, which the API keeps apart from
// the conversation.
func anthropicParams(model string, req *CompletionRequest) (anthropic.MessageNewParams, error) {
	system, turns := splitAnthropicTurns(req.SystemPrompt, req.Messages)
	if len(turns) == 0 {
		return anthropic.MessageNewParams{}, errNoAnthropicMessages
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	return params, nil
}

func splitAnthropicTurns(systemPrompt string, messages []*Message) (string, []anthropic.MessageParam) {
	var system []string
	if s := strings.TrimSpace(systemPrompt); s != "" {
		system = append(system, s)
	}

	turns := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}
		switch normalizeRole(msg.Role) {
		case RoleSystem:
			system = append(system, text)
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}

func anthropicText(blocks []anthropic.ContentBlockUnion) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}
