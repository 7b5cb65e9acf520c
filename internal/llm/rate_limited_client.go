package llm

import (
	"context"
	"sync"
	"time"
)

const (
	// replyTokenReserve is charged for the answer when a request sets no
	// MaxTokens.
	replyTokenReserve = 512
	minPromptTokens   = 8
)

// throttledClient keeps a delegate within a request rate and a token budget.
// Each call books a start time under one lock and then waits for it, so
// concurrent assistant queries reach the provider in arrival order.
type throttledClient struct {
	delegate Client
	gap      time.Duration // minimum spacing between request starts
	perToken time.Duration // budget cost of a single token

	mu        sync.Mutex
	nextStart time.Time
	paidUntil time.Time
}

// IntervalForRequestsPerMinute converts a requests-per-minute budget to the
// minimum spacing between requests. Non-positive budgets disable the limit.
func IntervalForRequestsPerMinute(rpm int) time.Duration {
	if rpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(rpm)
}

// NewRateLimitedClient wraps base so requests start at least interval apart
// and consume no more than tokensPerMinute. With both limits disabled base is
// returned unchanged.
func NewRateLimitedClient(base Client, interval time.Duration, tokensPerMinute int) Client {
	if base == nil || (interval <= 0 && tokensPerMinute <= 0) {
		return base
	}
	c := &throttledClient{delegate: base, gap: max(interval, 0)}
	if tokensPerMinute > 0 {
		c.perToken = time.Minute / time.Duration(tokensPerMinute)
	}
	return c
}

// book reserves the next start time for a request costing tokens.
func (c *throttledClient) book(tokens int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	if c.nextStart.After(start) {
		start = c.nextStart
	}
	if c.paidUntil.After(start) {
		start = c.paidUntil
	}

	c.nextStart = start.Add(c.gap)
	if c.perToken > 0 {
		// the first request runs at once; its cost delays the one after it
		c.paidUntil = start.Add(time.Duration(tokens) * c.perToken)
	}
	return start
}

func (c *throttledClient) await(ctx context.Context, req *CompletionRequest) error {
	start := c.book(c.cost(req))
	delay := time.Until(start)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// cost estimates prompt plus reply tokens. The tokenizer is skipped when no
// token budget is set.
func (c *throttledClient) cost(req *CompletionRequest) int {
	if c.perToken <= 0 {
		return 0
	}

	model := c.delegate.GetModelName()
	prompt := EstimateTokenCount(model, req.SystemPrompt)
	for _, msg := range req.Messages {
		prompt += EstimateTokenCount(model, msg.Content)
	}
	reply := req.MaxTokens
	if reply <= 0 {
		reply = replyTokenReserve
	}
	return max(prompt, minPromptTokens) + reply
}

func (c *throttledClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := &CompletionRequest{Messages: []*Message{{Role: RoleUser, Content: prompt}}}
	if err := c.await(ctx, req); err != nil {
		return "", err
	}
	return c.delegate.Complete(ctx, prompt)
}

func (c *throttledClient) CompleteWithRequest(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := c.await(ctx, req); err != nil {
		return nil, err
	}
	return c.delegate.CompleteWithRequest(ctx, req)
}

func (c *throttledClient) Stream(ctx context.Context, req *CompletionRequest, callback func(chunk string) error) error {
	if err := c.await(ctx, req); err != nil {
		return err
	}
	return c.delegate.Stream(ctx, req, callback)
}

func (c *throttledClient) GetModelName() string {
	return c.delegate.GetModelName()
}
