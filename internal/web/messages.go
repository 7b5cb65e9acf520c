package web

import (
	"time"

	"github.com/codefionn/gencalc/internal/history"
)

// WebSocket message types
const (
	// MessageTypeChat is sent by the client with a query in Content.
	MessageTypeChat = "chat"
	// MessageTypeChunk carries a piece of a streamed reply.
	MessageTypeChunk = "chunk"
	// MessageTypeDone ends a reply; Content holds the full text.
	MessageTypeDone = "done"
	// MessageTypeError ends a failed reply or reports a bad request.
	MessageTypeError = "error"
	// MessageTypeHistory is broadcast to every client when the history changes.
	MessageTypeHistory = "history"
)

// WebMessage represents a message sent over WebSocket
type WebMessage struct {
	Type string `json:"type"`
	// ID correlates chunks and the final message with the chat request.
	// Clients may set it; otherwise the server assigns one.
	ID        string         `json:"id,omitempty"`
	Content   string         `json:"content,omitempty"`
	History   []history.Item `json:"history,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EvaluateRequest is the body of POST /api/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
	// AngleMode is "rad" or "deg"; empty uses the server default.
	AngleMode string `json:"angle_mode,omitempty"`
}

// EvaluateResponse is returned by POST /api/evaluate. Result is "Error" when
// the expression could not be evaluated.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	AngleMode  string `json:"angle_mode"`
}

// SolveRequest is the body of POST /api/solve.
type SolveRequest struct {
	Query string `json:"query"`
}

// HistoryResponse is returned by GET /api/history.
type HistoryResponse struct {
	Items []history.Item `json:"items"`
	Limit int            `json:"limit"`
}

// errorResponse is the body of every 4xx/5xx answer.
type errorResponse struct {
	Error string `json:"error"`
}
