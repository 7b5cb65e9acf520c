package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/julienschmidt/httprouter"
)

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"time":      time.Now().Format(time.RFC3339),
		"assistant": s.Solver().Available(),
		"clients":   s.hub.ClientCount(),
	})
}

// handleEvaluate evaluates an expression. Evaluation failures are reported
// in the result as "Error" with status 200; malformed requests get 400.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req EvaluateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expr := strings.TrimSpace(req.Expression)
	if expr == "" {
		writeError(w, http.StatusBadRequest, "expression is required")
		return
	}
	if len(expr) > consts.MaxExpressionLength {
		writeError(w, http.StatusBadRequest, "expression is too long")
		return
	}

	mode := s.angleMode
	if req.AngleMode != "" {
		parsed, err := calc.ParseAngleMode(req.AngleMode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	res := calc.Run(expr, mode)
	if res.OK() {
		s.history.AddCalculation(expr, res.Text)
		s.broadcastHistory()
	} else {
		s.log.Debug("evaluate %q (%s): %v", expr, mode, res.Err)
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Expression: expr,
		Result:     res.Text,
		AngleMode:  mode.String(),
	})
}

// handleHistory returns the history with an ETag derived from its content.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := json.Marshal(HistoryResponse{
		Items: s.history.Items(),
		Limit: s.history.Limit(),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	etag := fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// handleClearHistory removes every history entry.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.history.Clear()
	s.broadcastHistory()
	w.WriteHeader(http.StatusNoContent)
}

// handleSolve answers an assistant query. Provider failures are reported in
// the reply with is_error set, not as an HTTP error.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req SolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if len(query) > consts.MaxQueryLength {
		writeError(w, http.StatusBadRequest, "query is too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), consts.AssistantTimeout)
	defer cancel()

	reply := s.Solver().Solve(ctx, query)
	s.recordAI(query)
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) recordAI(query string) {
	s.history.AddAI(query)
	s.broadcastHistory()
}

func (s *Server) broadcastHistory() {
	s.hub.Broadcast(&WebMessage{
		Type:      MessageTypeHistory,
		History:   s.history.Items(),
		Timestamp: time.Now(),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, consts.MaxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
