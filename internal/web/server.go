// Package web serves the calculator and the assistant over HTTP and
// WebSocket.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calc"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/logger"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Options configures a Server.
type Options struct {
	// Addr is the listen address; empty uses consts.DefaultServerAddr.
	Addr string
	// History records evaluations and assistant queries; nil creates a
	// store with the default limit.
	History *history.Store
	// Solver answers assistant queries; nil reports the assistant as
	// unavailable.
	Solver *assistant.Solver
	// AngleMode is used when a request does not name one.
	AngleMode calc.AngleMode
}

// Server represents the web server
type Server struct {
	addr       string
	router     *httprouter.Router
	httpServer *http.Server
	listener   net.Listener
	history    *history.Store
	solver     atomic.Pointer[assistant.Solver]
	angleMode  calc.AngleMode
	hub        *Hub
	upgrader   websocket.Upgrader
	log        *logger.Logger
	slog       *slog.Logger
	serveErr   chan error
	hubOnce    sync.Once
	stopOnce   sync.Once
}

// NewServer creates a new web server
func NewServer(opts Options) *Server {
	addr := opts.Addr
	if addr == "" {
		addr = consts.DefaultServerAddr
	}
	store := opts.History
	if store == nil {
		store = history.New(history.DefaultLimit)
	}
	solver := opts.Solver
	if solver == nil {
		solver = assistant.Unavailable(nil)
	}

	log := logger.Global().WithPrefix("web")
	s := &Server{
		addr:      addr,
		router:    httprouter.New(),
		history:   store,
		angleMode: opts.AngleMode,
		hub:       NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHostOrigin,
		},
		log:      log,
		slog:     logger.NewSlog(log),
		serveErr: make(chan error, 1),
	}
	s.solver.Store(solver)
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/api/evaluate", s.handleEvaluate)
	s.router.GET("/api/history", s.handleHistory)
	s.router.DELETE("/api/history", s.handleClearHistory)
	s.router.POST("/api/solve", s.handleSolve)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	s.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		s.log.Error("panic serving %s %s: %v", r.Method, r.URL.Path, v)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Handler returns the HTTP handler with request logging. The WebSocket hub
// is started on first use; Shutdown stops it.
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() {
		go s.hub.Run()
	})
	return s.logRequests(s.router)
}

// Solver returns the assistant currently answering queries.
func (s *Server) Solver() *assistant.Solver {
	return s.solver.Load()
}

// SetSolver replaces the assistant, for example after a config reload.
// In-flight requests finish with the previous one.
func (s *Server) SetSolver(solver *assistant.Solver) {
	if solver != nil {
		s.solver.Store(solver)
	}
}

// History returns the store the server records into.
func (s *Server) History() *history.Store {
	return s.history
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	s.addr = ln.Addr().String()

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: consts.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.slog.Handler(), slog.LevelError),
	}

	go func() {
		s.log.Info("web server listening on %s", s.addr)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error: %v", err)
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	return nil
}

// Err delivers the error that made the server stop serving, if any. The
// channel is closed once serving ends.
func (s *Server) Err() <-chan error {
	return s.serveErr
}

// Addr returns the listen address; after Start it is the bound address.
func (s *Server) Addr() string {
	return s.addr
}

// Shutdown stops accepting requests, closes WebSocket clients and waits for
// in-flight HTTP requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.log.Info("stopping web server")
		s.hub.Stop()
		if s.httpServer != nil {
			if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("failed to shutdown HTTP server: %w", shutdownErr)
			}
		}
	})
	return err
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the hijacker for WebSocket upgrades.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			// hijacked connections have no meaningful status
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// sameHostOrigin accepts browser connections from the serving host and
// non-browser clients that send no Origin.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	host := r.Host
	for _, scheme := range []string{"http://", "https://"} {
		if origin == scheme+host {
			return true
		}
	}
	return false
}

// handleWebSocket upgrades the connection and starts the client pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("failed to upgrade WebSocket: %v", err)
		return
	}

	client := NewClient(s.hub, s, conn)
	if !s.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
