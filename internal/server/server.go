// Package server exposes the interview, preview, generate and transcribe
// operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jywlabs/prdwiz/internal/llm"
	"github.com/jywlabs/prdwiz/internal/prd"
)

// RequestIDHeader carries the per-request id in responses.
const RequestIDHeader = "X-Request-ID"

// maxAudioBytes bounds the multipart body accepted by /api/transcribe.
const maxAudioBytes = 25 << 20

type ctxKey int

const requestIDKey ctxKey = iota

// Server is the web API.
type Server struct {
	gen         *prd.Generator
	transcriber llm.Transcriber
	logger      *log.Logger
	httpServer  *http.Server
}

// New creates a Server. transcriber may be nil, in which case /api/transcribe
// responds with 500.
func New(gen *prd.Generator, transcriber llm.Transcriber, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{gen: gen, transcriber: transcriber, logger: logger}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware, s.loggingMiddleware, s.corsMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/interview", s.handleInterview).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/transcribe", s.handleTranscribe).Methods(http.MethodPost, http.MethodOptions)

	return router
}

// Start listens on addr and serves until Stop is called.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called. It returns nil after
// a graceful shutdown, including one that happened before Serve was called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting API server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"id", requestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// corsMiddleware allows browser clients served from localhost.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Response helpers
func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// fail reports err to the client. Missing input becomes a 400 with the
// error text; anything else is logged and returned as a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, prd.ErrMissingInput) {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.logger.Error(message, "id", requestID(r.Context()), "path", r.URL.Path, "err", err)
	s.writeError(w, message, http.StatusInternalServerError)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
