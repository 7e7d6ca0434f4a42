// Package api exposes the NEURA runtime over HTTP JSON.
//
// Routes:
//
//	POST   /v1/tasks          execute a task
//	GET    /v1/memory/search  search memory
//	DELETE /v1/memory         clear memory
//	GET    /healthz           liveness
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/neura-ai/neura/env"
)

// Server serves the HTTP API for a runtime.
type Server struct {
	runtime *env.Runtime
	logger  *slog.Logger
	router  *mux.Router
}

// NewServer creates the API server.
func NewServer(runtime *env.Runtime, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{runtime: runtime, logger: logger}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/v1/tasks", s.handleTask).Methods(http.MethodPost)
	r.HandleFunc("/v1/memory/search", s.handleMemorySearch).Methods(http.MethodGet)
	r.HandleFunc("/v1/memory", s.handleMemoryClear).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the HTTP handler, for mounting or tests.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("api server listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

type taskRequest struct {
	Task        string   `json:"task"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	MaxSteps    int      `json:"max_steps,omitempty"`
	SaveMemory  *bool    `json:"save_memory,omitempty"`
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Task == "" {
		s.writeError(w, http.StatusBadRequest, "task is required")
		return
	}
	if req.MaxSteps < 0 || req.MaxTokens < 0 {
		s.writeError(w, http.StatusBadRequest, "max_steps and max_tokens must not be negative")
		return
	}

	result, err := s.runtime.ExecuteTask(r.Context(), req.Task, &env.RunOptions{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		MaxSteps:    req.MaxSteps,
		SaveMemory:  req.SaveMemory,
	})
	if err != nil {
		s.logger.Error("task execution failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMemorySearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	records, err := s.runtime.Memory().Search(r.Context(), query, k, nil)
	if err != nil {
		s.logger.Error("memory search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleMemoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.runtime.Memory().Clear(r.Context()); err != nil {
		s.logger.Error("memory clear failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
