package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"SoccerTrends/internal/ports"
	"SoccerTrends/internal/usecase"
)

// RunTrigger starts one pipeline run synchronously.
type RunTrigger interface {
	TriggerManualRun(ctx context.Context) error
}

// Server exposes the read-only JSON API over the document store plus the
// manual refresh trigger. It never writes to the store.
type Server struct {
	store   ports.PostStore
	trigger RunTrigger
	logger  *slog.Logger
	httpSrv *http.Server
}

// New wires the store and trigger into an http.Server on addr.
func New(addr string, store ports.PostStore, trigger RunTrigger, logger *slog.Logger) *Server {
	server := &Server{
		store:   store,
		trigger: trigger,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", server.handleListPosts)
	mux.HandleFunc("GET /api/posts/{id}", server.handleGetPost)
	mux.HandleFunc("POST /api/refresh", server.handleRefresh)
	mux.HandleFunc("GET /healthz", server.handleHealth)

	server.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the underlying mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative number")
			return
		}
		limit = parsed
	}

	records, err := s.store.ListPostRecords(r.Context(), limit, true)
	if err != nil {
		s.logger.Error("list post records failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "cannot list posts")
		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.store.GetPostRecord(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error("get post record failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "cannot read post")
		return
	}

	response := map[string]any{
		"post":     record,
		"analysis": nil,
	}

	analysis, err := s.store.GetAnalysisRecord(r.Context(), id)
	switch {
	case err == nil:
		response["analysis"] = analysis
	case errors.Is(err, ports.ErrNotFound):
		// Absence means "not yet analyzed".
	default:
		s.logger.Error("get analysis record failed", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "cannot read analysis")
		return
	}

	s.writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.trigger.TriggerManualRun(r.Context())
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, usecase.ErrRunInProgress):
		s.writeJSON(w, http.StatusConflict, map[string]string{"status": "busy"})
	default:
		s.logger.Error("manual refresh failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "failed"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
