// Package httpapi exposes search, evaluation and full research runs over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/go-playground/validator/v10"
)

const (
	maxBodySize    = 1 << 20
	requestTimeout = 10 * time.Minute
)

var validate = validator.New()

// Searcher runs a validated paper search and returns the JSON array result.
type Searcher interface {
	Run(ctx context.Context, query entity.SearchQuery) string
}

type Deps struct {
	Evaluator input.Evaluator
	Runner    input.ResearchRunner
	Searcher  Searcher
	Metrics   http.Handler
	Logger    output.LoggerPort
	// AccessLog enables httplog request logging.
	AccessLog bool
}

type Server struct {
	deps   Deps
	router chi.Router
}

func New(deps Deps) *Server {
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if s.deps.AccessLog {
		logger := httplog.NewLogger("research-agent", httplog.Options{
			JSON:     true,
			Concise:  true,
			LogLevel: "info",
		})
		r.Use(httplog.RequestLogger(logger, []string{"/healthz", "/metrics"}))
	}
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/evaluate", s.handleEvaluate)
		r.Post("/search", s.handleSearch)
		r.Post("/research", s.handleResearch)
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("HTTP server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.deps.Logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req entity.EvaluationRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Evaluator.Evaluate(r.Context(), req))
}

type searchRequest struct {
	Topic        string `json:"topic" validate:"required"`
	Year         int    `json:"year" validate:"gte=1900,lte=3000"`
	Comparison   string `json:"comparison" validate:"required"`
	MinCitations int    `json:"min_citations" validate:"gte=0"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}
	comparison, err := entity.ParseComparison(req.Comparison)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := s.deps.Searcher.Run(r.Context(), entity.SearchQuery{
		Topic:        req.Topic,
		Year:         req.Year,
		Comparison:   comparison,
		MinCitations: req.MinCitations,
	})
	if tool.IsSearchError(result) {
		s.deps.Logger.Warn("Search returned an error object", "topic", req.Topic, "result", result)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result))
}

type researchRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if !decode(w, r, &req) {
		return
	}

	report, err := s.deps.Runner.Run(r.Context(), req.Query)
	if err != nil {
		s.deps.Logger.Error("Research run failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
