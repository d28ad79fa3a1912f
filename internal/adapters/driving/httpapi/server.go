// Package httpapi serves the catalog query API over HTTP.
//
// Routes:
//
//	GET /api/search?q=&limit=&offset=  search summaries, best first
//	GET /api/id/{uuid}                 one record with its relations
//	GET /health                        published catalog status
//
// Malformed query parameters fall back to defaults; user input never
// produces a 500.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/geocat/internal/core/domain"
	"github.com/custodia-labs/geocat/internal/core/ports/driving"
	"github.com/custodia-labs/geocat/internal/logger"
)

// ErrMissingQueryService is returned when the query service is not provided.
var ErrMissingQueryService = errors.New("httpapi: query service is required")

// Server is the HTTP query API.
type Server struct {
	query  driving.QueryService
	router chi.Router

	// streaming is set once a handler that holds responses open is mounted.
	streaming bool
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status      string     `json:"status"`
	Records     int        `json:"records"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// NewServer creates the API server and its routes.
func NewServer(query driving.QueryService) (*Server, error) {
	if query == nil {
		return nil, ErrMissingQueryService
	}

	s := &Server{query: query}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/id/{uuid}", s.handleRecord)
	})

	s.router = r
	return s, nil
}

// Mount attaches a long-lived handler, such as the MCP endpoint, under
// pattern. Write timeouts are disabled so its streams stay open.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
	s.streaming = true
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
	}
	if !s.streaming {
		httpServer.WriteTimeout = 15 * time.Second
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown: %v", err)
		}
	}()

	logger.Info("Listening on http://%s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := domain.SearchOptions{
		Limit:  queryInt(q.Get("limit")),
		Offset: queryInt(q.Get("offset")),
	}

	results, err := s.query.Search(r.Context(), q.Get("q"), opts)
	if err != nil {
		logger.Error("search %q: %v", q.Get("q"), err)
		results = nil
	}
	if results == nil {
		results = []domain.SearchSummary{}
	}

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}

	detail, err := s.query.GetDetail(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, detail.View())
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrNoCatalog):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no catalog published"})
	default:
		logger.Error("record %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	stats, err := s.query.Stats(ctx)
	if err != nil {
		status := "unavailable"
		if errors.Is(err, domain.ErrNoCatalog) {
			status = "no catalog"
		}
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: status})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Records:     stats.Records,
		PublishedAt: &stats.PublishedAt,
	})
}

// queryInt parses a query parameter, returning 0 (the service default) when
// it is absent or malformed.
func queryInt(raw string) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Debug("writing response: %v", err)
	}
}

func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %dB %s", r.Method, r.URL.RequestURI(), ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
