// Package api serves a completed analysis over HTTP as JSON and GeoJSON.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/export"
	"github.com/sells-group/camera-coverage/internal/pipeline"
	"github.com/sells-group/camera-coverage/internal/store"
)

// Server exposes one pipeline result. Runs is optional; without it the
// /runs routes answer 404.
type Server struct {
	result *pipeline.Result
	layers *export.Layers
	runs   store.Store
	now    func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithRuns enables the run history routes.
func WithRuns(st store.Store) Option {
	return func(s *Server) { s.runs = st }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server for res.
func New(res *pipeline.Result, opts ...Option) *Server {
	s := &Server{
		result: res,
		layers: res.Layers(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed HTTP handler. allowedOrigins feeds CORS; an
// empty list allows any origin.
func (s *Server) Handler(allowedOrigins ...string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/summary", s.summary)
	r.Get("/report", s.report)
	r.Route("/cameras", func(r chi.Router) {
		r.Get("/", s.cameras)
		r.Get("/{id}", s.camera)
	})
	r.Get("/neighbors", s.neighbors)
	r.Get("/clusters", s.clusters)
	r.Get("/coverage", s.coverage)
	r.Get("/gaps", s.gaps)
	r.Get("/density", s.density)
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Get("/{id}", s.getRun)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
