// Package server exposes the pipelines over HTTP: normalization, profiling
// with optional drift, format conversion, column listing and validation.
// Authentication and dashboards live in the separate front-end service.
package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
	"github.com/srslogics/datasentinel/internal/normalize"
	"github.com/srslogics/datasentinel/internal/profile"
	"github.com/srslogics/datasentinel/internal/validate"
)

// Options wires the server's collaborators and thresholds.
type Options struct {
	Store        blob.Store
	Pipeline     normalize.Config
	PSIThreshold float64
	KSAlpha      float64
	CORSOrigins  []string
	Logger       *log.Logger
}

type server struct {
	store      blob.Store
	normalizer *normalize.Normalizer
	engine     *profile.Engine
	logger     *log.Logger
}

// New builds the HTTP handler.
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &server{
		store:      opts.Store,
		normalizer: normalize.NewNormalizer(opts.Store, opts.Pipeline),
		engine:     profile.NewEngine(opts.Store, opts.PSIThreshold, opts.KSAlpha),
		logger:     logger,
	}

	r := chi.NewRouter()
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))
	}
	r.Use(s.requestLog)

	r.Get("/", s.handleHealth)
	r.Post("/normalize", s.handleNormalize)
	r.Post("/profile", s.handleProfile)
	r.Post("/convert-and-upload", s.handleConvert)
	r.Post("/columns", s.handleColumns)
	r.Post("/validate", s.handleValidate)
	return r
}

// requestLog tags each request with an id and logs method, path and latency.
func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s %s %s", id[:8], r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok", "message": "service is healthy"})
}

// writeError maps the error taxonomy onto HTTP statuses. No retries happen
// here; the whole invocation either succeeded or reports one failure kind.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound    *blob.NotFoundError
		unsupported *codec.UnsupportedFormatError
		invalid     *validate.ValidationError
		writeErr    *normalize.WriteError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &unsupported), errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.As(err, &writeErr):
		status = http.StatusInternalServerError
	}
	s.logger.Printf("error: %v", err)
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
