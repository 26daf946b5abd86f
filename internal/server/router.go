// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/questgen/internal/curriculum"
	"github.com/abhisek/questgen/internal/pipeline"
	"github.com/abhisek/questgen/internal/questiontype"
)

// Runner executes pipeline runs. *pipeline.Coordinator satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) *pipeline.Result
}

// Classifier picks a question type. *questiontype.Classifier satisfies it.
type Classifier interface {
	Classify(grade, subject, skillName string) questiontype.Tag
}

// Container holds the router's dependencies.
type Container struct {
	Pipeline   Runner
	Classifier Classifier
	Skills     curriculum.Store
	Logger     *zap.Logger
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{
		pipeline:   c.Pipeline,
		classifier: c.Classifier,
		skills:     c.Skills,
		logger:     logger,
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	// Routes sit on the root router: a PathPrefix subrouter reports a
	// method mismatch as 404.
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/v1/pipeline", h.runPipeline).Methods(http.MethodPost)
	r.HandleFunc("/v1/classify", h.classify).Methods(http.MethodPost)
	r.HandleFunc("/v1/skills", h.listSkills).Methods(http.MethodGet)
	r.HandleFunc("/v1/skills/{id}", h.getSkill).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
