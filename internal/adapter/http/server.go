package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/aqi-warning-service/internal/domain"
	"github.com/couchcryptid/aqi-warning-service/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Assessor runs the assessment pipeline for a single reading.
type Assessor interface {
	Run(ctx context.Context, reading domain.PollutantReading) (domain.AssessmentResult, error)
	Limits() domain.SafeLimits
}

// Server exposes the assessment API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	assessor   Assessor
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 assessment routes.
func NewServer(addr string, assessor Assessor, ready sharedobs.ReadinessChecker, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withRequestID(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		assessor: assessor,
		logger:   logger,
		metrics:  metrics,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/assessments", s.handleAssess)
	mux.HandleFunc("GET /v1/safe-limits", s.handleSafeLimits)
	mux.HandleFunc("GET /v1/tiers", handleTiers)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var rec domain.RawReadingRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "decode reading: "+err.Error())
		return
	}

	sr, err := domain.ParseRecord(rec, time.Now())
	if err != nil {
		s.metrics.AssessmentErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
		writeError(w, http.StatusBadRequest, domain.ErrorKind(err), err.Error())
		return
	}

	result, err := s.assessor.Run(r.Context(), sr.Reading)
	if err != nil {
		kind := domain.ErrorKind(err)
		s.metrics.AssessmentErrors.WithLabelValues(kind).Inc()
		status := statusForError(err)
		s.logger.Error("assessment failed",
			"error", err,
			"kind", kind,
			"station_id", sr.StationID,
			"request_id", w.Header().Get(requestIDHeader),
		)
		writeError(w, status, kind, err.Error())
		return
	}

	s.metrics.Assessments.WithLabelValues(result.Tier.String()).Inc()
	s.metrics.PredictedAQI.Observe(result.AQI)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSafeLimits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"limits": s.assessor.Limits().Entries()})
}

func handleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": domain.DescribeTiers()})
}

// statusForError maps the assessment error taxonomy onto HTTP statuses.
// Errors outside the taxonomy come from the model collaborator.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidReading):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidPrediction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidConfiguration),
		errors.Is(err, domain.ErrUnknownPollutant),
		errors.Is(err, domain.ErrEmptyInput):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

// withRequestID echoes the caller's X-Request-ID or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "kind": kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
