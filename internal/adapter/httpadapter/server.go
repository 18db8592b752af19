// Package httpadapter serves the latest series bundle as read-only JSON for
// the presentation layer, plus health, readiness and metrics endpoints.
package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/flood-signal-etl/internal/domain"
)

// BundleSource provides the bundle of the latest successful run.
type BundleSource interface {
	Bundle() (domain.SeriesBundle, bool)
}

// Server exposes the series API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	source     BundleSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /api/v1 routes, /healthz, /readyz, and /metrics.
func NewServer(addr string, source BundleSource, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		source: source,
		logger: logger,
	}

	mux.HandleFunc("GET /api/v1/series", s.withBundle(s.handleSeries))
	mux.HandleFunc("GET /api/v1/rainfall", s.withBundle(s.handleRainfall))
	mux.HandleFunc("GET /api/v1/rainfall/stations", s.withBundle(s.handleStations))
	mux.HandleFunc("GET /api/v1/rainfall/stations/names", s.withBundle(s.handleStationNames))
	mux.HandleFunc("GET /api/v1/keywords", s.withBundle(s.handleKeywords))
	mux.HandleFunc("GET /api/v1/probability", s.withBundle(s.handleProbability))
	mux.HandleFunc("GET /api/v1/probability/current", s.withBundle(s.handleCurrentProbability))

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

type bundleHandler func(w http.ResponseWriter, r *http.Request, b *domain.SeriesBundle)

// withBundle answers 503 until a run has produced a bundle.
func (s *Server) withBundle(h bundleHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := s.source.Bundle()
		if !ok {
			writeError(w, http.StatusServiceUnavailable, "no series available yet")
			return
		}
		h(w, r, &b)
	}
}

func (s *Server) handleSeries(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleRainfall(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	writeJSON(w, http.StatusOK, b.RainfallAggregate)
}

// handleStations returns per-station rows for ?station=A&station=B, or all
// stations when none is given.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request, b *domain.SeriesBundle) {
	selected, err := b.RainfallPerStation.Select(r.URL.Query()["station"]...)
	if err != nil {
		if errors.Is(err, domain.ErrSchema) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("select stations failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, selected)
}

func (s *Server) handleStationNames(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	names := b.Stations()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"stations": names})
}

func (s *Server) handleKeywords(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	writeJSON(w, http.StatusOK, b.DailyKeywordCount)
}

func (s *Server) handleProbability(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	writeJSON(w, http.StatusOK, b.ProbabilitySeries)
}

func (s *Server) handleCurrentProbability(w http.ResponseWriter, _ *http.Request, b *domain.SeriesBundle) {
	if b.CurrentProbability == nil {
		writeError(w, http.StatusNotFound, "probability series is empty")
		return
	}
	writeJSON(w, http.StatusOK, b.CurrentProbability)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
