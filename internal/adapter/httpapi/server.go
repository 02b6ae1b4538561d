// Package httpapi exposes the monitor's local control surface: health
// and metrics endpoints plus the small JSON API for reading the latest
// report, updating the location fix, and acknowledging alerts.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ospreycove/hazmon/internal/domain"
	"github.com/ospreycove/hazmon/internal/escalate"
	"github.com/ospreycove/hazmon/internal/state"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// EscalationPoller derives the current escalation decision.
type EscalationPoller interface {
	CheckEscalation() escalate.Decision
}

// Server exposes the control surface over HTTP. It binds to a local
// address; there is no authentication layer.
type Server struct {
	httpServer *http.Server
	store      state.Store
	poller     EscalationPoller
	logger     *slog.Logger
	clock      clockwork.Clock
}

// NewServer wires the routes. ready gates /readyz; poller backs
// /escalation.
func NewServer(addr string, store state.Store, ready ReadinessChecker, poller EscalationPoller, logger *slog.Logger, clock clockwork.Clock) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		poller: poller,
		logger: logger,
		clock:  clock,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /escalation", s.handleEscalation)
	mux.HandleFunc("POST /location", s.handleSetLocation)
	mux.HandleFunc("POST /ack", s.handleAck)

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	report, err := s.store.LatestReport()
	if err != nil {
		s.logger.Error("load latest report failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report unavailable"})
		return
	}
	if report == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no report yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleEscalation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.poller.CheckEscalation())
}

type locationRequest struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Accuracy float64 `json:"accuracy,omitempty"`
}

func (s *Server) handleSetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lon < -180 || req.Lon > 180 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat/lon out of range"})
		return
	}

	loc := domain.Location{
		Lat:        req.Lat,
		Lon:        req.Lon,
		Accuracy:   req.Accuracy,
		CapturedAt: s.clock.Now().UTC(),
	}
	if err := s.store.SetLocation(loc); err != nil {
		s.logger.Error("save location failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
		return
	}
	s.logger.Info("location updated", "lat", loc.Lat, "lon", loc.Lon)
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleAck(w http.ResponseWriter, _ *http.Request) {
	pending, err := s.store.PendingAlert()
	if err != nil {
		s.logger.Error("read pending alert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "state unavailable"})
		return
	}
	if pending == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pending alert"})
		return
	}
	if pending.Acknowledged() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "alert already acknowledged"})
		return
	}

	if err := pending.Acknowledge(s.clock.Now().UTC()); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.store.SavePendingAlert(pending); err != nil {
		s.logger.Error("save acknowledgment failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "save failed"})
		return
	}
	s.logger.Info("alert acknowledged", "id", pending.ID)
	writeJSON(w, http.StatusOK, pending)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
