package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mersey-rowing/condition-checker/internal/domain"
)

// BoatChecker runs boat checks and reports readiness.
type BoatChecker interface {
	sharedobs.ReadinessChecker
	Check(ctx context.Context, at time.Time) (domain.BoatCheck, error)
	Limits() domain.BoatLimits
}

// Server exposes the boat check API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	checker    BoatChecker
	location   *time.Location
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /api/boats, /api/limits, /healthz, /readyz, and /metrics routes.
// Dates and times in requests are read in loc, the club's local time zone.
func NewServer(addr string, checker BoatChecker, loc *time.Location, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		checker:  checker,
		location: loc,
		logger:   logger,
	}

	mux.HandleFunc("GET /api/boats", s.handleBoats)
	mux.HandleFunc("GET /api/limits", s.handleLimits)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(checker))
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

func (s *Server) handleBoats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	at, err := parseCheckTime(q.Get("date"), q.Get("time"), s.location, domain.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	check, err := s.checker.Check(r.Context(), at)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Error("boat check failed", "at", at, "error", err)
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleLimits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Limits())
}

// parseCheckTime combines an optional YYYY-MM-DD date and HH:MM time in loc.
// A missing date means today; a missing time means the current time of day.
func parseCheckTime(date, clock string, loc *time.Location, now time.Time) (time.Time, error) {
	now = now.In(loc)
	if date == "" && clock == "" {
		return now, nil
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if date != "" {
		d, err := time.ParseInLocation(time.DateOnly, date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
		}
		day = d
	}

	hour, minute := now.Hour(), now.Minute()
	if clock != "" {
		c, err := time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: want HH:MM", clock)
		}
		hour, minute = c.Hour(), c.Minute()
	}

	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
