package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"canchero/internal/cache"
	"canchero/internal/metrics"
	"canchero/internal/reports"
	"canchero/internal/service"
)

// Options configures the HTTP server.
type Options struct {
	Port           int
	APIKey         string
	RateLimitRPS   int
	RateLimitBurst int
	OpenHour       int
	CloseHour      int
}

// HTTPServer exposes the dashboard API.
type HTTPServer struct {
	facilities *service.FacilityService
	bookings   *service.BookingService
	reporter   *reports.Reporter
	cache      *cache.Cache
	opts       Options
	limiter    *rate.Limiter
	logger     *zerolog.Logger
	server     *http.Server
}

// NewHTTPServer wires handlers and middleware into an http.Server.
func NewHTTPServer(
	facilities *service.FacilityService,
	bookings *service.BookingService,
	reporter *reports.Reporter,
	responseCache *cache.Cache,
	opts Options,
	logger *zerolog.Logger,
) *HTTPServer {
	s := &HTTPServer{
		facilities: facilities,
		bookings:   bookings,
		reporter:   reporter,
		cache:      responseCache,
		opts:       opts,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/facilities", s.handleFacilities)
	mux.HandleFunc("/api/facilities/", s.handleFacilityByID)
	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/", s.handleBookingAction)
	mux.HandleFunc("/api/grid", s.handleGrid)
	mux.HandleFunc("/api/reports/usage", s.handleReportUsage)
	mux.HandleFunc("/api/reports/summary", s.handleReportSummary)
	mux.HandleFunc("/api/reports/export", s.handleReportExport)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.withMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("api server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if s.opts.APIKey != "" && r.Header.Get("X-Api-Key") != s.opts.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.IncHTTPRequest(r.URL.Path, strconv.Itoa(rec.status))
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot already taken")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrFacilityInUse):
		writeError(w, http.StatusConflict, "facility has active bookings")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func parseID(segment string) (int64, error) {
	id, err := strconv.ParseInt(segment, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", segment)
	}
	return id, nil
}
