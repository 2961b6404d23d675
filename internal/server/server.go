// Package server provides the HTTP API in front of the DaXtra parsing service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/parser-service/internal/observability"
	"github.com/jonathan/parser-service/internal/service"
)

const (
	serviceName    = "parser-microservice"
	serviceVersion = "1.0.0"

	defaultMaxUpload = 10 << 20
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
	metrics    *observability.Metrics

	resumes     *service.ResumeService
	vacancies   *service.VacancyService
	conversions *service.ConversionService

	maxUpload int64
	daxtra    DaXtraInfo
	now       func() time.Time
}

// DaXtraInfo is the remote configuration reported by the health endpoint.
type DaXtraInfo struct {
	BaseURL string `json:"baseUrl"`
	Account string `json:"account"`
	Turbo   bool   `json:"turbo"`
}

// Config holds server configuration
type Config struct {
	Port           int
	MaxUploadBytes int64
	DaXtra         DaXtraInfo
}

// Services are the operations the routes delegate to.
type Services struct {
	Resumes     *service.ResumeService
	Vacancies   *service.VacancyService
	Conversions *service.ConversionService
}

// New creates a new server instance
func New(cfg Config, svc Services, metrics *observability.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	s := &Server{
		logger:      logger,
		metrics:     metrics,
		resumes:     svc.Resumes,
		vacancies:   svc.Vacancies,
		conversions: svc.Conversions,
		maxUpload:   maxUpload,
		daxtra:      cfg.DaXtra,
		now:         time.Now,
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /resume/full", s.handleParseFull)
	mux.HandleFunc("POST /resume/two-phase", s.handleParseTwoPhase)
	mux.HandleFunc("POST /vacancy", s.handleParseVacancy)
	mux.HandleFunc("POST /conversion/html", s.handleConvertHTML)

	s.handler = s.withLogging(s.withCORS(mux))

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Two-phase parses make several slow remote calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr,
			"daxtra_base_url", s.daxtra.BaseURL, "turbo", s.daxtra.Turbo)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging and request metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", elapsed)
	})
}

// healthResponse is returned by /healthz.
type healthResponse struct {
	Status    string     `json:"status"`
	Service   string     `json:"service"`
	Version   string     `json:"version"`
	Timestamp string     `json:"timestamp"`
	DaXtra    DaXtraInfo `json:"daxtra"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Version:   serviceVersion,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		DaXtra:    s.daxtra,
	})
}

// envelope wraps every parse response.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

// successResponse writes a success envelope
func (s *Server) successResponse(w http.ResponseWriter, data any) {
	s.jsonResponse(w, http.StatusOK, envelope{Success: true, Data: data})
}

// errorResponse writes the error envelope for err
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var noFile *ErrNoFile
	if errors.As(err, &noFile) {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": noFile.Error()})
		return
	}

	status := HTTPStatus(err)
	apiErr := describeError(err)
	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"type", apiErr.Type,
		"error", err)
	s.jsonResponse(w, status, envelope{Success: false, Error: &apiErr})
}
