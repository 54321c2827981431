package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"city-forecast/app"
	appLogger "city-forecast/logger"
	"city-forecast/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP server
type Options struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ImageDir     string // served under /images/ when it exists
}

// Server represents the HTTP server for the forecast page and API
type Server struct {
	app    *app.App
	logger *slog.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(application *app.App, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(instrument)
	router.Use(middleware.Recoverer)

	s := &Server{
		app:    application,
		logger: logger,
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Port),
			Handler:      router,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  120 * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
	}

	// Page and form events
	router.Get("/", s.handlePage)
	router.Post("/select", s.handleSelect)

	// JSON API
	router.Route("/api", func(r chi.Router) {
		r.Get("/cities", s.handleGetCities)
		r.Get("/view", s.handleGetView)
		r.Post("/selection", s.handleSelection)
		r.Get("/health", s.handleHealthCheck)
	})

	router.Handle("/metrics", promhttp.Handler())

	if opts.ImageDir != "" {
		if info, err := os.Stat(opts.ImageDir); err == nil && info.IsDir() {
			router.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(opts.ImageDir))))
		} else {
			logger.Warn("Icon directory not found, /images/ will not be served", slog.String("dir", opts.ImageDir))
		}
	}

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", slog.String("address", s.server.Addr))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// instrument records request counts and latency per route pattern
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, fmt.Sprint(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
