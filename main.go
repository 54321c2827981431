package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"city-forecast/api"
	"city-forecast/app"
	"city-forecast/catalog"
	"city-forecast/config"
	"city-forecast/datasource"
	appLogger "city-forecast/logger"
	"city-forecast/metrics"
	"city-forecast/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not loaded: %v", err)
	}

	// Parse command line arguments
	configFile := flag.String("config", "", "Path to configuration file (defaults to ./config.yml if present)")
	port := flag.Int("port", 0, "Port to run the server on (overrides configuration)")
	catalogSource := flag.String("catalog", "", "City catalog file or URL (overrides configuration)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *catalogSource != "" {
		cfg.Catalog.Source = *catalogSource
	}

	logger := appLogger.New(cfg.Mode, cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the city catalog; the page still comes up if it fails
	cities, catalogErr := catalog.NewLoader(nil, logger).Load(ctx, cfg.Catalog.Source)
	metrics.CatalogCities.Set(float64(len(cities)))

	source := datasource.NewSevenTimerSource(cfg.Forecast.BaseURL, cfg.Forecast.Timeout, logger)
	renderer := render.NewRenderer(render.Options{
		Locale:      cfg.Render.Locale,
		DateLayout:  cfg.Render.DateLayout,
		ImagePrefix: cfg.Render.ImagePrefix,
	})
	application := app.New(cities, source, renderer, logger)

	server := api.NewServer(application, api.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ImageDir:     cfg.Server.ImageDir,
	}, logger)

	// Start the HTTP server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server stopped", slog.Any("error", err))
			cancel()
		}
	}()

	// Initial fetch for the first city
	if catalogErr != nil {
		application.ReportCatalogFailure(ctx, catalogErr)
	} else {
		go application.Start(ctx)
	}

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Let forecast fetches started by the last requests finish
	fetched := make(chan struct{})
	go func() {
		application.Wait()
		close(fetched)
	}()
	select {
	case <-fetched:
	case <-shutdownCtx.Done():
		logger.Warn("Forecast fetches still running at shutdown")
	}
	logger.Info("Shutdown complete")
}
