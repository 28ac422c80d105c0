// Command param-worker serves the nc.parameters.prepare job type.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nc-param-manager/internal/common/camunda"
	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/logger"
	"nc-param-manager/internal/common/observability"
	"nc-param-manager/internal/paramapi"
	"nc-param-manager/internal/presets"
	pp "nc-param-manager/internal/workers/parameters/prepare-parameters"
	"nc-param-manager/pkg/registry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewStructured("info", "json").Error("Config load failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format).Named("param-worker")
	defer log.Sync()

	if err := config.ValidateForWorker(cfg); err != nil {
		log.Error("Invalid worker configuration", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("Worker stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting parameter worker", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"paramApi":    cfg.ParameterService.BaseURL,
		"presets":     cfg.Presets.Backend,
	})

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Parameter service ---
	client := paramapi.New(cfg.ParameterService.BaseURL, cfg.ParameterService.TimeoutDuration(), log,
		paramapi.WithObservability(obs))
	schemas := paramapi.NewSchemaCache(client, cfg.ParameterService.SchemaCacheSize, cfg.ParameterService.SchemaCacheTTLDuration())

	// --- Preset backend ---
	store, closeStore, err := presets.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("Zeebe client connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	handler, err := pp.NewHandler(pp.HandlerOptions{
		AppConfig:     cfg,
		Params:        schemas,
		Presets:       store,
		Logger:        log,
		Observability: obs,
	})
	if err != nil {
		return err
	}
	handler.Register(zeebe.Client)
	defer handler.Close()

	activities := registry.New(cfg.App.Version)
	if err := activities.Register(handler.Activity()); err != nil {
		return err
	}

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Metrics.Address,
		Handler:           newMux(zeebe, activities),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health/Metrics server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health/Metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received, stopping worker", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newMux(zeebe *camunda.Client, activities *registry.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/activities", activities)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
