// cmd/worker/startup.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"returns-backend/pkg/container"
)

// startServices chạy health checks rồi mở endpoint /health, /ready, /metrics
func startServices(c *container.Container) error {
	log.Info().Msg("🚀 Returns Worker Starting...")

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", c.Cache.Ping},
		{"Database Connection", c.DB.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Msgf("✓ %s: OK", check.name)
	}

	go startHealthCheckServer(c)
	return nil
}

func startHealthCheckServer(c *container.Container) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"UP","service":"returns-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := c.Cache.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"NOT_READY"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"READY"}`))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))

	addr := ":" + c.Config.Worker.HealthPort
	log.Info().Str("addr", addr).Msg("[Health] Starting health check server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("[Health] Failed to start")
	}
}
