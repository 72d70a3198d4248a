// cmd/worker/main.go
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"returns-backend/pkg/container"
	"returns-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	c, err := container.NewContainer()
	if err != nil {
		log.Fatal().Err(err).Msg("[Container] Failed to initialize")
	}
	defer c.Cleanup()

	srv := setupAsynqServer(c)
	scheduler := setupScheduler(c)

	if err := startServices(c); err != nil {
		log.Fatal().Err(err).Msg("[Startup] Health check failed")
	}

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("[Shutdown] ✓ Stopped")
}
