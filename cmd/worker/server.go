package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/infrastructure/queue"
	"returns-backend/pkg/container"
)

type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(c *container.Container) *asynqServer {
	mux := asynq.NewServeMux()
	RegisterHandlers(mux, c)

	srv := asynq.NewServer(
		redisOpt(c),
		asynq.Config{
			Queues:          queue.Queues,
			Concurrency:     c.Config.Worker.Concurrency,
			ShutdownTimeout: c.Config.Worker.ShutdownTimeout,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).Msg("[Asynq] Task failed")
			}),
		},
	)

	go func() {
		log.Info().Msg("[Worker] Starting...")
		if err := srv.Run(mux); err != nil {
			log.Fatal().Err(err).Msg("[Worker] Failed")
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown chờ task đang chạy tối đa Worker.ShutdownTimeout
func (s *asynqServer) Shutdown() {
	log.Info().Msg("[Worker] Shutting down...")
	s.Server.Shutdown()
	log.Info().Msg("[Worker] ✓ Gracefully stopped")
}
