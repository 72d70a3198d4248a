package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/infrastructure/queue"
	"returns-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(redisOpt(c), c.Config.Returns)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatal().Err(err).Msg("[Scheduler] Failed to register")
	}

	go func() {
		log.Info().Msg("[Scheduler] Starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatal().Err(err).Msg("[Scheduler] Failed")
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Info().Msg("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
}

func redisOpt(c *container.Container) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}
