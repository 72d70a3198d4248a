package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/config"
	returnsJob "returns-backend/internal/domains/returns/job"
)

// Queue weights dùng chung cho worker server
var Queues = map[string]int{
	"high":    20,
	"default": 10,
	"low":     5,
}

// TaskRegistrar là phần asynq.Scheduler dùng để đăng ký cron
type TaskRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

type Scheduler struct {
	scheduler *asynq.Scheduler
	cfg       config.ReturnsConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, cfg config.ReturnsConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler, cfg: cfg}
}

// RegisterJobs đăng ký toàn bộ periodic jobs
func (s *Scheduler) RegisterJobs() error {
	return RegisterOverdueMethodJob(s.scheduler, s.cfg.OverdueCron)
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}

// ================================================
// JOB: Flag overdue return method selection
// ================================================
func RegisterOverdueMethodJob(r TaskRegistrar, cronspec string) error {
	if cronspec == "" {
		return fmt.Errorf("overdue method cron spec is empty")
	}

	entryID, err := r.Register(
		cronspec,
		returnsJob.NewOverdueMethodTask(),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register OverdueMethod job")
		return fmt.Errorf("register overdue method job: %w", err)
	}

	log.Info().Str("entry_id", entryID).Str("cron", cronspec).Msg("✓ Registered: OverdueMethod")
	return nil
}
