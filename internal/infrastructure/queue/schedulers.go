package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"paygate-backend/internal/config"
	"paygate-backend/internal/shared"
	"paygate-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	poller    config.PollerConfig
}

func NewScheduler(redisAddr, password string, db int, poller config.PollerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		poller:    poller,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if err := s.registerPollDueEventsJob(); err != nil {
		return err
	}

	if err := s.registerCleanupIdemKeysJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Poll due outbox events (default every 30s)
// ================================================
// The outbox row's next_retry is the authoritative schedule; the
// queue is only a wake-up cue. If a queued delivery is lost, this
// poller re-enqueues it on the next tick.
func (s *Scheduler) registerPollDueEventsJob() error {
	payload, err := json.Marshal(shared.PollDueEventsPayload{Limit: s.poller.Batch})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePollDueEvents, payload)

	cronspec := fmt.Sprintf("@every %s", s.poller.Interval)

	_, err = s.scheduler.Register(
		cronspec,
		task,
		asynq.Queue(shared.QueueWebhooks),
		asynq.MaxRetry(1),
		asynq.Timeout(1*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register PollDueEvents job", err)
		return err
	}

	logger.Info("✓ Registered PollDueEvents", map[string]interface{}{
		"interval": s.poller.Interval.String(),
		"batch":    s.poller.Batch,
	})
	return nil
}

// ================================================
// JOB 2: Cleanup expired idempotency keys (hourly)
// ================================================
// Expired records are already treated as absent on lookup; this job
// just keeps the table from growing without bound.
func (s *Scheduler) registerCleanupIdemKeysJob() error {
	payload, err := json.Marshal(shared.CleanupIdemKeysPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeCleanupIdemKeys, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // hourly
		task,
		asynq.Queue(shared.QueuePayments),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)

	if err != nil {
		logger.Error("Failed to register CleanupIdempotencyKeys job", err)
		return err
	}

	logger.Info("✓ Registered CleanupIdempotencyKeys: hourly", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
