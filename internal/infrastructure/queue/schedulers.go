package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"studentdeals-backend/internal/config"
	claimJob "studentdeals-backend/internal/domains/claim/job"
	offerJob "studentdeals-backend/internal/domains/offer/job"
	"studentdeals-backend/internal/shared"
	"studentdeals-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress, redisPassword string, redisDB int, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress, Password: redisPassword, DB: redisDB},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler, jobConfig: jobConfig}
}

// RegisterSweepJobs wires the recurring maintenance sweeps.
func (s *Scheduler) RegisterSweepJobs() error {
	if err := s.registerExpireCouponsJob(); err != nil {
		return err
	}
	return s.registerArchiveEndedOffersJob()
}

// Hourly: flip ACTIVE coupons past their expiry date. Reads already
// treat them as expired, the sweep keeps stored rows in line.
func (s *Scheduler) registerExpireCouponsJob() error {
	payload, err := json.Marshal(claimJob.ExpireCouponsPayload{Batch: s.jobConfig.ExpireCouponsBatch})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeExpireCoupons, payload)

	_, err = s.scheduler.Register(
		"0 * * * *",
		task,
		asynq.Queue(shared.QueueCoupon),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ExpireCoupons job", err)
		return err
	}

	logger.Info("Registered ExpireCoupons: hourly", nil)
	return nil
}

// Daily at 1 AM: archive offers whose end date has passed so they stop
// showing up in public listings.
func (s *Scheduler) registerArchiveEndedOffersJob() error {
	payload, err := json.Marshal(offerJob.ArchiveEndedPayload{Batch: s.jobConfig.ArchiveOffersBatch})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeArchiveEndedOffers, payload)

	_, err = s.scheduler.Register(
		"0 1 * * *",
		task,
		asynq.Queue(shared.QueueOffer),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ArchiveEndedOffers job", err)
		return err
	}

	logger.Info("Registered ArchiveEndedOffers: daily at 1 AM", nil)
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
