package main

import (
	"log"

	"qrlink-backend/internal/config"
	"qrlink-backend/internal/infrastructure/queue"
)

// asynqScheduler enqueue cron job (orphan logo sweep) vào Redis
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *Config, jobConfig config.JobConfig) *asynqScheduler {
	s := queue.NewScheduler(cfg.Redis, jobConfig)
	if err := s.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register jobs: %v", err)
	}

	log.Printf("[Scheduler] Starting (logo sweep: %q)...", jobConfig.LogoSweepCron)
	if err := s.Start(); err != nil {
		log.Fatalf("[Scheduler] Failed to start: %v", err)
	}

	return &asynqScheduler{Scheduler: s}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
