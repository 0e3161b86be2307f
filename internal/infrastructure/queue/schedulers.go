package queue

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"qrlink-backend/internal/config"
	qrJob "qrlink-backend/internal/domains/qrcode/job"
	"qrlink-backend/pkg/logger"
)

// Tên queue dùng chung giữa client (API) và worker
const (
	QueueDefault = "default" // link:record_scan
	QueueLow     = "low"     // maintenance
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redis asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

// RegisterJobs đăng ký toàn bộ cron job
func (s *Scheduler) RegisterJobs() error {
	if err := s.registerSweepOrphanLogosJob(); err != nil {
		return err
	}
	return nil
}

// ================================================
// JOB: Sweep Orphan Logos (LOGO_SWEEP_CRON, mặc định 3 AM)
// ================================================
// Logo được upload trước khi gắn vào style, user bỏ ngang thì file nằm lại
// trong bucket. Grace period nằm ở handler, cron chỉ quyết định tần suất.
func (s *Scheduler) registerSweepOrphanLogosJob() error {
	task := asynq.NewTask(qrJob.TypeSweepOrphanLogos, nil)

	_, err := s.scheduler.Register(
		s.jobConfig.LogoSweepCron,
		task,
		asynq.Queue(QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
		// hai instance scheduler không enqueue trùng trong cùng một giờ
		asynq.Unique(time.Hour),
	)
	if err != nil {
		logger.Error("Failed to register SweepOrphanLogos job", err)
		return fmt.Errorf("register %s: %w", qrJob.TypeSweepOrphanLogos, err)
	}

	logger.Info("✓ Registered SweepOrphanLogos", map[string]interface{}{
		"cron":  s.jobConfig.LogoSweepCron,
		"grace": s.jobConfig.LogoSweepGrace.String(),
	})
	return nil
}

// Start không block; signal do cmd/worker xử lý
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
