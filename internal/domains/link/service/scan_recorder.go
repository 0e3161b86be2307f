package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"qrlink-backend/internal/domains/link"
)

// DirectScanRecorder tăng scan_count ngay trên store
type DirectScanRecorder struct {
	repo link.Repository
}

func NewDirectScanRecorder(repo link.Repository) *DirectScanRecorder {
	return &DirectScanRecorder{repo: repo}
}

func (d *DirectScanRecorder) Record(ctx context.Context, linkID uuid.UUID, observed int64) error {
	return d.repo.IncrementScanCount(ctx, linkID, observed)
}

const scanTaskMaxRetry = 0

// TaskEnqueuer là phần của *asynq.Client mà recorder cần
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueScanRecorder đẩy task link:record_scan, worker sẽ increment
// Dùng khi muốn tách write load của redirect khỏi database.
//
// Task không được retry: UPDATE đã commit nhưng ack bị mất sẽ bị đếm hai lần
// nếu chạy lại. scan_count chấp nhận đếm thiếu, không chấp nhận đếm thừa.
type QueueScanRecorder struct {
	client TaskEnqueuer
}

func NewQueueScanRecorder(client TaskEnqueuer) *QueueScanRecorder {
	return &QueueScanRecorder{client: client}
}

func (q *QueueScanRecorder) Record(ctx context.Context, linkID uuid.UUID, observed int64) error {
	payload, err := json.Marshal(link.RecordScanPayload{
		LinkID:   linkID,
		Observed: observed,
	})
	if err != nil {
		return fmt.Errorf("marshal scan payload: %w", err)
	}

	task := asynq.NewTask(link.TypeRecordScan, payload)
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(scanTaskMaxRetry),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", link.TypeRecordScan, err)
	}
	return nil
}
