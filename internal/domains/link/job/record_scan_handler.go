package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/domains/link"
)

// RecordScanHandler xử lý task link:record_scan do QueueScanRecorder đẩy vào
type RecordScanHandler struct {
	repo link.Repository
}

func NewRecordScanHandler(repo link.Repository) *RecordScanHandler {
	return &RecordScanHandler{repo: repo}
}

// ProcessTask tăng scan_count
// Link đã bị xoá => SkipRetry, retry cũng không có gì để tăng
func (h *RecordScanHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload link.RecordScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal RecordScan payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	err := h.repo.IncrementScanCount(ctx, payload.LinkID, payload.Observed)
	if errors.Is(err, link.ErrLinkNotFound) {
		log.Warn().
			Str("link_id", payload.LinkID.String()).
			Msg("Scan for deleted link dropped")
		return fmt.Errorf("increment scan: %w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("link_id", payload.LinkID.String()).
			Int64("observed", payload.Observed).
			Msg("Failed to record scan")
		return fmt.Errorf("increment scan: %w", err)
	}

	log.Debug().
		Str("link_id", payload.LinkID.String()).
		Int64("observed", payload.Observed).
		Msg("Scan recorded")
	return nil
}
