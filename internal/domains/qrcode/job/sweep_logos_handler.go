package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/domains/qrcode"
)

const TypeSweepOrphanLogos = "logo:sweep_orphans"

// LogoRefLister là phần của link.Repository mà sweep cần
type LogoRefLister interface {
	ListLogoRefs(ctx context.Context) ([]string, error)
}

// SweepOrphanLogosHandler xoá logo không còn style nào tham chiếu
// Logo mới upload chưa kịp gắn vào style được giữ lại trong grace period
type SweepOrphanLogosHandler struct {
	store qrcode.ObjectStore
	links LogoRefLister
	grace time.Duration
	now   func() time.Time
}

func NewSweepOrphanLogosHandler(store qrcode.ObjectStore, links LogoRefLister, grace time.Duration) *SweepOrphanLogosHandler {
	return &SweepOrphanLogosHandler{
		store: store,
		links: links,
		grace: grace,
		now:   time.Now,
	}
}

func (h *SweepOrphanLogosHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	start := h.now()
	log.Info().Str("task", task.Type()).Msg("Starting orphan logo sweep")

	refs, err := h.links.ListLogoRefs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list logo references")
		return fmt.Errorf("list logo refs: %w", err)
	}
	inUse := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if key, ok := h.store.KeyFromURL(ref); ok {
			inUse[key] = struct{}{}
		}
	}

	objects, err := h.store.List(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stored logos")
		return fmt.Errorf("list logos: %w", err)
	}

	cutoff := start.Add(-h.grace)
	deleted, failed := 0, 0
	for _, obj := range objects {
		if _, ok := inUse[obj.Key]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := h.store.Delete(ctx, obj.Key); err != nil {
			failed++
			log.Warn().Err(err).Str("key", obj.Key).Msg("Failed to delete orphan logo")
			continue
		}
		deleted++
	}

	log.Info().
		Int("scanned", len(objects)).
		Int("referenced", len(inUse)).
		Int("deleted", deleted).
		Int("failed", failed).
		Dur("duration", h.now().Sub(start)).
		Msg("Orphan logo sweep completed")

	// lần chạy sau sẽ xoá tiếp, không cần retry cả task
	return nil
}
