package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/pkg/logger"
)

// Resolver resolve slug -> destination và ghi nhận scan ở background
type Resolver struct {
	repo     link.Repository
	recorder link.ScanRecorder

	// pending đếm scan goroutine chưa xong; idle được close khi pending về 0.
	// Không dùng WaitGroup vì RecordScan có thể chạy song song với Drain.
	mu      sync.Mutex
	pending int
	idle    chan struct{}
}

func NewResolver(repo link.Repository, recorder link.ScanRecorder) *Resolver {
	return &Resolver{
		repo:     repo,
		recorder: recorder,
	}
}

var _ link.Resolver = (*Resolver)(nil)

// Resolve chỉ đọc, không ghi gì khi miss
func (r *Resolver) Resolve(ctx context.Context, slug string) (*link.Resolution, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, link.ErrLinkNotFound
	}

	l, err := r.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	return &link.Resolution{
		LinkID:        l.ID,
		Destination:   l.Destination,
		ObservedScans: l.ScanCount,
	}, nil
}

// RecordScan chạy recorder trên goroutine riêng với context tách khỏi request:
// client ngắt kết nối sau khi nhận 302 không làm mất scan.
// Lỗi chỉ được log, redirect đã trả về trước đó.
func (r *Resolver) RecordScan(ctx context.Context, linkID uuid.UUID, observed int64) {
	detached := context.WithoutCancel(ctx)

	r.begin()
	go func() {
		defer r.done()
		defer func() {
			if p := recover(); p != nil {
				log.Error().
					Str("request_id", logger.RequestID(detached)).
					Str("link_id", linkID.String()).
					Interface("panic", p).
					Msg("scan recording panicked")
			}
		}()

		if err := r.recorder.Record(detached, linkID, observed); err != nil {
			event := log.Error()
			if errors.Is(err, link.ErrLinkNotFound) {
				// link bị xoá giữa resolve và increment
				event = log.Warn()
			}
			event.Err(err).
				Str("request_id", logger.RequestID(detached)).
				Str("link_id", linkID.String()).
				Int64("observed", observed).
				Msg("failed to record scan")
		}
	}()
}

func (r *Resolver) begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == 0 {
		r.idle = make(chan struct{})
	}
	r.pending++
}

func (r *Resolver) done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending--
	if r.pending == 0 {
		close(r.idle)
	}
}

// Drain chờ tới khi không còn scan nào đang chạy, hoặc ctx hết hạn.
// Gọi được nhiều lần và song song với RecordScan: scan bắt đầu sau khi
// Drain trả về thì lần Drain sau sẽ chờ.
func (r *Resolver) Drain(ctx context.Context) error {
	r.mu.Lock()
	if r.pending == 0 {
		r.mu.Unlock()
		return nil
	}
	idle := r.idle
	r.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
