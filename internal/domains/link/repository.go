package link

import (
	"context"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode/model"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository là Link Store Gateway
// Mọi lookup theo owner đều đưa owner vào WHERE, không filter sau khi đọc
type Repository interface {
	// FindBySlug dùng cho redirect, miss => ErrLinkNotFound
	FindBySlug(ctx context.Context, slug string) (*Link, error)
	FindByIDAndOwner(ctx context.Context, id, owner uuid.UUID) (*Link, error)

	// Insert: slug trùng (kể cả race giữa check và insert) => ErrSlugTaken
	Insert(ctx context.Context, l *Link) error
	SlugExists(ctx context.Context, slug string) (bool, error)

	UpdateDestination(ctx context.Context, id, owner uuid.UUID, destination string) (*Link, error)
	UpdateStyle(ctx context.Context, id, owner uuid.UUID, style model.Style) (*Link, error)

	// IncrementScanCount: scan_count = scan_count + 1 trong một UPDATE
	// observed chỉ để log, không dùng để tính giá trị mới
	IncrementScanCount(ctx context.Context, id uuid.UUID, observed int64) error

	Delete(ctx context.Context, id, owner uuid.UUID) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]Link, error)

	// ListLogoRefs trả về mọi logo URL đang được style tham chiếu
	ListLogoRefs(ctx context.Context) ([]string, error)
}
