package link

import (
	"context"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode/model"
)

// Service - dashboard operations của owner
type Service interface {
	Create(ctx context.Context, owner uuid.UUID, req CreateLinkRequest) (*LinkResponse, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*LinkResponse, error)
	List(ctx context.Context, owner uuid.UUID) ([]LinkResponse, error)
	UpdateDestination(ctx context.Context, owner, id uuid.UUID, req UpdateDestinationRequest) (*LinkResponse, error)
	Delete(ctx context.Context, owner, id uuid.UUID) error
	SaveStyle(ctx context.Context, owner, id uuid.UUID, style model.Style) (*LinkResponse, error)
	RenderQR(ctx context.Context, owner, id uuid.UUID, req QRRequest) ([]byte, string, error)
	Export(ctx context.Context, owner uuid.UUID) ([]byte, error)
}

// Resolver - redirect resolution + scan accounting
type Resolver interface {
	Resolve(ctx context.Context, slug string) (*Resolution, error)
	// RecordScan không block caller, lỗi chỉ được log
	// ctx chỉ dùng để mang values (request_id), cancel của request không ảnh hưởng
	RecordScan(ctx context.Context, linkID uuid.UUID, observed int64)
	// Drain chờ các scan đang chạy, dùng khi shutdown
	Drain(ctx context.Context) error
}

// ScanRecorder ghi nhận một scan cho link
type ScanRecorder interface {
	Record(ctx context.Context, linkID uuid.UUID, observed int64) error
}

// QRRenderer render style + payload thành image bytes (svg | png)
type QRRenderer interface {
	Render(ctx context.Context, style model.Style, payload, format string, size int) ([]byte, string, error)
}

// LogoRemover xoá logo của owner, dùng khi xoá link
type LogoRemover interface {
	Delete(ctx context.Context, owner uuid.UUID, ref string) error
}
