package qrcode

import (
	"context"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/infrastructure/storage"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// Service render QR từ style
type Service interface {
	// Render: payload là redirect URL đã build sẵn
	Render(ctx context.Context, style model.Style, payload, format string, size int) ([]byte, string, error)
	// Preview render style chưa lưu, dùng trong màn hình thiết kế QR
	Preview(ctx context.Context, req PreviewRequest, format string, size int) ([]byte, string, error)
}

// LogoService quản lý file logo trong object storage
type LogoService interface {
	Upload(ctx context.Context, owner uuid.UUID, req UploadLogoRequest) (*LogoResponse, error)
	// Delete: ref là public URL hoặc key, phải nằm dưới {owner}/
	Delete(ctx context.Context, owner uuid.UUID, ref string) error
	// Load trả về bytes của logo, dùng khi export PNG
	Load(ctx context.Context, ref string) ([]byte, error)
}

// ObjectStore là phần của MinIOStorage mà domain cần
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	KeyFromURL(ref string) (string, bool)
}
