package link

import (
	"time"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode/model"
)

// Link: một slug công khai trỏ tới destination URL do owner chọn
// Slug là immutable sau khi tạo; destination và style đổi độc lập nhau
type Link struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     uuid.UUID   `json:"user_id"`
	Slug        string      `json:"slug"`
	Destination string      `json:"original_url"`
	Style       model.Style `json:"qr_config"`
	ScanCount   int64       `json:"scan_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewLink tạo Link mới với style mặc định, scan_count = 0
func NewLink(owner uuid.UUID, slug, destination string) *Link {
	now := time.Now().UTC()
	return &Link{
		ID:          uuid.New(),
		OwnerID:     owner,
		Slug:        slug,
		Destination: destination,
		Style:       model.Default(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Resolution là kết quả resolve slug cho redirect
// ObservedScans: scan_count tại thời điểm đọc, chỉ dùng để log
type Resolution struct {
	LinkID        uuid.UUID
	Destination   string
	ObservedScans int64
}

// Task types cho asynq
const (
	TypeRecordScan = "link:record_scan"
)

// RecordScanPayload: payload của task link:record_scan
type RecordScanPayload struct {
	LinkID   uuid.UUID `json:"link_id"`
	Observed int64     `json:"observed"`
}
