package link

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode/model"
)

var httpSchemePattern = regexp.MustCompile(`^(?i)https?://`)

// CreateLinkRequest - POST /api/v1/links
// AutoGenerate hoặc Slug rỗng => server tự sinh slug
type CreateLinkRequest struct {
	Destination  string `json:"destination"`
	Slug         string `json:"slug"`
	AutoGenerate bool   `json:"auto_generate"`
}

func (r CreateLinkRequest) Validate() error {
	return validateDestination(r.Destination)
}

// UpdateDestinationRequest - PATCH /api/v1/links/:id
// Chỉ đổi destination, slug giữ nguyên nên QR đã in vẫn dùng được
type UpdateDestinationRequest struct {
	Destination string `json:"destination"`
}

func (r UpdateDestinationRequest) Validate() error {
	return validateDestination(r.Destination)
}

func validateDestination(destination string) error {
	destination = strings.TrimSpace(destination)
	err := validation.Validate(destination,
		validation.Required.Error("destination is required"),
		validation.Length(1, 2048),
		is.RequestURL.Error("destination must be an absolute URL"),
		validation.Match(httpSchemePattern).Error("destination must use http or https"),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	return nil
}

// LinkResponse - response cho dashboard
type LinkResponse struct {
	ID          uuid.UUID   `json:"id"`
	Slug        string      `json:"slug"`
	Destination string      `json:"original_url"`
	RedirectURL string      `json:"redirect_url"`
	Style       model.Style `json:"qr_config"`
	ScanCount   int64       `json:"scan_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func ToResponse(l *Link, redirectURL string) LinkResponse {
	return LinkResponse{
		ID:          l.ID,
		Slug:        l.Slug,
		Destination: l.Destination,
		RedirectURL: redirectURL,
		Style:       l.Style,
		ScanCount:   l.ScanCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// QRRequest - query params của GET /links/:id/qr và POST /qr/preview
type QRRequest struct {
	Format string `form:"format"`
	Size   int    `form:"size"`
}
