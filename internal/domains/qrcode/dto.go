package qrcode

import (
	"qrlink-backend/internal/domains/qrcode/model"
)

// PreviewRequest - POST /api/v1/qr/preview
// Slug rỗng => dùng slug giữ chỗ, QR vẫn có cùng kích thước matrix gần đúng
type PreviewRequest struct {
	Slug  string      `json:"slug"`
	Style model.Style `json:"style"`
}

// QRQuery - ?format=svg|png&size=N
type QRQuery struct {
	Format string `form:"format"`
	Size   int    `form:"size"`
}

// UploadLogoRequest - multipart field "file" + optional "replace"
type UploadLogoRequest struct {
	Filename    string
	ContentType string
	Data        []byte
	// Replace: URL logo cũ của cùng owner, xoá best-effort sau khi upload xong
	Replace string
}

type LogoResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// DeleteLogoRequest - DELETE /api/v1/logos
type DeleteLogoRequest struct {
	URL string `json:"url" binding:"required"`
}
