package model

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidStyle  = errors.New("invalid qr style")
	ErrInvalidColor  = errors.New("invalid qr color")
	ErrInvalidFormat = errors.New("format must be svg or png")
	ErrInvalidSize   = errors.New("size must be between 100 and 2000")
	ErrInvalidSlug   = errors.New("invalid slug")

	ErrLogoTooLarge  = errors.New("logo exceeds maximum size (5MB)")
	ErrLogoNotImage  = errors.New("logo must be an image")
	ErrLogoNotFound  = errors.New("logo not found")
	ErrLogoForbidden = errors.New("logo does not belong to user")

	ErrRenderFailed = errors.New("qr render failed")
)

type errorInfo struct {
	Status  int
	Code    string
	Message string
}

var qrErrorMap = []struct {
	err  error
	info errorInfo
}{
	{ErrInvalidStyle, errorInfo{http.StatusBadRequest, "QR_INVALID_STYLE", "Invalid QR style"}},
	{ErrInvalidColor, errorInfo{http.StatusBadRequest, "QR_INVALID_COLOR", "Invalid QR color"}},
	{ErrInvalidFormat, errorInfo{http.StatusBadRequest, "QR_INVALID_FORMAT", "Format must be svg or png"}},
	{ErrInvalidSize, errorInfo{http.StatusBadRequest, "QR_INVALID_SIZE", "Size must be between 100 and 2000"}},
	{ErrInvalidSlug, errorInfo{http.StatusBadRequest, "QR_INVALID_SLUG", "Slug must be 3-50 characters of a-z, 0-9 or -"}},
	{ErrLogoTooLarge, errorInfo{http.StatusBadRequest, "LOGO_TOO_LARGE", "Logo must be 5MB or smaller"}},
	{ErrLogoNotImage, errorInfo{http.StatusBadRequest, "LOGO_NOT_IMAGE", "Logo must be an image file"}},
	{ErrLogoNotFound, errorInfo{http.StatusNotFound, "LOGO_NOT_FOUND", "Logo not found"}},
	{ErrLogoForbidden, errorInfo{http.StatusForbidden, "LOGO_FORBIDDEN", "Logo does not belong to you"}},
}

// GetHTTPStatusCode map qrcode error (kể cả wrapped) tới HTTP status
func GetHTTPStatusCode(err error) int {
	if info, ok := lookup(err); ok {
		return info.Status
	}
	return http.StatusInternalServerError
}

// GetErrorCode trả về (code, message) an toàn để trả cho client
func GetErrorCode(err error) (string, string) {
	if info, ok := lookup(err); ok {
		return info.Code, info.Message
	}
	return "INTERNAL_SERVER_ERROR", "Internal server error"
}

func lookup(err error) (errorInfo, bool) {
	if err == nil {
		return errorInfo{}, false
	}
	for _, e := range qrErrorMap {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}
	return errorInfo{}, false
}
