package link

import (
	"errors"
	"net/http"

	"qrlink-backend/internal/domains/qrcode/model"
)

var (
	ErrLinkNotFound         = errors.New("link not found")
	ErrSlugTaken            = errors.New("slug already taken")
	ErrInvalidSlug          = errors.New("invalid slug format")
	ErrInvalidDestination   = errors.New("invalid destination url")
	ErrSlugGenerationFailed = errors.New("could not generate a unique slug")
	ErrStoreUnavailable     = errors.New("link store unavailable")
)

type errorInfo struct {
	Status  int
	Code    string
	Message string
}

// Thứ tự quan trọng: error đầu tiên match (errors.Is) sẽ được dùng
var linkErrorMap = []struct {
	err  error
	info errorInfo
}{
	{ErrLinkNotFound, errorInfo{http.StatusNotFound, "LINK_NOT_FOUND", "Link not found"}},
	{ErrSlugTaken, errorInfo{http.StatusConflict, "SLUG_TAKEN", "This slug is already taken. Please choose another."}},
	{ErrInvalidSlug, errorInfo{http.StatusBadRequest, "INVALID_SLUG", "Invalid slug format. Use only lowercase letters, numbers, and hyphens."}},
	{ErrInvalidDestination, errorInfo{http.StatusBadRequest, "INVALID_URL", "Invalid URL"}},
	{ErrStoreUnavailable, errorInfo{http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable"}},
	{ErrSlugGenerationFailed, errorInfo{http.StatusServiceUnavailable, "SLUG_GENERATION_FAILED", "Could not generate a slug, please retry"}},
}

// GetHTTPStatusCode map link error (kể cả wrapped) tới HTTP status code
//
// USAGE:
// status := GetHTTPStatusCode(fmt.Errorf("find: %w", ErrLinkNotFound))
// => 404
func GetHTTPStatusCode(err error) int {
	if info, ok := lookup(err); ok {
		return info.Status
	}
	// Lỗi từ qrcode domain (style, format, size, logo)
	return model.GetHTTPStatusCode(err)
}

// GetErrorCode trả về (code, message) user-friendly, không leak internal detail
func GetErrorCode(err error) (string, string) {
	if info, ok := lookup(err); ok {
		return info.Code, info.Message
	}
	return model.GetErrorCode(err)
}

func lookup(err error) (errorInfo, bool) {
	if err == nil {
		return errorInfo{}, false
	}
	for _, e := range linkErrorMap {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}
	return errorInfo{}, false
}
