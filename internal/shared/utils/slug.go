package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"
)

const (
	// SlugAlphabet: chỉ lowercase + digit để slug dễ đọc khi in lên QR
	SlugAlphabet      = "abcdefghijklmnopqrstuvwxyz0123456789"
	DefaultSlugLength = 8
	MinSlugLength     = 3
	MaxSlugLength     = 50
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugStripPattern = regexp.MustCompile(`[^a-z0-9-]`)
)

// GenerateSlug sinh slug ngẫu nhiên, mỗi ký tự chọn đều trên SlugAlphabet bằng crypto/rand.
// Không kiểm tra uniqueness, caller phải tự check với store.
func GenerateSlug(length int) (string, error) {
	if length <= 0 {
		length = DefaultSlugLength
	}

	max := big.NewInt(int64(len(SlugAlphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate slug: %w", err)
		}
		b[i] = SlugAlphabet[n.Int64()]
	}
	return string(b), nil
}

// NormalizeSlug chuẩn hoá slug người dùng nhập
// "  My Promo 2024! " → "my-promo-2024"
// Hàm không bao giờ lỗi, kết quả có thể rỗng (ValidateSlug sẽ reject)
func NormalizeSlug(raw string) string {
	// Step 1+2: lowercase, bỏ whitespace hai đầu, mỗi cụm whitespace → một hyphen.
	// RE2 \s chỉ có ASCII nên tách theo unicode.IsSpace (NBSP, U+3000, \v ...) và BOM
	s := strings.Join(strings.FieldsFunc(strings.ToLower(raw), isSlugSpace), "-")

	// Step 3: bỏ mọi ký tự ngoài a-z, 0-9, -
	return slugStripPattern.ReplaceAllString(s, "")
}

func isSlugSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// ValidateSlug: ^[a-z0-9-]+$ và độ dài 3..50
func ValidateSlug(slug string) bool {
	if len(slug) < MinSlugLength || len(slug) > MaxSlugLength {
		return false
	}
	return slugPattern.MatchString(slug)
}

// RedirectURL trả về public URL được encode vào QR: {base}/r/{slug}
func RedirectURL(baseURL, slug string) string {
	return strings.TrimRight(baseURL, "/") + "/r/" + slug
}
