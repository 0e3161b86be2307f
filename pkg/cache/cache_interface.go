package cache

import (
	"context"
	"time"
)

// Cache là cache key-value cho các lookup nóng (hiện tại: slug -> link)
// Value được serialize bởi implementation, caller chỉ truyền struct
//
// Lỗi cache không bao giờ được làm hỏng request: caller coi lỗi như miss
// và đọc thẳng từ store.
type Cache interface {
	// Get trả found=false khi miss, dest giữ nguyên
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)

	// Set ghi đè value với TTL, ttl <= 0 nghĩa là không hết hạn
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete dùng để invalidate sau khi link đổi destination/style hoặc bị xoá
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
