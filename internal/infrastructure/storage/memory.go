package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage giữ object trong RAM
// Dùng khi MINIO_ENABLED=false (dev không có MinIO) và cho test
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memObject
	baseURL string
	now     func() time.Time

	// Calls đếm số lần Upload/Delete, test dùng để kiểm tra validate chạy trước storage
	Calls int
}

type memObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memObject),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

func (s *MemoryStorage) Upload(_ context.Context, key string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	s.objects[key] = memObject{
		data:         append([]byte(nil), data...),
		contentType:  contentType,
		lastModified: s.now(),
	}
	return s.PublicURL(key), nil
}

func (s *MemoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return append([]byte(nil), obj.data...), nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) List(_ context.Context, prefix string) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Object
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, Object{Key: key, Size: int64(len(obj.data)), LastModified: obj.lastModified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *MemoryStorage) KeyFromURL(ref string) (string, bool) {
	return KeyFromURL(s.baseURL, ref)
}

// Touch đặt LastModified của key, dùng để giả lập logo cũ
func (s *MemoryStorage) Touch(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[key]; ok {
		obj.lastModified = at
		s.objects[key] = obj
	}
}

// ContentType của object đã lưu, rỗng nếu không có
func (s *MemoryStorage) ContentType(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[key].contentType
}
