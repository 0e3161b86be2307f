package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/qrcode"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/infrastructure/storage"
	"qrlink-backend/pkg/logger"
)

// định dạng sniff được => (ext, content type lưu trên storage)
var logoFormats = map[string]struct {
	ext         string
	contentType string
}{
	"jpeg":            {"jpg", "image/jpeg"},
	"png":             {"png", "image/png"},
	"gif":             {"gif", "image/gif"},
	storage.FormatSVG: {"svg", "image/svg+xml"},
}

type logoService struct {
	store     qrcode.ObjectStore
	processor *storage.ImageProcessor
	now       func() time.Time
}

func NewLogoService(store qrcode.ObjectStore, processor *storage.ImageProcessor) qrcode.LogoService {
	return &logoService{
		store:     store,
		processor: processor,
		now:       time.Now,
	}
}

// Upload kiểm tra content type, size và nội dung trước khi gọi storage
func (s *logoService) Upload(ctx context.Context, owner uuid.UUID, req qrcode.UploadLogoRequest) (*qrcode.LogoResponse, error) {
	if !strings.HasPrefix(strings.ToLower(req.ContentType), "image/") {
		return nil, fmt.Errorf("%w: content type %q", model.ErrLogoNotImage, req.ContentType)
	}

	format, err := s.processor.ValidateImage(req.Data)
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		return nil, fmt.Errorf("%w: %w", model.ErrLogoTooLarge, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %w", model.ErrLogoNotImage, err)
	}
	f, ok := logoFormats[format]
	if !ok {
		return nil, fmt.Errorf("%w: format %s not allowed", model.ErrLogoNotImage, format)
	}

	key := fmt.Sprintf("%s/%d.%s", owner, s.now().UnixMilli(), f.ext)
	url, err := s.store.Upload(ctx, key, req.Data, f.contentType)
	if err != nil {
		logger.Error("Failed to upload logo", err)
		return nil, fmt.Errorf("upload logo: %w", err)
	}

	logger.Info("Logo uploaded", map[string]interface{}{
		"user_id":  owner.String(),
		"key":      key,
		"filename": req.Filename,
		"size":     len(req.Data),
	})

	if req.Replace != "" {
		s.removeReplaced(ctx, owner, req.Replace, key)
	}

	return &qrcode.LogoResponse{URL: url, Key: key}, nil
}

// removeReplaced xoá logo cũ, lỗi chỉ log vì upload mới đã thành công
func (s *logoService) removeReplaced(ctx context.Context, owner uuid.UUID, ref, newKey string) {
	key, err := s.ownedKey(owner, ref)
	if err != nil {
		logger.Warn("Replaced logo skipped", map[string]interface{}{
			"user_id": owner.String(),
			"ref":     ref,
			"reason":  err.Error(),
		})
		return
	}
	if key == newKey {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete replaced logo", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (s *logoService) Delete(ctx context.Context, owner uuid.UUID, ref string) error {
	key, err := s.ownedKey(owner, ref)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete logo: %w", err)
	}

	logger.Info("Logo deleted", map[string]interface{}{
		"user_id": owner.String(),
		"key":     key,
	})
	return nil
}

func (s *logoService) Load(ctx context.Context, ref string) ([]byte, error) {
	key, ok := s.store.KeyFromURL(ref)
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrLogoNotFound, ref)
	}
	data, err := s.store.Download(ctx, key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %w", model.ErrLogoNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load logo: %w", err)
	}
	return data, nil
}

// ownedKey: key phải nằm dưới prefix {owner}/
func (s *logoService) ownedKey(owner uuid.UUID, ref string) (string, error) {
	key, ok := s.store.KeyFromURL(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrLogoNotFound, ref)
	}
	if !strings.HasPrefix(key, owner.String()+"/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s", model.ErrLogoForbidden, key)
	}
	return key, nil
}
