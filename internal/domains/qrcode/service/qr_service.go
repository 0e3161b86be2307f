package service

import (
	"context"
	"fmt"
	"strings"

	"qrlink-backend/internal/domains/qrcode"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/domains/qrcode/render"
	"qrlink-backend/internal/shared/utils"
	"qrlink-backend/pkg/logger"
)

// previewSlug: độ dài bằng slug sinh tự động để preview sát với QR thật
const previewSlug = "preview0"

type qrService struct {
	renderer *render.Renderer
	baseURL  string
}

func NewQRService(renderer *render.Renderer, baseURL string) qrcode.Service {
	return &qrService{renderer: renderer, baseURL: baseURL}
}

func (s *qrService) Render(ctx context.Context, style model.Style, payload, format string, size int) ([]byte, string, error) {
	format, err := render.ResolveFormat(format)
	if err != nil {
		return nil, "", err
	}

	doc, err := s.renderer.Render(style, payload, size)
	if err != nil {
		logger.Error("Failed to render QR", err)
		return nil, "", err
	}

	out, err := s.renderer.Export(ctx, doc, format)
	if err != nil {
		logger.Error("Failed to export QR", err)
		return nil, "", err
	}
	return out, render.ContentType(format), nil
}

// Preview: style chưa lưu nên phải validate ở đây
func (s *qrService) Preview(ctx context.Context, req qrcode.PreviewRequest, format string, size int) ([]byte, string, error) {
	slug := previewSlug
	if strings.TrimSpace(req.Slug) != "" {
		slug = utils.NormalizeSlug(req.Slug)
		if !utils.ValidateSlug(slug) {
			return nil, "", fmt.Errorf("%w: %q", model.ErrInvalidSlug, req.Slug)
		}
	}

	style := req.Style.Normalize()
	if err := style.Validate(); err != nil {
		return nil, "", err
	}

	return s.Render(ctx, style, utils.RedirectURL(s.baseURL, slug), format, size)
}
