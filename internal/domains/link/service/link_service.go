package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/shared/utils"
	"qrlink-backend/pkg/logger"
)

// maxSlugAttempts: số lần sinh lại slug khi trùng
const maxSlugAttempts = 5

type linkService struct {
	repo     link.Repository
	renderer link.QRRenderer
	logos    link.LogoRemover
	baseURL  string
}

// NewLinkService: logos có thể nil (không có object storage)
func NewLinkService(repo link.Repository, renderer link.QRRenderer, logos link.LogoRemover, baseURL string) link.Service {
	return &linkService{
		repo:     repo,
		renderer: renderer,
		logos:    logos,
		baseURL:  baseURL,
	}
}

// Create tạo link mới với style mặc định
// Slug người dùng nhập: normalize -> validate -> check unique
// Slug tự sinh: chỉ check unique, trùng thì sinh lại
func (s *linkService) Create(ctx context.Context, owner uuid.UUID, req link.CreateLinkRequest) (*link.LinkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	destination := strings.TrimSpace(req.Destination)

	var (
		created *link.Link
		err     error
	)
	if req.AutoGenerate || strings.TrimSpace(req.Slug) == "" {
		created, err = s.createWithGeneratedSlug(ctx, owner, destination)
	} else {
		created, err = s.createWithCustomSlug(ctx, owner, req.Slug, destination)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("link created", map[string]interface{}{
		"link_id": created.ID.String(),
		"user_id": owner.String(),
		"slug":    created.Slug,
	})

	resp := s.toResponse(created)
	return &resp, nil
}

func (s *linkService) createWithCustomSlug(ctx context.Context, owner uuid.UUID, raw, destination string) (*link.Link, error) {
	slug := utils.NormalizeSlug(raw)
	if !utils.ValidateSlug(slug) {
		return nil, fmt.Errorf("%w: %q", link.ErrInvalidSlug, raw)
	}

	exists, err := s.repo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, link.ErrSlugTaken
	}

	// UNIQUE index vẫn chặn race giữa SlugExists và Insert => ErrSlugTaken
	l := link.NewLink(owner, slug, destination)
	if err := s.repo.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *linkService) createWithGeneratedSlug(ctx context.Context, owner uuid.UUID, destination string) (*link.Link, error) {
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := utils.GenerateSlug(utils.DefaultSlugLength)
		if err != nil {
			return nil, err
		}

		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		l := link.NewLink(owner, slug, destination)
		err = s.repo.Insert(ctx, l)
		if errors.Is(err, link.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, link.ErrSlugGenerationFailed
}

func (s *linkService) Get(ctx context.Context, owner, id uuid.UUID) (*link.LinkResponse, error) {
	l, err := s.repo.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(l)
	return &resp, nil
}

func (s *linkService) List(ctx context.Context, owner uuid.UUID) ([]link.LinkResponse, error) {
	links, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	result := make([]link.LinkResponse, 0, len(links))
	for i := range links {
		result = append(result, s.toResponse(&links[i]))
	}
	return result, nil
}

// UpdateDestination: slug giữ nguyên nên QR đã in vẫn trỏ tới URL mới
func (s *linkService) UpdateDestination(ctx context.Context, owner, id uuid.UUID, req link.UpdateDestinationRequest) (*link.LinkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.UpdateDestination(ctx, id, owner, strings.TrimSpace(req.Destination))
	if err != nil {
		return nil, err
	}

	logger.Info("link destination updated", map[string]interface{}{
		"link_id": id.String(),
		"user_id": owner.String(),
	})

	resp := s.toResponse(l)
	return &resp, nil
}

// Delete xoá link và logo của nó (best-effort, chỉ khi không link nào khác dùng)
func (s *linkService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	l, err := s.repo.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, owner); err != nil {
		return err
	}

	logger.Info("link deleted", map[string]interface{}{
		"link_id": id.String(),
		"user_id": owner.String(),
		"slug":    l.Slug,
	})

	if l.Style.HasLogo() {
		s.removeLogoIfUnused(ctx, owner, l.Style.Logo)
	}
	return nil
}

func (s *linkService) removeLogoIfUnused(ctx context.Context, owner uuid.UUID, logo string) {
	if s.logos == nil {
		return
	}

	refs, err := s.repo.ListLogoRefs(ctx)
	if err != nil {
		logger.Error("list logo refs failed, keeping logo", err)
		return
	}
	for _, ref := range refs {
		if ref == logo {
			return
		}
	}

	if err := s.logos.Delete(ctx, owner, logo); err != nil {
		// orphan sweep sẽ dọn sau
		logger.Warn("failed to delete logo of removed link", map[string]interface{}{
			"logo":  logo,
			"error": err.Error(),
		})
	}
}

// SaveStyle: normalize -> validate -> thay style nguyên khối
func (s *linkService) SaveStyle(ctx context.Context, owner, id uuid.UUID, style model.Style) (*link.LinkResponse, error) {
	style = style.Normalize()
	if err := style.Validate(); err != nil {
		return nil, err
	}

	l, err := s.repo.UpdateStyle(ctx, id, owner, style)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(l)
	return &resp, nil
}

// RenderQR: payload luôn là redirect URL công khai, không phải destination
func (s *linkService) RenderQR(ctx context.Context, owner, id uuid.UUID, req link.QRRequest) ([]byte, string, error) {
	l, err := s.repo.FindByIDAndOwner(ctx, id, owner)
	if err != nil {
		return nil, "", err
	}

	return s.renderer.Render(ctx, l.Style, utils.RedirectURL(s.baseURL, l.Slug), req.Format, req.Size)
}

func (s *linkService) toResponse(l *link.Link) link.LinkResponse {
	return link.ToResponse(l, utils.RedirectURL(s.baseURL, l.Slug))
}
