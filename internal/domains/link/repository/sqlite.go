package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/qrcode/model"
)

// linkRow là bản ghi bảng links phía gorm
// UUID lưu dạng text vì SQLite không có kiểu uuid
type linkRow struct {
	ID          string    `gorm:"primaryKey;type:text"`
	UserID      string    `gorm:"column:user_id;type:text;not null;index"`
	Slug        string    `gorm:"uniqueIndex;size:50;not null"`
	OriginalURL string    `gorm:"column:original_url;not null"`
	QRConfig    string    `gorm:"column:qr_config;type:text;not null"`
	ScanCount   int64     `gorm:"column:scan_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (linkRow) TableName() string { return "links" }

type sqliteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository tạo repository trên gorm; db phải được mở với TranslateError
func NewSQLiteRepository(db *gorm.DB) link.Repository {
	return &sqliteRepository{db: db}
}

// AutoMigrate tạo bảng links (unique index trên slug)
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&linkRow{})
}

func (r *sqliteRepository) FindBySlug(ctx context.Context, slug string) (*link.Link, error) {
	var row linkRow
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		return nil, gormError("find by slug", err)
	}
	return row.toLink()
}

func (r *sqliteRepository) FindByIDAndOwner(ctx context.Context, id, owner uuid.UUID) (*link.Link, error) {
	var row linkRow
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), owner.String()).
		First(&row).Error
	if err != nil {
		return nil, gormError("find by id", err)
	}
	return row.toLink()
}

func (r *sqliteRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&linkRow{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, gormError("check slug", err)
	}
	return count > 0, nil
}

func (r *sqliteRepository) Insert(ctx context.Context, l *link.Link) error {
	row, err := fromLink(l)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return gormError("insert link", err)
	}
	return nil
}

func (r *sqliteRepository) UpdateDestination(ctx context.Context, id, owner uuid.UUID, destination string) (*link.Link, error) {
	return r.update(ctx, id, owner, map[string]interface{}{
		"original_url": destination,
	})
}

func (r *sqliteRepository) UpdateStyle(ctx context.Context, id, owner uuid.UUID, style model.Style) (*link.Link, error) {
	raw, err := json.Marshal(style)
	if err != nil {
		return nil, fmt.Errorf("encode style: %w", err)
	}
	return r.update(ctx, id, owner, map[string]interface{}{
		"qr_config": string(raw),
	})
}

func (r *sqliteRepository) update(ctx context.Context, id, owner uuid.UUID, fields map[string]interface{}) (*link.Link, error) {
	fields["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&linkRow{}).
		Where("id = ? AND user_id = ?", id.String(), owner.String()).
		Updates(fields)
	if res.Error != nil {
		return nil, gormError("update link", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, link.ErrLinkNotFound
	}
	return r.FindByIDAndOwner(ctx, id, owner)
}

// IncrementScanCount: UPDATE links SET scan_count = scan_count + 1
// UpdateColumn để không bump updated_at
func (r *sqliteRepository) IncrementScanCount(ctx context.Context, id uuid.UUID, observed int64) error {
	res := r.db.WithContext(ctx).Model(&linkRow{}).
		Where("id = ?", id.String()).
		UpdateColumn("scan_count", gorm.Expr("scan_count + ?", 1))
	if res.Error != nil {
		return gormError("increment scan count", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("increment %s (observed %d): %w", id, observed, link.ErrLinkNotFound)
	}
	return nil
}

func (r *sqliteRepository) Delete(ctx context.Context, id, owner uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id.String(), owner.String()).
		Delete(&linkRow{})
	if res.Error != nil {
		return gormError("delete link", res.Error)
	}
	if res.RowsAffected == 0 {
		return link.ErrLinkNotFound
	}
	return nil
}

func (r *sqliteRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]link.Link, error) {
	var rows []linkRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner.String()).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, gormError("list links", err)
	}

	links := make([]link.Link, 0, len(rows))
	for i := range rows {
		l, err := rows[i].toLink()
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	return links, nil
}

// ListLogoRefs: qr_config là text nên parse trong Go thay vì dùng JSON1
func (r *sqliteRepository) ListLogoRefs(ctx context.Context) ([]string, error) {
	var configs []string
	if err := r.db.WithContext(ctx).Model(&linkRow{}).Pluck("qr_config", &configs).Error; err != nil {
		return nil, gormError("list logo refs", err)
	}

	seen := make(map[string]struct{})
	refs := make([]string, 0)
	for _, raw := range configs {
		style := model.ParseStyle([]byte(raw))
		if !style.HasLogo() {
			continue
		}
		if _, ok := seen[style.Logo]; ok {
			continue
		}
		seen[style.Logo] = struct{}{}
		refs = append(refs, style.Logo)
	}
	return refs, nil
}

func fromLink(l *link.Link) (*linkRow, error) {
	raw, err := json.Marshal(l.Style)
	if err != nil {
		return nil, fmt.Errorf("encode style: %w", err)
	}
	return &linkRow{
		ID:          l.ID.String(),
		UserID:      l.OwnerID.String(),
		Slug:        l.Slug,
		OriginalURL: l.Destination,
		QRConfig:    string(raw),
		ScanCount:   l.ScanCount,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func (row *linkRow) toLink() (*link.Link, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("corrupt link id %q: %w", row.ID, err)
	}
	owner, err := uuid.Parse(row.UserID)
	if err != nil {
		return nil, fmt.Errorf("corrupt owner id %q: %w", row.UserID, err)
	}
	return &link.Link{
		ID:          id,
		OwnerID:     owner,
		Slug:        row.Slug,
		Destination: row.OriginalURL,
		Style:       model.ParseStyle([]byte(row.QRConfig)),
		ScanCount:   row.ScanCount,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func gormError(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return link.ErrLinkNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, link.ErrSlugTaken)
	default:
		return fmt.Errorf("%s: %w: %w", op, link.ErrStoreUnavailable, err)
	}
}
