package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/pkg/cache"
	"qrlink-backend/pkg/logger"
)

const (
	// PostgreSQL unique_violation
	pgUniqueViolation = "23505"

	defaultSlugCacheTTL = 10 * time.Minute

	// staleWindow: sau khi ghi, slug bị đánh dấu dirty trong khoảng này và
	// cache key bị xoá thêm một lần nữa khi hết khoảng
	defaultStaleWindow = 2 * time.Second
)

type postgresRepository struct {
	pool        *pgxpool.Pool
	cache       cache.Cache
	cacheTTL    time.Duration
	staleWindow time.Duration
}

// NewPostgresRepository: cache có thể nil (chạy không có Redis)
func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache, cacheTTL time.Duration) link.Repository {
	if cacheTTL <= 0 {
		cacheTTL = defaultSlugCacheTTL
	}
	return &postgresRepository{
		pool:        pool,
		cache:       c,
		cacheTTL:    cacheTTL,
		staleWindow: defaultStaleWindow,
	}
}

const linkColumns = `id, user_id, slug, original_url, qr_config, scan_count, created_at, updated_at`

func slugCacheKey(slug string) string {
	return fmt.Sprintf("link:slug:%s", slug)
}

func slugDirtyKey(slug string) string {
	return fmt.Sprintf("link:slug:%s:dirty", slug)
}

// FindBySlug - Cache-Aside: redis trước, miss thì query DB rồi populate cache
func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*link.Link, error) {
	cacheKey := slugCacheKey(slug)

	if r.cache != nil {
		var cached link.Link
		found, err := r.cache.Get(ctx, cacheKey, &cached)
		if err == nil && found {
			return &cached, nil
		}
	}

	query := `SELECT ` + linkColumns + ` FROM links WHERE slug = $1`
	l, err := scanLink(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, err
	}

	r.fill(ctx, slug, l)
	return l, nil
}

// fill populate cache sau khi đọc DB.
// Slug đang dirty (vừa update/delete) thì bỏ qua: row vừa đọc có thể là bản trước khi ghi.
func (r *postgresRepository) fill(ctx context.Context, slug string, l *link.Link) {
	if r.cache == nil {
		return
	}

	var dirty bool
	found, err := r.cache.Get(ctx, slugDirtyKey(slug), &dirty)
	if err != nil || found {
		return
	}

	if err := r.cache.Set(ctx, slugCacheKey(slug), l, r.cacheTTL); err != nil {
		logger.Warn("slug cache write failed", map[string]interface{}{"slug": slug, "error": err.Error()})
	}
}

func (r *postgresRepository) FindByIDAndOwner(ctx context.Context, id, owner uuid.UUID) (*link.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1 AND user_id = $2`
	return scanLink(r.pool.QueryRow(ctx, query, id, owner))
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM links WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, storeError("check slug", err)
	}
	return exists, nil
}

func (r *postgresRepository) Insert(ctx context.Context, l *link.Link) error {
	style, err := json.Marshal(l.Style)
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}

	query := `
		INSERT INTO links (id, user_id, slug, original_url, qr_config, scan_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.pool.Exec(ctx, query,
		l.ID, l.OwnerID, l.Slug, l.Destination, style, l.ScanCount, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("insert %q: %w", l.Slug, link.ErrSlugTaken)
		}
		return storeError("insert link", err)
	}
	return nil
}

func (r *postgresRepository) UpdateDestination(ctx context.Context, id, owner uuid.UUID, destination string) (*link.Link, error) {
	query := `
		UPDATE links SET original_url = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + linkColumns
	l, err := scanLink(r.pool.QueryRow(ctx, query, id, owner, destination))
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, l.Slug)
	return l, nil
}

func (r *postgresRepository) UpdateStyle(ctx context.Context, id, owner uuid.UUID, style model.Style) (*link.Link, error) {
	raw, err := json.Marshal(style)
	if err != nil {
		return nil, fmt.Errorf("encode style: %w", err)
	}

	query := `
		UPDATE links SET qr_config = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + linkColumns
	l, err := scanLink(r.pool.QueryRow(ctx, query, id, owner, raw))
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, l.Slug)
	return l, nil
}

// IncrementScanCount: một UPDATE tương đối, không read-modify-write
// Cache không bị invalidate: scan count trong cache chỉ dùng để log
func (r *postgresRepository) IncrementScanCount(ctx context.Context, id uuid.UUID, observed int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE links SET scan_count = scan_count + 1 WHERE id = $1`, id)
	if err != nil {
		return storeError("increment scan count", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment %s (observed %d): %w", id, observed, link.ErrLinkNotFound)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id, owner uuid.UUID) error {
	var slug string
	err := r.pool.QueryRow(ctx,
		`DELETE FROM links WHERE id = $1 AND user_id = $2 RETURNING slug`, id, owner,
	).Scan(&slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return link.ErrLinkNotFound
	}
	if err != nil {
		return storeError("delete link", err)
	}

	r.invalidate(ctx, slug)
	return nil
}

func (r *postgresRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]link.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, storeError("list links", err)
	}
	defer rows.Close()

	links := make([]link.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		links = append(links, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list links", err)
	}
	return links, nil
}

func (r *postgresRepository) ListLogoRefs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT qr_config->>'logo' FROM links WHERE COALESCE(qr_config->>'logo', '') <> ''`,
	)
	if err != nil {
		return nil, storeError("list logo refs", err)
	}
	defer rows.Close()

	refs := make([]string, 0)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, storeError("scan logo ref", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("list logo refs", err)
	}
	return refs, nil
}

// invalidate chạy sau mỗi lần ghi:
//  1. đánh dấu dirty để FindBySlug đang chạy dở không populate lại bản cũ
//  2. xoá cache key
//  3. hết staleWindow thì xoá thêm lần nữa cho reader đã qua bước check dirty
func (r *postgresRepository) invalidate(ctx context.Context, slug string) {
	if r.cache == nil {
		return
	}

	if err := r.cache.Set(ctx, slugDirtyKey(slug), true, r.staleWindow); err != nil {
		logger.Warn("slug dirty mark failed", map[string]interface{}{"slug": slug, "error": err.Error()})
	}
	r.deleteCached(ctx, slug)

	time.AfterFunc(r.staleWindow, func() {
		delCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.deleteCached(delCtx, slug)
	})
}

func (r *postgresRepository) deleteCached(ctx context.Context, slug string) {
	if err := r.cache.Delete(ctx, slugCacheKey(slug)); err != nil {
		logger.Warn("slug cache invalidation failed", map[string]interface{}{"slug": slug, "error": err.Error()})
	}
}

// scanLink đọc một row theo thứ tự linkColumns
func scanLink(row pgx.Row) (*link.Link, error) {
	var (
		l        link.Link
		rawStyle []byte
	)
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Slug, &l.Destination, &rawStyle,
		&l.ScanCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, link.ErrLinkNotFound
	}
	if err != nil {
		return nil, storeError("scan link", err)
	}

	l.Style = model.ParseStyle(rawStyle)
	return &l, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, link.ErrStoreUnavailable, err)
}
