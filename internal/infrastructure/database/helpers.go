package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	pkgdb "qrlink-backend/pkg/database"
)

// linksSchema: UNIQUE(slug) là thứ chặn race giữa check-slug và insert
var linksSchema = []string{
	`CREATE TABLE IF NOT EXISTS links (
		id           UUID PRIMARY KEY,
		user_id      UUID NOT NULL,
		slug         VARCHAR(50) NOT NULL,
		original_url TEXT NOT NULL,
		qr_config    JSONB NOT NULL DEFAULT '{}'::jsonb,
		scan_count   BIGINT NOT NULL DEFAULT 0 CHECK (scan_count >= 0),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS links_slug_key ON links (slug)`,
	`CREATE INDEX IF NOT EXISTS links_user_id_created_at_idx ON links (user_id, created_at DESC)`,
}

// Migrate tạo bảng links nếu chưa có, chạy trong một transaction
func (db *PostgresDB) Migrate(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	return pkgdb.WithTransaction(ctx, db.Pool, func(ctx context.Context, tx pgx.Tx) error {
		for _, stmt := range linksSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("migrate links: %w", err)
			}
		}
		return nil
	})
}

// Ping kiểm tra database còn phản hồi không
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.HealthCheck(ctx)
}

// Close đóng pool, gọi nhiều lần vẫn an toàn
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		log.Println("[DATABASE] Pool is already closed or was never initialized")
		return nil
	}

	log.Println("[DATABASE] Closing database connection pool...")
	db.Pool.Close()
	db.Pool = nil
	log.Println("[DATABASE] Connection pool closed successfully")

	return nil
}
