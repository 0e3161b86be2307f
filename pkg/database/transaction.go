package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Beginner là phần của *pgxpool.Pool (hoặc pgx.Conn) cần để mở transaction
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// TxFunc chạy trong transaction, trả lỗi => rollback
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// WithTransaction mở transaction, chạy fn rồi commit
// fn lỗi hoặc panic thì rollback (panic được ném lại sau rollback)
func WithTransaction(ctx context.Context, db Beginner, fn TxFunc) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
