package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTransaction function:
//     Begin transaction từ pool
//     Defer rollback - tự động rollback nếu fn return error hoặc panic
//     Commit nếu không có error

// TxFunc là function type được execute trong transaction
type TxFunc func(pgx.Tx) error

// TxManager cho phép service chạy logic trong một transaction
// mà không phụ thuộc trực tiếp vào pgxpool (dễ fake khi test)
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

type poolTxManager struct {
	pool *pgxpool.Pool
}

// NewTxManager tạo TxManager dựa trên pgx pool
func NewTxManager(pool *pgxpool.Pool) TxManager {
	return &poolTxManager{pool: pool}
}

func (m *poolTxManager) WithinTx(ctx context.Context, fn TxFunc) error {
	return WithTransaction(ctx, m.pool, fn)
}

// WithTransaction wraps một function trong transaction
// Auto rollback nếu có error, auto commit nếu success
func WithTransaction(ctx context.Context, pool *pgxpool.Pool, fn TxFunc) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult wraps function có return value trong transaction
func WithTransactionResult[T any](ctx context.Context, m TxManager, fn func(pgx.Tx) (T, error)) (T, error) {
	var result T

	err := m.WithinTx(ctx, func(tx pgx.Tx) error {
		var fnErr error
		result, fnErr = fn(tx)
		return fnErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
