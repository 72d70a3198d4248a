package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/domains/payment/model"
	"returns-backend/internal/shared"
	"returns-backend/pkg/database"
)

// =====================================================
// REFUND REQUEST REPOSITORY IMPLEMENTATION
// =====================================================
type refundRepository struct {
	pool *pgxpool.Pool
}

func NewRefundRepository(pool *pgxpool.Pool) RefundRepoInterface {
	return &refundRepository{pool: pool}
}

const refundColumns = `
	id, order_id, return_request_id, user_id, amount, reason, status,
	response_note, gateway_transaction_id, refunded_at, idempotency_key,
	created_at, updated_at
`

// =====================================================
// TRANSACTION-AWARE METHODS
// =====================================================

// CreateWithTx creates refund request within provided transaction
func (r *refundRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, refund *model.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (
			id, order_id, return_request_id, user_id, amount, reason,
			status, idempotency_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := tx.Exec(ctx, query,
		refund.ID,
		refund.OrderID,
		refund.ReturnRequestID,
		refund.UserID,
		refund.Amount,
		refund.Reason,
		refund.Status,
		refund.IdempotencyKey,
		refund.CreatedAt,
		refund.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.NewPaymentError(model.ErrCodeRefundExists, "refund request already exists for this return", shared.ErrInvalidState)
		}
		if database.IsForeignKeyViolation(err) {
			return fmt.Errorf("create refund request: %w (%s)", shared.ErrForeignKeyConflict, database.ConstraintName(err))
		}
		return fmt.Errorf("failed to create refund request: %w", err)
	}

	return nil
}

func (r *refundRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.RefundRequest, error) {
	query := "SELECT " + refundColumns + " FROM refund_requests WHERE id = $1 FOR UPDATE"

	refund, err := scanRefund(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRefundNotFound(id)
		}
		return nil, fmt.Errorf("failed to lock refund request: %w", err)
	}
	return refund, nil
}

// UpdateStatusWithTx updates refund request status within transaction
func (r *refundRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, note *string) error {
	query := `
		UPDATE refund_requests
		SET status = $1,
			response_note = COALESCE($2, response_note),
			updated_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`

	result, err := tx.Exec(ctx, query, status, note, id)
	if err != nil {
		return fmt.Errorf("failed to update refund status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NewRefundFinalized(id)
	}

	return nil
}

func (r *refundRepository) MarkRefundedWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayTxnID *string, refundedAt time.Time, note *string) error {
	query := `
		UPDATE refund_requests
		SET status = 'refunded',
			gateway_transaction_id = $1,
			refunded_at = $2,
			response_note = COALESCE($3, response_note),
			updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
	`

	result, err := tx.Exec(ctx, query, gatewayTxnID, refundedAt, note, id)
	if err != nil {
		return fmt.Errorf("failed to mark refund as refunded: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.NewRefundFinalized(id)
	}

	return nil
}

func (r *refundRepository) ExistsForReturnWithTx(ctx context.Context, tx pgx.Tx, returnRequestID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM refund_requests WHERE return_request_id = $1)`,
		returnRequestID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check refund for return: %w", err)
	}
	return exists, nil
}

// =====================================================
// STANDALONE METHODS
// =====================================================

func (r *refundRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	query := "SELECT " + refundColumns + " FROM refund_requests WHERE id = $1"

	refund, err := scanRefund(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRefundNotFound(id)
		}
		return nil, fmt.Errorf("failed to get refund request: %w", err)
	}
	return refund, nil
}

func (r *refundRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.RefundRequest, error) {
	query := "SELECT " + refundColumns + " FROM refund_requests WHERE order_id = $1 ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund requests: %w", err)
	}
	defer rows.Close()

	refunds := make([]*model.RefundRequest, 0)
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refund request: %w", err)
		}
		refunds = append(refunds, refund)
	}

	return refunds, rows.Err()
}

func scanRefund(row pgx.Row) (*model.RefundRequest, error) {
	var refund model.RefundRequest
	err := row.Scan(
		&refund.ID,
		&refund.OrderID,
		&refund.ReturnRequestID,
		&refund.UserID,
		&refund.Amount,
		&refund.Reason,
		&refund.Status,
		&refund.ResponseNote,
		&refund.GatewayTransactionID,
		&refund.RefundedAt,
		&refund.IdempotencyKey,
		&refund.CreatedAt,
		&refund.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &refund, nil
}
