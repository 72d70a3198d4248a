package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/domains/returns/model"
	"returns-backend/internal/shared"
	"returns-backend/pkg/database"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresReturnRepository struct {
	pool *pgxpool.Pool
}

func NewReturnRepository(pool *pgxpool.Pool) ReturnRepository {
	return &postgresReturnRepository{pool: pool}
}

const returnColumns = `
	id, order_id, user_id, status, reason, response_note,
	image_urls, video_urls, choose_method_deadline,
	cancelled_by, cancelled_by_role, created_at, updated_at
`

// =====================================================
// CREATE
// =====================================================

func (r *postgresReturnRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, req *model.ReturnRequest) error {
	query := `
		INSERT INTO return_requests (
			id, order_id, user_id, status, reason,
			image_urls, video_urls, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`

	_, err := tx.Exec(ctx, query,
		req.ID,
		req.OrderID,
		req.UserID,
		req.Status,
		req.Reason,
		req.ImageURLs,
		req.VideoURLs,
		req.CreatedAt,
	)
	if err != nil {
		return mapWriteError("create return request", err)
	}

	itemQuery := `
		INSERT INTO return_request_items (id, return_request_id, sku_id, quantity)
		VALUES ($1, $2, $3, $4)
	`
	for _, it := range req.Items {
		if _, err := tx.Exec(ctx, itemQuery, it.ID, req.ID, it.SkuID, it.Quantity); err != nil {
			return mapWriteError("create return request item", err)
		}
	}

	return nil
}

// =====================================================
// GET
// =====================================================

func (r *postgresReturnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	return r.load(ctx, r.pool, id, false)
}

func (r *postgresReturnRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.ReturnRequest, error) {
	return r.load(ctx, tx, id, true)
}

func (r *postgresReturnRepository) load(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*model.ReturnRequest, error) {
	query := "SELECT " + returnColumns + " FROM return_requests WHERE id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}

	req, err := scanReturn(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewReturnNotFound(id)
		}
		return nil, fmt.Errorf("failed to get return request: %w", err)
	}

	items, err := r.items(ctx, q, id)
	if err != nil {
		return nil, err
	}
	req.Items = items

	return req, nil
}

func (r *postgresReturnRepository) items(ctx context.Context, q querier, returnID uuid.UUID) ([]model.ReturnRequestItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, return_request_id, sku_id, quantity
		FROM return_request_items
		WHERE return_request_id = $1
		ORDER BY id
	`, returnID)
	if err != nil {
		return nil, fmt.Errorf("failed to get return items: %w", err)
	}
	defer rows.Close()

	var items []model.ReturnRequestItem
	for rows.Next() {
		var it model.ReturnRequestItem
		if err := rows.Scan(&it.ID, &it.ReturnRequestID, &it.SkuID, &it.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan return item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// =====================================================
// UPDATE STATUS
// =====================================================

func (r *postgresReturnRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, req *model.ReturnRequest) error {
	query := `
		UPDATE return_requests
		SET status = $1,
			response_note = $2,
			choose_method_deadline = $3,
			cancelled_by = $4,
			cancelled_by_role = $5,
			updated_at = $6
		WHERE id = $7
	`

	tag, err := tx.Exec(ctx, query,
		req.Status,
		req.ResponseNote,
		req.ChooseMethodDeadline,
		req.CancelledBy,
		req.CancelledByRole,
		req.UpdatedAt,
		req.ID,
	)
	if err != nil {
		return mapWriteError("update return status", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewReturnNotFound(req.ID)
	}

	return nil
}

// =====================================================
// LIST
// =====================================================

func (r *postgresReturnRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, q model.ListReturnsQuery) ([]*model.ReturnRequest, int64, error) {
	where := []string{"order_id = $1"}
	args := []interface{}{orderID}

	if q.Status != "" {
		args = append(args, q.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.From != nil {
		args = append(args, *q.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if q.To != nil {
		// To là ngày, lấy hết ngày đó
		args = append(args, q.To.Add(24*time.Hour))
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(reason ILIKE $%d OR response_note ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM return_requests WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count return requests: %w", err)
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf(
		"SELECT %s FROM return_requests WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		returnColumns, whereClause, len(args)-1, len(args),
	)

	list, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *postgresReturnRepository) ListOverdueMethodSelection(ctx context.Context, now time.Time, limit int) ([]*model.ReturnRequest, error) {
	query := "SELECT " + returnColumns + `
		FROM return_requests
		WHERE status = $1 AND choose_method_deadline IS NOT NULL AND choose_method_deadline < $2
		ORDER BY choose_method_deadline
		LIMIT $3
	`
	return r.queryList(ctx, query, model.StatusApproved, now, limit)
}

func (r *postgresReturnRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]*model.ReturnRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list return requests: %w", err)
	}
	defer rows.Close()

	list := make([]*model.ReturnRequest, 0)
	for rows.Next() {
		req, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan return request: %w", err)
		}
		list = append(list, req)
	}

	return list, rows.Err()
}

// =====================================================
// AGGREGATES
// =====================================================

func (r *postgresReturnRepository) SumActiveQuantityBySkuWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := tx.Query(ctx, `
		SELECT i.sku_id, COALESCE(SUM(i.quantity), 0)
		FROM return_request_items i
		JOIN return_requests rr ON rr.id = i.return_request_id
		WHERE rr.order_id = $1 AND rr.status NOT IN ($2, $3)
		GROUP BY i.sku_id
	`, orderID, model.StatusRejected, model.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to sum returned quantity: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var skuID uuid.UUID
		var qty int
		if err := rows.Scan(&skuID, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan returned quantity: %w", err)
		}
		out[skuID] = qty
	}

	return out, rows.Err()
}

// =====================================================
// HELPERS
// =====================================================

func scanReturn(row pgx.Row) (*model.ReturnRequest, error) {
	var req model.ReturnRequest
	err := row.Scan(
		&req.ID,
		&req.OrderID,
		&req.UserID,
		&req.Status,
		&req.Reason,
		&req.ResponseNote,
		&req.ImageURLs,
		&req.VideoURLs,
		&req.ChooseMethodDeadline,
		&req.CancelledBy,
		&req.CancelledByRole,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func mapWriteError(op string, err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%s: %w (%s)", op, shared.ErrForeignKeyConflict, database.ConstraintName(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
