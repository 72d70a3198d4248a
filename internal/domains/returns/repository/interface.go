package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"returns-backend/internal/domains/returns/model"
)

// ReturnRepository - return_requests + return_request_items
type ReturnRepository interface {
	// CreateWithTx insert request và toàn bộ items
	CreateWithTx(ctx context.Context, tx pgx.Tx, req *model.ReturnRequest) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error)

	// GetByIDForUpdate lock row return_requests tới khi tx kết thúc
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.ReturnRequest, error)

	// UpdateStatusWithTx ghi status, response_note, deadline và cancelled_by
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, req *model.ReturnRequest) error

	ListByOrder(ctx context.Context, orderID uuid.UUID, q model.ListReturnsQuery) ([]*model.ReturnRequest, int64, error)

	// ListOverdueMethodSelection: approved và đã quá deadline chọn phương thức
	ListOverdueMethodSelection(ctx context.Context, now time.Time, limit int) ([]*model.ReturnRequest, error)

	// SumActiveQuantityBySkuWithTx tổng số lượng đang/đã trả theo SKU
	// (bỏ qua rejected và cancelled)
	SumActiveQuantityBySkuWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (map[uuid.UUID]int, error)
}
