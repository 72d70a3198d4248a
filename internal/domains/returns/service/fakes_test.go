package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	inventorymodel "returns-backend/internal/domains/inventory/model"
	ordermodel "returns-backend/internal/domains/order/model"
	paymentmodel "returns-backend/internal/domains/payment/model"
	"returns-backend/internal/domains/returns/model"
	"returns-backend/pkg/database"
)

// =====================================================
// IN-MEMORY STORE + TX
// =====================================================
type memStore struct {
	mu        sync.Mutex
	returns   map[uuid.UUID]model.ReturnRequest
	orders    map[uuid.UUID]ordermodel.Order
	refunds   map[uuid.UUID]paymentmodel.RefundRequest
	stock     map[uuid.UUID]int
	flashSale map[uuid.UUID]int
}

func newMemStore() *memStore {
	return &memStore{
		returns:   map[uuid.UUID]model.ReturnRequest{},
		orders:    map[uuid.UUID]ordermodel.Order{},
		refunds:   map[uuid.UUID]paymentmodel.RefundRequest{},
		stock:     map[uuid.UUID]int{},
		flashSale: map[uuid.UUID]int{},
	}
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type fakeTxManager struct {
	store *memStore
}

// WithinTx serialize toàn bộ tx (tương đương row lock) và rollback khi lỗi
func (m *fakeTxManager) WithinTx(ctx context.Context, fn database.TxFunc) error {
	s := m.store
	s.mu.Lock()
	defer s.mu.Unlock()

	returns, orders, refunds := copyMap(s.returns), copyMap(s.orders), copyMap(s.refunds)
	stock, flash := copyMap(s.stock), copyMap(s.flashSale)

	if err := fn(nil); err != nil {
		s.returns, s.orders, s.refunds = returns, orders, refunds
		s.stock, s.flashSale = stock, flash
		return err
	}
	return nil
}

// =====================================================
// RETURN REPO
// =====================================================
type fakeReturnRepo struct {
	store *memStore
}

func (r *fakeReturnRepo) CreateWithTx(_ context.Context, _ pgx.Tx, req *model.ReturnRequest) error {
	r.store.returns[req.ID] = *req
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	ret, ok := r.store.returns[id]
	if !ok {
		return nil, model.NewReturnNotFound(id)
	}
	return &ret, nil
}

func (r *fakeReturnRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*model.ReturnRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeReturnRepo) UpdateStatusWithTx(_ context.Context, _ pgx.Tx, req *model.ReturnRequest) error {
	if _, ok := r.store.returns[req.ID]; !ok {
		return model.NewReturnNotFound(req.ID)
	}
	r.store.returns[req.ID] = *req
	return nil
}

func (r *fakeReturnRepo) ListByOrder(_ context.Context, orderID uuid.UUID, q model.ListReturnsQuery) ([]*model.ReturnRequest, int64, error) {
	out := make([]*model.ReturnRequest, 0)
	for _, ret := range r.store.returns {
		if ret.OrderID == orderID && (q.Status == "" || q.Status == ret.Status) {
			ret := ret
			out = append(out, &ret)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReturnRepo) ListOverdueMethodSelection(_ context.Context, now time.Time, limit int) ([]*model.ReturnRequest, error) {
	out := make([]*model.ReturnRequest, 0)
	for _, ret := range r.store.returns {
		if ret.MethodDeadlinePassed(now) && len(out) < limit {
			ret := ret
			out = append(out, &ret)
		}
	}
	return out, nil
}

func (r *fakeReturnRepo) SumActiveQuantityBySkuWithTx(_ context.Context, _ pgx.Tx, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	for _, ret := range r.store.returns {
		if ret.OrderID != orderID || ret.Status == model.StatusRejected || ret.Status == model.StatusCancelled {
			continue
		}
		for _, it := range ret.Items {
			out[it.SkuID] += it.Quantity
		}
	}
	return out, nil
}

// =====================================================
// ORDER REPO
// =====================================================
type fakeOrderRepo struct {
	store *memStore
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*ordermodel.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, ordermodel.NewOrderNotFound(id)
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetByIDWithTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*ordermodel.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*ordermodel.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdatePaymentStatusWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	o := r.store.orders[id]
	o.PaymentStatus = status
	r.store.orders[id] = o
	return nil
}

// =====================================================
// REFUND REPO
// =====================================================
type fakeRefundRepo struct {
	store *memStore
}

func (r *fakeRefundRepo) CreateWithTx(_ context.Context, _ pgx.Tx, refund *paymentmodel.RefundRequest) error {
	r.store.refunds[refund.ID] = *refund
	return nil
}

func (r *fakeRefundRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*paymentmodel.RefundRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeRefundRepo) UpdateStatusWithTx(context.Context, pgx.Tx, uuid.UUID, string, *string) error {
	return nil
}

func (r *fakeRefundRepo) MarkRefundedWithTx(context.Context, pgx.Tx, uuid.UUID, *string, time.Time, *string) error {
	return nil
}

func (r *fakeRefundRepo) ExistsForReturnWithTx(_ context.Context, _ pgx.Tx, returnID uuid.UUID) (bool, error) {
	return len(r.refundsFor(returnID)) > 0, nil
}

func (r *fakeRefundRepo) GetByID(_ context.Context, id uuid.UUID) (*paymentmodel.RefundRequest, error) {
	refund, ok := r.store.refunds[id]
	if !ok {
		return nil, paymentmodel.NewRefundNotFound(id)
	}
	return &refund, nil
}

func (r *fakeRefundRepo) ListByOrder(context.Context, uuid.UUID) ([]*paymentmodel.RefundRequest, error) {
	return nil, nil
}

func (r *fakeRefundRepo) refundsFor(returnID uuid.UUID) []paymentmodel.RefundRequest {
	var out []paymentmodel.RefundRequest
	for _, refund := range r.store.refunds {
		if refund.ReturnRequestID != nil && *refund.ReturnRequestID == returnID {
			out = append(out, refund)
		}
	}
	return out
}

// =====================================================
// INVENTORY REPO
// =====================================================
type fakeInventoryRepo struct {
	store *memStore
}

func (r *fakeInventoryRepo) IncrementSkuStockWithTx(_ context.Context, _ pgx.Tx, skuID uuid.UUID, qty int) error {
	cur, ok := r.store.stock[skuID]
	if !ok {
		return inventorymodel.NewSkuNotFound(skuID)
	}
	r.store.stock[skuID] = cur + qty
	return nil
}

func (r *fakeInventoryRepo) IncrementFlashSaleQuantityWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, qty int) error {
	cur, ok := r.store.flashSale[id]
	if !ok {
		return inventorymodel.NewFlashSaleNotFound(id)
	}
	r.store.flashSale[id] = cur + qty
	return nil
}

func (r *fakeInventoryRepo) GetSku(_ context.Context, id uuid.UUID) (*inventorymodel.Sku, error) {
	stock, ok := r.store.stock[id]
	if !ok {
		return nil, inventorymodel.NewSkuNotFound(id)
	}
	return &inventorymodel.Sku{ID: id, Stock: stock}, nil
}

func (r *fakeInventoryRepo) ListSkus(context.Context, []uuid.UUID) ([]inventorymodel.Sku, error) {
	return nil, nil
}

// =====================================================
// ENQUEUER
// =====================================================
type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}
