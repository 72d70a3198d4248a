package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	ordermodel "returns-backend/internal/domains/order/model"
	"returns-backend/internal/domains/payment/gateway"
	"returns-backend/internal/domains/payment/model"
	returnmodel "returns-backend/internal/domains/returns/model"
	"returns-backend/pkg/database"
)

// memStore giữ state của cả 3 bảng; fakeTxManager snapshot/restore để giả lập rollback
type memStore struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]model.RefundRequest
	orders  map[uuid.UUID]ordermodel.Order
	returns map[uuid.UUID]returnmodel.ReturnRequest
}

func newMemStore() *memStore {
	return &memStore{
		refunds: map[uuid.UUID]model.RefundRequest{},
		orders:  map[uuid.UUID]ordermodel.Order{},
		returns: map[uuid.UUID]returnmodel.ReturnRequest{},
	}
}

type snapshot struct {
	refunds map[uuid.UUID]model.RefundRequest
	orders  map[uuid.UUID]ordermodel.Order
	returns map[uuid.UUID]returnmodel.ReturnRequest
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		refunds: make(map[uuid.UUID]model.RefundRequest, len(s.refunds)),
		orders:  make(map[uuid.UUID]ordermodel.Order, len(s.orders)),
		returns: make(map[uuid.UUID]returnmodel.ReturnRequest, len(s.returns)),
	}
	for k, v := range s.refunds {
		snap.refunds[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.returns {
		snap.returns[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.refunds = snap.refunds
	s.orders = snap.orders
	s.returns = snap.returns
}

// fakeTxManager serialize mọi tx (giống row lock) và rollback khi fn lỗi
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) WithinTx(ctx context.Context, fn database.TxFunc) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// =====================================================
// REFUND REPO
// =====================================================
type fakeRefundRepo struct {
	store *memStore
}

func (r *fakeRefundRepo) CreateWithTx(_ context.Context, _ pgx.Tx, refund *model.RefundRequest) error {
	r.store.refunds[refund.ID] = *refund
	return nil
}

func (r *fakeRefundRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*model.RefundRequest, error) {
	refund, ok := r.store.refunds[id]
	if !ok {
		return nil, model.NewRefundNotFound(id)
	}
	return &refund, nil
}

func (r *fakeRefundRepo) UpdateStatusWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, status string, note *string) error {
	refund, ok := r.store.refunds[id]
	if !ok || refund.IsFinalized() {
		return model.NewRefundFinalized(id)
	}
	refund.Status = status
	if note != nil {
		refund.ResponseNote = note
	}
	r.store.refunds[id] = refund
	return nil
}

func (r *fakeRefundRepo) MarkRefundedWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, txnID *string, at time.Time, note *string) error {
	refund, ok := r.store.refunds[id]
	if !ok || refund.IsFinalized() {
		return model.NewRefundFinalized(id)
	}
	refund.Status = model.RefundStatusRefunded
	refund.GatewayTransactionID = txnID
	refund.RefundedAt = &at
	if note != nil {
		refund.ResponseNote = note
	}
	r.store.refunds[id] = refund
	return nil
}

func (r *fakeRefundRepo) ExistsForReturnWithTx(_ context.Context, _ pgx.Tx, returnID uuid.UUID) (bool, error) {
	for _, refund := range r.store.refunds {
		if refund.ReturnRequestID != nil && *refund.ReturnRequestID == returnID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error) {
	return r.GetByIDForUpdate(ctx, nil, id)
}

func (r *fakeRefundRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*model.RefundRequest, error) {
	out := make([]*model.RefundRequest, 0)
	for _, refund := range r.store.refunds {
		if refund.OrderID == orderID {
			refund := refund
			out = append(out, &refund)
		}
	}
	return out, nil
}

// =====================================================
// ORDER REPO
// =====================================================
type fakeOrderRepo struct {
	store      *memStore
	failUpdate error
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*ordermodel.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, ordermodel.NewOrderNotFound(id)
	}
	return &order, nil
}

func (r *fakeOrderRepo) GetByIDWithTx(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*ordermodel.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*ordermodel.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdatePaymentStatusWithTx(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	order, ok := r.store.orders[id]
	if !ok {
		return ordermodel.NewOrderNotFound(id)
	}
	order.PaymentStatus = status
	r.store.orders[id] = order
	return nil
}

// =====================================================
// RETURN REPO
// =====================================================
type fakeReturnRepo struct {
	store *memStore
}

func (r *fakeReturnRepo) CreateWithTx(_ context.Context, _ pgx.Tx, req *returnmodel.ReturnRequest) error {
	r.store.returns[req.ID] = *req
	return nil
}

func (r *fakeReturnRepo) GetByID(_ context.Context, id uuid.UUID) (*returnmodel.ReturnRequest, error) {
	req, ok := r.store.returns[id]
	if !ok {
		return nil, returnmodel.NewReturnNotFound(id)
	}
	return &req, nil
}

func (r *fakeReturnRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*returnmodel.ReturnRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeReturnRepo) UpdateStatusWithTx(_ context.Context, _ pgx.Tx, req *returnmodel.ReturnRequest) error {
	if _, ok := r.store.returns[req.ID]; !ok {
		return returnmodel.NewReturnNotFound(req.ID)
	}
	r.store.returns[req.ID] = *req
	return nil
}

func (r *fakeReturnRepo) ListByOrder(context.Context, uuid.UUID, returnmodel.ListReturnsQuery) ([]*returnmodel.ReturnRequest, int64, error) {
	return nil, 0, nil
}

func (r *fakeReturnRepo) ListOverdueMethodSelection(context.Context, time.Time, int) ([]*returnmodel.ReturnRequest, error) {
	return nil, nil
}

func (r *fakeReturnRepo) SumActiveQuantityBySkuWithTx(context.Context, pgx.Tx, uuid.UUID) (map[uuid.UUID]int, error) {
	return map[uuid.UUID]int{}, nil
}

// =====================================================
// GATEWAY
// =====================================================
type fakeGateway struct {
	result *gateway.RefundResult
	err    error
	block  bool
	calls  []gateway.RefundCommand
}

func (g *fakeGateway) Refund(ctx context.Context, cmd gateway.RefundCommand) (*gateway.RefundResult, error) {
	g.calls = append(g.calls, cmd)
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.result, g.err
}
