package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermodel "returns-backend/internal/domains/order/model"
	"returns-backend/internal/domains/payment/gateway"
	"returns-backend/internal/domains/payment/model"
	returnmodel "returns-backend/internal/domains/returns/model"
	"returns-backend/internal/shared"
)

type fixture struct {
	store    *memStore
	orders   *fakeOrderRepo
	gateway  *fakeGateway
	svc      *refundService
	order    ordermodel.Order
	ret      returnmodel.ReturnRequest
	refund   model.RefundRequest
	fixedNow time.Time
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T, method string, configure func(o *ordermodel.Order)) *fixture {
	t.Helper()

	store := newMemStore()
	fixedNow := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	order := ordermodel.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Total:         decimal.NewFromInt(530000),
		ShippingFee:   decimal.NewFromInt(30000),
		PaymentMethod: method,
		PaymentStatus: ordermodel.PaymentStatusPaid,
	}
	if configure != nil {
		configure(&order)
	}
	store.orders[order.ID] = order

	ret := returnmodel.ReturnRequest{
		ID:      uuid.New(),
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  returnmodel.StatusReceived,
	}
	store.returns[ret.ID] = ret

	refund := *model.NewRefundRequest(order.ID, order.UserID, &ret.ID, decimal.NewFromInt(530000), model.ManualRefundReason, fixedNow)
	store.refunds[refund.ID] = refund

	orders := &fakeOrderRepo{store: store}
	gw := &fakeGateway{result: &gateway.RefundResult{OK: true, TransactionID: "re_123", RawResponse: "{}"}}

	svc := NewRefundService(
		&fakeRefundRepo{store: store},
		orders,
		&fakeReturnRepo{store: store},
		&fakeTxManager{store: store},
		gw,
		time.Second,
		nil,
	).(*refundService)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{
		store:    store,
		orders:   orders,
		gateway:  gw,
		svc:      svc,
		order:    order,
		ret:      ret,
		refund:   refund,
		fixedNow: fixedNow,
	}
}

func withStripe(o *ordermodel.Order) { o.StripePaymentIntentID = strPtr("pi_123") }

func (f *fixture) assertUntouched(t *testing.T) {
	t.Helper()
	refund := f.store.refunds[f.refund.ID]
	assert.Equal(t, model.RefundStatusPending, refund.Status)
	assert.True(t, refund.Amount.Equal(f.refund.Amount))
	assert.Nil(t, refund.RefundedAt)
	assert.Nil(t, refund.GatewayTransactionID)
	assert.Equal(t, ordermodel.PaymentStatusPaid, f.store.orders[f.order.ID].PaymentStatus)
	assert.Equal(t, returnmodel.StatusReceived, f.store.returns[f.ret.ID].Status)
}

func refundedReq() model.UpdateRefundStatusRequest {
	return model.UpdateRefundStatusRequest{Status: model.RefundStatusRefunded, ResponseNote: "ok"}
}

// =====================================================
// SUCCESS
// =====================================================

func TestIssueRefund_StripeSuccessCommitsAllWrites(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)

	got, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.NoError(t, err)

	assert.Equal(t, model.RefundStatusRefunded, got.Status)

	stored := f.store.refunds[f.refund.ID]
	assert.Equal(t, model.RefundStatusRefunded, stored.Status)
	require.NotNil(t, stored.RefundedAt)
	assert.Equal(t, f.fixedNow, *stored.RefundedAt)
	require.NotNil(t, stored.GatewayTransactionID)
	assert.Equal(t, "re_123", *stored.GatewayTransactionID)

	assert.Equal(t, ordermodel.PaymentStatusRefunded, f.store.orders[f.order.ID].PaymentStatus)
	assert.Equal(t, returnmodel.StatusRefunded, f.store.returns[f.ret.ID].Status)

	require.Len(t, f.gateway.calls, 1)
	call := f.gateway.calls[0]
	assert.Equal(t, f.refund.IdempotencyKey, call.IdempotencyKey)
	assert.Equal(t, gateway.StripePayload{PaymentIntentID: "pi_123"}, call.Payload)
	assert.True(t, call.Amount.Equal(decimal.NewFromInt(530000)))
	assert.Equal(t, f.refund.CreatedAt, call.RequestedAt)
}

func TestIssueRefund_EmptyProviderTxnIDStoresNull(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	f.gateway.result = &gateway.RefundResult{OK: true, RawResponse: `{"return_code":1}`}

	got, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.NoError(t, err)

	assert.Nil(t, got.GatewayTransactionID)
	stored := f.store.refunds[f.refund.ID]
	assert.Equal(t, model.RefundStatusRefunded, stored.Status)
	assert.Nil(t, stored.GatewayTransactionID)
	require.NotNil(t, stored.RefundedAt)
}

func TestIssueRefund_ReturnAlreadyRefundedStillSettles(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	ret := f.store.returns[f.ret.ID]
	ret.Status = returnmodel.StatusRefunded
	f.store.returns[f.ret.ID] = ret

	got, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.NoError(t, err)

	assert.Equal(t, model.RefundStatusRefunded, got.Status)
	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, model.RefundStatusRefunded, f.store.refunds[f.refund.ID].Status)
	assert.Equal(t, ordermodel.PaymentStatusRefunded, f.store.orders[f.order.ID].PaymentStatus)
	assert.Equal(t, returnmodel.StatusRefunded, f.store.returns[f.ret.ID].Status)
}

func TestIssueRefund_WithoutLinkedReturn(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	refund := f.store.refunds[f.refund.ID]
	refund.ReturnRequestID = nil
	f.store.refunds[f.refund.ID] = refund

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.NoError(t, err)

	assert.Equal(t, ordermodel.PaymentStatusRefunded, f.store.orders[f.order.ID].PaymentStatus)
	assert.Equal(t, returnmodel.StatusReceived, f.store.returns[f.ret.ID].Status)
}

// =====================================================
// ATOMICITY
// =====================================================

func TestIssueRefund_FailureAfterFirstWriteRollsBackEverything(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	f.orders.failUpdate = errors.New("connection lost")

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.Error(t, err)

	require.Len(t, f.gateway.calls, 1)
	f.assertUntouched(t)
}

// =====================================================
// PRECONDITIONS
// =====================================================

func TestIssueRefund_MomoMissingTransIDMutatesNothing(t *testing.T) {
	f := newFixture(t, model.ProviderMomo, nil)

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingProviderData)

	var missingErr *model.MissingProviderDataError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, "momo_trans_id", missingErr.Field)

	assert.Empty(t, f.gateway.calls)
	f.assertUntouched(t)
}

func TestIssueRefund_AlreadyRefunded(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.NoError(t, err)

	_, err = f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Len(t, f.gateway.calls, 1)
}

func TestIssueRefund_UnknownRefundIsInvalidState(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)

	_, err := f.svc.IssueRefund(context.Background(), uuid.New(), refundedReq())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestIssueRefund_LinkedReturnNotReceived(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	ret := f.store.returns[f.ret.ID]
	ret.Status = returnmodel.StatusCancelled
	f.store.returns[f.ret.ID] = ret

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Empty(t, f.gateway.calls)
}

func TestIssueRefund_InvalidTargetStatus(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, model.UpdateRefundStatusRequest{Status: "paid"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

// =====================================================
// GATEWAY FAILURES
// =====================================================

func TestIssueRefund_GatewayRejectionLeavesRefundPending(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	f.gateway.result = &gateway.RefundResult{OK: false, ResponseCode: "failed", Message: "card expired", RawResponse: `{"status":"failed"}`}

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrGateway)

	var gwErr *model.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, `{"status":"failed"}`, gwErr.RawResponse)
	assert.Equal(t, "stripe", gwErr.Provider)

	f.assertUntouched(t)
}

func TestIssueRefund_GatewayTransportError(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	f.gateway.result = nil
	f.gateway.err = errors.New("dial tcp: connection refused")

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	assert.ErrorIs(t, err, shared.ErrGateway)

	var gwErr *model.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, model.ErrCodeGatewayFailed, gwErr.ErrorCode)
	f.assertUntouched(t)
}

func TestIssueRefund_GatewayTimeoutIsGatewayError(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	f.gateway.block = true
	f.svc.gatewayTimeout = 20 * time.Millisecond

	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	assert.ErrorIs(t, err, shared.ErrGateway)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var gwErr *model.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, model.ErrCodeGatewayTimeout, gwErr.ErrorCode)
	f.assertUntouched(t)
}

// =====================================================
// NON-REFUND TARGETS
// =====================================================

func TestIssueRefund_RejectSkipsGateway(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)

	got, err := f.svc.IssueRefund(context.Background(), f.refund.ID, model.UpdateRefundStatusRequest{
		Status:       model.RefundStatusRejected,
		ResponseNote: "duplicate claim",
	})
	require.NoError(t, err)

	assert.Equal(t, model.RefundStatusRejected, got.Status)
	stored := f.store.refunds[f.refund.ID]
	assert.Equal(t, model.RefundStatusRejected, stored.Status)
	require.NotNil(t, stored.ResponseNote)
	assert.Equal(t, "duplicate claim", *stored.ResponseNote)
	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, ordermodel.PaymentStatusPaid, f.store.orders[f.order.ID].PaymentStatus)
}

func TestListByOrder(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)

	list, err := f.svc.ListByOrder(context.Background(), f.order.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.refund.ID, list[0].ID)

	_, err = f.svc.ListByOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestIssueRefund_RejectedIsTerminal(t *testing.T) {
	f := newFixture(t, model.ProviderStripe, withStripe)
	_, err := f.svc.IssueRefund(context.Background(), f.refund.ID, model.UpdateRefundStatusRequest{Status: model.RefundStatusRejected})
	require.NoError(t, err)

	_, err = f.svc.IssueRefund(context.Background(), f.refund.ID, model.UpdateRefundStatusRequest{Status: model.RefundStatusPending})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.svc.IssueRefund(context.Background(), f.refund.ID, refundedReq())
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	var payErr *model.PaymentError
	require.True(t, errors.As(err, &payErr))
	assert.Equal(t, model.ErrCodeRefundFinalized, payErr.Code)

	assert.Empty(t, f.gateway.calls)
	assert.Equal(t, model.RefundStatusRejected, f.store.refunds[f.refund.ID].Status)
	assert.Equal(t, ordermodel.PaymentStatusPaid, f.store.orders[f.order.ID].PaymentStatus)
}
