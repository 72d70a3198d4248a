package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	ordermodel "returns-backend/internal/domains/order/model"
	orderrepo "returns-backend/internal/domains/order/repository"
	"returns-backend/internal/domains/payment/gateway"
	"returns-backend/internal/domains/payment/model"
	repo "returns-backend/internal/domains/payment/repository"
	returnmodel "returns-backend/internal/domains/returns/model"
	returnrepo "returns-backend/internal/domains/returns/repository"
	"returns-backend/internal/shared"
	"returns-backend/pkg/database"
	"returns-backend/pkg/logger"
	"returns-backend/pkg/metrics"
)

// =====================================================
// REFUND SERVICE INTERFACE
// =====================================================
type RefundService interface {
	// IssueRefund cập nhật refund request; target "refunded" gọi gateway
	IssueRefund(ctx context.Context, refundID uuid.UUID, req model.UpdateRefundStatusRequest) (*model.RefundRequest, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.RefundRequest, error)
}

// =====================================================
// REFUND SERVICE IMPLEMENTATION
// =====================================================
type refundService struct {
	refundRepo repo.RefundRepoInterface
	orderRepo  orderrepo.OrderRepository
	returnRepo returnrepo.ReturnRepository
	txManager  database.TxManager

	gateway        gateway.RefundGateway
	gatewayTimeout time.Duration

	metrics *metrics.WorkflowMetrics
	now     func() time.Time
}

func NewRefundService(
	refundRepo repo.RefundRepoInterface,
	orderRepo orderrepo.OrderRepository,
	returnRepo returnrepo.ReturnRepository,
	txManager database.TxManager,
	gw gateway.RefundGateway,
	gatewayTimeout time.Duration,
	m *metrics.WorkflowMetrics,
) RefundService {
	return &refundService{
		refundRepo:     refundRepo,
		orderRepo:      orderRepo,
		returnRepo:     returnRepo,
		txManager:      txManager,
		gateway:        gw,
		gatewayTimeout: gatewayTimeout,
		metrics:        m,
		now:            time.Now,
	}
}

// =====================================================
// ADMIN: ISSUE REFUND
// =====================================================

// IssueRefund
//
// Business Logic:
// 1. Lock refund_requests → orders (cùng thứ tự với các subsystem khác)
// 2. Refund đã refunded → InvalidState
// 3. Target khác "refunded": chỉ update status + note
// 4. Target "refunded":
//   - linked return phải đang received (advance) hoặc đã refunded (giữ nguyên)
//   - build payload theo provider (MissingProviderData nếu thiếu field)
//   - gọi gateway với timeout, lỗi → GatewayError, rollback toàn bộ
//   - ghi refund, order.payment_status, return.status trong cùng tx
func (s *refundService) IssueRefund(ctx context.Context, refundID uuid.UUID, req model.UpdateRefundStatusRequest) (*model.RefundRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	note := req.Note()

	var advancedReturn bool

	refund, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.RefundRequest, error) {
		advancedReturn = false

		// Step 1: Lock refund + order
		refund, err := s.refundRepo.GetByIDForUpdate(ctx, tx, refundID)
		if err != nil {
			return nil, err
		}
		if refund.IsFinalized() {
			return nil, model.NewRefundFinalized(refund.ID)
		}

		order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, refund.OrderID)
		if err != nil {
			return nil, err
		}

		// Step 2: Không phải refunded → chỉ đổi status
		if req.Status != model.RefundStatusRefunded {
			if err := s.refundRepo.UpdateStatusWithTx(ctx, tx, refund.ID, req.Status, note); err != nil {
				return nil, err
			}
			refund.Status = req.Status
			if note != nil {
				refund.ResponseNote = note
			}
			refund.UpdatedAt = s.now()
			return refund, nil
		}

		// Step 3: Settle qua gateway
		linked, err := s.lockLinkedReturn(ctx, tx, refund)
		if err != nil {
			return nil, err
		}
		advance := linked != nil && linked.Status == returnmodel.StatusReceived
		if !advance {
			linked = nil
		}
		if err := s.settle(ctx, tx, refund, order, linked, note); err != nil {
			return nil, err
		}
		advancedReturn = advance
		return refund, nil
	})
	if err != nil {
		return nil, err
	}

	if advancedReturn {
		s.metrics.IncTransition(returnmodel.StatusReceived, returnmodel.StatusRefunded)
	}

	return refund, nil
}

// lockLinkedReturn lock return request (nếu có) sau order.
// Return đã refunded thủ công vẫn cho settle, chỉ không advance nữa.
func (s *refundService) lockLinkedReturn(ctx context.Context, tx pgx.Tx, refund *model.RefundRequest) (*returnmodel.ReturnRequest, error) {
	if refund.ReturnRequestID == nil {
		return nil, nil
	}

	linked, err := s.returnRepo.GetByIDForUpdate(ctx, tx, *refund.ReturnRequestID)
	if err != nil {
		return nil, err
	}
	if linked.Status != returnmodel.StatusReceived && linked.Status != returnmodel.StatusRefunded {
		return nil, model.NewPaymentError(
			model.ErrCodeLinkedReturnState,
			fmt.Sprintf("linked return request %s is %q, expected %q or %q", linked.ID, linked.Status, returnmodel.StatusReceived, returnmodel.StatusRefunded),
			shared.ErrInvalidState,
		)
	}
	return linked, nil
}

func (s *refundService) settle(
	ctx context.Context,
	tx pgx.Tx,
	refund *model.RefundRequest,
	order *ordermodel.Order,
	linked *returnmodel.ReturnRequest,
	note *string,
) error {
	if !refund.Amount.IsPositive() {
		return model.NewPaymentError(model.ErrCodeInvalidAmount,
			fmt.Sprintf("refund amount %s must be positive", refund.Amount), shared.ErrInvalidState)
	}

	payload, err := BuildProviderPayload(order)
	if err != nil {
		s.metrics.ObserveRefund(order.PaymentMethod, "missing_data", 0)
		return err
	}

	result, err := s.callGateway(ctx, refund, order, payload)
	if err != nil {
		return err
	}

	// Provider không trả txn id → lưu NULL
	var txnID *string
	if result.TransactionID != "" {
		id := result.TransactionID
		txnID = &id
	}
	now := s.now()

	// Các write dưới đây commit cùng nhau hoặc không cái nào
	if err := s.refundRepo.MarkRefundedWithTx(ctx, tx, refund.ID, txnID, now, note); err != nil {
		return err
	}
	if err := s.orderRepo.UpdatePaymentStatusWithTx(ctx, tx, order.ID, ordermodel.PaymentStatusRefunded); err != nil {
		return err
	}
	if linked != nil {
		linked.Status = returnmodel.StatusRefunded
		linked.UpdatedAt = now
		if err := s.returnRepo.UpdateStatusWithTx(ctx, tx, linked); err != nil {
			return err
		}
	}

	refund.Status = model.RefundStatusRefunded
	refund.GatewayTransactionID = txnID
	refund.RefundedAt = &now
	refund.UpdatedAt = now
	if note != nil {
		refund.ResponseNote = note
	}

	logger.Info("refund settled", map[string]interface{}{
		"refund_id":      refund.ID.String(),
		"order_id":       order.ID.String(),
		"provider":       payload.Provider(),
		"amount":         refund.Amount.String(),
		"transaction_id": result.TransactionID,
		"reconciled":     result.Reconciled,
	})

	return nil
}

func (s *refundService) callGateway(
	ctx context.Context,
	refund *model.RefundRequest,
	order *ordermodel.Order,
	payload gateway.ProviderPayload,
) (*gateway.RefundResult, error) {
	provider := payload.Provider()

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.gateway.Refund(gctx, gateway.RefundCommand{
		RefundID:       refund.ID.String(),
		Amount:         refund.Amount,
		OrderTotal:     order.Total,
		Reason:         refund.Reason,
		IdempotencyKey: refund.IdempotencyKey,
		RequestedAt:    refund.CreatedAt,
		Payload:        payload,
	})
	elapsed := time.Since(start)

	if err != nil {
		s.metrics.ObserveRefund(provider, "failure", elapsed)
		code := model.ErrCodeGatewayFailed
		if errors.Is(err, context.DeadlineExceeded) {
			code = model.ErrCodeGatewayTimeout
			err = fmt.Errorf("no response within %s: %w", s.gatewayTimeout, err)
		}
		gwErr := &model.GatewayError{Provider: provider, ErrorCode: code, Err: err}
		logger.ErrorWithFields("refund gateway call failed", gwErr, map[string]interface{}{
			"refund_id": refund.ID.String(),
		})
		return nil, gwErr
	}

	if !result.OK {
		s.metrics.ObserveRefund(provider, "failure", elapsed)
		gwErr := &model.GatewayError{
			Provider:    provider,
			ErrorCode:   model.ErrCodeGatewayFailed,
			Code:        result.ResponseCode,
			RawResponse: result.RawResponse,
			Err:         errors.New(result.Message),
		}
		logger.ErrorWithFields("refund rejected by provider", gwErr, map[string]interface{}{
			"refund_id":    refund.ID.String(),
			"raw_response": result.RawResponse,
		})
		return nil, gwErr
	}

	s.metrics.ObserveRefund(provider, "success", elapsed)
	return result, nil
}

// =====================================================
// ADMIN: LIST REFUNDS BY ORDER
// =====================================================

func (s *refundService) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.RefundRequest, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.refundRepo.ListByOrder(ctx, orderID)
}
