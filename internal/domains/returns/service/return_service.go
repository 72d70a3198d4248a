package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	inventoryjob "returns-backend/internal/domains/inventory/job"
	inventorymodel "returns-backend/internal/domains/inventory/model"
	inventory "returns-backend/internal/domains/inventory/service"
	ordermodel "returns-backend/internal/domains/order/model"
	orderrepo "returns-backend/internal/domains/order/repository"
	paymentmodel "returns-backend/internal/domains/payment/model"
	paymentrepo "returns-backend/internal/domains/payment/repository"
	"returns-backend/internal/domains/returns/model"
	"returns-backend/internal/domains/returns/repository"
	"returns-backend/internal/shared"
	"returns-backend/pkg/cache"
	"returns-backend/pkg/database"
	"returns-backend/pkg/logger"
	"returns-backend/pkg/metrics"
)

// =====================================================
// RETURN SERVICE INTERFACE
// =====================================================
type ReturnService interface {
	// Admin
	Transition(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest, actor model.Actor) (*model.ReturnRequest, error)
	GetDetail(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.ReturnDetailResponse, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, q model.ListReturnsQuery, actor model.Actor) ([]model.ReturnSummary, int64, error)

	// Customer
	Create(ctx context.Context, orderID uuid.UUID, req model.CreateReturnRequest, actor model.Actor) (*model.ReturnRequest, error)
	ChooseMethod(ctx context.Context, id uuid.UUID, req model.ChooseMethodRequest, actor model.Actor) (*model.ReturnRequest, error)
	Cancel(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.ReturnRequest, error)

	// Worker
	FlagOverdueMethodSelection(ctx context.Context) (int, error)
}

// TaskEnqueuer là phần asynq.Client mà service cần
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Options struct {
	MethodDeadline time.Duration // mặc định 24h
	EstimateTTL    time.Duration
	OverdueBatch   int
}

const (
	OverdueCountCacheKey = "returns:overdue_method:count"
	defaultOverdueBatch  = 500
)

// EstimateCacheKey: returns:{id}:estimate
func EstimateCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("returns:%s:estimate", id)
}

type returnService struct {
	returnRepo repository.ReturnRepository
	orderRepo  orderrepo.OrderRepository
	refundRepo paymentrepo.RefundRepoInterface
	reconciler inventory.StockReconciler
	txManager  database.TxManager

	cache    cache.Store
	enqueuer TaskEnqueuer
	metrics  *metrics.WorkflowMetrics

	opts Options
	now  func() time.Time
}

func NewReturnService(
	returnRepo repository.ReturnRepository,
	orderRepo orderrepo.OrderRepository,
	refundRepo paymentrepo.RefundRepoInterface,
	reconciler inventory.StockReconciler,
	txManager database.TxManager,
	c cache.Store,
	enqueuer TaskEnqueuer,
	m *metrics.WorkflowMetrics,
	opts Options,
) ReturnService {
	if opts.MethodDeadline <= 0 {
		opts.MethodDeadline = 24 * time.Hour
	}
	if opts.EstimateTTL <= 0 {
		opts.EstimateTTL = 10 * time.Minute
	}
	if opts.OverdueBatch <= 0 {
		opts.OverdueBatch = defaultOverdueBatch
	}
	return &returnService{
		returnRepo: returnRepo,
		orderRepo:  orderRepo,
		refundRepo: refundRepo,
		reconciler: reconciler,
		txManager:  txManager,
		cache:      c,
		enqueuer:   enqueuer,
		metrics:    m,
		opts:       opts,
		now:        time.Now,
	}
}

// =====================================================
// STATE MACHINE
// =====================================================

// transitionOutcome là những gì cần làm sau commit
type transitionOutcome struct {
	from      string
	restocked []uuid.UUID
	refundID  *uuid.UUID
}

// guardFunc chạy sau khi lock, trước khi kiểm tra bảng transition
type guardFunc func(req *model.ReturnRequest) error

// Transition - admin đổi trạng thái return request
func (s *returnService) Transition(ctx context.Context, id uuid.UUID, req model.UpdateStatusRequest, actor model.Actor) (*model.ReturnRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	var note *string
	if req.ResponseNote != "" {
		n := req.ResponseNote
		note = &n
	}

	return s.transition(ctx, id, req.Status, note, actor, nil)
}

// transition
//
// Business Logic:
// 1. Lock return_requests row (request thứ 2 chờ và thấy status mới)
// 2. Guard (ownership / deadline cho customer)
// 3. Kiểm tra bảng transition; admin được cancel từ mọi trạng thái non-terminal
// 4. Side effects theo target:
//   - approved: deadline chọn phương thức = now + 1 ngày
//   - cancelled: ghi actor
//   - received: cộng kho + tạo đúng 1 RefundRequest pending
//
// 5. Ghi status, commit tất cả cùng lúc
func (s *returnService) transition(
	ctx context.Context,
	id uuid.UUID,
	target string,
	note *string,
	actor model.Actor,
	guard guardFunc,
) (*model.ReturnRequest, error) {
	var outcome transitionOutcome

	updated, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.ReturnRequest, error) {
		outcome = transitionOutcome{}

		// Step 1: Lock
		ret, err := s.returnRepo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		// Step 2: Guard
		if guard != nil {
			if err := guard(ret); err != nil {
				return nil, err
			}
		}

		// Step 3: Validate transition
		from := ret.Status
		if !allowed(from, target, actor) {
			return nil, &model.TransitionError{From: from, To: target}
		}
		outcome.from = from

		now := s.now()
		ret.Status = target
		ret.UpdatedAt = now
		if note != nil {
			ret.ResponseNote = note
		}

		// Step 4: Side effects
		switch target {
		case model.StatusApproved:
			deadline := now.Add(s.opts.MethodDeadline)
			ret.ChooseMethodDeadline = &deadline

		case model.StatusCancelled:
			actorID, role := actor.ID, actor.Role
			ret.CancelledBy = &actorID
			ret.CancelledByRole = &role

		case model.StatusReceived:
			if err := s.receive(ctx, tx, ret, now, &outcome); err != nil {
				return nil, err
			}
		}

		// Step 5: Persist status
		if err := s.returnRepo.UpdateStatusWithTx(ctx, tx, ret); err != nil {
			return nil, err
		}

		return ret, nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, updated, outcome, actor)
	return updated, nil
}

func allowed(from, to string, actor model.Actor) bool {
	if to == model.StatusCancelled && actor.IsPrivileged() && !model.IsTerminal(from) {
		return true
	}
	return model.CanTransition(from, to)
}

// receive: cộng kho cho từng dòng trả và tạo RefundRequest, trong tx của transition
func (s *returnService) receive(ctx context.Context, tx pgx.Tx, ret *model.ReturnRequest, now time.Time, outcome *transitionOutcome) error {
	order, err := s.orderRepo.GetByIDWithTx(ctx, tx, ret.OrderID)
	if err != nil {
		return err
	}

	lines := restockLines(order, ret.Items)
	if err := s.reconciler.Restore(ctx, tx, lines); err != nil {
		return err
	}

	exists, err := s.refundRepo.ExistsForReturnWithTx(ctx, tx, ret.ID)
	if err != nil {
		return err
	}
	if exists {
		return model.NewReturnError(model.ErrCodeRefundExists,
			fmt.Sprintf("refund request already exists for return %s", ret.ID), shared.ErrInvalidState)
	}

	amount := CalculateRefundAmount(order, ret.Items)
	returnID := ret.ID
	refund := paymentmodel.NewRefundRequest(order.ID, order.UserID, &returnID, amount, paymentmodel.ManualRefundReason, now)
	if err := s.refundRepo.CreateWithTx(ctx, tx, refund); err != nil {
		return err
	}

	for _, l := range lines {
		outcome.restocked = append(outcome.restocked, l.SkuID)
	}
	outcome.refundID = &refund.ID
	return nil
}

// restockLines: mỗi dòng trả → một RestockLine; flash sale lấy từ order line cùng SKU
func restockLines(order *ordermodel.Order, items []model.ReturnRequestItem) []inventorymodel.RestockLine {
	lines := make([]inventorymodel.RestockLine, 0, len(items))
	for _, it := range items {
		line := inventorymodel.RestockLine{SkuID: it.SkuID, Quantity: it.Quantity}
		if orderLine, ok := order.FindItemBySku(it.SkuID); ok {
			line.FlashSaleItemID = orderLine.FlashSaleItemID
		}
		lines = append(lines, line)
	}
	return lines
}

// afterTransition: metrics, log, xóa cache estimate, enqueue sync tồn kho. Lỗi ở đây không làm fail request
func (s *returnService) afterTransition(ctx context.Context, ret *model.ReturnRequest, outcome transitionOutcome, actor model.Actor) {
	s.metrics.IncTransition(outcome.from, ret.Status)

	fields := map[string]interface{}{
		"return_id": ret.ID.String(),
		"from":      outcome.from,
		"to":        ret.Status,
		"actor_id":  actor.ID.String(),
		"role":      actor.Role,
	}
	if outcome.refundID != nil {
		fields["refund_id"] = outcome.refundID.String()
	}
	logger.Info("return request transitioned", fields)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, EstimateCacheKey(ret.ID)); err != nil {
			logger.Warn("estimate cache invalidation failed", map[string]interface{}{"return_id": ret.ID.String(), "error": err.Error()})
		}
	}

	if len(outcome.restocked) == 0 || s.enqueuer == nil {
		return
	}
	task, err := inventoryjob.NewSkuStockSyncTask(outcome.restocked, "return_received")
	if err != nil {
		logger.Error("failed to build sku stock sync task", err)
		return
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
		logger.ErrorWithFields("failed to enqueue sku stock sync", err, fields)
	}
}

// =====================================================
// CUSTOMER ACTIONS
// =====================================================

// Create - khách tạo yêu cầu trả hàng cho đơn đã thanh toán
func (s *returnService) Create(ctx context.Context, orderID uuid.UUID, req model.CreateReturnRequest, actor model.Actor) (*model.ReturnRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	// Gộp số lượng theo SKU
	requested := make(map[uuid.UUID]int)
	skuOrder := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		skuID, err := uuid.Parse(it.SkuID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid sku_id %q", shared.ErrValidation, it.SkuID)
		}
		if _, seen := requested[skuID]; !seen {
			skuOrder = append(skuOrder, skuID)
		}
		requested[skuID] += it.Quantity
	}

	created, err := database.WithTransactionResult(ctx, s.txManager, func(tx pgx.Tx) (*model.ReturnRequest, error) {
		// Lock order để các yêu cầu trả cùng đơn chạy tuần tự
		o, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		if !actor.IsPrivileged() && o.UserID != actor.ID {
			return nil, model.NewReturnError(model.ErrCodeNotOwner, "order does not belong to user", shared.ErrForbidden)
		}
		if o.PaymentStatus != ordermodel.PaymentStatusPaid {
			return nil, model.NewReturnError(model.ErrCodeOrderNotReturnable,
				fmt.Sprintf("order payment status is %q", o.PaymentStatus), shared.ErrInvalidState)
		}

		already, err := s.returnRepo.SumActiveQuantityBySkuWithTx(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		ordered := o.QuantityBySku()

		now := s.now()
		ret := &model.ReturnRequest{
			ID:        uuid.New(),
			OrderID:   orderID,
			UserID:    o.UserID,
			Status:    model.StatusPending,
			Reason:    req.Reason,
			ImageURLs: model.JoinMedia(req.ImageURLs),
			VideoURLs: model.JoinMedia(req.VideoURLs),
			CreatedAt: now,
			UpdatedAt: now,
		}

		for _, skuID := range skuOrder {
			qty := requested[skuID]
			orderedQty, ok := ordered[skuID]
			if !ok {
				return nil, model.NewReturnError(model.ErrCodeSkuNotInOrder,
					fmt.Sprintf("sku %s is not part of order", skuID), shared.ErrValidation)
			}
			if already[skuID]+qty > orderedQty {
				return nil, model.NewReturnError(model.ErrCodeQuantityExceeded,
					fmt.Sprintf("sku %s: returning %d, already %d, ordered %d", skuID, qty, already[skuID], orderedQty),
					shared.ErrValidation)
			}
			ret.Items = append(ret.Items, model.ReturnRequestItem{
				ID:              uuid.New(),
				ReturnRequestID: ret.ID,
				SkuID:           skuID,
				Quantity:        qty,
			})
		}

		if err := s.returnRepo.CreateWithTx(ctx, tx, ret); err != nil {
			return nil, err
		}
		return ret, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("none", model.StatusPending)
	logger.Info("return request created", map[string]interface{}{
		"return_id": created.ID.String(),
		"order_id":  orderID.String(),
		"items":     len(created.Items),
	})

	return created, nil
}

// ChooseMethod - khách chọn tự gửi hoặc đặt lịch lấy hàng, trước deadline
func (s *returnService) ChooseMethod(ctx context.Context, id uuid.UUID, req model.ChooseMethodRequest, actor model.Actor) (*model.ReturnRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	return s.transition(ctx, id, req.Method, nil, actor, func(ret *model.ReturnRequest) error {
		if err := ensureOwner(ret, actor); err != nil {
			return err
		}
		if !actor.IsPrivileged() && ret.MethodDeadlinePassed(s.now()) {
			return model.NewReturnError(model.ErrCodeDeadlinePassed,
				fmt.Sprintf("return method deadline passed at %s", ret.ChooseMethodDeadline.Format(time.RFC3339)),
				shared.ErrInvalidState)
		}
		return nil
	})
}

// Cancel - khách hủy yêu cầu của mình (pending / approved theo bảng transition)
func (s *returnService) Cancel(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.ReturnRequest, error) {
	return s.transition(ctx, id, model.StatusCancelled, nil, actor, func(ret *model.ReturnRequest) error {
		return ensureOwner(ret, actor)
	})
}

func ensureOwner(ret *model.ReturnRequest, actor model.Actor) error {
	if actor.IsPrivileged() || ret.UserID == actor.ID {
		return nil
	}
	return model.NewReturnError(model.ErrCodeNotOwner, "return request does not belong to user", shared.ErrForbidden)
}

// =====================================================
// READ
// =====================================================

type estimateCache struct {
	Amount     decimal.Decimal `json:"amount"`
	FullReturn bool            `json:"full_return"`
}

// GetDetail trả request + media + dòng trả đã ghép + ước tính số tiền hoàn
func (s *returnService) GetDetail(ctx context.Context, id uuid.UUID, actor model.Actor) (*model.ReturnDetailResponse, error) {
	ret, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureOwner(ret, actor); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, ret.OrderID)
	if err != nil {
		return nil, err
	}

	estimate := s.estimate(ctx, ret, order)

	return &model.ReturnDetailResponse{
		ReturnRequest:  *ret,
		Media:          model.SplitMedia(ret.ImageURLs, ret.VideoURLs),
		MatchedItems:   MatchItems(order, ret.Items),
		RefundEstimate: estimate.Amount,
		FullReturn:     estimate.FullReturn,
	}, nil
}

// estimate đọc từ cache, miss thì tính lại
func (s *returnService) estimate(ctx context.Context, ret *model.ReturnRequest, order *ordermodel.Order) estimateCache {
	key := EstimateCacheKey(ret.ID)

	if s.cache != nil {
		var cached estimateCache
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("estimate cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		} else if found {
			return cached
		}
	}

	out := estimateCache{
		Amount:     CalculateRefundAmount(order, ret.Items),
		FullReturn: IsFullReturn(order, ret.Items),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.opts.EstimateTTL); err != nil {
			logger.Warn("estimate cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return out
}

// ListByOrder - list có filter status / khoảng ngày / search, phân trang
func (s *returnService) ListByOrder(ctx context.Context, orderID uuid.UUID, q model.ListReturnsQuery, actor model.Actor) ([]model.ReturnSummary, int64, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.IsPrivileged() && order.UserID != actor.ID {
		return nil, 0, model.NewReturnError(model.ErrCodeNotOwner, "order does not belong to user", shared.ErrForbidden)
	}

	list, total, err := s.returnRepo.ListByOrder(ctx, orderID, q)
	if err != nil {
		return nil, 0, err
	}

	out := make([]model.ReturnSummary, 0, len(list))
	for _, ret := range list {
		out = append(out, model.ReturnSummary{
			ReturnRequest: *ret,
			Media:         model.SplitMedia(ret.ImageURLs, ret.VideoURLs),
		})
	}
	return out, total, nil
}

// =====================================================
// WORKER
// =====================================================

// FlagOverdueMethodSelection chỉ log + ghi số lượng vào cache, không tự hủy
func (s *returnService) FlagOverdueMethodSelection(ctx context.Context) (int, error) {
	list, err := s.returnRepo.ListOverdueMethodSelection(ctx, s.now(), s.opts.OverdueBatch)
	if err != nil {
		return 0, err
	}

	for _, ret := range list {
		logger.Warn("return method deadline passed", map[string]interface{}{
			"return_id": ret.ID.String(),
			"order_id":  ret.OrderID.String(),
			"deadline":  ret.ChooseMethodDeadline,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, OverdueCountCacheKey, len(list), 0); err != nil {
			logger.Error("failed to cache overdue return count", err)
		}
	}

	return len(list), nil
}
