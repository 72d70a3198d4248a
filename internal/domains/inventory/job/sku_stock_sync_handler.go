package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"returns-backend/internal/domains/inventory/repository"
	"returns-backend/internal/shared"
	"returns-backend/pkg/cache"
	"returns-backend/pkg/logger"
)

// SkuStockSyncHandler đồng bộ snapshot tồn kho SKU ra Redis sau khi hàng trả được nhận
type SkuStockSyncHandler struct {
	repo  repository.RepositoryInterface
	cache cache.Store
}

func NewSkuStockSyncHandler(repo repository.RepositoryInterface, cache cache.Store) *SkuStockSyncHandler {
	return &SkuStockSyncHandler{repo: repo, cache: cache}
}

// skuStockCacheDTO là cấu trúc JSON lưu trong Redis
type skuStockCacheDTO struct {
	SkuID     string    `json:"sku_id"`
	Stock     int       `json:"stock"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SkuStockCacheKey: inventory:sku:{id}:stock
func SkuStockCacheKey(skuID string) string {
	return fmt.Sprintf("inventory:sku:%s:stock", skuID)
}

// NewSkuStockSyncTask build asynq task cho các SKU vừa được cộng kho
func NewSkuStockSyncTask(skuIDs []uuid.UUID, reason string) (*asynq.Task, error) {
	ids := make([]string, 0, len(skuIDs))
	for _, id := range skuIDs {
		ids = append(ids, id.String())
	}

	payload, err := json.Marshal(shared.SkuStockSyncPayload{SkuIDs: ids, Reason: reason})
	if err != nil {
		return nil, fmt.Errorf("marshal sku stock sync payload: %w", err)
	}

	return asynq.NewTask(shared.TypeSyncSkuStock, payload, asynq.MaxRetry(3), asynq.Queue("default")), nil
}

// ProcessTask:
// 1. Parse payload
// 2. Đọc stock hiện tại của từng SKU
// 3. Ghi JSON vào Redis (không TTL, DB vẫn là source of truth)
func (h *SkuStockSyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	// 1. Parse payload
	var payload shared.SkuStockSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Error("SkuStockSync: failed to unmarshal payload", err)
		// Payload hỏng → retry cũng không sửa được
		return fmt.Errorf("unmarshal sku stock sync payload: %w", asynq.SkipRetry)
	}
	if len(payload.SkuIDs) == 0 {
		return fmt.Errorf("sku stock sync: empty sku_ids: %w", asynq.SkipRetry)
	}

	for _, raw := range payload.SkuIDs {
		skuID, err := uuid.Parse(raw)
		if err != nil {
			logger.Error("SkuStockSync: invalid sku id "+raw, err)
			continue
		}

		// 2. Đọc stock
		sku, err := h.repo.GetSku(ctx, skuID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			// Lỗi DB → cho phép retry
			return err
		}

		// 3. Ghi cache
		dto := skuStockCacheDTO{
			SkuID:     sku.ID.String(),
			Stock:     sku.Stock,
			Status:    sku.Status,
			UpdatedAt: time.Now().UTC(),
		}
		if err := h.cache.Set(ctx, SkuStockCacheKey(raw), dto, 0); err != nil {
			logger.Error("SkuStockSync: failed to set cache", err)
		}
	}

	logger.Info("SkuStockSync: cache updated", map[string]interface{}{
		"skus":   len(payload.SkuIDs),
		"reason": payload.Reason,
	})

	return nil
}
