package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"returns-backend/internal/shared"
	"returns-backend/pkg/logger"
)

// OverdueFlagger là phần ReturnService mà job cần
type OverdueFlagger interface {
	FlagOverdueMethodSelection(ctx context.Context) (int, error)
}

// OverdueMethodHandler quét các return request đã approve nhưng khách chưa chọn phương thức
// trước deadline. Job chỉ flag (log + cache count), không tự chuyển trạng thái.
type OverdueMethodHandler struct {
	flagger OverdueFlagger
}

func NewOverdueMethodHandler(flagger OverdueFlagger) *OverdueMethodHandler {
	return &OverdueMethodHandler{flagger: flagger}
}

// NewOverdueMethodTask: payload rỗng, scheduler đăng ký theo cron
func NewOverdueMethodTask() *asynq.Task {
	return asynq.NewTask(shared.TypeFlagOverdueReturns, nil, asynq.MaxRetry(1), asynq.Queue("low"))
}

func (h *OverdueMethodHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	count, err := h.flagger.FlagOverdueMethodSelection(ctx)
	if err != nil {
		logger.Error("OverdueMethod: scan failed", err)
		return fmt.Errorf("flag overdue return method selection: %w", err)
	}

	logger.Info("OverdueMethod: scan completed", map[string]interface{}{
		"task":    task.Type(),
		"overdue": count,
	})
	return nil
}
