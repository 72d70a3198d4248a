package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"returns-backend/internal/domains/inventory/model"
	"returns-backend/internal/domains/inventory/repository"
)

// StockReconciler cộng lại tồn kho khi hàng trả về được nhận
type StockReconciler interface {
	// Restore chạy trong tx của caller; lỗi ở bất kỳ dòng nào làm cả tx rollback
	Restore(ctx context.Context, tx pgx.Tx, lines []model.RestockLine) error
}

type stockReconciler struct {
	repo repository.RepositoryInterface
}

func NewStockReconciler(repo repository.RepositoryInterface) StockReconciler {
	return &stockReconciler{repo: repo}
}

func (s *stockReconciler) Restore(ctx context.Context, tx pgx.Tx, lines []model.RestockLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return model.NewInvalidQuantity(line.SkuID, line.Quantity)
		}

		if err := s.repo.IncrementSkuStockWithTx(ctx, tx, line.SkuID, line.Quantity); err != nil {
			return err
		}

		if line.FlashSaleItemID != nil {
			if err := s.repo.IncrementFlashSaleQuantityWithTx(ctx, tx, *line.FlashSaleItemID, line.Quantity); err != nil {
				return err
			}
		}

		log.Debug().
			Str("sku_id", line.SkuID.String()).
			Int("quantity", line.Quantity).
			Bool("flash_sale", line.FlashSaleItemID != nil).
			Msg("stock restored")
	}

	return nil
}
