package model

import (
	"time"

	"github.com/google/uuid"
)

// Sku / FlashSaleItem status. Archived rows vẫn đọc/ghi được:
// soft-delete chỉ là trạng thái, không phải filter ẩn trong query
const (
	SkuStatusActive   = "active"
	SkuStatusArchived = "archived"

	FlashSaleStatusActive   = "active"
	FlashSaleStatusEnded    = "ended"
	FlashSaleStatusArchived = "archived"
)

type Sku struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FlashSaleItem struct {
	ID        uuid.UUID `json:"id"`
	SkuID     uuid.UUID `json:"sku_id"`
	Quantity  int       `json:"quantity"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RestockLine là một dòng hàng trả về cần cộng lại vào kho
// FlashSaleItemID != nil khi order line được mua trong flash sale
type RestockLine struct {
	SkuID           uuid.UUID
	FlashSaleItemID *uuid.UUID
	Quantity        int
}
