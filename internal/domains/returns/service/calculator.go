package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ordermodel "returns-backend/internal/domains/order/model"
	"returns-backend/internal/domains/returns/model"
)

// CalculateRefundAmount = Σ(đơn giá gốc × số lượng trả) theo SKU,
// cộng phí ship nếu trả toàn bộ đơn. Dòng không khớp SKU nào tính 0.
// Kết quả làm tròn về đơn vị tiền nguyên
func CalculateRefundAmount(order *ordermodel.Order, items []model.ReturnRequestItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		line, ok := order.FindItemBySku(it.SkuID)
		if !ok {
			continue
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if IsFullReturn(order, items) {
		total = total.Add(order.ShippingFee)
	}

	return total.Round(0)
}

// IsFullReturn: mọi SKU của order đều được trả đủ số lượng đã đặt
func IsFullReturn(order *ordermodel.Order, items []model.ReturnRequestItem) bool {
	ordered := order.QuantityBySku()
	if len(ordered) == 0 {
		return false
	}

	returned := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		returned[it.SkuID] += it.Quantity
	}

	for skuID, qty := range ordered {
		if returned[skuID] != qty {
			return false
		}
	}
	return true
}

// MatchItems ghép từng dòng trả với order line cùng SKU
func MatchItems(order *ordermodel.Order, items []model.ReturnRequestItem) []model.MatchedItem {
	ordered := order.QuantityBySku()
	out := make([]model.MatchedItem, 0, len(items))

	for _, it := range items {
		m := model.MatchedItem{
			SkuID:            it.SkuID,
			ReturnedQuantity: it.Quantity,
			OrderedQuantity:  ordered[it.SkuID],
		}
		if line, ok := order.FindItemBySku(it.SkuID); ok {
			price := line.Price
			m.SkuName = line.SkuName
			m.UnitPrice = &price
			m.Matched = true
		}
		out = append(out, m)
	}

	return out
}
