package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PAYMENT METHOD CONSTANTS (provider codes)
// =====================================================
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodMomo    = "momo"
	PaymentMethodVNPay   = "vnpay"
	PaymentMethodZaloPay = "zalopay"
	PaymentMethodStripe  = "stripe"
)

// =====================================================
// PAYMENT STATUS CONSTANTS
// =====================================================
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// =====================================================
// ENTITY: Order
// =====================================================
// Order được ghi bởi checkout; workflow trả hàng chỉ đọc,
// ngoại trừ payment_status khi refund thành công
type Order struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	UserID        uuid.UUID       `json:"user_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentStatus string          `json:"payment_status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`

	// Provider transaction identifiers, set khi thanh toán thành công
	MomoTransID           *string `json:"momo_trans_id,omitempty"`
	VNPayTransactionNo    *string `json:"vnpay_transaction_no,omitempty"`
	ZaloPayZpTransID      *string `json:"zalopay_zp_trans_id,omitempty"`
	ZaloPayAppTransID     *string `json:"zalopay_app_trans_id,omitempty"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty"`

	Items []OrderItem `json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPaymentCompleted checks if payment is completed
func (o *Order) IsPaymentCompleted() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// QuantityBySku tổng số lượng đã đặt theo SKU
func (o *Order) QuantityBySku() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(o.Items))
	for _, it := range o.Items {
		out[it.SkuID] += it.Quantity
	}
	return out
}

// FindItemBySku trả order line đầu tiên có cùng SKU
func (o *Order) FindItemBySku(skuID uuid.UUID) (*OrderItem, bool) {
	for i := range o.Items {
		if o.Items[i].SkuID == skuID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// =====================================================
// ENTITY: OrderItem
// =====================================================
type OrderItem struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	SkuID           uuid.UUID       `json:"sku_id"`
	SkuName         string          `json:"sku_name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"` // đơn giá đã áp dụng coupon / flash sale
	FlashSaleItemID *uuid.UUID      `json:"flash_sale_item_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CalculateSubtotal calculates item subtotal
func (oi *OrderItem) CalculateSubtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
