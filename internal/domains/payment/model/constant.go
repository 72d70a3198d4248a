package model

import "time"

// =====================================================
// PAYMENT PROVIDERS (khớp với orders.payment_method)
// =====================================================
const (
	ProviderMomo    = "momo"
	ProviderVNPay   = "vnpay"
	ProviderZaloPay = "zalopay"
	ProviderStripe  = "stripe"
)

// =====================================================
// REFUND REQUEST STATUS
// =====================================================
const (
	RefundStatusPending  = "pending"
	RefundStatusRefunded = "refunded"
	RefundStatusRejected = "rejected"
)

var ValidRefundStatuses = []interface{}{
	RefundStatusPending,
	RefundStatusRefunded,
	RefundStatusRejected,
}

// =====================================================
// INTERNAL ERROR CODES
// =====================================================
const (
	ErrCodeRefundNotFound      = "PAY006"
	ErrCodeRefundFinalized     = "PAY010"
	ErrCodeUnsupportedProvider = "PAY005"
	ErrCodeMissingProviderData = "PAY025"
	ErrCodeGatewayFailed       = "PAY016"
	ErrCodeGatewayTimeout      = "PAY015"
	ErrCodeLinkedReturnState   = "PAY026"
	ErrCodeRefundExists        = "PAY027"
	ErrCodeInvalidAmount       = "PAY028"
)

// =====================================================
// REFUND CONFIGURATION
// =====================================================
const (
	// ManualRefundReason là reason của RefundRequest sinh ra khi nhận hàng trả
	ManualRefundReason = "manual refund"

	// VNPayDateLayout: yyyyMMddHHmmss
	VNPayDateLayout = "20060102150405"
)

// VNPayLocation: VNPay yêu cầu giờ Việt Nam (GMT+7)
var VNPayLocation = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)
