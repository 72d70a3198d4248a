package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrProviderNotConfigured: không có client cho provider của payload
var ErrProviderNotConfigured = errors.New("refund provider not configured")

// =====================================================
// PROVIDER PAYLOAD (sealed union)
// =====================================================

// ProviderPayload là dữ liệu riêng của từng provider để refund một giao dịch.
// Chỉ các type trong package này implement được (method unexported)
type ProviderPayload interface {
	Provider() string
	isProviderPayload()
}

type MomoPayload struct {
	TransID string
}

type VNPayPayload struct {
	TransactionNo   string
	TransactionDate string // yyyyMMddHHmmss, giờ Việt Nam
}

type ZaloPayPayload struct {
	ZpTransID  string
	AppTransID string
}

type StripePayload struct {
	PaymentIntentID string
}

func (MomoPayload) Provider() string    { return "momo" }
func (VNPayPayload) Provider() string   { return "vnpay" }
func (ZaloPayPayload) Provider() string { return "zalopay" }
func (StripePayload) Provider() string  { return "stripe" }

func (MomoPayload) isProviderPayload()    {}
func (VNPayPayload) isProviderPayload()   {}
func (ZaloPayPayload) isProviderPayload() {}
func (StripePayload) isProviderPayload()  {}

// =====================================================
// COMMAND / RESULT
// =====================================================

// RefundCommand là một lần gọi refund tới provider
type RefundCommand struct {
	RefundID       string
	Amount         decimal.Decimal
	OrderTotal     decimal.Decimal // VNPay phân biệt full (02) / partial (03)
	Reason         string
	IdempotencyKey string
	// RequestedAt là thời điểm tạo RefundRequest, cố định qua mọi lần retry
	RequestedAt time.Time
	Payload     ProviderPayload
}

// RefundResult: OK=false nghĩa là provider trả lỗi nghiệp vụ (RawResponse giữ nguyên body)
type RefundResult struct {
	OK            bool
	TransactionID string
	ResponseCode  string
	Message       string
	RawResponse   string
	// Reconciled: provider báo trùng request, kết quả lấy từ API query trạng thái
	Reconciled bool
}

// =====================================================
// GATEWAY INTERFACES
// =====================================================

// RefundGateway là adapter duy nhất mà orchestrator gọi
type RefundGateway interface {
	Refund(ctx context.Context, cmd RefundCommand) (*RefundResult, error)
}

type MomoRefunder interface {
	RefundMomo(ctx context.Context, cmd RefundCommand, p MomoPayload) (*RefundResult, error)
}

type VNPayRefunder interface {
	RefundVNPay(ctx context.Context, cmd RefundCommand, p VNPayPayload) (*RefundResult, error)
}

type ZaloPayRefunder interface {
	RefundZaloPay(ctx context.Context, cmd RefundCommand, p ZaloPayPayload) (*RefundResult, error)
}

type StripeRefunder interface {
	RefundStripe(ctx context.Context, cmd RefundCommand, p StripePayload) (*RefundResult, error)
}
