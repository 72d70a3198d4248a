package vnpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"returns-backend/internal/domains/payment/gateway"
)

// =====================================================
// VNPAY REFUND CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(config *Config, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VNPay config: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{config: config, httpClient: httpClient, now: time.Now}, nil
}

// RefundVNPay gọi merchant_webapi refund
// vnp_RequestId lấy từ idempotency key để VNPay trả 94 (duplicate) nếu bị gửi lại
func (c *Client) RefundVNPay(ctx context.Context, cmd gateway.RefundCommand, p gateway.VNPayPayload) (*gateway.RefundResult, error) {
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("refund amount must be positive")
	}

	now := c.now().In(vnLocation)
	requestID := compactKey(cmd.IdempotencyKey)

	txnType := TransactionTypePartial
	if cmd.OrderTotal.Equal(cmd.Amount) {
		txnType = TransactionTypeFull
	}

	// Build refund request parameters
	params := map[string]string{
		"vnp_RequestId":       requestID,
		"vnp_Version":         c.config.Version,
		"vnp_Command":         "refund",
		"vnp_TmnCode":         c.config.TmnCode,
		"vnp_TransactionType": txnType,
		"vnp_TxnRef":          requestID,
		"vnp_Amount":          formatAmount(cmd.Amount),
		"vnp_OrderInfo":       fmt.Sprintf("Hoan tien GD %s", p.TransactionNo),
		"vnp_TransactionNo":   p.TransactionNo,
		"vnp_TransactionDate": p.TransactionDate,
		"vnp_CreateBy":        c.config.CreateBy,
		"vnp_CreateDate":      now.Format("20060102150405"),
		"vnp_IpAddr":          clientIP(ctx),
	}
	params["vnp_SecureHash"] = GenerateSignature(params, refundChecksumFields, c.config.HashSecret)

	bodyBytes, respData, err := c.post(ctx, params)
	if err != nil {
		return nil, err
	}
	if respData == nil {
		return &gateway.RefundResult{OK: false, Message: "unparseable response", RawResponse: string(bodyBytes)}, nil
	}

	code := respData["vnp_ResponseCode"]

	// RequestId trùng: lần trước có thể đã được VNPay nhận, hỏi lại trạng thái giao dịch
	if code == ResponseCodeDuplicateRequest {
		return c.queryRefund(ctx, requestID, p, string(bodyBytes))
	}

	result := &gateway.RefundResult{
		OK:            code == ResponseCodeSuccess,
		TransactionID: respData["vnp_TransactionNo"],
		ResponseCode:  code,
		Message:       GetResponseMessage(code),
		RawResponse:   string(bodyBytes),
	}

	if result.OK && respData["vnp_SecureHash"] != "" && !VerifyResponseSignature(respData, c.config.HashSecret) {
		log.Warn().Str("refund_id", cmd.RefundID).Msg("VNPay refund response checksum mismatch")
		result.OK = false
		result.Message = GetResponseMessage(ResponseCodeInvalidChecksum)
	}

	return result, nil
}

// queryRefund gọi vnp_Command=querydr cho giao dịch gốc.
// OK khi VNPay ghi nhận giao dịch hoàn (type 02/03) hoặc trạng thái đang/đã hoàn tiền.
func (c *Client) queryRefund(ctx context.Context, txnRef string, p gateway.VNPayPayload, duplicateRaw string) (*gateway.RefundResult, error) {
	params := map[string]string{
		"vnp_RequestId":       compactKey(uuid.NewString()),
		"vnp_Version":         c.config.Version,
		"vnp_Command":         "querydr",
		"vnp_TmnCode":         c.config.TmnCode,
		"vnp_TxnRef":          txnRef,
		"vnp_OrderInfo":       fmt.Sprintf("Truy van GD %s", p.TransactionNo),
		"vnp_TransactionNo":   p.TransactionNo,
		"vnp_TransactionDate": p.TransactionDate,
		"vnp_CreateDate":      c.now().In(vnLocation).Format("20060102150405"),
		"vnp_IpAddr":          clientIP(ctx),
	}
	params["vnp_SecureHash"] = GenerateSignature(params, queryChecksumFields, c.config.HashSecret)

	bodyBytes, respData, err := c.post(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("duplicate refund, status query failed: %w", err)
	}

	result := &gateway.RefundResult{
		OK:           false,
		ResponseCode: ResponseCodeDuplicateRequest,
		Message:      GetResponseMessage(ResponseCodeDuplicateRequest),
		RawResponse:  duplicateRaw + "\n" + string(bodyBytes),
		Reconciled:   true,
	}
	if respData == nil || respData["vnp_ResponseCode"] != ResponseCodeSuccess {
		return result, nil
	}

	if refundRecorded(respData["vnp_TransactionType"], respData["vnp_TransactionStatus"]) {
		result.OK = true
		result.ResponseCode = ResponseCodeSuccess
		result.Message = GetResponseMessage(ResponseCodeSuccess)
		result.TransactionID = respData["vnp_TransactionNo"]
	}
	return result, nil
}

func refundRecorded(txnType, txnStatus string) bool {
	switch txnStatus {
	case TransactionStatusRefundProcessing, TransactionStatusRefundSentToBank:
		return true
	case TransactionStatusSuccess:
		return txnType == TransactionTypeFull || txnType == TransactionTypePartial
	}
	return false
}

// post gửi JSON tới merchant_webapi; respData nil nếu body không parse được
func (c *Client) post(ctx context.Context, params map[string]string) ([]byte, map[string]string, error) {
	bodyJSON, err := json.Marshal(params)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GetRefundURL(), bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to call VNPay API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	var respData map[string]string
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return bodyBytes, nil, nil
	}
	return bodyBytes, respData, nil
}

var vnLocation = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)

// VNPay amount = amount * 100
func formatAmount(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).String()
}

// compactKey bỏ prefix và dấu '-' để vừa giới hạn 32 ký tự của vnp_RequestId
func compactKey(key string) string {
	k := strings.ReplaceAll(strings.TrimPrefix(key, "rf_"), "-", "")
	if len(k) > 32 {
		k = k[:32]
	}
	return k
}

type clientIPKey struct{}

// WithClientIP gắn IP của operator vào context (VNPay yêu cầu vnp_IpAddr)
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok && ip != "" && ip != "::1" {
		return ip
	}
	return "127.0.0.1"
}
