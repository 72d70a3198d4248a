package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"returns-backend/internal/domains/payment/gateway"
)

// =====================================================
// MOMO REFUND CLIENT
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client
}

func NewClient(config *Config, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid Momo config: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{config: config, httpClient: httpClient}, nil
}

type refundRequest struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	TransID     int64  `json:"transId"`
	Lang        string `json:"lang"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
}

type refundResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	ResponseTime int64  `json:"responseTime"`
}

// RefundMomo gọi /v2/gateway/api/refund
// orderId của refund = idempotency key, MoMo trả 41 nếu gửi trùng
func (c *Client) RefundMomo(ctx context.Context, cmd gateway.RefundCommand, p gateway.MomoPayload) (*gateway.RefundResult, error) {
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("refund amount must be positive")
	}
	transID, err := strconv.ParseInt(p.TransID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid momo transId %q: %w", p.TransID, err)
	}

	amount := cmd.Amount.Round(0).IntPart()
	description := cmd.Reason
	if description == "" {
		description = "Hoan tien don hang"
	}

	req := refundRequest{
		PartnerCode: c.config.PartnerCode,
		OrderID:     cmd.IdempotencyKey,
		RequestID:   cmd.IdempotencyKey,
		Amount:      amount,
		TransID:     transID,
		Lang:        c.config.Lang,
		Description: description,
	}
	req.Signature = GenerateSignature(
		BuildRefundSignatureString(c.config.AccessKey, amount, description, req.OrderID, req.PartnerCode, req.RequestID, p.TransID),
		c.config.SecretKey,
	)

	raw, err := c.postJSON(ctx, c.config.GetRefundURL(), req)
	if err != nil {
		return nil, err
	}

	var out refundResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return &gateway.RefundResult{OK: false, Message: "unparseable response", RawResponse: string(raw)}, nil
	}

	// orderId đã dùng: lần gọi trước có thể đã thành công ở MoMo nhưng timeout phía mình
	if out.ResultCode == ResultCodeDuplicateOrderID {
		return c.queryRefund(ctx, cmd.IdempotencyKey, string(raw))
	}

	result := &gateway.RefundResult{
		OK:           out.ResultCode == ResultCodeSuccess,
		ResponseCode: strconv.Itoa(out.ResultCode),
		Message:      GetResultMessage(out.ResultCode),
		RawResponse:  string(raw),
	}
	if out.TransID != 0 {
		result.TransactionID = strconv.FormatInt(out.TransID, 10)
	}

	return result, nil
}

// =====================================================
// REFUND STATUS QUERY
// =====================================================

type queryRequest struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type queryResponse struct {
	OrderID     string `json:"orderId"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	RefundTrans []struct {
		OrderID    string `json:"orderId"`
		Amount     int64  `json:"amount"`
		ResultCode int    `json:"resultCode"`
		TransID    int64  `json:"transId"`
	} `json:"refundTrans"`
}

// queryRefund hỏi trạng thái refund theo orderId (= idempotency key)
// OK chỉ khi MoMo có một refund thành công cho orderId này
func (c *Client) queryRefund(ctx context.Context, refundOrderID, duplicateRaw string) (*gateway.RefundResult, error) {
	req := queryRequest{
		PartnerCode: c.config.PartnerCode,
		OrderID:     refundOrderID,
		RequestID:   refundOrderID + "_q" + strconv.FormatInt(time.Now().UnixMilli(), 10),
		Lang:        c.config.Lang,
	}
	req.Signature = GenerateSignature(
		BuildRefundQuerySignatureString(c.config.AccessKey, req.OrderID, req.PartnerCode, req.RequestID),
		c.config.SecretKey,
	)

	raw, err := c.postJSON(ctx, c.config.GetRefundQueryURL(), req)
	if err != nil {
		return nil, fmt.Errorf("duplicate refund, status query failed: %w", err)
	}

	result := &gateway.RefundResult{
		OK:           false,
		ResponseCode: strconv.Itoa(ResultCodeDuplicateOrderID),
		Message:      GetResultMessage(ResultCodeDuplicateOrderID),
		RawResponse:  duplicateRaw + "\n" + string(raw),
		Reconciled:   true,
	}

	var out queryResponse
	if err := json.Unmarshal(raw, &out); err != nil || out.ResultCode != ResultCodeSuccess {
		return result, nil
	}
	for _, t := range out.RefundTrans {
		if t.ResultCode == ResultCodeSuccess {
			result.OK = true
			result.ResponseCode = strconv.Itoa(ResultCodeSuccess)
			result.Message = GetResultMessage(ResultCodeSuccess)
			if t.TransID != 0 {
				result.TransactionID = strconv.FormatInt(t.TransID, 10)
			}
			break
		}
	}
	return result, nil
}

func (c *Client) postJSON(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call Momo API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return raw, nil
}
