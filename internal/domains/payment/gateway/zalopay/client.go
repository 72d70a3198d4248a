package zalopay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"returns-backend/internal/domains/payment/gateway"
)

// ZaloPay yêu cầu m_refund_id theo ngày giờ Việt Nam
var vietnamTZ = time.FixedZone("Asia/Ho_Chi_Minh", 7*60*60)

type Client struct {
	config     *Config
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(config *Config, httpClient *http.Client) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ZaloPay config: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{config: config, httpClient: httpClient, now: time.Now}, nil
}

type refundResponse struct {
	ReturnCode       int    `json:"return_code"`
	ReturnMessage    string `json:"return_message"`
	SubReturnCode    int    `json:"sub_return_code"`
	SubReturnMessage string `json:"sub_return_message"`
	RefundID         int64  `json:"refund_id"`
}

// RefundZaloPay gọi /v2/refund (form-urlencoded)
// m_refund_id sinh từ idempotency key nên retry cùng refund không tạo giao dịch mới
func (c *Client) RefundZaloPay(ctx context.Context, cmd gateway.RefundCommand, p gateway.ZaloPayPayload) (*gateway.RefundResult, error) {
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("refund amount must be positive")
	}

	now := c.now()
	amount := cmd.Amount.Round(0).IntPart()
	timestamp := now.UnixMilli()
	description := fmt.Sprintf("Hoan tien don hang %s", p.AppTransID)
	if cmd.Reason != "" {
		description += " - " + cmd.Reason
	}

	form := url.Values{}
	form.Set("app_id", c.config.AppID)
	form.Set("m_refund_id", c.refundID(refundDate(cmd, now), cmd.IdempotencyKey))
	form.Set("zp_trans_id", p.ZpTransID)
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("timestamp", strconv.FormatInt(timestamp, 10))
	form.Set("description", description)
	form.Set("mac", GenerateMac(
		BuildRefundMacData(c.config.AppID, p.ZpTransID, amount, description, timestamp),
		c.config.Key1,
	))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.GetRefundURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call ZaloPay API: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out refundResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return &gateway.RefundResult{OK: false, Message: "unparseable response", RawResponse: string(raw)}, nil
	}

	// return_code 3 (processing) không tính là thành công, operator retry với cùng m_refund_id
	result := &gateway.RefundResult{
		OK:           out.ReturnCode == ReturnCodeSuccess,
		ResponseCode: strconv.Itoa(out.ReturnCode),
		Message:      GetReturnMessage(out.ReturnCode),
		RawResponse:  string(raw),
	}
	if out.RefundID != 0 {
		result.TransactionID = strconv.FormatInt(out.RefundID, 10)
	}
	return result, nil
}

// refundDate: ngày của RefundRequest, không phải ngày gọi, để retry khác ngày vẫn cùng m_refund_id
func refundDate(cmd gateway.RefundCommand, now time.Time) time.Time {
	if cmd.RequestedAt.IsZero() {
		return now
	}
	return cmd.RequestedAt
}

// refundID: yymmdd_appid_<key>
func (c *Client) refundID(now time.Time, key string) string {
	key = strings.ReplaceAll(strings.TrimPrefix(key, "rf_"), "-", "")
	return fmt.Sprintf("%s_%s_%s", now.In(vietnamTZ).Format("060102"), c.config.AppID, key)
}
