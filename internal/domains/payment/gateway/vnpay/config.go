package vnpay

import (
	"fmt"
)

// =====================================================
// VNPAY CONFIGURATION
// =====================================================

type Config struct {
	TmnCode    string // Merchant code (provided by VNPay)
	HashSecret string // Secret key for HMAC-SHA512 signature
	APIUrl     string // VNPay API base URL
	Version    string // VNPay API version (default: "2.1.0")
	CreateBy   string // người thực hiện refund ghi trong request
}

// NewConfig creates VNPay configuration
func NewConfig(tmnCode, hashSecret, apiURL string) *Config {
	return &Config{
		TmnCode:    tmnCode,
		HashSecret: hashSecret,
		APIUrl:     apiURL,
		Version:    "2.1.0",
		CreateBy:   "admin",
	}
}

// Validate validates configuration
func (c *Config) Validate() error {
	if c.TmnCode == "" {
		return fmt.Errorf("VNPay TmnCode is required")
	}
	if c.HashSecret == "" {
		return fmt.Errorf("VNPay HashSecret is required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("VNPay APIUrl is required")
	}
	return nil
}

// GetRefundURL returns refund API URL
func (c *Config) GetRefundURL() string {
	return c.APIUrl + "/merchant_webapi/api/transaction"
}

// =====================================================
// VNPAY CONSTANTS
// =====================================================

const (
	ResponseCodeSuccess          = "00"
	ResponseCodeInvalidRequest   = "02"
	ResponseCodeTxnNotFound      = "91"
	ResponseCodeDuplicateRequest = "94"
	ResponseCodeRefundRejected   = "95"
	ResponseCodeInvalidChecksum  = "97"
	ResponseCodeTimeout          = "99"

	TransactionTypeFull    = "02"
	TransactionTypePartial = "03"

	// vnp_TransactionStatus trả về từ querydr
	TransactionStatusSuccess          = "00"
	TransactionStatusRefundProcessing = "05"
	TransactionStatusRefundSentToBank = "06"
)

// GetResponseMessage returns Vietnamese message for refund response code
func GetResponseMessage(code string) string {
	messages := map[string]string{
		ResponseCodeSuccess:          "Yêu cầu hoàn tiền thành công",
		ResponseCodeInvalidRequest:   "Yêu cầu không hợp lệ",
		ResponseCodeTxnNotFound:      "Không tìm thấy giao dịch yêu cầu hoàn trả",
		ResponseCodeDuplicateRequest: "Yêu cầu bị trùng lặp",
		ResponseCodeRefundRejected:   "Giao dịch không thành công bên VNPAY, từ chối xử lý",
		ResponseCodeInvalidChecksum:  "Checksum không hợp lệ",
		ResponseCodeTimeout:          "Lỗi không xác định",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Lỗi không xác định"
}
