package momo

import "fmt"

// =====================================================
// MOMO CONFIGURATION
// =====================================================

type Config struct {
	PartnerCode string // Partner code (provided by Momo)
	AccessKey   string
	SecretKey   string // Secret key for HMAC-SHA256 signature
	APIUrl      string
	Lang        string // "vi" | "en"
}

// NewConfig creates Momo configuration
func NewConfig(partnerCode, accessKey, secretKey, apiURL string) *Config {
	return &Config{
		PartnerCode: partnerCode,
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		APIUrl:      apiURL,
		Lang:        "vi",
	}
}

func (c *Config) Validate() error {
	if c.PartnerCode == "" || c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("Momo partner code, access key and secret key are required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("Momo APIUrl is required")
	}
	return nil
}

// GetRefundURL returns refund API endpoint
func (c *Config) GetRefundURL() string {
	return c.APIUrl + "/v2/gateway/api/refund"
}

// GetRefundQueryURL returns refund status query endpoint
func (c *Config) GetRefundQueryURL() string {
	return c.APIUrl + "/v2/gateway/api/refund/query"
}

// =====================================================
// MOMO CONSTANTS
// =====================================================

const (
	ResultCodeSuccess           = 0
	ResultCodeDuplicateOrderID  = 41
	ResultCodeRefundExceeded    = 1080
	ResultCodeRefundRejected    = 1081
	ResultCodeTransactionFailed = 1005
	ResultCodeInvalidSignature  = 4001
)

// GetResultMessage returns Vietnamese message for result code
func GetResultMessage(code int) string {
	messages := map[int]string{
		ResultCodeSuccess:           "Hoàn tiền thành công",
		ResultCodeDuplicateOrderID:  "Mã yêu cầu hoàn tiền bị trùng",
		ResultCodeRefundExceeded:    "Số tiền hoàn vượt quá số tiền giao dịch",
		ResultCodeRefundRejected:    "Giao dịch hoàn tiền bị từ chối",
		ResultCodeTransactionFailed: "Giao dịch thất bại",
		ResultCodeInvalidSignature:  "Chữ ký không hợp lệ",
	}

	if msg, exists := messages[code]; exists {
		return msg
	}
	return "Lỗi không xác định"
}
