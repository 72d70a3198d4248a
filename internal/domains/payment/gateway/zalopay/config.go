package zalopay

import "fmt"

// =====================================================
// ZALOPAY CONFIGURATION
// =====================================================

type Config struct {
	AppID  string
	Key1   string // dùng để ký request
	APIUrl string // https://sb-openapi.zalopay.vn
}

func NewConfig(appID, key1, apiURL string) *Config {
	return &Config{AppID: appID, Key1: key1, APIUrl: apiURL}
}

func (c *Config) Validate() error {
	if c.AppID == "" || c.Key1 == "" {
		return fmt.Errorf("ZaloPay app id and key1 are required")
	}
	if c.APIUrl == "" {
		return fmt.Errorf("ZaloPay APIUrl is required")
	}
	return nil
}

func (c *Config) GetRefundURL() string {
	return c.APIUrl + "/v2/refund"
}

// =====================================================
// ZALOPAY CONSTANTS
// =====================================================
const (
	ReturnCodeSuccess    = 1
	ReturnCodeFailed     = 2
	ReturnCodeProcessing = 3
)

func GetReturnMessage(code int) string {
	switch code {
	case ReturnCodeSuccess:
		return "Hoàn tiền thành công"
	case ReturnCodeFailed:
		return "Hoàn tiền thất bại"
	case ReturnCodeProcessing:
		return "Đang xử lý hoàn tiền"
	default:
		return "Lỗi không xác định"
	}
}
