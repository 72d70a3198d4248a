package zalopay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateMac: HMAC-SHA256(key1, data) hex
func GenerateMac(data, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildRefundMacData
// Format: app_id|zp_trans_id|amount|description|timestamp
func BuildRefundMacData(appID, zpTransID string, amount int64, description string, timestamp int64) string {
	return strings.Join([]string{
		appID,
		zpTransID,
		fmt.Sprintf("%d", amount),
		description,
		fmt.Sprintf("%d", timestamp),
	}, "|")
}
