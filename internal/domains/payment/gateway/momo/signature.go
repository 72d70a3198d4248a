package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// =====================================================
// MOMO SIGNATURE
// =====================================================

// GenerateSignature: HMAC-SHA256(rawString, secretKey), hex encode
// Khác VNPay: field theo thứ tự cố định, không sort
func GenerateSignature(rawSignature, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(rawSignature))
	return hex.EncodeToString(mac.Sum(nil))
}

// BuildRefundSignatureString
// Format: accessKey=$accessKey&amount=$amount&description=$description&orderId=$orderId&partnerCode=$partnerCode&requestId=$requestId&transId=$transId
func BuildRefundSignatureString(accessKey string, amount int64, description, orderID, partnerCode, requestID, transID string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%d&description=%s&orderId=%s&partnerCode=%s&requestId=%s&transId=%s",
		accessKey, amount, description, orderID, partnerCode, requestID, transID,
	)
}

// BuildRefundQuerySignatureString
// Format: accessKey=$accessKey&orderId=$orderId&partnerCode=$partnerCode&requestId=$requestId
func BuildRefundQuerySignatureString(accessKey, orderID, partnerCode, requestID string) string {
	return fmt.Sprintf(
		"accessKey=%s&orderId=%s&partnerCode=%s&requestId=%s",
		accessKey, orderID, partnerCode, requestID,
	)
}
