package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// =====================================================
// VNPAY SIGNATURE
// =====================================================

// refundChecksumFields: thứ tự field trong chuỗi ký của API refund
// data = vnp_RequestId|vnp_Version|vnp_Command|vnp_TmnCode|vnp_TransactionType|vnp_TxnRef|
//        vnp_Amount|vnp_TransactionNo|vnp_TransactionDate|vnp_CreateBy|vnp_CreateDate|vnp_IpAddr|vnp_OrderInfo
var refundChecksumFields = []string{
	"vnp_RequestId",
	"vnp_Version",
	"vnp_Command",
	"vnp_TmnCode",
	"vnp_TransactionType",
	"vnp_TxnRef",
	"vnp_Amount",
	"vnp_TransactionNo",
	"vnp_TransactionDate",
	"vnp_CreateBy",
	"vnp_CreateDate",
	"vnp_IpAddr",
	"vnp_OrderInfo",
}

// queryChecksumFields: chuỗi ký của querydr
// data = vnp_RequestId|vnp_Version|vnp_Command|vnp_TmnCode|vnp_TxnRef|vnp_TransactionDate|vnp_CreateDate|vnp_IpAddr|vnp_OrderInfo
var queryChecksumFields = []string{
	"vnp_RequestId",
	"vnp_Version",
	"vnp_Command",
	"vnp_TmnCode",
	"vnp_TxnRef",
	"vnp_TransactionDate",
	"vnp_CreateDate",
	"vnp_IpAddr",
	"vnp_OrderInfo",
}

// refundResponseFields: thứ tự field khi verify checksum của response
var refundResponseFields = []string{
	"vnp_ResponseId",
	"vnp_Command",
	"vnp_ResponseCode",
	"vnp_Message",
	"vnp_TmnCode",
	"vnp_TxnRef",
	"vnp_Amount",
	"vnp_BankCode",
	"vnp_PayDate",
	"vnp_TransactionNo",
	"vnp_TransactionType",
	"vnp_TransactionStatus",
	"vnp_OrderInfo",
}

// GenerateSignature: HMAC-SHA512(secret, v1|v2|...), hex lowercase
func GenerateSignature(params map[string]string, fields []string, secretKey string) string {
	values := make([]string, len(fields))
	for i, f := range fields {
		values[i] = params[f]
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyResponseSignature kiểm tra vnp_SecureHash của response refund
func VerifyResponseSignature(params map[string]string, secretKey string) bool {
	received := params["vnp_SecureHash"]
	if received == "" {
		return false
	}
	expected := GenerateSignature(params, refundResponseFields, secretKey)
	return strings.EqualFold(received, expected)
}
