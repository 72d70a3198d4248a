package vnpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/domains/payment/gateway"
)

const testSecret = "VNPAYSECRET"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(NewConfig("DEMO01", testSecret, srv.URL), srv.Client())
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2025, 5, 2, 3, 4, 5, 0, time.UTC) }
	return c
}

func testCommand() gateway.RefundCommand {
	return gateway.RefundCommand{
		RefundID:       "r1",
		Amount:         decimal.NewFromInt(200000),
		OrderTotal:     decimal.NewFromInt(530000),
		IdempotencyKey: "rf_0b7e4b5c-8f1d-4d5e-9a51-2f7d4a8c9e10",
	}
}

func TestRefundVNPaySignsRequestAndParsesSuccess(t *testing.T) {
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merchant_webapi/api/transaction", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := map[string]string{
			"vnp_ResponseId":    "resp1",
			"vnp_Command":       "refund",
			"vnp_ResponseCode":  "00",
			"vnp_Message":       "ok",
			"vnp_TmnCode":       "DEMO01",
			"vnp_TransactionNo": "14422574",
		}
		resp["vnp_SecureHash"] = GenerateSignature(resp, refundResponseFields, testSecret)
		_ = json.NewEncoder(w).Encode(resp)
	})

	res, err := c.RefundVNPay(context.Background(), testCommand(), gateway.VNPayPayload{
		TransactionNo:   "13900001",
		TransactionDate: "20250501120000",
	})
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, "14422574", res.TransactionID)
	assert.Equal(t, "20000000", got["vnp_Amount"])
	assert.Equal(t, TransactionTypePartial, got["vnp_TransactionType"])
	assert.Equal(t, "20250501120000", got["vnp_TransactionDate"])
	assert.Equal(t, "20250502100405", got["vnp_CreateDate"])
	assert.Equal(t, "0b7e4b5c8f1d4d5e9a512f7d4a8c9e10", got["vnp_RequestId"])
	assert.Equal(t, GenerateSignature(got, refundChecksumFields, testSecret), got["vnp_SecureHash"])
}

func TestRefundVNPayProviderRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"vnp_ResponseCode":"95","vnp_Message":"rejected"}`))
	})

	cmd := testCommand()
	cmd.OrderTotal = cmd.Amount
	res, err := c.RefundVNPay(context.Background(), cmd, gateway.VNPayPayload{TransactionNo: "1", TransactionDate: "20250501120000"})
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, "95", res.ResponseCode)
	assert.Contains(t, res.RawResponse, "rejected")
}

func TestRefundVNPayUnparseableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	res, err := c.RefundVNPay(context.Background(), testCommand(), gateway.VNPayPayload{TransactionNo: "1", TransactionDate: "x"})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "<html>bad gateway</html>", res.RawResponse)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(NewConfig("", "s", "http://x"), nil)
	assert.Error(t, err)
}

func TestRefundVNPayDuplicateReconciledByQuery(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch body["vnp_Command"] {
		case "refund":
			_, _ = w.Write([]byte(`{"vnp_ResponseCode":"94","vnp_Message":"duplicate"}`))
		case "querydr":
			query = body
			_, _ = w.Write([]byte(`{"vnp_ResponseCode":"00","vnp_TransactionNo":"14422574","vnp_TransactionType":"03","vnp_TransactionStatus":"05"}`))
		default:
			t.Errorf("unexpected command %q", body["vnp_Command"])
		}
	})

	res, err := c.RefundVNPay(context.Background(), testCommand(), gateway.VNPayPayload{
		TransactionNo:   "14422574",
		TransactionDate: "20250501120000",
	})
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.True(t, res.Reconciled)
	assert.Equal(t, "14422574", res.TransactionID)
	require.NotNil(t, query)
	assert.Equal(t, "0b7e4b5c8f1d4d5e9a512f7d4a8c9e10", query["vnp_TxnRef"])
	assert.Equal(t, GenerateSignature(query, queryChecksumFields, testSecret), query["vnp_SecureHash"])
}

func TestRefundVNPayDuplicateWithoutRecordedRefund(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["vnp_Command"] == "querydr" {
			_, _ = w.Write([]byte(`{"vnp_ResponseCode":"00","vnp_TransactionType":"01","vnp_TransactionStatus":"00"}`))
			return
		}
		_, _ = w.Write([]byte(`{"vnp_ResponseCode":"94"}`))
	})

	res, err := c.RefundVNPay(context.Background(), testCommand(), gateway.VNPayPayload{TransactionNo: "1", TransactionDate: "20250501120000"})
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.True(t, res.Reconciled)
	assert.Equal(t, ResponseCodeDuplicateRequest, res.ResponseCode)
}
