package momo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/domains/payment/gateway"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(NewConfig("MOMO", "access", "secret", srv.URL), srv.Client())
	require.NoError(t, err)
	return c
}

func TestRefundMomoSuccess(t *testing.T) {
	var got refundRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/gateway/api/refund", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"resultCode":0,"message":"Thành công.","transId":2150000001}`))
	})

	cmd := gateway.RefundCommand{Amount: decimal.NewFromInt(530000), Reason: "manual refund", IdempotencyKey: "rf_abc"}
	res, err := c.RefundMomo(context.Background(), cmd, gateway.MomoPayload{TransID: "2147483999"})
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, "2150000001", res.TransactionID)
	assert.Equal(t, int64(530000), got.Amount)
	assert.Equal(t, int64(2147483999), got.TransID)
	assert.Equal(t, "rf_abc", got.OrderID)

	want := GenerateSignature(
		BuildRefundSignatureString("access", 530000, "manual refund", "rf_abc", "MOMO", "rf_abc", "2147483999"),
		"secret",
	)
	assert.Equal(t, want, got.Signature)
}

func TestRefundMomoFailureKeepsRawResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"resultCode":1080,"message":"amount exceeded"}`))
	})

	res, err := c.RefundMomo(context.Background(),
		gateway.RefundCommand{Amount: decimal.NewFromInt(1), IdempotencyKey: "k"},
		gateway.MomoPayload{TransID: "1"})
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, "1080", res.ResponseCode)
	assert.Contains(t, res.RawResponse, "amount exceeded")
}

func TestRefundMomoRejectsNonNumericTransID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway should not be called")
	})

	_, err := c.RefundMomo(context.Background(),
		gateway.RefundCommand{Amount: decimal.NewFromInt(1)},
		gateway.MomoPayload{TransID: "abc"})
	assert.Error(t, err)
}

func TestRefundMomoDuplicateReconciledAsSuccess(t *testing.T) {
	var query queryRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/gateway/api/refund":
			_, _ = w.Write([]byte(`{"resultCode":41,"message":"duplicated orderId"}`))
		case "/v2/gateway/api/refund/query":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&query))
			_, _ = w.Write([]byte(`{"resultCode":0,"refundTrans":[{"orderId":"rf_abc","amount":530000,"resultCode":0,"transId":2150000001}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	cmd := gateway.RefundCommand{Amount: decimal.NewFromInt(530000), IdempotencyKey: "rf_abc"}
	res, err := c.RefundMomo(context.Background(), cmd, gateway.MomoPayload{TransID: "2147483999"})
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.True(t, res.Reconciled)
	assert.Equal(t, "2150000001", res.TransactionID)
	assert.Equal(t, "rf_abc", query.OrderID)
	assert.Equal(t, GenerateSignature(
		BuildRefundQuerySignatureString("access", "rf_abc", "MOMO", query.RequestID), "secret"), query.Signature)
}

func TestRefundMomoDuplicateWithoutSuccessfulRefundStaysFailed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/gateway/api/refund/query" {
			_, _ = w.Write([]byte(`{"resultCode":0,"refundTrans":[{"orderId":"rf_abc","resultCode":1080}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"resultCode":41}`))
	})

	res, err := c.RefundMomo(context.Background(),
		gateway.RefundCommand{Amount: decimal.NewFromInt(1), IdempotencyKey: "rf_abc"},
		gateway.MomoPayload{TransID: "1"})
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.True(t, res.Reconciled)
	assert.Equal(t, "41", res.ResponseCode)
}
