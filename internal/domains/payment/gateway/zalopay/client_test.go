package zalopay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-backend/internal/domains/payment/gateway"
)

func TestRefundZaloPay(t *testing.T) {
	fixed := time.Date(2025, 5, 2, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantCode string
	}{
		{"success", `{"return_code":1,"return_message":"ok","refund_id":991}`, true, "1"},
		{"processing is not success", `{"return_code":3,"return_message":"processing"}`, false, "3"},
		{"failed", `{"return_code":2,"return_message":"failed"}`, false, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var form map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v2/refund", r.URL.Path)
				assert.NoError(t, r.ParseForm())
				form = map[string]string{}
				for k := range r.PostForm {
					form[k] = r.PostForm.Get(k)
				}
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(NewConfig("2553", "key1", srv.URL), srv.Client())
			require.NoError(t, err)
			c.now = func() time.Time { return fixed }

			cmd := gateway.RefundCommand{Amount: decimal.NewFromInt(200000), IdempotencyKey: "rf_1234-abcd"}
			res, err := c.RefundZaloPay(context.Background(), cmd, gateway.ZaloPayPayload{ZpTransID: "240502000001", AppTransID: "240502_42"})
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, res.OK)
			assert.Equal(t, tt.wantCode, res.ResponseCode)

			// 18:00 UTC = 01:00 ngày hôm sau giờ VN
			assert.Equal(t, "250503_2553_1234abcd", form["m_refund_id"])
			assert.Equal(t, "200000", form["amount"])

			wantMac := GenerateMac(
				BuildRefundMacData("2553", "240502000001", 200000, form["description"], fixed.UnixMilli()),
				"key1",
			)
			assert.Equal(t, wantMac, form["mac"])
		})
	}
}

func TestRefundZaloPayRetryOnLaterDayKeepsRefundID(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		ids = append(ids, r.PostForm.Get("m_refund_id"))
		_, _ = w.Write([]byte(`{"return_code":3}`))
	}))
	defer srv.Close()

	c, err := NewClient(NewConfig("2553", "key1", srv.URL), srv.Client())
	require.NoError(t, err)

	requested := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	cmd := gateway.RefundCommand{Amount: decimal.NewFromInt(1000), IdempotencyKey: "rf_abc", RequestedAt: requested}
	payload := gateway.ZaloPayPayload{ZpTransID: "1", AppTransID: "250601_1"}

	for _, at := range []time.Time{requested.Add(time.Hour), requested.Add(26 * time.Hour), requested.Add(72 * time.Hour)} {
		at := at
		c.now = func() time.Time { return at }
		_, err := c.RefundZaloPay(context.Background(), cmd, payload)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"250601_2553_abc", "250601_2553_abc", "250601_2553_abc"}, ids)
}

func TestNewClientRequiresKeys(t *testing.T) {
	_, err := NewClient(NewConfig("", "", "http://x"), nil)
	assert.Error(t, err)
}
