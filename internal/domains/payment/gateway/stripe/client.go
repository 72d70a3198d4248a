package stripe

import (
	"context"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"

	"returns-backend/internal/domains/payment/gateway"
)

// RefundCreator là chữ ký của refund.New, test inject fake
type RefundCreator func(params *stripeapi.RefundParams) (*stripeapi.Refund, error)

type Client struct {
	create RefundCreator
}

// NewClient set stripe.Key global giống cách stripe-go được khởi tạo ở server
func NewClient(secretKey string) (*Client, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripeapi.Key = secretKey
	return &Client{create: refund.New}, nil
}

// NewClientWithCreator dùng cho test
func NewClientWithCreator(create RefundCreator) *Client {
	return &Client{create: create}
}

// RefundStripe tạo Refund cho PaymentIntent.
// VND là zero-decimal currency trên Stripe nên amount gửi nguyên giá trị.
func (c *Client) RefundStripe(ctx context.Context, cmd gateway.RefundCommand, p gateway.StripePayload) (*gateway.RefundResult, error) {
	params := &stripeapi.RefundParams{
		PaymentIntent: stripeapi.String(p.PaymentIntentID),
		Amount:        stripeapi.Int64(cmd.Amount.Round(0).IntPart()),
		Reason:        stripeapi.String(string(stripeapi.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(cmd.IdempotencyKey)
	params.AddMetadata("refund_request_id", cmd.RefundID)

	r, err := c.create(params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("stripe refund aborted: %w", ctxErr)
		}
		var stripeErr *stripeapi.Error
		if errors.As(err, &stripeErr) {
			return &gateway.RefundResult{
				OK:           false,
				ResponseCode: string(stripeErr.Code),
				Message:      stripeErr.Msg,
				RawResponse:  stripeErr.Error(),
			}, nil
		}
		return nil, fmt.Errorf("failed to call Stripe API: %w", err)
	}

	ok := r.Status != stripeapi.RefundStatusFailed && r.Status != stripeapi.RefundStatusCanceled
	return &gateway.RefundResult{
		OK:            ok,
		TransactionID: r.ID,
		ResponseCode:  string(r.Status),
		Message:       string(r.Status),
		RawResponse:   fmt.Sprintf(`{"id":%q,"status":%q,"amount":%d}`, r.ID, r.Status, r.Amount),
	}, nil
}
