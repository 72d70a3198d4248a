package gateway

import (
	"context"
	"fmt"
)

// Router dispatch RefundCommand tới client tương ứng theo type của payload
type Router struct {
	momo    MomoRefunder
	vnpay   VNPayRefunder
	zalopay ZaloPayRefunder
	stripe  StripeRefunder
}

// NewRouter nhận các client; client nil nghĩa là provider chưa cấu hình
func NewRouter(momo MomoRefunder, vnpay VNPayRefunder, zalopay ZaloPayRefunder, stripe StripeRefunder) *Router {
	return &Router{momo: momo, vnpay: vnpay, zalopay: zalopay, stripe: stripe}
}

func (r *Router) Refund(ctx context.Context, cmd RefundCommand) (*RefundResult, error) {
	switch p := cmd.Payload.(type) {
	case MomoPayload:
		if r.momo == nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p.Provider())
		}
		return r.momo.RefundMomo(ctx, cmd, p)
	case VNPayPayload:
		if r.vnpay == nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p.Provider())
		}
		return r.vnpay.RefundVNPay(ctx, cmd, p)
	case ZaloPayPayload:
		if r.zalopay == nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p.Provider())
		}
		return r.zalopay.RefundZaloPay(ctx, cmd, p)
	case StripePayload:
		if r.stripe == nil {
			return nil, fmt.Errorf("%w: %s", ErrProviderNotConfigured, p.Provider())
		}
		return r.stripe.RefundStripe(ctx, cmd, p)
	default:
		return nil, fmt.Errorf("unsupported refund payload %T", cmd.Payload)
	}
}
