package service

import (
	"strings"

	ordermodel "returns-backend/internal/domains/order/model"
	"returns-backend/internal/domains/payment/gateway"
	"returns-backend/internal/domains/payment/model"
)

// payloadBuilder build payload refund từ các field provider lưu trên order
type payloadBuilder func(order *ordermodel.Order) (gateway.ProviderPayload, error)

var payloadBuilders = map[string]payloadBuilder{
	model.ProviderMomo:    buildMomoPayload,
	model.ProviderVNPay:   buildVNPayPayload,
	model.ProviderZaloPay: buildZaloPayPayload,
	model.ProviderStripe:  buildStripePayload,
}

// BuildProviderPayload chọn strategy theo payment_method của order.
// COD và provider lạ trả UnsupportedProvider
func BuildProviderPayload(order *ordermodel.Order) (gateway.ProviderPayload, error) {
	build, ok := payloadBuilders[order.PaymentMethod]
	if !ok {
		return nil, model.NewUnsupportedProvider(order.PaymentMethod)
	}
	return build(order)
}

func buildMomoPayload(order *ordermodel.Order) (gateway.ProviderPayload, error) {
	transID, ok := required(order.MomoTransID)
	if !ok {
		return nil, missing(model.ProviderMomo, "momo_trans_id")
	}
	return gateway.MomoPayload{TransID: transID}, nil
}

func buildVNPayPayload(order *ordermodel.Order) (gateway.ProviderPayload, error) {
	txnNo, ok := required(order.VNPayTransactionNo)
	if !ok {
		return nil, missing(model.ProviderVNPay, "vnpay_transaction_no")
	}
	if order.PaidAt == nil {
		return nil, missing(model.ProviderVNPay, "paid_at")
	}
	return gateway.VNPayPayload{
		TransactionNo:   txnNo,
		TransactionDate: order.PaidAt.In(model.VNPayLocation).Format(model.VNPayDateLayout),
	}, nil
}

func buildZaloPayPayload(order *ordermodel.Order) (gateway.ProviderPayload, error) {
	zpTransID, ok := required(order.ZaloPayZpTransID)
	if !ok {
		return nil, missing(model.ProviderZaloPay, "zalopay_zp_trans_id")
	}
	appTransID, ok := required(order.ZaloPayAppTransID)
	if !ok {
		return nil, missing(model.ProviderZaloPay, "zalopay_app_trans_id")
	}
	return gateway.ZaloPayPayload{ZpTransID: zpTransID, AppTransID: appTransID}, nil
}

func buildStripePayload(order *ordermodel.Order) (gateway.ProviderPayload, error) {
	pi, ok := required(order.StripePaymentIntentID)
	if !ok {
		return nil, missing(model.ProviderStripe, "stripe_payment_intent_id")
	}
	return gateway.StripePayload{PaymentIntentID: pi}, nil
}

func required(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

func missing(provider, field string) error {
	return &model.MissingProviderDataError{Provider: provider, Field: field}
}
