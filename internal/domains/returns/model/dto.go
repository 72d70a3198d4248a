package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// UPDATE STATUS (admin)
// =====================================================
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	ResponseNote string `json:"responseNote"`
}

// Validate validates UpdateStatusRequest
// Trạng thái phải nằm trong enum; tính hợp lệ của transition do service quyết định
func (req UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.In(toInterfaces(allStatuses)...)),
		validation.Field(&req.ResponseNote, validation.Length(0, 1000)),
	)
}

// =====================================================
// CREATE RETURN REQUEST (customer)
// =====================================================
type CreateReturnRequest struct {
	Reason    string             `json:"reason"`
	Items     []CreateReturnItem `json:"items"`
	ImageURLs []string           `json:"image_urls"`
	VideoURLs []string           `json:"video_urls"`
}

type CreateReturnItem struct {
	SkuID    string `json:"sku_id"`
	Quantity int    `json:"quantity"`
}

func (it CreateReturnItem) Validate() error {
	return validation.ValidateStruct(&it,
		validation.Field(&it.SkuID, validation.Required, is.UUID),
		validation.Field(&it.Quantity, validation.Required, validation.Min(1)),
	)
}

// Validate validates CreateReturnRequest
func (req CreateReturnRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Reason, validation.Required, validation.Length(5, 1000)),
		validation.Field(&req.Items, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.ImageURLs, validation.Length(0, 10), validation.Each(is.URL)),
		validation.Field(&req.VideoURLs, validation.Length(0, 3), validation.Each(is.URL)),
	)
}

// =====================================================
// CHOOSE RETURN METHOD (customer)
// =====================================================
type ChooseMethodRequest struct {
	Method string `json:"method"`
}

func (req ChooseMethodRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Method, validation.Required, validation.In(ReturnMethods...)),
	)
}

// =====================================================
// LIST RETURNS QUERY
// =====================================================
type ListReturnsQuery struct {
	Status string     `form:"status"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	Search string     `form:"search"`
	Page   int        `form:"page"`
	Limit  int        `form:"limit"`
}

// Validate chuẩn hóa page/limit và kiểm tra status filter
func (q *ListReturnsQuery) Validate() error {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	return validation.ValidateStruct(q,
		validation.Field(&q.Status, validation.In(toInterfaces(allStatuses)...)),
		validation.Field(&q.Search, validation.Length(0, 200)),
		validation.Field(&q.To, validation.When(q.From != nil && q.To != nil,
			validation.By(func(interface{}) error {
				if q.To.Before(*q.From) {
					return validation.NewError("validation_date_range", "must not be before from")
				}
				return nil
			}))),
	)
}

func (q *ListReturnsQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// =====================================================
// RESPONSES
// =====================================================

// ReturnDetailResponse là chi tiết một return request cho admin
type ReturnDetailResponse struct {
	ReturnRequest
	Media          []MediaItem     `json:"media"`
	MatchedItems   []MatchedItem   `json:"matched_items"`
	RefundEstimate decimal.Decimal `json:"refund_estimate"`
	FullReturn     bool            `json:"full_return"`
}

// MatchedItem là dòng trả hàng kèm order line tương ứng (nếu có)
type MatchedItem struct {
	SkuID            uuid.UUID        `json:"sku_id"`
	SkuName          string           `json:"sku_name,omitempty"`
	ReturnedQuantity int              `json:"returned_quantity"`
	OrderedQuantity  int              `json:"ordered_quantity"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
	Matched          bool             `json:"matched"`
}

// ReturnSummary dùng trong list
type ReturnSummary struct {
	ReturnRequest
	Media []MediaItem `json:"media"`
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
