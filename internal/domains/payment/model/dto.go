package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UpdateRefundStatusRequest - body của PUT /refunds/:id/status
type UpdateRefundStatusRequest struct {
	Status       string `json:"status"`
	ResponseNote string `json:"responseNote"`
}

func (req UpdateRefundStatusRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Status, validation.Required, validation.In(ValidRefundStatuses...)),
		validation.Field(&req.ResponseNote, validation.Length(0, 1000)),
	)
}

// Note trả nil khi không có note để giữ giá trị cũ trong DB
func (req UpdateRefundStatusRequest) Note() *string {
	if req.ResponseNote == "" {
		return nil
	}
	note := req.ResponseNote
	return &note
}
