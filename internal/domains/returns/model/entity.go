package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"returns-backend/internal/shared"
)

// =====================================================
// ENTITY: ReturnRequest
// =====================================================
type ReturnRequest struct {
	ID                   uuid.UUID  `json:"id"`
	OrderID              uuid.UUID  `json:"order_id"`
	UserID               uuid.UUID  `json:"user_id"`
	Status               string     `json:"status"`
	Reason               string     `json:"reason"`
	ResponseNote         *string    `json:"response_note,omitempty"`
	ImageURLs            string     `json:"-"` // comma-joined
	VideoURLs            string     `json:"-"` // comma-joined
	ChooseMethodDeadline *time.Time `json:"choose_method_deadline,omitempty"`
	CancelledBy          *uuid.UUID `json:"cancelled_by,omitempty"`
	CancelledByRole      *string    `json:"cancelled_by_role,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	Items []ReturnRequestItem `json:"items,omitempty"`
}

// MethodDeadlinePassed: deadline chỉ là dữ liệu tham khảo, không tự động hủy
func (r *ReturnRequest) MethodDeadlinePassed(now time.Time) bool {
	return r.Status == StatusApproved && r.ChooseMethodDeadline != nil && now.After(*r.ChooseMethodDeadline)
}

// QuantityBySku tổng số lượng trả theo SKU
func (r *ReturnRequest) QuantityBySku() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(r.Items))
	for _, it := range r.Items {
		out[it.SkuID] += it.Quantity
	}
	return out
}

// =====================================================
// ENTITY: ReturnRequestItem (immutable sau khi tạo)
// =====================================================
type ReturnRequestItem struct {
	ID              uuid.UUID `json:"id"`
	ReturnRequestID uuid.UUID `json:"return_request_id"`
	SkuID           uuid.UUID `json:"sku_id"`
	Quantity        int       `json:"quantity"`
}

// =====================================================
// ACTOR
// =====================================================
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsPrivileged: admin được hủy từ mọi trạng thái non-terminal
func (a Actor) IsPrivileged() bool {
	return a.Role == shared.RoleAdmin
}

// =====================================================
// EVIDENCE MEDIA
// =====================================================
type MediaItem struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// SplitMedia tách 2 cột comma-joined thành list {url, kind}
// Ảnh đứng trước video; phần tử rỗng bị bỏ qua
func SplitMedia(imageURLs, videoURLs string) []MediaItem {
	media := make([]MediaItem, 0)
	media = appendMedia(media, imageURLs, MediaKindImage)
	media = appendMedia(media, videoURLs, MediaKindVideo)
	return media
}

func appendMedia(dst []MediaItem, joined, kind string) []MediaItem {
	for _, part := range strings.Split(joined, ",") {
		url := strings.TrimSpace(part)
		if url == "" {
			continue
		}
		dst = append(dst, MediaItem{URL: url, Kind: kind})
	}
	return dst
}

// JoinMedia ghép list URL thành chuỗi lưu DB
func JoinMedia(urls []string) string {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	return strings.Join(clean, ",")
}
