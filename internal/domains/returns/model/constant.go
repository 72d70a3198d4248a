package model

// =====================================================
// RETURN REQUEST STATUS
// =====================================================
const (
	StatusPending        = "pending"
	StatusApproved       = "approved"
	StatusAwaitingPickup = "awaiting_pickup" // khách tự mang hàng ra bưu cục
	StatusPickupBooked   = "pickup_booked"   // đã đặt lịch shipper tới lấy
	StatusReceived       = "received"
	StatusRefunded       = "refunded"
	StatusRejected       = "rejected"
	StatusCancelled      = "cancelled"
)

// allowedTransitions: current → allowed next
// cancelled từ trạng thái non-terminal bất kỳ chỉ dành cho actor privileged
var allowedTransitions = map[string][]string{
	StatusPending:        {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:       {StatusAwaitingPickup, StatusPickupBooked, StatusCancelled},
	StatusAwaitingPickup: {StatusReceived},
	StatusPickupBooked:   {StatusReceived},
	StatusReceived:       {StatusRefunded},
}

var allStatuses = []string{
	StatusPending,
	StatusApproved,
	StatusAwaitingPickup,
	StatusPickupBooked,
	StatusReceived,
	StatusRefunded,
	StatusRejected,
	StatusCancelled,
}

// AllStatuses trả bản copy danh sách status
func AllStatuses() []string {
	out := make([]string, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsTerminal: refunded, rejected, cancelled
func IsTerminal(status string) bool {
	return status == StatusRefunded || status == StatusRejected || status == StatusCancelled
}

// CanTransition kiểm tra cặp (from, to) theo bảng transition
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReturnMethods khách có thể chọn sau khi được approve
var ReturnMethods = []interface{}{StatusAwaitingPickup, StatusPickupBooked}

// =====================================================
// MEDIA KINDS
// =====================================================
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)
