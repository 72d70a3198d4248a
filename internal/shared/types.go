package shared

// =====================================================
// ASYNQ TASK TYPES
// =====================================================
const (
	TypeSyncSkuStock       = "inventory:sync_sku_stock"
	TypeFlagOverdueReturns = "returns:flag_overdue_method"
)

// =====================================================
// ACTOR ROLES
// =====================================================
const (
	RoleAdmin    = "admin"
	RoleCustomer = "user"
)

// Context keys set by AuthMiddleware
const (
	CtxUserID = "userID"
	CtxRole   = "role"
)

// SkuStockSyncPayload là payload cho task inventory:sync_sku_stock
type SkuStockSyncPayload struct {
	SkuIDs []string `json:"sku_ids"`
	Reason string   `json:"reason"`
}
