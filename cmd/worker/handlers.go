package main

import (
	"github.com/hibiken/asynq"

	"returns-backend/internal/shared"
	"returns-backend/pkg/container"
)

// RegisterHandlers gắn job handlers từ container vào mux
func RegisterHandlers(mux *asynq.ServeMux, c *container.Container) {
	// Inventory
	mux.HandleFunc(shared.TypeSyncSkuStock, c.SkuStockSyncJob.ProcessTask)

	// Returns
	mux.HandleFunc(shared.TypeFlagOverdueReturns, c.OverdueMethodJob.ProcessTask)
}
