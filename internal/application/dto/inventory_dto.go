package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAvailabilityDTO disponibilidad de un producto.
type StockAvailabilityDTO struct {
	ProductID         int64           `json:"product_id"`
	AllocationType    string          `json:"allocation_type"`
	Physical          int64           `json:"physical"`
	TentativeReserved int64           `json:"tentative_reserved"`
	CommittedReserved int64           `json:"committed_reserved"`
	Available         int64           `json:"available"`
	UtilizationPct    decimal.Decimal `json:"utilization_pct"`
}

// InventoryStatusResponse GET /api/inventory/stock.
type InventoryStatusResponse struct {
	Total int                    `json:"total"`
	Items []StockAvailabilityDTO `json:"items"`
}

// LocationStockDTO fila del libro de stock.
type LocationStockDTO struct {
	LocationID     string    `json:"location_id"`
	AllocatableQty int64     `json:"allocatable_qty"`
	CommittedQty   int64     `json:"committed_qty"`
	RemainingQty   int64     `json:"remaining_qty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SalesLimitDTO cupo frame.
type SalesLimitDTO struct {
	FrameLimitQty int64 `json:"frame_limit_qty"`
	ConsumedQty   int64 `json:"consumed_qty"`
	RemainingQty  int64 `json:"remaining_qty"`
}

// AdminStockViewDTO GET /api/admin/inventory/:productId.
type AdminStockViewDTO struct {
	ProductID      int64                `json:"product_id"`
	Name           string               `json:"name"`
	AllocationType string               `json:"allocation_type"`
	Location       LocationStockDTO     `json:"location"`
	SalesLimit     *SalesLimitDTO       `json:"sales_limit,omitempty"`
	Availability   StockAvailabilityDTO `json:"availability"`
	FrameFillPct   decimal.Decimal      `json:"frame_fill_pct"`
}

// AdjustStockRequest body de POST /api/admin/inventory/:productId/adjustments.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// StockAdjustmentDTO registro de ajuste.
type StockAdjustmentDTO struct {
	ID         string    `json:"id"`
	ProductID  int64     `json:"product_id"`
	LocationID string    `json:"location_id"`
	Delta      int64     `json:"delta"`
	BeforeQty  int64     `json:"before_qty"`
	AfterQty   int64     `json:"after_qty"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllocationResultDTO resultado de una corrida manual del motor frame.
type AllocationResultDTO struct {
	ProductID int64 `json:"product_id"`
	Granted   int64 `json:"granted"`
}
