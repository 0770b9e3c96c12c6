package entity

import "time"

// StockAdjustment registro inmutable de una corrección administrativa de capacidad.
type StockAdjustment struct {
	ID         string
	ProductID  int64
	LocationID string
	Delta      int64
	BeforeQty  int64
	AfterQty   int64
	Reason     string
	Actor      string
	CreatedAt  time.Time
}
