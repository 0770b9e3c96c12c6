package entity

import "github.com/shopspring/decimal"

// StockAvailability vista derivada de disponibilidad de un producto.
type StockAvailability struct {
	ProductID         int64
	AllocationType    string
	Physical          int64
	TentativeReserved int64
	CommittedReserved int64
	Available         int64
	UtilizationPct    decimal.Decimal // comprometido / físico * 100
}

// AdminStockView vista administrativa: tipo de asignación, libro de stock y cupo frame.
type AdminStockView struct {
	Product      *Product
	Location     *LocationStock
	SalesLimit   *SalesLimit // nil si el producto no tiene cupo propio
	Availability StockAvailability
	FrameFillPct decimal.Decimal
}
