package inventory

import (
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RemainingCapacity cantidad que aún se puede comprometer para el producto.
// REAL: lo que queda en la ubicación. FRAME: además acotado por el cupo de venta si existe.
func RemainingCapacity(product *entity.Product, loc *entity.LocationStock, limit *entity.SalesLimit) int64 {
	remaining := loc.RemainingQty()
	if product.IsFrame() && limit != nil {
		if l := limit.RemainingQty(); l < remaining {
			remaining = l
		}
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Availability calcula disponible = físico - tentativas activas - comprometido,
// evaluado contra el tipo de asignación del producto.
func Availability(product *entity.Product, loc *entity.LocationStock, limit *entity.SalesLimit, tentative int64) entity.StockAvailability {
	available := RemainingCapacity(product, loc, limit) - tentative
	if available < 0 {
		available = 0
	}
	return entity.StockAvailability{
		ProductID:         product.ID,
		AllocationType:    product.AllocationType,
		Physical:          loc.AllocatableQty,
		TentativeReserved: tentative,
		CommittedReserved: loc.CommittedQty,
		Available:         available,
		UtilizationPct:    Percent(loc.CommittedQty, loc.AllocatableQty),
	}
}

// Percent part/total*100 con dos decimales; cero si total <= 0.
func Percent(part, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(total)).Mul(hundred).Round(2)
}
