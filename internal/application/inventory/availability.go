package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Las consultas de esta sección leen sin bloqueo: pueden ver cifras ligeramente
// desactualizadas; toda operación que compromete revalida con la fila bloqueada.

// GetAvailableStock disponibilidad de un producto.
func (uc *ReservationUseCase) GetAvailableStock(ctx context.Context, productID int64) (*entity.StockAvailability, error) {
	product, err := uc.reads.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	av, _, _, err := uc.availabilityOf(ctx, product)
	if err != nil {
		return nil, err
	}
	return &av, nil
}

// GetAllInventoryStatus disponibilidad de todo el catálogo.
func (uc *ReservationUseCase) GetAllInventoryStatus(ctx context.Context) ([]entity.StockAvailability, error) {
	products, err := uc.reads.Products().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.StockAvailability, 0, len(products))
	for _, p := range products {
		av, _, _, err := uc.availabilityOf(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, av)
	}
	return out, nil
}

// GetAdminView tipo de asignación, libro de stock y cupo frame de un producto.
func (uc *ReservationUseCase) GetAdminView(ctx context.Context, productID int64) (*entity.AdminStockView, error) {
	product, err := uc.reads.Products().GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
	}
	av, loc, limit, err := uc.availabilityOf(ctx, product)
	if err != nil {
		return nil, err
	}
	view := &entity.AdminStockView{
		Product:      product,
		Location:     loc,
		SalesLimit:   limit,
		Availability: av,
		FrameFillPct: decimal.Zero,
	}
	if limit != nil {
		view.FrameFillPct = inventory.Percent(limit.ConsumedQty, limit.FrameLimitQty)
	}
	return view, nil
}

func (uc *ReservationUseCase) availabilityOf(ctx context.Context, product *entity.Product) (entity.StockAvailability, *entity.LocationStock, *entity.SalesLimit, error) {
	loc, err := uc.reads.LocationStocks().Get(ctx, product.ID, uc.cfg.LocationID)
	if err != nil {
		return entity.StockAvailability{}, nil, nil, err
	}
	var limit *entity.SalesLimit
	if product.IsFrame() {
		if limit, err = uc.reads.SalesLimits().Get(ctx, product.ID); err != nil {
			return entity.StockAvailability{}, nil, nil, err
		}
	}
	tentative, err := uc.reads.Reservations().SumActiveTentative(ctx, product.ID, uc.cfg.Now())
	if err != nil {
		return entity.StockAvailability{}, nil, nil, err
	}
	return inventory.Availability(product, loc, limit, tentative), loc, limit, nil
}
