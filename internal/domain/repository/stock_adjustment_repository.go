package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// StockAdjustmentRepository historial inmutable de ajustes administrativos.
type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.StockAdjustment) error
	ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.StockAdjustment, error)
}
