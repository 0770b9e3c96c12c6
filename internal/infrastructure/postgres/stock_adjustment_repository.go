package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.StockAdjustmentRepository = (*StockAdjustmentRepo)(nil)

// StockAdjustmentRepo historial de ajustes sobre PostgreSQL. Solo inserta y lee.
type StockAdjustmentRepo struct {
	q Querier
}

// NewStockAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAdjustmentRepository(q Querier) *StockAdjustmentRepo {
	return &StockAdjustmentRepo{q: q}
}

func (r *StockAdjustmentRepo) Create(ctx context.Context, a *entity.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, product_id, location_id, delta, before_qty, after_qty, reason, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, a.ID, a.ProductID, a.LocationID, a.Delta, a.BeforeQty, a.AfterQty, a.Reason, a.Actor, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert stock adjustment: %w", err)
	}
	return nil
}

func (r *StockAdjustmentRepo) ListByProduct(ctx context.Context, productID int64, limit int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id::text, product_id, location_id, delta, before_qty, after_qty, reason, actor, created_at
		FROM stock_adjustments WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.LocationID, &a.Delta, &a.BeforeQty, &a.AfterQty,
			&a.Reason, &a.Actor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock adjustment: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
