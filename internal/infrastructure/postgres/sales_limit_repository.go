package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.SalesLimitRepository = (*SalesLimitRepo)(nil)

// SalesLimitRepo cupos frame sobre PostgreSQL.
type SalesLimitRepo struct {
	q Querier
}

// NewSalesLimitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesLimitRepository(q Querier) *SalesLimitRepo {
	return &SalesLimitRepo{q: q}
}

const salesLimitSelect = `SELECT product_id, frame_limit_qty, consumed_qty, updated_at FROM sales_limits WHERE product_id = $1`

func (r *SalesLimitRepo) get(ctx context.Context, query string, productID int64) (*entity.SalesLimit, error) {
	var l entity.SalesLimit
	err := r.q.QueryRow(ctx, query, productID).Scan(&l.ProductID, &l.FrameLimitQty, &l.ConsumedQty, &l.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales limit: %w", err)
	}
	return &l, nil
}

// Get cupo del producto sin bloqueo; nil, nil si no tiene.
func (r *SalesLimitRepo) Get(ctx context.Context, productID int64) (*entity.SalesLimit, error) {
	return r.get(ctx, salesLimitSelect, productID)
}

// GetForUpdate cupo bloqueado hasta el fin de la tx; se toma siempre después de la fila del libro.
func (r *SalesLimitRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.SalesLimit, error) {
	return r.get(ctx, salesLimitSelect+` FOR UPDATE`, productID)
}

// Save upsert del cupo.
func (r *SalesLimitRepo) Save(ctx context.Context, l *entity.SalesLimit) error {
	query := `
		INSERT INTO sales_limits (product_id, frame_limit_qty, consumed_qty, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id)
		DO UPDATE SET frame_limit_qty = EXCLUDED.frame_limit_qty,
		              consumed_qty    = EXCLUDED.consumed_qty,
		              updated_at      = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, l.ProductID, l.FrameLimitQty, l.ConsumedQty, l.UpdatedAt); err != nil {
		return fmt.Errorf("save sales limit: %w", err)
	}
	return nil
}
