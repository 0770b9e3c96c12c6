package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.LocationStockRepository = (*LocationStockRepo)(nil)

// LocationStockRepo libro de stock sobre PostgreSQL.
type LocationStockRepo struct {
	q Querier
}

// NewLocationStockRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationStockRepository(q Querier) *LocationStockRepo {
	return &LocationStockRepo{q: q}
}

const locationStockColumns = `product_id, location_id, allocatable_qty, committed_qty, created_at, updated_at`

func scanLocationStock(row interface{ Scan(dest ...any) error }) (*entity.LocationStock, error) {
	var s entity.LocationStock
	if err := row.Scan(&s.ProductID, &s.LocationID, &s.AllocatableQty, &s.CommittedQty, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get lectura sin bloqueo; si no hay fila devuelve una en cero sin persistirla.
func (r *LocationStockRepo) Get(ctx context.Context, productID int64, locationID string) (*entity.LocationStock, error) {
	query := `SELECT ` + locationStockColumns + ` FROM location_stocks WHERE product_id = $1 AND location_id = $2`
	s, err := scanLocationStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if isNoRows(err) {
			return entity.NewLocationStock(productID, locationID, time.Now()), nil
		}
		return nil, fmt.Errorf("get location stock: %w", err)
	}
	return s, nil
}

// GetForUpdate busca o crea la fila y la bloquea (SELECT FOR UPDATE) hasta el fin de la tx.
// Debe llamarse sobre una tx: con el pool el bloqueo se suelta al volver.
func (r *LocationStockRepo) GetForUpdate(ctx context.Context, productID int64, locationID string) (*entity.LocationStock, error) {
	insert := `
		INSERT INTO location_stocks (product_id, location_id, allocatable_qty, committed_qty)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (product_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, productID, locationID); err != nil {
		return nil, fmt.Errorf("ensure location stock: %w", err)
	}
	query := `
		SELECT ` + locationStockColumns + `
		FROM location_stocks WHERE product_id = $1 AND location_id = $2
		FOR UPDATE`
	s, err := scanLocationStock(r.q.QueryRow(ctx, query, productID, locationID))
	if err != nil {
		if isLockTimeout(err) {
			return nil, fmt.Errorf("%w: fila del libro %d/%s ocupada, reintente", domain.ErrConflict, productID, locationID)
		}
		return nil, fmt.Errorf("get location stock for update: %w", err)
	}
	return s, nil
}

// Save persiste cantidades (upsert por producto+ubicación).
func (r *LocationStockRepo) Save(ctx context.Context, s *entity.LocationStock) error {
	query := `
		INSERT INTO location_stocks (product_id, location_id, allocatable_qty, committed_qty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET allocatable_qty = EXCLUDED.allocatable_qty,
		              committed_qty   = EXCLUDED.committed_qty,
		              updated_at      = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, s.ProductID, s.LocationID, s.AllocatableQty, s.CommittedQty, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save location stock: %w", err)
	}
	return nil
}

// List todas las filas del libro.
func (r *LocationStockRepo) List(ctx context.Context) ([]*entity.LocationStock, error) {
	rows, err := r.q.Query(ctx, `SELECT `+locationStockColumns+` FROM location_stocks ORDER BY product_id, location_id`)
	if err != nil {
		return nil, fmt.Errorf("list location stocks: %w", err)
	}
	defer rows.Close()
	var list []*entity.LocationStock
	for rows.Next() {
		s, err := scanLocationStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
