package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// LocationStockRepository libro de stock por producto+ubicación.
type LocationStockRepository interface {
	// Get lectura sin bloqueo; si no hay fila devuelve una en cero (sin persistirla).
	Get(ctx context.Context, productID int64, locationID string) (*entity.LocationStock, error)
	// GetForUpdate busca o crea la fila y la bloquea hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, productID int64, locationID string) (*entity.LocationStock, error)
	Save(ctx context.Context, stock *entity.LocationStock) error
	List(ctx context.Context) ([]*entity.LocationStock, error)
}
