package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// SalesLimitRepository cupos frame por producto. Ambos Get devuelven nil, nil si no hay cupo.
type SalesLimitRepository interface {
	Get(ctx context.Context, productID int64) (*entity.SalesLimit, error)
	GetForUpdate(ctx context.Context, productID int64) (*entity.SalesLimit, error)
	Save(ctx context.Context, limit *entity.SalesLimit) error
}
