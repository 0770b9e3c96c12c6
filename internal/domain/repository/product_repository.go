package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo (DIP). El catálogo es externo: solo se consulta.
type ProductRepository interface {
	// GetByID devuelve nil, nil si el producto no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}
