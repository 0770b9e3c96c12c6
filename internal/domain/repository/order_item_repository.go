package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// OrderItemRepository ítems de pedido (propiedad del ciclo de pedidos, mutados por el motor frame).
type OrderItemRepository interface {
	// Save inserta si ID == 0 (asignando ID) o actualiza.
	Save(ctx context.Context, item *entity.OrderItem) error
	ListByOrder(ctx context.Context, orderID int64) ([]*entity.OrderItem, error)
	// ListWithShortfall ítems del producto en los estados dados con CommittedQty < Quantity,
	// ordenados por orden de creación (más antiguo primero).
	ListWithShortfall(ctx context.Context, productID int64, statuses []string) ([]*entity.OrderItem, error)
	// CommittedTotalsByProduct suma de CommittedQty de ítems no cancelados, por producto.
	CommittedTotalsByProduct(ctx context.Context) (map[int64]int64, error)
}
