package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ repository.OrderItemRepository = (*OrderItemRepo)(nil)

// OrderItemRepo ítems de pedido sobre PostgreSQL.
type OrderItemRepo struct {
	q Querier
}

// NewOrderItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderItemRepository(q Querier) *OrderItemRepo {
	return &OrderItemRepo{q: q}
}

const orderItemColumns = `id, order_id, product_id, quantity, committed_qty, status, created_at, updated_at`

func (r *OrderItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.CommittedQty,
			&it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// Save inserta si ID == 0 (asigna ID), si no actualiza comprometido y estado.
func (r *OrderItemRepo) Save(ctx context.Context, it *entity.OrderItem) error {
	if it.ID == 0 {
		query := `
			INSERT INTO order_items (order_id, product_id, quantity, committed_qty, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
		if err := r.q.QueryRow(ctx, query, it.OrderID, it.ProductID, it.Quantity, it.CommittedQty,
			it.Status, it.CreatedAt, it.UpdatedAt).Scan(&it.ID); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
		return nil
	}
	query := `UPDATE order_items SET committed_qty = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, it.ID, it.CommittedQty, it.Status, it.UpdatedAt); err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	return nil
}

// ListByOrder ítems del pedido por ID.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID int64) ([]*entity.OrderItem, error) {
	return r.list(ctx, `SELECT `+orderItemColumns+` FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
}

// ListWithShortfall ítems con faltante del producto en los estados dados, el más antiguo primero.
func (r *OrderItemRepo) ListWithShortfall(ctx context.Context, productID int64, statuses []string) ([]*entity.OrderItem, error) {
	return r.list(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE product_id = $1 AND status = ANY($2) AND committed_qty < quantity
		ORDER BY created_at, id`, productID, statuses)
}

// CommittedTotalsByProduct suma de committed_qty de ítems no cancelados por producto.
func (r *OrderItemRepo) CommittedTotalsByProduct(ctx context.Context) (map[int64]int64, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, COALESCE(SUM(committed_qty), 0) FROM order_items
		WHERE status <> 'CANCELLED'
		GROUP BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("committed totals: %w", err)
	}
	defer rows.Close()
	totals := make(map[int64]int64)
	for rows.Next() {
		var productID, sum int64
		if err := rows.Scan(&productID, &sum); err != nil {
			return nil, fmt.Errorf("scan committed totals: %w", err)
		}
		totals[productID] = sum
	}
	return totals, rows.Err()
}
