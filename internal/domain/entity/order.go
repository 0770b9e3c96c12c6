package entity

import "time"

// Estados de pedido relevantes para la asignación.
const (
	OrderStatusPending           = "PENDING"
	OrderStatusConfirmed         = "CONFIRMED"
	OrderStatusPreparingShipment = "PREPARING_SHIPMENT"
	OrderStatusShipped           = "SHIPPED"
	OrderStatusDelivered         = "DELIVERED"
	OrderStatusCancelled         = "CANCELLED"
)

// AllocatableOrderStatuses estados cuyos ítems aún pueden recibir cupo frame.
var AllocatableOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparingShipment,
}

// Order pedido tal como lo entrega el ciclo de vida de pedidos (externo).
type Order struct {
	ID            int64
	SessionID     string
	CustomerEmail string // vacío para invitados
	CustomerName  string
	Status        string
	Items         []*OrderItem
}

// OrderItem línea de pedido. Invariante: 0 <= CommittedQty <= Quantity.
// El ID crece con el orden de creación y define el FIFO del motor frame.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	Quantity     int64 // solicitado
	CommittedQty int64 // cumplido hasta ahora
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Shortfall cantidad pendiente de asignar.
func (i *OrderItem) Shortfall() int64 {
	if d := i.Quantity - i.CommittedQty; d > 0 {
		return d
	}
	return 0
}

// Grant suma qty al comprometido del ítem.
func (i *OrderItem) Grant(qty int64, now time.Time) {
	i.CommittedQty += qty
	i.UpdatedAt = now
}
