package ports

import "context"

// OrderConfirmation datos mínimos para avisar al cliente que su pedido fue confirmado.
type OrderConfirmation struct {
	OrderID      int64  `json:"order_id"`
	Email        string `json:"email"`
	CustomerName string `json:"customer_name,omitempty"`
}

// Notifier puerto de salida de notificaciones (correo vía Kafka, log en desarrollo).
// El contexto debe llevar un timeout: el adaptador habla con un sistema externo.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}
