package entity

import "encoding/json"

// OrderPlacedPayload carga de ORDER_PLACED. FrameProductIDs son los productos frame del pedido
// que el motor de asignación debe volver a evaluar.
type OrderPlacedPayload struct {
	OrderID         int64   `json:"order_id"`
	ProductIDs      []int64 `json:"product_ids"`
	FrameProductIDs []int64 `json:"frame_product_ids"`
}

// OrderConfirmedPayload carga de ORDER_CONFIRMED. Email vacío = pedido de invitado.
type OrderConfirmedPayload struct {
	OrderID      int64  `json:"order_id"`
	Email        string `json:"email,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

// OperationPerformedPayload carga de OPERATION_PERFORMED (auditoría).
type OperationPerformedPayload struct {
	Operation  string          `json:"operation"`
	Actor      string          `json:"actor"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Detail     json.RawMessage `json:"detail,omitempty"`
}

// StockReplenishedPayload carga de STOCK_REPLENISHED: hay capacidad nueva para un producto frame.
type StockReplenishedPayload struct {
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}
