package dto

// OrderItemRequest línea del pedido que entrega el servicio de pedidos.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int64 `json:"quantity" validate:"required,min=1"`
}

// CommitOrderRequest body de POST /api/orders/commit.
type CommitOrderRequest struct {
	OrderID       int64              `json:"order_id" validate:"required"`
	SessionID     string             `json:"session_id"`
	CustomerEmail string             `json:"customer_email"`
	CustomerName  string             `json:"customer_name"`
	Items         []OrderItemRequest `json:"items" validate:"required,min=1"`
}

// CommitLineDTO resultado por línea. Shortfall > 0 solo en productos FRAME.
type CommitLineDTO struct {
	ItemID    int64 `json:"item_id"`
	ProductID int64 `json:"product_id"`
	Requested int64 `json:"requested"`
	Committed int64 `json:"committed"`
	Shortfall int64 `json:"shortfall"`
}

// CommitOrderResponse respuesta del compromiso del pedido.
type CommitOrderResponse struct {
	OrderID int64           `json:"order_id"`
	Lines   []CommitLineDTO `json:"lines"`
}

// ConfirmOrderRequest body de POST /api/orders/:orderId/confirm. Sin correo = invitado.
type ConfirmOrderRequest struct {
	CustomerEmail string `json:"customer_email"`
	CustomerName  string `json:"customer_name"`
}

// CancelOrderResponse unidades devueltas al libro.
type CancelOrderResponse struct {
	OrderID     int64 `json:"order_id"`
	ReleasedQty int64 `json:"released_qty"`
}
