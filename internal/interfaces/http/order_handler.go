package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// OrderHandler ganchos que llama el servicio de pedidos al colocar, confirmar y cancelar.
type OrderHandler struct {
	uc *inventory.ReservationUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *inventory.ReservationUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Commit godoc
// @Summary      Comprometer las reservas de la sesión para un pedido colocado
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CommitOrderRequest  true  "Pedido y sus líneas"
// @Success      201  {object}  dto.CommitOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/orders/commit [post]
func (h *OrderHandler) Commit(c *fiber.Ctx) error {
	var in dto.CommitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order := &entity.Order{
		ID:            in.OrderID,
		SessionID:     in.SessionID,
		CustomerEmail: in.CustomerEmail,
		CustomerName:  in.CustomerName,
		Status:        entity.OrderStatusPending,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, &entity.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.uc.CommitReservations(c.UserContext(), in.SessionID, order)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CommitOrderResponse{OrderID: res.OrderID, Lines: make([]dto.CommitLineDTO, 0, len(res.Lines))}
	for _, l := range res.Lines {
		out.Lines = append(out.Lines, dto.CommitLineDTO{
			ItemID:    l.ItemID,
			ProductID: l.ProductID,
			Requested: l.Requested,
			Committed: l.Committed,
			Shortfall: l.Shortfall,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Confirm godoc
// @Summary      Confirmar un pedido (encola la notificación al cliente)
// @Tags         orders
// @Accept       json
// @Param        orderId  path  int  true  "ID del pedido"
// @Param        body     body  dto.ConfirmOrderRequest  false  "Datos de contacto"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/orders/{orderId}/confirm [post]
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	orderID, ok := positiveIntParam(c, "orderId")
	if !ok {
		return badParam(c, "orderId")
	}
	var in dto.ConfirmOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	order := &entity.Order{ID: orderID, CustomerEmail: in.CustomerEmail, CustomerName: in.CustomerName}
	if err := h.uc.ConfirmOrder(c.UserContext(), order); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Cancel godoc
// @Summary      Cancelar un pedido y devolver lo comprometido al libro
// @Tags         orders
// @Produce      json
// @Param        orderId  path  int  true  "ID del pedido"
// @Success      200  {object}  dto.CancelOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/orders/{orderId}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	orderID, ok := positiveIntParam(c, "orderId")
	if !ok {
		return badParam(c, "orderId")
	}
	n, err := h.uc.ReleaseCommittedReservations(c.UserContext(), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CancelOrderResponse{OrderID: orderID, ReleasedQty: n})
}
