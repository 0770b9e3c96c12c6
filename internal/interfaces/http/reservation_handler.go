package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
)

// ReservationHandler maneja las reservas tentativas del carrito.
type ReservationHandler struct {
	uc *inventory.ReservationUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *inventory.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear (o reemplazar) una reserva tentativa
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReservationRequest  true  "session_id, product_id, quantity"
// @Success      201  {object}  dto.ReservationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.uc.CreateReservation(c.UserContext(), in.SessionID, in.ProductID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReservationDTO(r))
}

// Update godoc
// @Summary      Cambiar la cantidad de una reserva tentativa
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        sessionId  path  string  true  "Sesión del carrito"
// @Param        productId  path  int     true  "ID del producto"
// @Param        body       body  dto.UpdateReservationRequest  true  "quantity"
// @Success      200  {object}  dto.ReservationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reservations/{sessionId}/{productId} [put]
func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	var in dto.UpdateReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	r, err := h.uc.UpdateReservation(c.UserContext(), c.Params("sessionId"), productID, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReservationDTO(r))
}

// Release godoc
// @Summary      Liberar una reserva tentativa (idempotente)
// @Tags         reservations
// @Param        sessionId  path  string  true  "Sesión del carrito"
// @Param        productId  path  int     true  "ID del producto"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reservations/{sessionId}/{productId} [delete]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	if err := h.uc.ReleaseReservation(c.UserContext(), c.Params("sessionId"), productID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReleaseAll godoc
// @Summary      Liberar todas las reservas tentativas de una sesión
// @Tags         reservations
// @Produce      json
// @Param        sessionId  path  string  true  "Sesión del carrito"
// @Success      200  {object}  dto.ReleaseAllResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reservations/{sessionId} [delete]
func (h *ReservationHandler) ReleaseAll(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	n, err := h.uc.ReleaseAllReservations(c.UserContext(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReleaseAllResponse{SessionID: sessionID, Released: n})
}
