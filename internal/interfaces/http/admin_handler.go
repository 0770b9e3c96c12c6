package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
)

// AdminHandler operaciones administrativas de inventario (JWT + rol admin).
type AdminHandler struct {
	reservations *inventory.ReservationUseCase
	frames       *inventory.FrameAllocationUseCase
}

// NewAdminHandler construye el handler.
func NewAdminHandler(reservations *inventory.ReservationUseCase, frames *inventory.FrameAllocationUseCase) *AdminHandler {
	return &AdminHandler{reservations: reservations, frames: frames}
}

// GetProduct godoc
// @Summary      Vista administrativa de un producto
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.AdminStockViewDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/inventory/{productId} [get]
func (h *AdminHandler) GetProduct(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	v, err := h.reservations.GetAdminView(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAdminViewDTO(v))
}

// AdjustStock godoc
// @Summary      Ajustar la capacidad asignable de un producto
// @Description  El actor es el usuario del token. Un delta positivo sobre un producto FRAME dispara la asignación.
// @Tags         admin
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Param        body       body  dto.AdjustStockRequest  true  "delta, reason"
// @Success      201  {object}  dto.StockAdjustmentDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/inventory/{productId}/adjustments [post]
func (h *AdminHandler) AdjustStock(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	adj, err := h.reservations.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		ProductID: productID,
		Delta:     in.Delta,
		Reason:    in.Reason,
		Actor:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAdjustmentDTO(adj))
}

// ListAdjustments godoc
// @Summary      Historial de ajustes de un producto
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        productId  path   int  true   "ID del producto"
// @Param        limit      query  int  false  "Máximo de registros (default 50)"
// @Success      200  {array}   dto.StockAdjustmentDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/inventory/{productId}/adjustments [get]
func (h *AdminHandler) ListAdjustments(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0)}
	page.DefaultPage()
	list, err := h.reservations.ListAdjustments(c.UserContext(), productID, page.Limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockAdjustmentDTO, 0, len(list))
	for _, a := range list {
		out = append(out, toAdjustmentDTO(a))
	}
	return c.JSON(out)
}

// Allocate godoc
// @Summary      Ejecutar manualmente la asignación FIFO de un producto FRAME
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.AllocationResultDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/inventory/{productId}/allocate [post]
func (h *AdminHandler) Allocate(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	granted, err := h.frames.Allocate(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AllocationResultDTO{ProductID: productID, Granted: granted})
}
