package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
)

// InventoryHandler expone la disponibilidad de stock (público, lo consume el storefront).
type InventoryHandler struct {
	uc *inventory.ReservationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.ReservationUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ListStock godoc
// @Summary      Estado de inventario de todos los productos
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  dto.InventoryStatusResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	list, err := h.uc.GetAllInventoryStatus(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.StockAvailabilityDTO, 0, len(list))
	for _, a := range list {
		items = append(items, toAvailabilityDTO(a))
	}
	return c.JSON(dto.InventoryStatusResponse{Total: len(items), Items: items})
}

// GetStock godoc
// @Summary      Disponibilidad de un producto
// @Description  Disponible = capacidad restante menos reservas tentativas activas (nunca negativo).
// @Tags         inventory
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.StockAvailabilityDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID, ok := productIDParam(c)
	if !ok {
		return badParam(c, "productId")
	}
	a, err := h.uc.GetAvailableStock(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAvailabilityDTO(*a))
}

func productIDParam(c *fiber.Ctx) (int64, bool) {
	return positiveIntParam(c, "productId")
}

func positiveIntParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
