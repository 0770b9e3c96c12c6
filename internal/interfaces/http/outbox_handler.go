package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// OutboxHandler vista operativa del outbox (dead letters y reencolado).
type OutboxHandler struct {
	admin *outbox.AdminService
}

// NewOutboxHandler construye el handler.
func NewOutboxHandler(admin *outbox.AdminService) *OutboxHandler {
	return &OutboxHandler{admin: admin}
}

// List godoc
// @Summary      Listar eventos del outbox por estado
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING, PROCESSING, PROCESSED o DEAD (default DEAD)"
// @Param        limit   query  int     false  "Máximo de eventos (default 100)"
// @Success      200  {object}  dto.OutboxListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/outbox [get]
func (h *OutboxHandler) List(c *fiber.Ctx) error {
	status := c.Query("status", entity.OutboxStatusDead)
	events, err := h.admin.List(c.UserContext(), status, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.OutboxEventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, toOutboxEventDTO(e))
	}
	return c.JSON(dto.OutboxListResponse{Status: status, Total: len(out), Events: out})
}

// Requeue godoc
// @Summary      Reencolar un evento DEAD
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "ID del evento"
// @Success      200  {object}  dto.OutboxEventDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/outbox/{id}/requeue [post]
func (h *OutboxHandler) Requeue(c *fiber.Ctx) error {
	id, ok := positiveIntParam(c, "id")
	if !ok {
		return badParam(c, "id")
	}
	ev, err := h.admin.Requeue(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOutboxEventDTO(ev))
}
