package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// FrameAllocator lo que los handlers necesitan del motor frame.
type FrameAllocator interface {
	Allocate(ctx context.Context, productID int64) (int64, error)
}

// ── ORDER_PLACED ──────────────────────────────────────────────────────────────

// OrderPlacedHandler vuelve a correr el motor frame para los productos frame del pedido.
type OrderPlacedHandler struct {
	allocator FrameAllocator
}

func NewOrderPlacedHandler(allocator FrameAllocator) *OrderPlacedHandler {
	return &OrderPlacedHandler{allocator: allocator}
}

func (h *OrderPlacedHandler) EventType() string { return entity.EventOrderPlaced }

func (h *OrderPlacedHandler) Handle(ctx context.Context, ev *entity.OutboxEvent) error {
	var p entity.OrderPlacedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return Permanent(fmt.Errorf("payload ORDER_PLACED inválido: %w", err))
	}
	var errs []error
	for _, productID := range p.FrameProductIDs {
		if _, err := h.allocator.Allocate(ctx, productID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ── STOCK_REPLENISHED ─────────────────────────────────────────────────────────

// StockReplenishedHandler capacidad nueva para un producto frame: asigna a la demanda pendiente.
type StockReplenishedHandler struct {
	allocator FrameAllocator
}

func NewStockReplenishedHandler(allocator FrameAllocator) *StockReplenishedHandler {
	return &StockReplenishedHandler{allocator: allocator}
}

func (h *StockReplenishedHandler) EventType() string { return entity.EventStockReplenished }

func (h *StockReplenishedHandler) Handle(ctx context.Context, ev *entity.OutboxEvent) error {
	var p entity.StockReplenishedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return Permanent(fmt.Errorf("payload STOCK_REPLENISHED inválido: %w", err))
	}
	if p.ProductID <= 0 {
		return Permanent(fmt.Errorf("STOCK_REPLENISHED sin product_id"))
	}
	_, err := h.allocator.Allocate(ctx, p.ProductID)
	return err
}

// ── ORDER_CONFIRMED ───────────────────────────────────────────────────────────

// OrderConfirmedHandler envía la confirmación al cliente. Pedidos de invitado sin correo: no-op.
type OrderConfirmedHandler struct {
	notifier ports.Notifier
	timeout  time.Duration
	log      zerolog.Logger
}

func NewOrderConfirmedHandler(notifier ports.Notifier, timeout time.Duration, log zerolog.Logger) *OrderConfirmedHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OrderConfirmedHandler{notifier: notifier, timeout: timeout, log: log}
}

func (h *OrderConfirmedHandler) EventType() string { return entity.EventOrderConfirmed }

func (h *OrderConfirmedHandler) Handle(ctx context.Context, ev *entity.OutboxEvent) error {
	var p entity.OrderConfirmedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return Permanent(fmt.Errorf("payload ORDER_CONFIRMED inválido: %w", err))
	}
	if strings.TrimSpace(p.Email) == "" {
		h.log.Debug().Int64("order_id", p.OrderID).Msg("pedido de invitado sin correo, no se notifica")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.notifier.SendOrderConfirmation(ctx, ports.OrderConfirmation{
		OrderID:      p.OrderID,
		Email:        p.Email,
		CustomerName: p.CustomerName,
	})
}

// ── OPERATION_PERFORMED ───────────────────────────────────────────────────────

// AuditHandler pasa la operación a la bitácora. Cualquier fallo se registra y se descarta:
// perder una entrada de auditoría nunca bloquea ni revierte la operación que la originó.
type AuditHandler struct {
	logs repository.AuditLogRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewAuditHandler(logs repository.AuditLogRepository, log zerolog.Logger, now func() time.Time) *AuditHandler {
	if now == nil {
		now = time.Now
	}
	return &AuditHandler{logs: logs, log: log, now: now}
}

func (h *AuditHandler) EventType() string { return entity.EventOperationPerformed }

func (h *AuditHandler) Handle(ctx context.Context, ev *entity.OutboxEvent) error {
	var p entity.OperationPerformedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		h.log.Warn().Err(err).Int64("event_id", ev.ID).Msg("payload de auditoría inválido, se descarta")
		return nil
	}
	entry := &entity.AuditLog{
		ID:         uuid.New().String(),
		Operation:  p.Operation,
		Actor:      p.Actor,
		EntityType: p.EntityType,
		EntityID:   p.EntityID,
		Detail:     p.Detail,
		CreatedAt:  h.now(),
	}
	if err := h.logs.Append(ctx, entry); err != nil {
		h.log.Warn().Err(err).
			Int64("event_id", ev.ID).
			Str("operation", p.Operation).
			Msg("no se pudo escribir la bitácora de auditoría")
	}
	return nil
}
