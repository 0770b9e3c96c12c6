package entity

import (
	"encoding/json"
	"time"
)

// Estados del evento outbox. PROCESSED y DEAD son terminales.
const (
	OutboxStatusPending    = "PENDING"
	OutboxStatusProcessing = "PROCESSING"
	OutboxStatusProcessed  = "PROCESSED"
	OutboxStatusDead       = "DEAD"
)

// Tipos de evento conocidos.
const (
	EventOrderPlaced        = "ORDER_PLACED"
	EventOrderConfirmed     = "ORDER_CONFIRMED"
	EventOperationPerformed = "OPERATION_PERFORMED"
	EventStockReplenished   = "STOCK_REPLENISHED"
)

// DefaultOutboxMaxRetries reintentos por defecto antes de pasar a DEAD.
const DefaultOutboxMaxRetries = 3

// OutboxEvent efecto pendiente escrito en la misma transacción del cambio de negocio.
// Nunca se elimina: queda como rastro de auditoría.
type OutboxEvent struct {
	ID           int64
	EventType    string
	AggregateID  string
	Payload      json.RawMessage
	Status       string
	RetryCount   int
	MaxRetries   int
	ScheduledAt  time.Time
	ErrorMessage string
	ProcessedAt  *time.Time
	ClaimedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewOutboxEvent evento PENDING elegible de inmediato.
func NewOutboxEvent(eventType, aggregateID string, payload json.RawMessage, maxRetries int, now time.Time) *OutboxEvent {
	if maxRetries <= 0 {
		maxRetries = DefaultOutboxMaxRetries
	}
	return &OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      OutboxStatusPending,
		MaxRetries:  maxRetries,
		ScheduledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsTerminal PROCESSED o DEAD.
func (e *OutboxEvent) IsTerminal() bool {
	return e.Status == OutboxStatusProcessed || e.Status == OutboxStatusDead
}

// MarkProcessing PENDING -> PROCESSING.
func (e *OutboxEvent) MarkProcessing(now time.Time) {
	e.Status = OutboxStatusProcessing
	e.ClaimedAt = &now
	e.UpdatedAt = now
}

// MarkProcessed PROCESSING -> PROCESSED.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxStatusProcessed
	e.ProcessedAt = &now
	e.ErrorMessage = ""
	e.UpdatedAt = now
}

// MarkDead pasa a DEAD sin más reintentos.
func (e *OutboxEvent) MarkDead(msg string, now time.Time) {
	e.Status = OutboxStatusDead
	e.ErrorMessage = msg
	e.UpdatedAt = now
}

// MarkFailed registra un fallo reintentable. Con reintentos agotados pasa a DEAD;
// si no, vuelve a PENDING con ScheduledAt = now + backoff*RetryCount. Devuelve true si quedó DEAD.
func (e *OutboxEvent) MarkFailed(msg string, now time.Time, backoff time.Duration) bool {
	e.RetryCount++
	e.ErrorMessage = msg
	e.UpdatedAt = now
	if e.RetryCount >= e.MaxRetries {
		e.Status = OutboxStatusDead
		return true
	}
	e.Status = OutboxStatusPending
	e.ScheduledAt = now.Add(backoff * time.Duration(e.RetryCount))
	return false
}

// Requeue operación manual: DEAD -> PENDING con contador en cero.
func (e *OutboxEvent) Requeue(now time.Time) {
	e.Status = OutboxStatusPending
	e.RetryCount = 0
	e.ErrorMessage = ""
	e.ScheduledAt = now
	e.ClaimedAt = nil
	e.UpdatedAt = now
}
