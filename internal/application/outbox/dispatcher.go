package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRetryBackoff unidad del backoff lineal (30s, 60s, 90s...).
const DefaultRetryBackoff = 30 * time.Second

// Dispatcher máquina de estados por evento. Cada transición se persiste con repo (fuera de
// la transacción del handler) y los errores del handler nunca salen de Dispatch.
type Dispatcher struct {
	repo     repository.OutboxRepository
	registry *Registry
	metrics  ports.Metrics
	log      zerolog.Logger
	backoff  time.Duration
	now      func() time.Time
}

// NewDispatcher backoff <= 0 usa DefaultRetryBackoff.
func NewDispatcher(repo repository.OutboxRepository, registry *Registry, metrics ports.Metrics, log zerolog.Logger, backoff time.Duration, now func() time.Time) *Dispatcher {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		repo:     repo,
		registry: registry,
		metrics:  metrics,
		log:      log.With().Str("component", "outbox_dispatcher").Logger(),
		backoff:  backoff,
		now:      now,
	}
}

// Dispatch reclama el evento (PENDING -> PROCESSING), lo enruta y persiste el resultado.
// Solo devuelve error si falla la persistencia del estado.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *entity.OutboxEvent) error {
	if ev.Status != entity.OutboxStatusPending {
		return nil
	}
	ctx, span := otel.Tracer("outbox").Start(ctx, "Outbox.Dispatch", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("outbox.event_id", ev.ID),
		attribute.String("outbox.event_type", ev.EventType),
	)

	ev.MarkProcessing(d.now())
	claimed, err := d.repo.Claim(ctx, ev)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("claim outbox event %d: %w", ev.ID, err)
	}
	if !claimed {
		// Otro poller lo tomó primero
		return nil
	}

	h, ok := d.registry.Lookup(ev.EventType)
	if !ok {
		ev.MarkDead(fmt.Sprintf("no hay handler registrado para el tipo de evento %q", ev.EventType), d.now())
		return d.persist(ctx, ev, ports.OutcomeDead)
	}

	herr := d.invoke(ctx, h, ev)
	now := d.now()
	switch {
	case herr == nil:
		ev.MarkProcessed(now)
		return d.persist(ctx, ev, ports.OutcomeProcessed)
	case errors.Is(herr, ErrPermanent):
		span.RecordError(herr)
		ev.RetryCount++
		ev.MarkDead(herr.Error(), now)
		return d.persist(ctx, ev, ports.OutcomeDead)
	default:
		span.RecordError(herr)
		span.SetStatus(codes.Error, herr.Error())
		if ev.MarkFailed(herr.Error(), now, d.backoff) {
			return d.persist(ctx, ev, ports.OutcomeDead)
		}
		return d.persist(ctx, ev, ports.OutcomeRetry)
	}
}

// invoke protege al despachador de un handler que entra en pánico.
func (d *Dispatcher) invoke(ctx context.Context, h Handler, ev *entity.OutboxEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic en handler %s: %v", ev.EventType, r)
		}
	}()
	return h.Handle(ctx, ev)
}

func (d *Dispatcher) persist(ctx context.Context, ev *entity.OutboxEvent, outcome string) error {
	d.metrics.OutboxOutcome(ev.EventType, outcome)
	logEv := d.log.Debug()
	switch outcome {
	case ports.OutcomeDead:
		logEv = d.log.Error()
	case ports.OutcomeRetry:
		logEv = d.log.Warn()
	}
	logEv.
		Int64("event_id", ev.ID).
		Str("event_type", ev.EventType).
		Str("aggregate_id", ev.AggregateID).
		Int("retry_count", ev.RetryCount).
		Str("status", ev.Status).
		Str("error", ev.ErrorMessage).
		Msg("evento outbox despachado")

	if err := d.repo.Save(ctx, ev); err != nil {
		return fmt.Errorf("save outbox event %d: %w", ev.ID, err)
	}
	return nil
}
