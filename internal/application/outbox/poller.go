package outbox

import (
	"context"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// DefaultBatchSize eventos por tick.
const DefaultBatchSize = 50

// PollerConfig parámetros del poller.
type PollerConfig struct {
	BatchSize  int
	StaleAfter time.Duration // 0 desactiva la recuperación de PROCESSING colgados
}

// Poller busca eventos vencidos y los entrega al Dispatcher uno por uno.
// No guarda estado en memoria: tras un reinicio continúa desde lo persistido.
type Poller struct {
	repo       repository.OutboxRepository
	dispatcher *Dispatcher
	metrics    ports.Metrics
	log        zerolog.Logger
	cfg        PollerConfig
	now        func() time.Time
}

// NewPoller construye el poller.
func NewPoller(repo repository.OutboxRepository, dispatcher *Dispatcher, metrics ports.Metrics, log zerolog.Logger, cfg PollerConfig, now func() time.Time) *Poller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if now == nil {
		now = time.Now
	}
	return &Poller{
		repo:       repo,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log.With().Str("component", "outbox_poller").Logger(),
		cfg:        cfg,
		now:        now,
	}
}

// Tick primero devuelve a PENDING lo que quedó colgado en PROCESSING, luego despacha
// hasta BatchSize eventos PENDING con ScheduledAt <= now. Devuelve cuántos despachó.
func (p *Poller) Tick(ctx context.Context) (int, error) {
	now := p.now()
	if p.cfg.StaleAfter > 0 {
		n, err := p.repo.ReclaimStale(ctx, now.Add(-p.cfg.StaleAfter), now)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			p.metrics.OutboxReclaimed(n)
			p.log.Warn().Int64("count", n).Msg("eventos PROCESSING colgados devueltos a PENDING")
		}
	}

	due, err := p.repo.FetchDue(ctx, now, p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	dispatched := 0
	for _, ev := range due {
		if ctx.Err() != nil {
			return dispatched, ctx.Err()
		}
		if err := p.dispatcher.Dispatch(ctx, ev); err != nil {
			// Queda PENDING o PROCESSING; el siguiente tick (o la recuperación) lo retoma
			p.log.Error().Err(err).Int64("event_id", ev.ID).Msg("error persistiendo estado del evento")
			continue
		}
		dispatched++
	}
	return dispatched, nil
}
