package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Task una iteración del worker.
type Task func(ctx context.Context) error

// Periodic ejecuta Task cada Interval hasta que se cancele el contexto.
// Un error o pánico en una iteración se registra y se espera al siguiente tick.
type Periodic struct {
	name     string
	interval time.Duration
	task     Task
	log      zerolog.Logger
	runFirst bool
}

// Option configura un Periodic.
type Option func(*Periodic)

// RunImmediately ejecuta una iteración al arrancar, antes del primer tick.
func RunImmediately() Option {
	return func(p *Periodic) { p.runFirst = true }
}

// NewPeriodic construye el worker.
func NewPeriodic(name string, interval time.Duration, task Task, log zerolog.Logger, opts ...Option) *Periodic {
	p := &Periodic{
		name:     name,
		interval: interval,
		task:     task,
		log:      log.With().Str("worker", name).Logger(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name del worker.
func (p *Periodic) Name() string { return p.name }

// Start bloquea hasta que ctx se cancele. Devuelve nil al detenerse.
func (p *Periodic) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return fmt.Errorf("worker %s: intervalo inválido %s", p.name, p.interval)
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.interval).Msg("worker iniciado")
	if p.runFirst {
		p.runOnce(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("worker detenido")
			return nil
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("pánico en iteración del worker")
		}
	}()
	if err := p.task(ctx); err != nil && ctx.Err() == nil {
		p.log.Error().Err(err).Msg("iteración del worker falló")
	}
}
