package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de reservas: los bloqueos de fila tomados dentro de fn
// se liberan al confirmar o revertir.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
}

// EventPublisher escribe eventos outbox en la transacción del llamador (mismo repos).
type EventPublisher interface {
	Publish(ctx context.Context, repos repository.Repositories, eventType, aggregateID string, payload any) error
}

// Config parámetros del motor de reservas.
type Config struct {
	ReservationTTL time.Duration
	LocationID     string
	Now            func() time.Time // reloj inyectable; nil = time.Now
}

func (c Config) withDefaults() Config {
	if c.ReservationTTL <= 0 {
		c.ReservationTTL = 15 * time.Minute
	}
	if c.LocationID == "" {
		c.LocationID = entity.DefaultLocationID
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}
