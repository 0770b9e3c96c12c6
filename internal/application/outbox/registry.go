package outbox

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// Handler efecto asociado a un tipo de evento. Corre en su propia transacción,
// separada de la contabilidad del despachador, y debe tolerar entregas repetidas.
type Handler interface {
	EventType() string
	Handle(ctx context.Context, ev *entity.OutboxEvent) error
}

// Registry mapa tipo de evento -> handler, resuelto una vez al arrancar.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry falla si dos handlers declaran el mismo tipo.
func NewRegistry(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		t := h.EventType()
		if t == "" {
			return nil, fmt.Errorf("outbox: handler %T sin tipo de evento", h)
		}
		if prev, ok := r.handlers[t]; ok {
			return nil, fmt.Errorf("outbox: tipo %q registrado dos veces (%T y %T)", t, prev, h)
		}
		r.handlers[t] = h
	}
	return r, nil
}

// Lookup coincidencia exacta por tipo.
func (r *Registry) Lookup(eventType string) (Handler, bool) {
	h, ok := r.handlers[eventType]
	return h, ok
}

// Types tipos registrados, ordenados.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
