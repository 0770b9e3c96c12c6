// Package memory implementa los puertos de persistencia en memoria del proceso.
// Las transacciones de Store.Run se serializan con un único mutex y trabajan sobre una copia
// del estado que solo se publica si fn termina sin error: equivale a bloquear todas las filas
// del libro durante la transacción. Sirve para pruebas y para STORE_DRIVER=memory (una instancia).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct {
	productID  int64
	locationID string
}

type state struct {
	products     map[int64]*entity.Product
	stocks       map[stockKey]*entity.LocationStock
	limits       map[int64]*entity.SalesLimit
	reservations map[int64]*entity.Reservation
	items        map[int64]*entity.OrderItem
	outbox       map[int64]*entity.OutboxEvent
	adjustments  []*entity.StockAdjustment
	audit        []*entity.AuditLog

	reservationSeq int64
	itemSeq        int64
	outboxSeq      int64
}

func newState() *state {
	return &state{
		products:     map[int64]*entity.Product{},
		stocks:       map[stockKey]*entity.LocationStock{},
		limits:       map[int64]*entity.SalesLimit{},
		reservations: map[int64]*entity.Reservation{},
		items:        map[int64]*entity.OrderItem{},
		outbox:       map[int64]*entity.OutboxEvent{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:       make(map[int64]*entity.Product, len(s.products)),
		stocks:         make(map[stockKey]*entity.LocationStock, len(s.stocks)),
		limits:         make(map[int64]*entity.SalesLimit, len(s.limits)),
		reservations:   make(map[int64]*entity.Reservation, len(s.reservations)),
		items:          make(map[int64]*entity.OrderItem, len(s.items)),
		outbox:         make(map[int64]*entity.OutboxEvent, len(s.outbox)),
		adjustments:    append([]*entity.StockAdjustment(nil), s.adjustments...),
		audit:          append([]*entity.AuditLog(nil), s.audit...),
		reservationSeq: s.reservationSeq,
		itemSeq:        s.itemSeq,
		outboxSeq:      s.outboxSeq,
	}
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.stocks {
		c.stocks[k] = copyStock(v)
	}
	for k, v := range s.limits {
		c.limits[k] = copyLimit(v)
	}
	for k, v := range s.reservations {
		c.reservations[k] = copyReservation(v)
	}
	for k, v := range s.items {
		c.items[k] = copyItem(v)
	}
	for k, v := range s.outbox {
		c.outbox[k] = copyEvent(v)
	}
	return c
}

// Store estado en memoria con transacciones atómicas.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado con el store bloqueado; si fn no falla la copia
// reemplaza al estado. fn no debe usar los repos de Repositories(): el mutex ya está tomado.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(newRepos(txAccess{st: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repositories repos fuera de transacción: cada llamada toma el mutex por separado.
func (s *Store) Repositories() repository.Repositories {
	return newRepos(poolAccess{s: s})
}

// ── Carga de datos (catálogo externo, pruebas, modo demo) ─────────────────────

// PutProduct registra un producto y, si allocatable > 0, su fila del libro en la ubicación dada.
func (s *Store) PutProduct(p *entity.Product, locationID string, allocatable int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
		p.UpdatedAt = now
	}
	s.st.products[p.ID] = copyProduct(p)
	if allocatable > 0 {
		loc := entity.NewLocationStock(p.ID, locationID, now)
		loc.AllocatableQty = allocatable
		s.st.stocks[stockKey{p.ID, locationID}] = loc
	}
}

// PutSalesLimit registra el cupo frame de un producto.
func (s *Store) PutSalesLimit(l *entity.SalesLimit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.limits[l.ProductID] = copyLimit(l)
}

// AuditLogs copia de la bitácora.
func (s *Store) AuditLogs() []*entity.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.AuditLog, len(s.st.audit))
	copy(out, s.st.audit)
	return out
}

// access abstrae si el repo trabaja sobre la copia de una tx o sobre el estado compartido.
type access interface {
	do(fn func(st *state) error) error
}

type txAccess struct{ st *state }

func (a txAccess) do(fn func(st *state) error) error { return fn(a.st) }

type poolAccess struct{ s *Store }

func (a poolAccess) do(fn func(st *state) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

// ── Copias ────────────────────────────────────────────────────────────────────

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyStock(s *entity.LocationStock) *entity.LocationStock {
	c := *s
	return &c
}

func copyLimit(l *entity.SalesLimit) *entity.SalesLimit {
	c := *l
	return &c
}

func copyItem(i *entity.OrderItem) *entity.OrderItem {
	c := *i
	return &c
}

func copyReservation(r *entity.Reservation) *entity.Reservation {
	c := *r
	c.ExpiresAt = copyTime(r.ExpiresAt)
	c.DeletedAt = copyTime(r.DeletedAt)
	return &c
}

func copyEvent(e *entity.OutboxEvent) *entity.OutboxEvent {
	c := *e
	c.Payload = append([]byte(nil), e.Payload...)
	c.ProcessedAt = copyTime(e.ProcessedAt)
	c.ClaimedAt = copyTime(e.ClaimedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
