package inventory_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture compartido: store en memoria + reloj controlable
// ──────────────────────────────────────────────────────────────────────────────

const (
	realID  int64 = 42
	frameID int64 = 7
	ttl           = 15 * time.Minute
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	store  *memory.Store
	clock  *clock
	uc     *inventory.ReservationUseCase
	frames *inventory.FrameAllocationUseCase
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.NewStore()
	cfg := inventory.Config{ReservationTTL: ttl, Now: c.Now}
	log := zerolog.Nop()
	return &fixture{
		store:  store,
		clock:  c,
		uc:     inventory.NewReservationUseCase(store, store.Repositories(), outbox.NewPublisher(3, c.Now), nil, log, cfg),
		frames: inventory.NewFrameAllocationUseCase(store, nil, log, cfg),
		ctx:    context.Background(),
	}
}

func (f *fixture) putReal(id, qty int64) {
	f.store.PutProduct(&entity.Product{ID: id, Name: "real", AllocationType: entity.AllocationTypeReal}, entity.DefaultLocationID, qty)
}

func (f *fixture) putFrame(id, qty int64) {
	f.store.PutProduct(&entity.Product{ID: id, Name: "frame", AllocationType: entity.AllocationTypeFrame}, entity.DefaultLocationID, qty)
}

func (f *fixture) ledger(t *testing.T, productID int64) *entity.LocationStock {
	t.Helper()
	loc, err := f.store.Repositories().LocationStocks().Get(f.ctx, productID, entity.DefaultLocationID)
	require.NoError(t, err)
	return loc
}

func (f *fixture) available(t *testing.T, productID int64) int64 {
	t.Helper()
	av, err := f.uc.GetAvailableStock(f.ctx, productID)
	require.NoError(t, err)
	return av.Available
}

func (f *fixture) items(t *testing.T, orderID int64) []*entity.OrderItem {
	t.Helper()
	items, err := f.store.Repositories().OrderItems().ListByOrder(f.ctx, orderID)
	require.NoError(t, err)
	return items
}

// pendingEvents eventos PENDING del outbox agrupados por tipo.
func (f *fixture) pendingEvents(t *testing.T) map[string][]*entity.OutboxEvent {
	t.Helper()
	list, err := f.store.Repositories().Outbox().ListByStatus(f.ctx, entity.OutboxStatusPending, 500)
	require.NoError(t, err)
	out := map[string][]*entity.OutboxEvent{}
	for _, ev := range list {
		out[ev.EventType] = append(out[ev.EventType], ev)
	}
	return out
}

func order(id int64, session string, lines ...[2]int64) *entity.Order {
	o := &entity.Order{ID: id, SessionID: session, Status: entity.OrderStatusPending}
	for _, l := range lines {
		o.Items = append(o.Items, &entity.OrderItem{ProductID: l[0], Quantity: l[1]})
	}
	return o
}

func decode[T any](t *testing.T, ev *entity.OutboxEvent) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(ev.Payload, &v))
	return v
}
