package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Poller contra el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

type pollerFixture struct {
	store *memory.Store
	now   time.Time
	h     *stubHandler
	p     *outbox.Poller
}

func newPollerFixture(t *testing.T, handlerErr error) *pollerFixture {
	t.Helper()
	f := &pollerFixture{store: memory.NewStore(), now: t0}
	clock := func() time.Time { return f.now }
	f.h = &stubHandler{eventType: entity.EventOrderPlaced, err: handlerErr}
	reg, err := outbox.NewRegistry(f.h)
	require.NoError(t, err)
	repo := f.store.Repositories().Outbox()
	d := outbox.NewDispatcher(repo, reg, nil, zerolog.Nop(), 30*time.Second, clock)
	f.p = outbox.NewPoller(repo, d, nil, zerolog.Nop(), outbox.PollerConfig{BatchSize: 2, StaleAfter: 5 * time.Minute}, clock)
	return f
}

func (f *pollerFixture) publish(t *testing.T, eventType string) *entity.OutboxEvent {
	t.Helper()
	var ev *entity.OutboxEvent
	pub := outbox.NewPublisher(3, func() time.Time { return f.now })
	require.NoError(t, f.store.Run(context.Background(), func(repos repository.Repositories) error {
		if err := pub.Publish(context.Background(), repos, eventType, "1", map[string]int{"n": 1}); err != nil {
			return err
		}
		list, err := repos.Outbox().ListByStatus(context.Background(), entity.OutboxStatusPending, 1)
		if err == nil && len(list) > 0 {
			ev = list[0]
		}
		return err
	}))
	require.NotNil(t, ev)
	return ev
}

func (f *pollerFixture) get(t *testing.T, id int64) *entity.OutboxEvent {
	t.Helper()
	ev, err := f.store.Repositories().Outbox().GetByID(context.Background(), id)
	require.NoError(t, err)
	return ev
}

func TestPoller_DespachaPorLotesDelMasAntiguo(t *testing.T) {
	f := newPollerFixture(t, nil)
	a := f.publish(t, entity.EventOrderPlaced)
	f.now = f.now.Add(time.Second)
	b := f.publish(t, entity.EventOrderPlaced)
	f.now = f.now.Add(time.Second)
	c := f.publish(t, entity.EventOrderPlaced)

	n, err := f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "respeta el tamaño de lote")
	assert.Equal(t, entity.OutboxStatusProcessed, f.get(t, a.ID).Status)
	assert.Equal(t, entity.OutboxStatusProcessed, f.get(t, b.ID).Status)
	assert.Equal(t, entity.OutboxStatusPending, f.get(t, c.ID).Status)

	n, err = f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, f.h.calls)
}

func TestPoller_RespetaBackoff(t *testing.T) {
	f := newPollerFixture(t, errors.New("falla"))
	ev := f.publish(t, entity.EventOrderPlaced)

	_, err := f.p.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, f.get(t, ev.ID).RetryCount)

	n, err := f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "no se reintenta antes de ScheduledAt")

	f.now = f.now.Add(31 * time.Second)
	n, err = f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, f.get(t, ev.ID).RetryCount)
}

func TestPoller_SinHandlerTerminaDead(t *testing.T) {
	f := newPollerFixture(t, nil)
	ev := f.publish(t, "FOO")

	_, err := f.p.Tick(context.Background())
	require.NoError(t, err)
	got := f.get(t, ev.ID)
	assert.Equal(t, entity.OutboxStatusDead, got.Status)
	assert.Contains(t, got.ErrorMessage, "FOO")
}

func TestPoller_RecuperaProcessingColgado(t *testing.T) {
	f := newPollerFixture(t, nil)
	ev := f.publish(t, entity.EventOrderPlaced)

	// Simula un proceso que reclamó el evento y murió
	stuck := f.get(t, ev.ID)
	stuck.MarkProcessing(f.now)
	claimed, err := f.store.Repositories().Outbox().Claim(context.Background(), stuck)
	require.NoError(t, err)
	require.True(t, claimed)

	n, err := f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "todavía no supera el umbral")

	f.now = f.now.Add(6 * time.Minute)
	n, err = f.p.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got := f.get(t, ev.ID)
	assert.Equal(t, entity.OutboxStatusProcessed, got.Status)
	assert.Zero(t, got.RetryCount, "la recuperación no consume reintentos")
}

// ──────────────────────────────────────────────────────────────────────────────
// AdminService
// ──────────────────────────────────────────────────────────────────────────────

func TestAdminService_ListYRequeue(t *testing.T) {
	f := newPollerFixture(t, nil)
	ev := f.publish(t, "FOO")
	_, err := f.p.Tick(context.Background())
	require.NoError(t, err)

	admin := outbox.NewAdminService(f.store.Repositories().Outbox(), func() time.Time { return f.now })
	dead, err := admin.List(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, dead, 1)

	_, err = admin.List(context.Background(), "OTRO", 0)
	assert.Error(t, err)

	requeued, err := admin.Requeue(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OutboxStatusPending, requeued.Status)

	_, err = admin.Requeue(context.Background(), ev.ID)
	assert.Error(t, err, "solo se reencolan eventos DEAD")
	_, err = admin.Requeue(context.Background(), 999)
	assert.Error(t, err)
}

func TestPublisher_PayloadJSON(t *testing.T) {
	f := newPollerFixture(t, nil)
	ev := f.publish(t, entity.EventOrderPlaced)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, 1, payload["n"])
	assert.Equal(t, 3, ev.MaxRetries)
	assert.Equal(t, entity.OutboxStatusPending, ev.Status)
}
