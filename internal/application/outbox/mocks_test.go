package outbox_test

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks
// ──────────────────────────────────────────────────────────────────────────────

// mockOutboxRepo cuenta escrituras del despachador. Save guarda una copia del evento
// tal como llegó, para verificar el estado persistido en cada escritura.
type mockOutboxRepo struct {
	mock.Mock
	saved []entity.OutboxEvent
}

func (m *mockOutboxRepo) Create(ctx context.Context, ev *entity.OutboxEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *mockOutboxRepo) GetByID(ctx context.Context, id int64) (*entity.OutboxEvent, error) {
	args := m.Called(ctx, id)
	ev, _ := args.Get(0).(*entity.OutboxEvent)
	return ev, args.Error(1)
}

func (m *mockOutboxRepo) FetchDue(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error) {
	args := m.Called(ctx, now, limit)
	list, _ := args.Get(0).([]*entity.OutboxEvent)
	return list, args.Error(1)
}

func (m *mockOutboxRepo) Claim(ctx context.Context, ev *entity.OutboxEvent) (bool, error) {
	args := m.Called(ctx, ev)
	return args.Bool(0), args.Error(1)
}

func (m *mockOutboxRepo) Save(ctx context.Context, ev *entity.OutboxEvent) error {
	m.saved = append(m.saved, *ev)
	return m.Called(ctx, ev).Error(0)
}

func (m *mockOutboxRepo) ReclaimStale(ctx context.Context, claimedBefore, now time.Time) (int64, error) {
	args := m.Called(ctx, claimedBefore, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutboxRepo) ListByStatus(ctx context.Context, status string, limit int) ([]*entity.OutboxEvent, error) {
	args := m.Called(ctx, status, limit)
	list, _ := args.Get(0).([]*entity.OutboxEvent)
	return list, args.Error(1)
}

// stubHandler handler configurable que cuenta invocaciones.
type stubHandler struct {
	eventType string
	err       error
	panicMsg  string
	calls     int
}

func (h *stubHandler) EventType() string { return h.eventType }

func (h *stubHandler) Handle(_ context.Context, _ *entity.OutboxEvent) error {
	h.calls++
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

type fakeAllocator struct {
	products []int64
	err      error
}

func (a *fakeAllocator) Allocate(_ context.Context, productID int64) (int64, error) {
	a.products = append(a.products, productID)
	return 0, a.err
}

type fakeNotifier struct {
	sent        []ports.OrderConfirmation
	hadDeadline bool
}

func (n *fakeNotifier) SendOrderConfirmation(ctx context.Context, msg ports.OrderConfirmation) error {
	_, n.hadDeadline = ctx.Deadline()
	n.sent = append(n.sent, msg)
	return nil
}

type failingAuditRepo struct{ calls int }

func (r *failingAuditRepo) Append(context.Context, *entity.AuditLog) error {
	r.calls++
	return errors.New("bitácora caída")
}
