package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

type repos struct {
	a access
}

var _ repository.Repositories = (*repos)(nil)

func newRepos(a access) *repos { return &repos{a: a} }

func (r *repos) Products() repository.ProductRepository             { return productRepo{r.a} }
func (r *repos) LocationStocks() repository.LocationStockRepository { return stockRepo{r.a} }
func (r *repos) SalesLimits() repository.SalesLimitRepository       { return limitRepo{r.a} }
func (r *repos) Reservations() repository.ReservationRepository     { return reservationRepo{r.a} }
func (r *repos) OrderItems() repository.OrderItemRepository         { return itemRepo{r.a} }
func (r *repos) Outbox() repository.OutboxRepository                { return outboxRepo{r.a} }
func (r *repos) Adjustments() repository.StockAdjustmentRepository  { return adjustmentRepo{r.a} }
func (r *repos) AuditLogs() repository.AuditLogRepository           { return auditRepo{r.a} }

// ── Productos ─────────────────────────────────────────────────────────────────

type productRepo struct{ a access }

func (r productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = copyProduct(p)
		}
		return nil
	})
	return out, err
}

func (r productRepo) List(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.a.do(func(st *state) error {
		for _, p := range st.products {
			out = append(out, copyProduct(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// ── Libro de stock ────────────────────────────────────────────────────────────

type stockRepo struct{ a access }

func (r stockRepo) Get(_ context.Context, productID int64, locationID string) (*entity.LocationStock, error) {
	var out *entity.LocationStock
	err := r.a.do(func(st *state) error {
		if s, ok := st.stocks[stockKey{productID, locationID}]; ok {
			out = copyStock(s)
			return nil
		}
		out = entity.NewLocationStock(productID, locationID, time.Now())
		return nil
	})
	return out, err
}

// GetForUpdate crea la fila en cero si falta. El bloqueo es el del propio Store.Run.
func (r stockRepo) GetForUpdate(_ context.Context, productID int64, locationID string) (*entity.LocationStock, error) {
	var out *entity.LocationStock
	err := r.a.do(func(st *state) error {
		key := stockKey{productID, locationID}
		s, ok := st.stocks[key]
		if !ok {
			s = entity.NewLocationStock(productID, locationID, time.Now())
			st.stocks[key] = s
		}
		out = copyStock(s)
		return nil
	})
	return out, err
}

func (r stockRepo) Save(_ context.Context, s *entity.LocationStock) error {
	if s.CommittedQty < 0 || s.CommittedQty > s.AllocatableQty {
		return fmt.Errorf("save location stock: violación de invariante comprometido=%d asignable=%d", s.CommittedQty, s.AllocatableQty)
	}
	return r.a.do(func(st *state) error {
		st.stocks[stockKey{s.ProductID, s.LocationID}] = copyStock(s)
		return nil
	})
}

func (r stockRepo) List(_ context.Context) ([]*entity.LocationStock, error) {
	var out []*entity.LocationStock
	err := r.a.do(func(st *state) error {
		for _, s := range st.stocks {
			out = append(out, copyStock(s))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].LocationID < out[j].LocationID
	})
	return out, err
}

// ── Cupos frame ───────────────────────────────────────────────────────────────

type limitRepo struct{ a access }

func (r limitRepo) Get(_ context.Context, productID int64) (*entity.SalesLimit, error) {
	var out *entity.SalesLimit
	err := r.a.do(func(st *state) error {
		if l, ok := st.limits[productID]; ok {
			out = copyLimit(l)
		}
		return nil
	})
	return out, err
}

func (r limitRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.SalesLimit, error) {
	return r.Get(ctx, productID)
}

func (r limitRepo) Save(_ context.Context, l *entity.SalesLimit) error {
	if l.ConsumedQty < 0 || l.ConsumedQty > l.FrameLimitQty {
		return fmt.Errorf("save sales limit: violación de invariante consumido=%d cupo=%d", l.ConsumedQty, l.FrameLimitQty)
	}
	return r.a.do(func(st *state) error {
		st.limits[l.ProductID] = copyLimit(l)
		return nil
	})
}

// ── Reservas ──────────────────────────────────────────────────────────────────

type reservationRepo struct{ a access }

func (r reservationRepo) Create(_ context.Context, res *entity.Reservation) error {
	return r.a.do(func(st *state) error {
		if res.Type == entity.ReservationTypeTentative {
			for _, ex := range st.reservations {
				if ex.Type == entity.ReservationTypeTentative && ex.SessionID == res.SessionID &&
					ex.ProductID == res.ProductID && ex.IsActive(res.CreatedAt) {
					return fmt.Errorf("%w: la sesión ya tiene una reserva activa del producto %d", domain.ErrConflict, res.ProductID)
				}
			}
		}
		st.reservationSeq++
		res.ID = st.reservationSeq
		st.reservations[res.ID] = copyReservation(res)
		return nil
	})
}

func (r reservationRepo) Save(_ context.Context, res *entity.Reservation) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.reservations[res.ID]; !ok {
			return fmt.Errorf("%w: reserva %d", domain.ErrNotFound, res.ID)
		}
		st.reservations[res.ID] = copyReservation(res)
		return nil
	})
}

func (r reservationRepo) filter(keep func(*entity.Reservation) bool) ([]*entity.Reservation, error) {
	var out []*entity.Reservation
	err := r.a.do(func(st *state) error {
		for _, res := range st.reservations {
			if !res.IsDeleted() && keep(res) {
				out = append(out, copyReservation(res))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func activeTentative(now time.Time) func(*entity.Reservation) bool {
	return func(res *entity.Reservation) bool {
		return res.Type == entity.ReservationTypeTentative && !res.IsExpired(now)
	}
}

func (r reservationRepo) FindActiveTentative(_ context.Context, sessionID string, productID int64, now time.Time) (*entity.Reservation, error) {
	active := activeTentative(now)
	list, err := r.filter(func(res *entity.Reservation) bool {
		return active(res) && res.SessionID == sessionID && res.ProductID == productID
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r reservationRepo) ListActiveTentativeBySession(_ context.Context, sessionID string, now time.Time) ([]*entity.Reservation, error) {
	active := activeTentative(now)
	return r.filter(func(res *entity.Reservation) bool { return active(res) && res.SessionID == sessionID })
}

func (r reservationRepo) SumActiveTentative(_ context.Context, productID int64, now time.Time) (int64, error) {
	active := activeTentative(now)
	list, err := r.filter(func(res *entity.Reservation) bool { return active(res) && res.ProductID == productID })
	var sum int64
	for _, res := range list {
		sum += res.Quantity
	}
	return sum, err
}

func (r reservationRepo) FindCommitted(_ context.Context, orderID, productID int64) (*entity.Reservation, error) {
	list, err := r.filter(func(res *entity.Reservation) bool {
		return res.Type == entity.ReservationTypeCommitted && res.OrderID == orderID && res.ProductID == productID
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r reservationRepo) ListCommittedByOrder(_ context.Context, orderID int64) ([]*entity.Reservation, error) {
	return r.filter(func(res *entity.Reservation) bool {
		return res.Type == entity.ReservationTypeCommitted && res.OrderID == orderID
	})
}

func (r reservationRepo) RevokeExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.a.do(func(st *state) error {
		for _, res := range st.reservations {
			if !res.IsDeleted() && res.IsExpired(now) {
				res.Revoke(now)
				n++
			}
		}
		return nil
	})
	return n, err
}

// ── Ítems de pedido ───────────────────────────────────────────────────────────

type itemRepo struct{ a access }

func (r itemRepo) Save(_ context.Context, it *entity.OrderItem) error {
	if it.CommittedQty < 0 || it.CommittedQty > it.Quantity {
		return fmt.Errorf("save order item: violación de invariante comprometido=%d solicitado=%d", it.CommittedQty, it.Quantity)
	}
	return r.a.do(func(st *state) error {
		if it.ID == 0 {
			st.itemSeq++
			it.ID = st.itemSeq
		}
		st.items[it.ID] = copyItem(it)
		return nil
	})
}

func (r itemRepo) filter(keep func(*entity.OrderItem) bool) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	err := r.a.do(func(st *state) error {
		for _, it := range st.items {
			if keep(it) {
				out = append(out, copyItem(it))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r itemRepo) ListByOrder(_ context.Context, orderID int64) ([]*entity.OrderItem, error) {
	return r.filter(func(it *entity.OrderItem) bool { return it.OrderID == orderID })
}

func (r itemRepo) ListWithShortfall(_ context.Context, productID int64, statuses []string) ([]*entity.OrderItem, error) {
	return r.filter(func(it *entity.OrderItem) bool {
		return it.ProductID == productID && it.CommittedQty < it.Quantity && slices.Contains(statuses, it.Status)
	})
}

func (r itemRepo) CommittedTotalsByProduct(_ context.Context) (map[int64]int64, error) {
	totals := map[int64]int64{}
	err := r.a.do(func(st *state) error {
		for _, it := range st.items {
			if it.Status != entity.OrderStatusCancelled {
				totals[it.ProductID] += it.CommittedQty
			}
		}
		return nil
	})
	return totals, err
}

// ── Outbox ────────────────────────────────────────────────────────────────────

type outboxRepo struct{ a access }

func (r outboxRepo) Create(_ context.Context, ev *entity.OutboxEvent) error {
	return r.a.do(func(st *state) error {
		st.outboxSeq++
		ev.ID = st.outboxSeq
		st.outbox[ev.ID] = copyEvent(ev)
		return nil
	})
}

func (r outboxRepo) GetByID(_ context.Context, id int64) (*entity.OutboxEvent, error) {
	var out *entity.OutboxEvent
	err := r.a.do(func(st *state) error {
		if ev, ok := st.outbox[id]; ok {
			out = copyEvent(ev)
		}
		return nil
	})
	return out, err
}

func (r outboxRepo) FetchDue(_ context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	err := r.a.do(func(st *state) error {
		for _, ev := range st.outbox {
			if ev.Status == entity.OutboxStatusPending && !ev.ScheduledAt.After(now) {
				out = append(out, copyEvent(ev))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r outboxRepo) Claim(_ context.Context, ev *entity.OutboxEvent) (bool, error) {
	claimed := false
	err := r.a.do(func(st *state) error {
		cur, ok := st.outbox[ev.ID]
		if !ok || cur.Status != entity.OutboxStatusPending {
			return nil
		}
		cur.Status = ev.Status
		cur.ClaimedAt = copyTime(ev.ClaimedAt)
		cur.UpdatedAt = ev.UpdatedAt
		claimed = true
		return nil
	})
	return claimed, err
}

func (r outboxRepo) Save(_ context.Context, ev *entity.OutboxEvent) error {
	return r.a.do(func(st *state) error {
		if _, ok := st.outbox[ev.ID]; !ok {
			return fmt.Errorf("%w: evento outbox %d", domain.ErrNotFound, ev.ID)
		}
		st.outbox[ev.ID] = copyEvent(ev)
		return nil
	})
}

func (r outboxRepo) ReclaimStale(_ context.Context, claimedBefore, now time.Time) (int64, error) {
	var n int64
	err := r.a.do(func(st *state) error {
		for _, ev := range st.outbox {
			if ev.Status == entity.OutboxStatusProcessing && ev.ClaimedAt != nil && ev.ClaimedAt.Before(claimedBefore) {
				ev.Status = entity.OutboxStatusPending
				ev.ClaimedAt = nil
				ev.ScheduledAt = now
				ev.UpdatedAt = now
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r outboxRepo) ListByStatus(_ context.Context, status string, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	err := r.a.do(func(st *state) error {
		for _, ev := range st.outbox {
			if ev.Status == status {
				out = append(out, copyEvent(ev))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// ── Ajustes y bitácora ────────────────────────────────────────────────────────

type adjustmentRepo struct{ a access }

func (r adjustmentRepo) Create(_ context.Context, adj *entity.StockAdjustment) error {
	c := *adj
	return r.a.do(func(st *state) error {
		st.adjustments = append(st.adjustments, &c)
		return nil
	})
}

func (r adjustmentRepo) ListByProduct(_ context.Context, productID int64, limit int) ([]*entity.StockAdjustment, error) {
	var out []*entity.StockAdjustment
	err := r.a.do(func(st *state) error {
		for i := len(st.adjustments) - 1; i >= 0; i-- {
			if a := st.adjustments[i]; a.ProductID == productID {
				c := *a
				out = append(out, &c)
				if limit > 0 && len(out) == limit {
					break
				}
			}
		}
		return nil
	})
	return out, err
}

type auditRepo struct{ a access }

func (r auditRepo) Append(_ context.Context, e *entity.AuditLog) error {
	c := *e
	return r.a.do(func(st *state) error {
		st.audit = append(st.audit, &c)
		return nil
	})
}
