package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los SELECT ... FOR UPDATE hechos dentro de fn se liberan al terminar la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Repos implementa repository.Repositories sobre un Querier (pool o tx).
type Repos struct {
	products     *ProductRepo
	stocks       *LocationStockRepo
	limits       *SalesLimitRepo
	reservations *ReservationRepo
	items        *OrderItemRepo
	outbox       *OutboxRepo
	adjustments  *StockAdjustmentRepo
	audit        *AuditLogRepo
}

var _ repository.Repositories = (*Repos)(nil)

// NewRepositories construye todos los repos sobre q. Con el pool, cada llamada es su propia transacción implícita.
func NewRepositories(q Querier) *Repos {
	return &Repos{
		products:     NewProductRepository(q),
		stocks:       NewLocationStockRepository(q),
		limits:       NewSalesLimitRepository(q),
		reservations: NewReservationRepository(q),
		items:        NewOrderItemRepository(q),
		outbox:       NewOutboxRepository(q),
		adjustments:  NewStockAdjustmentRepository(q),
		audit:        NewAuditLogRepository(q),
	}
}

func (r *Repos) Products() repository.ProductRepository             { return r.products }
func (r *Repos) LocationStocks() repository.LocationStockRepository { return r.stocks }
func (r *Repos) SalesLimits() repository.SalesLimitRepository       { return r.limits }
func (r *Repos) Reservations() repository.ReservationRepository     { return r.reservations }
func (r *Repos) OrderItems() repository.OrderItemRepository         { return r.items }
func (r *Repos) Outbox() repository.OutboxRepository                { return r.outbox }
func (r *Repos) Adjustments() repository.StockAdjustmentRepository  { return r.adjustments }
func (r *Repos) AuditLogs() repository.AuditLogRepository           { return r.audit }
