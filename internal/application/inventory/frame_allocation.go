package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FrameAllocationUseCase motor de asignación frame: reparte la capacidad limitada entre la demanda
// pendiente en orden de llegada. Es reentrante: correrlo sin capacidad o sin faltantes no hace nada.
type FrameAllocationUseCase struct {
	txRunner TxRunner
	metrics  ports.Metrics
	log      zerolog.Logger
	cfg      Config
}

// NewFrameAllocationUseCase construye el motor.
func NewFrameAllocationUseCase(txRunner TxRunner, metrics ports.Metrics, log zerolog.Logger, cfg Config) *FrameAllocationUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &FrameAllocationUseCase{
		txRunner: txRunner,
		metrics:  metrics,
		log:      log.With().Str("component", "frame_allocation").Logger(),
		cfg:      cfg.withDefaults(),
	}
}

// Allocate corre el motor para un producto en su propia transacción; devuelve las unidades otorgadas.
func (uc *FrameAllocationUseCase) Allocate(ctx context.Context, productID int64) (int64, error) {
	ctx, span := otel.Tracer("frame-allocation").Start(ctx, "FrameAllocation.Allocate")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	var granted int64
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		n, err := uc.AllocateInTx(ctx, repos, productID)
		granted = n
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("frame allocation product %d: %w", productID, err)
	}
	span.SetAttributes(attribute.Int64("allocation.granted", granted))
	return granted, nil
}

// AllocateInTx ejecuta una corrida dentro de la transacción del llamador.
func (uc *FrameAllocationUseCase) AllocateInTx(ctx context.Context, repos repository.Repositories, productID int64) (int64, error) {
	product, err := repos.Products().GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	if product == nil || !product.IsFrame() {
		return 0, nil
	}
	now := uc.cfg.Now()

	// 1. Bloquear la fila del libro (se crea en cero si no existe)
	loc, err := repos.LocationStocks().GetForUpdate(ctx, productID, uc.cfg.LocationID)
	if err != nil {
		return 0, err
	}
	limit, err := repos.SalesLimits().GetForUpdate(ctx, productID)
	if err != nil {
		return 0, err
	}

	// 2. Sin capacidad no hay trabajo
	remaining := inventory.RemainingCapacity(product, loc, limit)
	if remaining <= 0 {
		return 0, nil
	}

	// 3-5. Reparto FIFO sobre la demanda pendiente y persistencia en la misma transacción
	grants, total, err := grantFIFO(ctx, repos, productID, loc, limit, remaining, now)
	if err != nil || total == 0 {
		return 0, err
	}

	uc.metrics.FrameUnitsGranted(productID, total)
	uc.log.Info().
		Int64("product_id", productID).
		Int64("granted", total).
		Int("items", len(grants)).
		Msg("cupo frame asignado")
	return total, nil
}

// grantFIFO reparte capacity entre los ítems del producto con faltante, del más antiguo al más
// reciente, y persiste ítems, reservas comprometidas, libro y cupo. El llamador ya tiene bloqueadas
// loc (y limit si existe) en repos. Es el único punto donde se otorga cupo frame.
func grantFIFO(
	ctx context.Context,
	repos repository.Repositories,
	productID int64,
	loc *entity.LocationStock,
	limit *entity.SalesLimit,
	capacity int64,
	now time.Time,
) ([]inventory.FrameGrant, int64, error) {
	if capacity <= 0 {
		return nil, 0, nil
	}
	items, err := repos.OrderItems().ListWithShortfall(ctx, productID, entity.AllocatableOrderStatuses)
	if err != nil {
		return nil, 0, err
	}
	grants, total := inventory.PlanFrameGrants(capacity, items)
	if total == 0 {
		return nil, 0, nil
	}
	for _, g := range grants {
		g.Item.Grant(g.Qty, now)
		if err := repos.OrderItems().Save(ctx, g.Item); err != nil {
			return nil, 0, err
		}
		if err := addCommitted(ctx, repos, "", g.Item.OrderID, productID, g.Qty, now); err != nil {
			return nil, 0, err
		}
	}
	loc.Commit(total, now)
	if err := repos.LocationStocks().Save(ctx, loc); err != nil {
		return nil, 0, err
	}
	if limit != nil {
		limit.Consume(total, now)
		if err := repos.SalesLimits().Save(ctx, limit); err != nil {
			return nil, 0, err
		}
	}
	return grants, total, nil
}
