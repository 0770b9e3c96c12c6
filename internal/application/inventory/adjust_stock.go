package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-allocation-api/internal/domain"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// AdjustStockInput corrección administrativa de la capacidad asignable.
type AdjustStockInput struct {
	ProductID int64
	Delta     int64
	Reason    string
	Actor     string
}

// AdjustStock aplica Delta a AllocatableQty con la fila bloqueada y registra el ajuste con
// su foto antes/después. Falla con VALIDATION_ERROR si la capacidad quedaría negativa o por
// debajo de lo ya comprometido.
func (uc *ReservationUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*entity.StockAdjustment, error) {
	if in.ProductID <= 0 {
		return nil, domain.Invalid("product_id inválido")
	}
	if in.Delta == 0 {
		return nil, domain.Invalid("delta no puede ser cero")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.Invalid("reason es requerido")
	}
	if strings.TrimSpace(in.Actor) == "" {
		return nil, domain.Invalid("actor es requerido")
	}

	var adj *entity.StockAdjustment
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		now := uc.cfg.Now()
		product, err := repos.Products().GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, in.ProductID)
		}
		loc, err := repos.LocationStocks().GetForUpdate(ctx, in.ProductID, uc.cfg.LocationID)
		if err != nil {
			return err
		}
		before := loc.AllocatableQty
		after := before + in.Delta
		if after < 0 {
			return domain.Invalid("el ajuste deja la cantidad en %d (actual %d, delta %d)", after, before, in.Delta)
		}
		if after < loc.CommittedQty {
			return domain.Invalid("el ajuste deja la cantidad %d por debajo de lo comprometido %d", after, loc.CommittedQty)
		}
		loc.AllocatableQty = after
		loc.UpdatedAt = now
		if err := repos.LocationStocks().Save(ctx, loc); err != nil {
			return err
		}

		adj = &entity.StockAdjustment{
			ID:         uuid.New().String(),
			ProductID:  in.ProductID,
			LocationID: loc.LocationID,
			Delta:      in.Delta,
			BeforeQty:  before,
			AfterQty:   after,
			Reason:     strings.TrimSpace(in.Reason),
			Actor:      in.Actor,
			CreatedAt:  now,
		}
		if err := repos.Adjustments().Create(ctx, adj); err != nil {
			return err
		}

		productID := strconv.FormatInt(in.ProductID, 10)
		if product.IsFrame() && in.Delta > 0 {
			if err := uc.publisher.Publish(ctx, repos, entity.EventStockReplenished, productID,
				entity.StockReplenishedPayload{ProductID: in.ProductID, Reason: "stock_adjustment"}); err != nil {
				return err
			}
		}
		return audit(ctx, uc.publisher, repos, OpAdjustStock, in.Actor, "location_stock", productID, adj)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Int64("product_id", adj.ProductID).
		Int64("delta", adj.Delta).
		Int64("after", adj.AfterQty).
		Str("actor", adj.Actor).
		Msg("stock ajustado")
	return adj, nil
}

// ListAdjustments historial de ajustes de un producto, el más reciente primero.
func (uc *ReservationUseCase) ListAdjustments(ctx context.Context, productID int64, limit int) ([]*entity.StockAdjustment, error) {
	if productID <= 0 {
		return nil, domain.Invalid("product_id inválido")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.reads.Adjustments().ListByProduct(ctx, productID, limit)
}
