package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
)

// Operaciones registradas en auditoría.
const (
	OpCommitReservations = "COMMIT_RESERVATIONS"
	OpReleaseCommitted   = "RELEASE_COMMITTED_RESERVATIONS"
	OpAdjustStock        = "ADJUST_STOCK"
	OpConfirmOrder       = "CONFIRM_ORDER"
)

// SystemActor actor de operaciones sin usuario (pedidos de la tienda, workers).
const SystemActor = "system"

// audit escribe un OPERATION_PERFORMED en la misma transacción; el handler de auditoría
// lo pasa a la bitácora de forma asíncrona.
func audit(ctx context.Context, pub EventPublisher, repos repository.Repositories, op, actor, entityType, entityID string, detail any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}
	if actor == "" {
		actor = SystemActor
	}
	return pub.Publish(ctx, repos, entity.EventOperationPerformed, entityID, entity.OperationPerformedPayload{
		Operation:  op,
		Actor:      actor,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     raw,
	})
}
