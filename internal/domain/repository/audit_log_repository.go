package repository

import (
	"context"

	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

// AuditLogRepository bitácora de operaciones.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
}
