package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/jhoicas/stock-allocation-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ReconciliationMismatch diferencia entre el libro y la suma de ítems comprometidos.
type ReconciliationMismatch struct {
	ProductID         int64  `json:"product_id"`
	LocationID        string `json:"location_id"`
	LedgerCommitted   int64  `json:"ledger_committed"`
	ExpectedCommitted int64  `json:"expected_committed"`
	Drift             int64  `json:"drift"` // ledger - expected
}

// ReconciliationReport resultado de una corrida.
type ReconciliationReport struct {
	RunID       string                   `json:"run_id"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
	CheckedRows int                      `json:"checked_rows"`
	Mismatches  []ReconciliationMismatch `json:"mismatches"`
}

// ReconciliationUseCase verificación periódica de solo lectura. Nunca corrige: la deriva se
// reporta (log + métrica) y se corrige fuera de banda con ajustes administrativos.
type ReconciliationUseCase struct {
	reads   repository.Repositories
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewReconciliationUseCase construye el job.
func NewReconciliationUseCase(reads repository.Repositories, metrics ports.Metrics, log zerolog.Logger, now func() time.Time) *ReconciliationUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if now == nil {
		now = time.Now
	}
	return &ReconciliationUseCase{
		reads:   reads,
		metrics: metrics,
		log:     log.With().Str("component", "reconciliation").Logger(),
		now:     now,
	}
}

// Run compara cada fila del libro con la suma de CommittedQty de los ítems no cancelados del producto.
func (uc *ReconciliationUseCase) Run(ctx context.Context) (*ReconciliationReport, error) {
	ctx, span := otel.Tracer("reconciliation").Start(ctx, "Reconciliation.Run")
	defer span.End()

	report := &ReconciliationReport{RunID: uuid.New().String(), StartedAt: uc.now()}

	rows, err := uc.reads.LocationStocks().List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	expected, err := uc.reads.OrderItems().CommittedTotalsByProduct(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, row := range rows {
		report.CheckedRows++
		want := expected[row.ProductID]
		if row.CommittedQty == want {
			continue
		}
		m := ReconciliationMismatch{
			ProductID:         row.ProductID,
			LocationID:        row.LocationID,
			LedgerCommitted:   row.CommittedQty,
			ExpectedCommitted: want,
			Drift:             row.CommittedQty - want,
		}
		report.Mismatches = append(report.Mismatches, m)
		uc.log.Warn().
			Str("run_id", report.RunID).
			Int64("product_id", m.ProductID).
			Str("location_id", m.LocationID).
			Int64("ledger_committed", m.LedgerCommitted).
			Int64("expected_committed", m.ExpectedCommitted).
			Msg("descuadre entre libro de stock e ítems comprometidos")
	}
	report.FinishedAt = uc.now()

	span.SetAttributes(
		attribute.Int("reconciliation.checked", report.CheckedRows),
		attribute.Int("reconciliation.mismatches", len(report.Mismatches)),
	)
	uc.metrics.ReconciliationCompleted(report.CheckedRows, len(report.Mismatches))
	uc.log.Info().
		Str("run_id", report.RunID).
		Int("checked", report.CheckedRows).
		Int("mismatches", len(report.Mismatches)).
		Msg("reconciliación terminada")
	return report, nil
}
