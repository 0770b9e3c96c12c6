package ports

// Metrics puerto de métricas operativas. El adaptador Prometheus vive en infrastructure/metrics;
// NopMetrics sirve para pruebas y para arrancar sin exportador.
type Metrics interface {
	ReservationHeld(productID int64)
	OutOfStock(productID int64)
	FrameUnitsGranted(productID int64, qty int64)
	ReservationsSwept(n int64)
	OutboxOutcome(eventType, outcome string)
	OutboxReclaimed(n int64)
	ReconciliationCompleted(checked, mismatches int)
}

// Resultados de despacho reportados a OutboxOutcome.
const (
	OutcomeProcessed = "processed"
	OutcomeRetry     = "retry"
	OutcomeDead      = "dead"
)

// NopMetrics no registra nada.
type NopMetrics struct{}

func (NopMetrics) ReservationHeld(int64)            {}
func (NopMetrics) OutOfStock(int64)                 {}
func (NopMetrics) FrameUnitsGranted(int64, int64)   {}
func (NopMetrics) ReservationsSwept(int64)          {}
func (NopMetrics) OutboxOutcome(string, string)     {}
func (NopMetrics) OutboxReclaimed(int64)            {}
func (NopMetrics) ReconciliationCompleted(int, int) {}
