package metrics

import (
	"strconv"

	"github.com/jhoicas/stock-allocation-api/internal/application/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stock_allocation"

var _ ports.Metrics = (*Prometheus)(nil)

// Prometheus implementa ports.Metrics con colectores registrados en reg.
type Prometheus struct {
	reservationsHeld   *prometheus.CounterVec
	outOfStock         *prometheus.CounterVec
	frameUnits         *prometheus.CounterVec
	reservationsSwept  prometheus.Counter
	outboxOutcomes     *prometheus.CounterVec
	outboxReclaimed    prometheus.Counter
	reconciliationRuns prometheus.Counter
	reconciliationRows prometheus.Gauge
	reconciliationDiff prometheus.Gauge
}

// NewPrometheus registra los colectores en reg (prometheus.DefaultRegisterer en producción,
// un registro propio en pruebas).
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		reservationsHeld: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reservations_held_total",
			Help: "Reservas tentativas creadas o actualizadas.",
		}, []string{"product_id"}),
		outOfStock: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "out_of_stock_total",
			Help: "Rechazos por stock insuficiente.",
		}, []string{"product_id"}),
		frameUnits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "frame_units_granted_total",
			Help: "Unidades frame asignadas por el motor FIFO.",
		}, []string{"product_id"}),
		reservationsSwept: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reservations_swept_total",
			Help: "Reservas tentativas vencidas liberadas por el barrido.",
		}),
		outboxOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_dispatch_total",
			Help: "Resultados de despacho outbox por tipo de evento.",
		}, []string{"event_type", "outcome"}),
		outboxReclaimed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_reclaimed_total",
			Help: "Eventos PROCESSING colgados devueltos a PENDING.",
		}),
		reconciliationRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "reconciliation_runs_total",
			Help: "Corridas de reconciliación terminadas.",
		}),
		reconciliationRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "reconciliation_checked_rows",
			Help: "Filas del libro revisadas en la última corrida.",
		}),
		reconciliationDiff: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "reconciliation_mismatches",
			Help: "Descuadres detectados en la última corrida.",
		}),
	}
}

func label(id int64) string { return strconv.FormatInt(id, 10) }

func (p *Prometheus) ReservationHeld(productID int64) {
	p.reservationsHeld.WithLabelValues(label(productID)).Inc()
}

func (p *Prometheus) OutOfStock(productID int64) {
	p.outOfStock.WithLabelValues(label(productID)).Inc()
}

func (p *Prometheus) FrameUnitsGranted(productID int64, qty int64) {
	p.frameUnits.WithLabelValues(label(productID)).Add(float64(qty))
}

func (p *Prometheus) ReservationsSwept(n int64) {
	p.reservationsSwept.Add(float64(n))
}

func (p *Prometheus) OutboxOutcome(eventType, outcome string) {
	p.outboxOutcomes.WithLabelValues(eventType, outcome).Inc()
}

func (p *Prometheus) OutboxReclaimed(n int64) {
	p.outboxReclaimed.Add(float64(n))
}

func (p *Prometheus) ReconciliationCompleted(checked, mismatches int) {
	p.reconciliationRuns.Inc()
	p.reconciliationRows.Set(float64(checked))
	p.reconciliationDiff.Set(float64(mismatches))
}
