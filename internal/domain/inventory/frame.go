package inventory

import "github.com/jhoicas/stock-allocation-api/internal/domain/entity"

// FrameGrant cantidad otorgada a un ítem en una corrida de asignación.
type FrameGrant struct {
	Item *entity.OrderItem
	Qty  int64
}

// PlanFrameGrants reparte remaining entre los ítems en el orden recibido (el llamador los
// entrega del más antiguo al más reciente). Ningún ítem posterior recibe cupo mientras uno
// anterior tenga faltante y quede capacidad. No modifica los ítems.
func PlanFrameGrants(remaining int64, items []*entity.OrderItem) ([]FrameGrant, int64) {
	var (
		grants []FrameGrant
		total  int64
	)
	for _, item := range items {
		if remaining <= 0 {
			break
		}
		grant := min(item.Shortfall(), remaining)
		if grant <= 0 {
			continue
		}
		grants = append(grants, FrameGrant{Item: item, Qty: grant})
		remaining -= grant
		total += grant
	}
	return grants, total
}
