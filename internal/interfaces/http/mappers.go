package http

import (
	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
)

func toAvailabilityDTO(a entity.StockAvailability) dto.StockAvailabilityDTO {
	return dto.StockAvailabilityDTO{
		ProductID:         a.ProductID,
		AllocationType:    a.AllocationType,
		Physical:          a.Physical,
		TentativeReserved: a.TentativeReserved,
		CommittedReserved: a.CommittedReserved,
		Available:         a.Available,
		UtilizationPct:    a.UtilizationPct,
	}
}

func toAdminViewDTO(v *entity.AdminStockView) dto.AdminStockViewDTO {
	out := dto.AdminStockViewDTO{
		ProductID:      v.Product.ID,
		Name:           v.Product.Name,
		AllocationType: v.Product.AllocationType,
		Availability:   toAvailabilityDTO(v.Availability),
		FrameFillPct:   v.FrameFillPct,
	}
	if v.Location != nil {
		out.Location = dto.LocationStockDTO{
			LocationID:     v.Location.LocationID,
			AllocatableQty: v.Location.AllocatableQty,
			CommittedQty:   v.Location.CommittedQty,
			RemainingQty:   v.Location.RemainingQty(),
			UpdatedAt:      v.Location.UpdatedAt,
		}
	}
	if v.SalesLimit != nil {
		out.SalesLimit = &dto.SalesLimitDTO{
			FrameLimitQty: v.SalesLimit.FrameLimitQty,
			ConsumedQty:   v.SalesLimit.ConsumedQty,
			RemainingQty:  v.SalesLimit.RemainingQty(),
		}
	}
	return out
}

func toReservationDTO(r *entity.Reservation) dto.ReservationDTO {
	return dto.ReservationDTO{
		ID:        r.ID,
		SessionID: r.SessionID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Type:      r.Type,
		ExpiresAt: r.ExpiresAt,
	}
}

func toAdjustmentDTO(a *entity.StockAdjustment) dto.StockAdjustmentDTO {
	return dto.StockAdjustmentDTO{
		ID:         a.ID,
		ProductID:  a.ProductID,
		LocationID: a.LocationID,
		Delta:      a.Delta,
		BeforeQty:  a.BeforeQty,
		AfterQty:   a.AfterQty,
		Reason:     a.Reason,
		Actor:      a.Actor,
		CreatedAt:  a.CreatedAt,
	}
}

func toOutboxEventDTO(e *entity.OutboxEvent) dto.OutboxEventDTO {
	return dto.OutboxEventDTO{
		ID:           e.ID,
		EventType:    e.EventType,
		AggregateID:  e.AggregateID,
		Payload:      e.Payload,
		Status:       e.Status,
		RetryCount:   e.RetryCount,
		MaxRetries:   e.MaxRetries,
		ScheduledAt:  e.ScheduledAt,
		ErrorMessage: e.ErrorMessage,
		ProcessedAt:  e.ProcessedAt,
		CreatedAt:    e.CreatedAt,
	}
}
