package repository

// Repositories agrupa los repositorios atados a una misma conexión o transacción.
// Todo lo que se haga a través de un mismo Repositories dentro de TxRunner.Run
// se confirma o se revierte junto.
type Repositories interface {
	Products() ProductRepository
	LocationStocks() LocationStockRepository
	SalesLimits() SalesLimitRepository
	Reservations() ReservationRepository
	OrderItems() OrderItemRepository
	Outbox() OutboxRepository
	Adjustments() StockAdjustmentRepository
	AuditLogs() AuditLogRepository
}
