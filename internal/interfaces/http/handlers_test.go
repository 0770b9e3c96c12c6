package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-allocation-api/internal/application/dto"
	"github.com/jhoicas/stock-allocation-api/internal/application/inventory"
	"github.com/jhoicas/stock-allocation-api/internal/application/outbox"
	"github.com/jhoicas/stock-allocation-api/internal/domain/entity"
	"github.com/jhoicas/stock-allocation-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-allocation-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/stock-allocation-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newAPI arma el router completo sobre el store en memoria con un producto REAL (42, 1 unidad)
// y uno FRAME (7, cupo 5).
func newAPI(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.PutProduct(&entity.Product{ID: 42, Name: "Camiseta", AllocationType: entity.AllocationTypeReal}, entity.DefaultLocationID, 1)
	store.PutProduct(&entity.Product{ID: 7, Name: "Preventa", AllocationType: entity.AllocationTypeFrame}, entity.DefaultLocationID, 10)
	store.PutSalesLimit(&entity.SalesLimit{ProductID: 7, FrameLimitQty: 5})

	log := zerolog.Nop()
	reservations := inventory.NewReservationUseCase(store, store.Repositories(), outbox.NewPublisher(0, nil), nil, log, inventory.Config{})
	frames := inventory.NewFrameAllocationUseCase(store, nil, log, inventory.Config{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Reservations: reservations,
		Frames:       frames,
		OutboxAdmin:  outbox.NewAdminService(store.Repositories().Outbox(), nil),
		Gatherer:     prometheus.NewRegistry(),
		JWTSecret:    testJWTSecret,
		JWTIssuer:    testIssuer,
	})
	return app, store
}

func call(t *testing.T, app *fiber.App, method, path string, body any, auth string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReservations_CrearSinStock_Retorna409ConDetalles(t *testing.T) {
	app, store := newAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/reservations",
		dto.CreateReservationRequest{SessionID: "s1", ProductID: 42, Quantity: 2}, "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var er dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, "OUT_OF_STOCK", er.Code)
	assert.EqualValues(t, 2, er.Details["requested"], "debe informar lo solicitado")
	assert.EqualValues(t, 1, er.Details["available"], "debe informar lo disponible")
	assert.EqualValues(t, 42, er.Details["product_id"])

	held, err := store.Repositories().Reservations().SumActiveTentative(t.Context(), 42, time.Now())
	require.NoError(t, err)
	assert.Zero(t, held, "no debe quedar reserva creada")
}

func TestReservations_CicloCompleto(t *testing.T) {
	app, _ := newAPI(t)

	resp, body := call(t, app, http.MethodPost, "/api/reservations",
		dto.CreateReservationRequest{SessionID: "s1", ProductID: 42, Quantity: 1}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var r dto.ReservationDTO
	require.NoError(t, json.Unmarshal(body, &r))
	assert.Equal(t, entity.ReservationTypeTentative, r.Type)
	assert.NotNil(t, r.ExpiresAt, "la reserva tentativa debe tener vencimiento")

	resp, body = call(t, app, http.MethodGet, "/api/inventory/stock/42", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var av dto.StockAvailabilityDTO
	require.NoError(t, json.Unmarshal(body, &av))
	assert.EqualValues(t, 0, av.Available, "la reserva consume la disponibilidad")
	assert.EqualValues(t, 1, av.TentativeReserved)

	resp, _ = call(t, app, http.MethodPut, "/api/reservations/s1/42", dto.UpdateReservationRequest{Quantity: 3}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "aumentar por encima del stock debe fallar")

	resp, _ = call(t, app, http.MethodDelete, "/api/reservations/s1/42", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, http.MethodDelete, "/api/reservations/s1/42", nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "liberar es idempotente")

	resp, body = call(t, app, http.MethodDelete, "/api/reservations/s1", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all dto.ReleaseAllResponse
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Zero(t, all.Released)
}

func TestReservations_ActualizarInexistente_Retorna404(t *testing.T) {
	app, _ := newAPI(t)
	resp, _ := call(t, app, http.MethodPut, "/api/reservations/s9/42", dto.UpdateReservationRequest{Quantity: 1}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReservations_CantidadCero_Retorna400(t *testing.T) {
	app, _ := newAPI(t)
	resp, body := call(t, app, http.MethodPost, "/api/reservations",
		dto.CreateReservationRequest{SessionID: "s1", ProductID: 42, Quantity: 0}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION_ERROR")
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestInventory_ListaTodoElCatalogo(t *testing.T) {
	app, _ := newAPI(t)
	resp, body := call(t, app, http.MethodGet, "/api/inventory/stock", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.InventoryStatusResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, 2, list.Total)
}

func TestInventory_ProductoInexistente_Retorna404(t *testing.T) {
	app, _ := newAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/api/inventory/stock/999", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/inventory/stock/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Administración
// ──────────────────────────────────────────────────────────────────────────────

func TestAdmin_RequiereRolAdmin(t *testing.T) {
	app, _ := newAPI(t)

	resp, _ := call(t, app, http.MethodGet, "/api/admin/inventory/7", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, app, http.MethodGet, "/api/admin/inventory/7", nil, tokenForRole(t, pkgjwt.RoleOperator))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdmin_VistaYAjuste(t *testing.T) {
	app, store := newAPI(t)
	auth := tokenForRole(t, pkgjwt.RoleAdmin)

	resp, body := call(t, app, http.MethodGet, "/api/admin/inventory/7", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var view dto.AdminStockViewDTO
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, entity.AllocationTypeFrame, view.AllocationType)
	require.NotNil(t, view.SalesLimit, "el producto frame expone su cupo")
	assert.EqualValues(t, 5, view.SalesLimit.RemainingQty)

	resp, body = call(t, app, http.MethodPost, "/api/admin/inventory/42/adjustments",
		dto.AdjustStockRequest{Delta: 4, Reason: "conteo físico"}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var adj dto.StockAdjustmentDTO
	require.NoError(t, json.Unmarshal(body, &adj))
	assert.EqualValues(t, 1, adj.BeforeQty)
	assert.EqualValues(t, 5, adj.AfterQty)
	assert.Equal(t, testUserID, adj.Actor, "el actor sale del token")

	resp, _ = call(t, app, http.MethodPost, "/api/admin/inventory/42/adjustments",
		dto.AdjustStockRequest{Delta: -100, Reason: "error"}, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "no se permite cantidad negativa")

	resp, body = call(t, app, http.MethodGet, "/api/admin/inventory/42/adjustments", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.StockAdjustmentDTO
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 1)

	events, err := store.Repositories().Outbox().ListByStatus(t.Context(), entity.OutboxStatusPending, 10)
	require.NoError(t, err)
	assert.NotEmpty(t, events, "el ajuste deja su evento de auditoría en el outbox")
}

func TestAdmin_AllocateSinDemanda(t *testing.T) {
	app, _ := newAPI(t)
	resp, body := call(t, app, http.MethodPost, "/api/admin/inventory/7/allocate", nil, tokenForRole(t, pkgjwt.RoleAdmin))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res dto.AllocationResultDTO
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Zero(t, res.Granted, "sin pedidos pendientes no se otorga nada")
}

func TestOutbox_ListaYReencolado(t *testing.T) {
	app, store := newAPI(t)
	auth := tokenForRole(t, pkgjwt.RoleAdmin)

	dead := entity.NewOutboxEvent("FOO", "1", json.RawMessage(`{}`), 3, time.Now())
	dead.MarkDead("no hay handler", time.Now())
	require.NoError(t, store.Repositories().Outbox().Create(t.Context(), dead))

	resp, body := call(t, app, http.MethodGet, "/api/admin/outbox", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.OutboxListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, entity.OutboxStatusDead, list.Status)
	require.Equal(t, 1, list.Total)

	resp, body = call(t, app, http.MethodPost, "/api/admin/outbox/1/requeue", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var ev dto.OutboxEventDTO
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, entity.OutboxStatusPending, ev.Status)
	assert.Zero(t, ev.RetryCount)

	resp, _ = call(t, app, http.MethodPost, "/api/admin/outbox/1/requeue", nil, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "solo se reencolan eventos DEAD")

	resp, _ = call(t, app, http.MethodGet, "/api/admin/outbox?status=RARO", nil, auth)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetrics_Expuestas(t *testing.T) {
	app, _ := newAPI(t)
	resp, _ := call(t, app, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ganchos del ciclo de pedidos
// ──────────────────────────────────────────────────────────────────────────────

func TestOrders_RequiereToken(t *testing.T) {
	app, _ := newAPI(t)
	resp, _ := call(t, app, http.MethodPost, "/api/orders/10/cancel", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = call(t, app, http.MethodPost, "/api/orders/10/cancel", nil, tokenForRole(t, pkgjwt.RoleOperator))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrders_ComprometerConfirmarCancelar(t *testing.T) {
	app, store := newAPI(t)
	auth := tokenForRole(t, pkgjwt.RoleService)

	resp, body := call(t, app, http.MethodPost, "/api/orders/commit", dto.CommitOrderRequest{
		OrderID:   10,
		SessionID: "s1",
		Items: []dto.OrderItemRequest{
			{ProductID: 42, Quantity: 1},
			{ProductID: 7, Quantity: 8},
		},
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var res dto.CommitOrderResponse
	require.NoError(t, json.Unmarshal(body, &res))
	require.Len(t, res.Lines, 2)
	byProduct := map[int64]dto.CommitLineDTO{}
	for _, l := range res.Lines {
		byProduct[l.ProductID] = l
	}
	assert.EqualValues(t, 1, byProduct[42].Committed)
	assert.EqualValues(t, 5, byProduct[7].Committed, "el cupo frame limita lo comprometido")
	assert.EqualValues(t, 3, byProduct[7].Shortfall, "el faltante queda para el motor frame")

	resp, body = call(t, app, http.MethodPost, "/api/orders/commit", dto.CommitOrderRequest{
		OrderID: 11,
		Items:   []dto.OrderItemRequest{{ProductID: 42, Quantity: 1}},
	}, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "un producto REAL sin stock rechaza el pedido")
	assert.Contains(t, string(body), "OUT_OF_STOCK")

	resp, _ = call(t, app, http.MethodPost, "/api/orders/10/confirm",
		dto.ConfirmOrderRequest{CustomerEmail: "cliente@example.com"}, auth)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/orders/10/cancel", nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var cancel dto.CancelOrderResponse
	require.NoError(t, json.Unmarshal(body, &cancel))
	assert.EqualValues(t, 6, cancel.ReleasedQty)

	loc, err := store.Repositories().LocationStocks().Get(t.Context(), 42, entity.DefaultLocationID)
	require.NoError(t, err)
	assert.Zero(t, loc.CommittedQty, "la cancelación devuelve lo comprometido al libro")

	resp, _ = call(t, app, http.MethodPost, "/api/orders/10/confirm", nil, auth)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "un pedido cancelado no se confirma")
}
