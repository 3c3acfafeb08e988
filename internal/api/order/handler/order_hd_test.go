package orderHandler

import (
	"VoiceCommerce/internal/api/order"
	orderService "VoiceCommerce/internal/api/order/service"
	"VoiceCommerce/internal/entity"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMiddleware struct{}

func (stubMiddleware) NewRateLimiter(ctx *fiber.Ctx) error { return ctx.Next() }

func (stubMiddleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	ctx.Locals("user", entity.UserLoginData{ID: "u-1", Email: "asha@example.com", Username: "asha"})
	return ctx.Next()
}

func (stubMiddleware) NewRequestIDMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error { return ctx.Next() }
}

func (stubMiddleware) NewLoggingMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error { return ctx.Next() }
}

func (stubMiddleware) GetRequestID(*fiber.Ctx) string { return "req-test" }

type stubOrderService struct {
	voiceResult *orderService.VoiceOrderResult
	err         error

	lastUserID string
	lastQuery  order.ListOrdersQuery
	syncCalled bool
}

func (s *stubOrderService) CreateVoiceOrder(_ context.Context, userID string, _ order.CreateVoiceOrderRequest) (*orderService.VoiceOrderResult, error) {
	s.lastUserID = userID
	return s.voiceResult, s.err
}

func (s *stubOrderService) ConfirmOrder(_ context.Context, userID, _ string, _ order.ConfirmOrderRequest) (*orderService.VoiceOrderResult, error) {
	s.lastUserID = userID
	return s.voiceResult, s.err
}

func (s *stubOrderService) CancelOrder(_ context.Context, userID, _ string, _ order.CancelOrderRequest) (*orderService.VoiceOrderResult, error) {
	s.lastUserID = userID
	return s.voiceResult, s.err
}

func (s *stubOrderService) AdvanceOrderStatus(_ context.Context, merchantID, orderID string, _ order.UpdateOrderStatusRequest) (*entity.Order, error) {
	s.lastUserID = merchantID
	return &entity.Order{ID: orderID, Status: entity.OrderStatusPreparing}, s.err
}

func (s *stubOrderService) SyncOfflineOrders(context.Context, string, order.SyncOrdersRequest) (*orderService.SyncResult, error) {
	s.syncCalled = true
	return &orderService.SyncResult{Message: "0 orders synced successfully"}, s.err
}

func (s *stubOrderService) ListOrders(_ context.Context, userID string, q order.ListOrdersQuery) (*orderService.OrderList, error) {
	s.lastUserID = userID
	s.lastQuery = q
	return &orderService.OrderList{Orders: []entity.Order{}, Page: q.Page, Limit: q.Limit}, s.err
}

func (s *stubOrderService) GetOrder(_ context.Context, _, orderID string) (*entity.Order, error) {
	return &entity.Order{ID: orderID}, s.err
}

func newTestApp(svc *stubOrderService) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app := fiber.New()
	New(logger, validator.New(), stubMiddleware{}, svc).Start(app.Group("/api/v1"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, jsoniter.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestCreateVoiceOrder_StatusDependsOnOrder(t *testing.T) {
	svc := &stubOrderService{voiceResult: &orderService.VoiceOrderResult{Order: &entity.Order{ID: "o-1"}}}
	app := newTestApp(svc)

	body := `{"voiceCommand":"order 2 kg rice","language":"english"}`
	status, out := do(t, app, http.MethodPost, "/api/v1/orders/voice", body)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "u-1", svc.lastUserID)
	assert.Contains(t, out, "order")

	svc.voiceResult = &orderService.VoiceOrderResult{DroppedItems: []string{"saffron"}}
	status, out = do(t, app, http.MethodPost, "/api/v1/orders/voice", body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"saffron"}, out["dropped_items"])
}

func TestCreateVoiceOrder_RejectsUnsupportedLanguage(t *testing.T) {
	app := newTestApp(&stubOrderService{})

	status, out := do(t, app, http.MethodPost, "/api/v1/orders/voice", `{"voiceCommand":"order rice","language":"french"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", out["code"])
}

func TestConfirmOrder_MapsDomainError(t *testing.T) {
	app := newTestApp(&stubOrderService{err: order.ErrConfirmationFailed})

	status, out := do(t, app, http.MethodPost, "/api/v1/orders/o-1/confirm", `{"confirmationCommand":"hmm"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFIRMATION_FAILED", out["code"])
	assert.Equal(t, "Order confirmation failed", out["error"])
}

func TestCancelOrder_AcceptsEmptyBody(t *testing.T) {
	svc := &stubOrderService{voiceResult: &orderService.VoiceOrderResult{Order: &entity.Order{ID: "o-1", Status: entity.OrderStatusCancelled}}}
	app := newTestApp(svc)

	status, _ := do(t, app, http.MethodPost, "/api/v1/orders/o-1/cancel", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestUpdateOrderStatus_ValidatesStatus(t *testing.T) {
	svc := &stubOrderService{}
	app := newTestApp(svc)

	status, _ := do(t, app, http.MethodPatch, "/api/v1/orders/o-1/status", `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, out := do(t, app, http.MethodPatch, "/api/v1/orders/o-1/status", `{"status":"preparing"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u-1", svc.lastUserID)
	assert.Contains(t, out, "order")
}

func TestSyncOfflineOrders_EmptyBatch(t *testing.T) {
	svc := &stubOrderService{}
	app := newTestApp(svc)

	status, out := do(t, app, http.MethodPost, "/api/v1/orders/sync", `{"deviceId":"dev-1","orders":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "EMPTY_SYNC_BATCH", out["code"])
	assert.False(t, svc.syncCalled)
}

func TestListOrders_ParsesQuery(t *testing.T) {
	svc := &stubOrderService{}
	app := newTestApp(svc)

	status, _ := do(t, app, http.MethodGet, "/api/v1/orders?status=confirmed&page=2&limit=5&role=merchant", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, order.ListOrdersQuery{Status: "confirmed", Page: 2, Limit: 5, AsMerchant: true}, svc.lastQuery)

	status, _ = do(t, app, http.MethodGet, "/api/v1/orders?page=abc", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, order.ListOrdersQuery{Page: 1, Limit: 20}, svc.lastQuery)
}

func TestGetOrder_NotOwned(t *testing.T) {
	app := newTestApp(&stubOrderService{err: order.ErrOrderNotOwned})

	status, out := do(t, app, http.MethodGet, "/api/v1/orders/o-9", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ORDER_NOT_OWNED", out["code"])
}
