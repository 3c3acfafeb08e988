package orderHandler

import (
	"VoiceCommerce/internal/api/order"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/handlerUtil"
	jwtPkg "VoiceCommerce/pkg/jwt"
	"VoiceCommerce/pkg/log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *OrderHandler) CreateVoiceOrder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing voice order request")

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req order.CreateVoiceOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.orderService.CreateVoiceOrder(c, userData.ID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_voice_order")
	}

	status := fiber.StatusOK
	if res.Order != nil {
		status = fiber.StatusCreated
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, status, res)
	}
}

func (h *OrderHandler) ConfirmOrder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req order.ConfirmOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.orderService.ConfirmOrder(c, userData.ID, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "confirm_order")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *OrderHandler) CancelOrder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req order.CancelOrderRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.orderService.CancelOrder(c, userData.ID, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "cancel_order")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

// UpdateOrderStatus is the merchant's progression endpoint; the caller must
// own the order's merchant account.
func (h *OrderHandler) UpdateOrderStatus(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req order.UpdateOrderStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.orderService.AdvanceOrderStatus(c, userData.ID, ctx.Params("id"), req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_order_status")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"order": updated,
		})
	}
}

func (h *OrderHandler) SyncOfflineOrders(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req order.SyncOrdersRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if len(req.Orders) == 0 {
		return errHandler.Handle(ctx, requestID, order.ErrEmptySyncBatch, ctx.Path(), "sync_offline_orders")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.orderService.SyncOfflineOrders(c, userData.ID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "sync_offline_orders")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *OrderHandler) ListOrders(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	page, err := strconv.Atoi(ctx.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(ctx.Query("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	query := order.ListOrdersQuery{
		Status:     ctx.Query("status"),
		Page:       page,
		Limit:      limit,
		AsMerchant: ctx.Query("role") == "merchant",
	}

	list, err := h.orderService.ListOrders(c, userData.ID, query)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_orders")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, list)
	}
}

func (h *OrderHandler) GetOrder(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	o, err := h.orderService.GetOrder(c, userData.ID, ctx.Params("id"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_order")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"order": o,
		})
	}
}
