package notificationHandler

import (
	"VoiceCommerce/internal/api/notification"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/handlerUtil"
	jwtPkg "VoiceCommerce/pkg/jwt"
	"VoiceCommerce/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

// handleWebSocket keeps the socket registered until the client goes away.
// Inbound frames are only read to detect closure.
func (h *NotificationHandler) handleWebSocket(c *websocket.Conn) {
	user, ok := c.Locals("user").(entity.UserLoginData)
	if !ok {
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
		_ = c.Close()
		return
	}

	ctx := contextPkg.WithRequestID(context.Background(), requestIDFromLocals(c))
	if err := h.notificationService.Connect(ctx, user.ID, c); err != nil {
		h.log.WithFields(log.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		}).Warn("Failed to flush queued notifications")
	}
	defer h.notificationService.Disconnect(user.ID, c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithFields(log.Fields{
					"user_id": user.ID,
					"error":   err.Error(),
				}).Warn("Notification socket closed unexpectedly")
			}
			return
		}
	}
}

func requestIDFromLocals(c *websocket.Conn) string {
	if id, ok := c.Locals("X-Request-ID").(string); ok && id != "" {
		return id
	}
	return "unknown"
}

func (h *NotificationHandler) ListUnread(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	notifications, err := h.notificationService.ListUnread(c, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_notifications")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"notifications": notifications,
		})
	}
}

func (h *NotificationHandler) MarkRead(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req notification.MarkReadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	updated, err := h.notificationService.MarkRead(c, userData.ID, req.NotificationIDs)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "mark_notifications_read")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Notifications marked as read",
			"updated": updated,
		})
	}
}
