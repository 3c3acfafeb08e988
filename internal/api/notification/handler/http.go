package notificationHandler

import (
	notificationService "VoiceCommerce/internal/api/notification/service"
	"VoiceCommerce/internal/middleware"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	log                 *logrus.Logger
	validator           *validator.Validate
	middleware          middleware.Middleware
	notificationService notificationService.INotificationService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ns notificationService.INotificationService,
) *NotificationHandler {
	return &NotificationHandler{
		log:                 log,
		validator:           validate,
		middleware:          middleware,
		notificationService: ns,
	}
}

func (h *NotificationHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	notifications := srv.Group("/notifications")
	notifications.Use(socketTokenHeader, h.middleware.NewTokenMiddleware)

	notifications.Get("/", h.ListUnread)
	notifications.Post("/mark-read", h.MarkRead)

	notifications.Use("/ws", wsMiddleware)
	notifications.Get("/ws", websocket.New(h.handleWebSocket))
}

// socketTokenHeader lets browser sockets, which cannot set headers, pass the
// access token as the websocket subprotocol or a token query parameter.
func socketTokenHeader(c *fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) != "" || !websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	token := strings.TrimSpace(c.Get("Sec-WebSocket-Protocol"))
	if token == "" {
		token = c.Query("token")
	}
	if token != "" {
		c.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return c.Next()
}
