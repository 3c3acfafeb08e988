package orderHandler

import (
	orderService "VoiceCommerce/internal/api/order/service"
	"VoiceCommerce/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	orderService orderService.IOrderService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	os orderService.IOrderService,
) *OrderHandler {
	return &OrderHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		orderService: os,
	}
}

func (h *OrderHandler) Start(srv fiber.Router) {
	orders := srv.Group("/orders")

	orders.Use(h.middleware.NewTokenMiddleware)

	orders.Post("/voice", h.CreateVoiceOrder)
	orders.Post("/sync", h.SyncOfflineOrders)

	orders.Get("/", h.ListOrders)
	orders.Get("/:id", h.GetOrder)

	orders.Post("/:id/confirm", h.ConfirmOrder)
	orders.Post("/:id/cancel", h.CancelOrder)
	orders.Patch("/:id/status", h.UpdateOrderStatus)
}
