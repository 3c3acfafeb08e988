package order

import "VoiceCommerce/pkg/response"

var (
	ErrOrderNotFound           = response.NewError(404, "order not found")
	ErrOrderNotOwned           = response.NewError(403, "order does not belong to user")
	ErrInvalidStatusTransition = response.NewError(409, "invalid order status transition")
	ErrConfirmationFailed      = response.NewError(400, "Order confirmation failed")
	ErrOrderConflict           = response.NewError(409, "order was modified concurrently")
	ErrInvalidStatus           = response.NewError(400, "invalid order status")
	ErrEmptySyncBatch          = response.NewError(400, "no orders to sync")
	ErrCreateOrder             = response.NewError(500, "failed to create order")
	ErrUpdateOrder             = response.NewError(500, "failed to update order")
	ErrCatalogUnavailable      = response.NewError(503, "product catalog unavailable")
)
