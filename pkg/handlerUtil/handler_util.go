package handlerUtil

import (
	"VoiceCommerce/internal/api/notification"
	"VoiceCommerce/internal/api/order"
	"VoiceCommerce/internal/api/voice"
	"VoiceCommerce/pkg/log"
	"VoiceCommerce/pkg/response"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

// errorCodes gives clients a stable machine-readable code for the domain
// errors they are expected to branch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{order.ErrOrderNotFound, "ORDER_NOT_FOUND"},
	{order.ErrOrderNotOwned, "ORDER_NOT_OWNED"},
	{order.ErrInvalidStatusTransition, "INVALID_STATUS_TRANSITION"},
	{order.ErrConfirmationFailed, "CONFIRMATION_FAILED"},
	{order.ErrOrderConflict, "ORDER_CONFLICT"},
	{order.ErrInvalidStatus, "INVALID_STATUS"},
	{order.ErrEmptySyncBatch, "EMPTY_SYNC_BATCH"},
	{order.ErrCatalogUnavailable, "CATALOG_UNAVAILABLE"},
	{voice.ErrEmptyUtterance, "EMPTY_UTTERANCE"},
	{voice.ErrDialogueUnavailable, "DIALOGUE_UNAVAILABLE"},
	{voice.ErrTranscriptionFailed, "TRANSCRIPTION_FAILED"},
	{voice.ErrTranscriptionOff, "TRANSCRIPTION_DISABLED"},
	{voice.ErrInvalidAudioFile, "INVALID_AUDIO_FILE"},
	{notification.ErrMarkRead, "MARK_READ_FAILED"},
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields := log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}
		if respErr.Code >= fiber.StatusInternalServerError {
			h.logger.WithFields(fields).Error("Operation failed with error response")
		} else {
			h.logger.WithFields(fields).Warn("Operation failed with error response")
		}

		body := fiber.Map{"error": respErr.Error()}
		if code := errorCode(err); code != "" {
			body["code"] = code
		}
		return c.Status(respErr.Code).JSON(body)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation timed out")
		return h.HandleRequestTimeout(c)
	}

	traceID := log.ErrorWithTraceID(h.logger, log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "An unexpected error occurred",
		"trace_id": traceID,
	})
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
