package middleware

import (
	"VoiceCommerce/pkg/log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sensitiveFields are masked in logged request bodies.
var sensitiveFields = []string{
	"password", "token", "secret", "key", "auth",
	"credential", "authorization", "pin",
	"card_number", "cvv", "upi_pin",
}

// NewLoggingMiddleware logs one line per request at a level chosen by the
// response status.
func (m *middleware) NewLoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFields := log.Fields{
			"request_id":    m.GetRequestID(c),
			"method":        c.Method(),
			"path":          c.Path(),
			"status":        status,
			"latency_ms":    latency.Milliseconds(),
			"ip":            c.IP(),
			"user_agent":    c.Get(fiber.HeaderUserAgent),
			"response_size": len(c.Response().Body()),
		}

		if body := c.Request().Body(); len(body) > 0 && strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			logFields["request_body"] = sanitizeRequestBody(body)
		}

		entry := m.log.WithFields(logFields)
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("Server error")
		case status >= fiber.StatusBadRequest:
			entry.Warn("Client error")
		default:
			entry.Info("Success")
		}

		return err
	}
}

func sanitizeRequestBody(body []byte) string {
	var jsonBody map[string]interface{}
	if err := json.Unmarshal(body, &jsonBody); err != nil {
		return "[non-JSON body]"
	}

	for _, field := range sensitiveFields {
		if _, exists := jsonBody[field]; exists {
			jsonBody[field] = "[SECRET]"
		}
	}

	sanitized, err := json.Marshal(jsonBody)
	if err != nil {
		return "[sanitization-failed]"
	}

	return string(sanitized)
}
