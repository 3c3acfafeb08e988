package middleware

import (
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type Middleware interface {
	NewRateLimiter(ctx *fiber.Ctx) error
	NewTokenMiddleware(ctx *fiber.Ctx) error
	NewRequestIDMiddleware() fiber.Handler
	NewLoggingMiddleware() fiber.Handler
	GetRequestID(ctx *fiber.Ctx) string
}

type middleware struct {
	rateLimitter        *rateLimiter
	requestIDMiddleware fiber.Handler
	log                 *logrus.Logger
}

func New(logger *logrus.Logger) Middleware {
	rateLimit := newRateLimiter(
		rate.Limit(envFloat("RATE_LIMIT_RPS", 50)),
		int(envFloat("RATE_LIMIT_BURST", 100)),
	)

	return &middleware{
		rateLimitter:        rateLimit,
		requestIDMiddleware: NewRequestIDMiddleware(),
		log:                 logger,
	}
}

func (m *middleware) NewRequestIDMiddleware() fiber.Handler {
	return m.requestIDMiddleware
}

func (m *middleware) GetRequestID(ctx *fiber.Ctx) string {
	requestID, ok := ctx.Locals(RequestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
