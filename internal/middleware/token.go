package middleware

import (
	"VoiceCommerce/internal/entity"
	jwtPkg "VoiceCommerce/pkg/jwt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get(fiber.HeaderAuthorization)
	fields := logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"path":       ctx.Path(),
		"client_ip":  ctx.IP(),
	}

	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		m.log.WithFields(fields).Warn("Authorization header missing or malformed")
		return unauthorized(ctx)
	}

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, AccessTokenSecret)
	if err != nil {
		fields["error"] = err.Error()
		m.log.WithFields(fields).Warn("Token verification failed")
		return unauthorized(ctx)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(fields).Warn("Invalid token claims")
		return unauthorized(ctx)
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	username, _ := claims["username"].(string)
	if id == "" || email == "" || username == "" {
		m.log.WithFields(fields).Warn("Token claims are missing required fields")
		return unauthorized(ctx)
	}

	ctx.Locals("user", entity.UserLoginData{
		ID:       id,
		Email:    email,
		Username: username,
	})

	m.log.WithFields(fields).Debug("Authentication successful")
	return ctx.Next()
}

func unauthorized(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized, access token invalid or expired",
	})
}
