package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Voice turns arrive from the telephony gateway, not from end users, so
// authentication is a shared service token instead of per-user sessions.
const ServiceTokenHeader = "X-Service-Token"

type serviceTokenMiddleware struct {
	token string
}

func newServiceTokenMiddleware() *serviceTokenMiddleware {
	return &serviceTokenMiddleware{
		token: os.Getenv("SERVICE_TOKEN"),
	}
}

func (m *middleware) NewServiceTokenMiddleware(ctx *fiber.Ctx) error {
	if m.serviceToken.token == "" {
		m.log.WithFields(logrus.Fields{
			"path": ctx.Path(),
		}).Error("SERVICE_TOKEN is not configured, rejecting request")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	provided := ctx.Get(ServiceTokenHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(m.serviceToken.token)) != 1 {
		m.log.WithFields(logrus.Fields{
			"path":      ctx.Path(),
			"client_ip": ctx.IP(),
		}).Warn("Service token check failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	return ctx.Next()
}
