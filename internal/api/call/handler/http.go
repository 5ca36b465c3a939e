package callHandler

import (
	callService "VoiceAgentGolang/internal/api/call/service"
	"VoiceAgentGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type CallHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	callService callService.ICallService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs callService.ICallService,
) *CallHandler {
	return &CallHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		callService: cs,
	}
}

func (h *CallHandler) Start(srv fiber.Router) {
	voice := srv.Group("/voice")

	// Only the telephony gateway posts here
	voice.Use(h.middleware.NewServiceTokenMiddleware)

	voice.Post("/event", h.HandleTurn)
}
