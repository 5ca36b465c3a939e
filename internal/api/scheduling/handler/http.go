package schedulingHandler

import (
	schedulingService "VoiceAgentGolang/internal/api/scheduling/service"
	"VoiceAgentGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SchedulingHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	schedulingService schedulingService.ISchedulingService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ss schedulingService.ISchedulingService,
) *SchedulingHandler {
	return &SchedulingHandler{
		log:               log,
		validator:         validate,
		middleware:        middleware,
		schedulingService: ss,
	}
}

func (h *SchedulingHandler) Start(srv fiber.Router) {
	scheduling := srv.Group("/scheduling")

	// Ops and gateway access only
	scheduling.Use(h.middleware.NewServiceTokenMiddleware)

	scheduling.Get("/slots", h.FindSlots)
	scheduling.Post("/bookings", h.Book)
}
