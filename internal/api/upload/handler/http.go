package uploadHandler

import (
	uploadService "VoiceAgentGolang/internal/api/upload/service"
	"VoiceAgentGolang/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type UploadHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	uploadService uploadService.IUploadService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	us uploadService.IUploadService,
) *UploadHandler {
	return &UploadHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		uploadService: us,
	}
}

func (h *UploadHandler) Start(srv fiber.Router) {
	uploads := srv.Group("/uploads")

	// Gateway and ops access only
	uploads.Use(h.middleware.NewServiceTokenMiddleware)

	uploads.Post("/tokens", h.CreateToken)
	uploads.Get("/status/:call_id", h.Status)
}

// StartPublic registers the customer-facing upload page at the app root. The
// token in the URL is the only credential a caller has, so the page is rate
// limited per IP.
func (h *UploadHandler) StartPublic(app fiber.Router) {
	app.Get("/upload/:token", h.middleware.NewRateLimiter, h.UploadPage)
	app.Post("/upload/:token", h.middleware.NewRateLimiter, h.UploadImage)
}
