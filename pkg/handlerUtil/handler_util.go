package handlerUtil

import (
	"VoiceAgentGolang/internal/api/call"
	"VoiceAgentGolang/internal/api/scheduling"
	"VoiceAgentGolang/internal/api/upload"
	"VoiceAgentGolang/pkg/log"
	"VoiceAgentGolang/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	// Call domain errors
	if errors.Is(err, call.ErrCallNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Call session not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Call session not found",
			"code":    "CALL_NOT_FOUND",
		})
	}

	if errors.Is(err, call.ErrDuplicateTurn) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Duplicate turn for call")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A turn for this call is already being processed",
			"code":    "DUPLICATE_TURN",
		})
	}

	if errors.Is(err, call.ErrCallAlreadyEnded) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Turn received for ended call")
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"message": "Call has already ended",
			"code":    "CALL_ENDED",
		})
	}

	// Scheduling domain errors
	if errors.Is(err, scheduling.ErrSlotNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Availability slot not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Availability slot not found",
			"code":    "SLOT_NOT_FOUND",
		})
	}

	if errors.Is(err, scheduling.ErrSlotConflict) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Slot booked by another call")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Slot was booked by another call",
			"code":    "SLOT_CONFLICT",
		})
	}

	if errors.Is(err, scheduling.ErrNoSlotsAvailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No availability slots match")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No availability slots match the request",
			"code":    "NO_SLOTS_AVAILABLE",
		})
	}

	// Upload domain errors
	if errors.Is(err, upload.ErrTokenNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Upload token not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Upload link is invalid",
			"code":    "UPLOAD_TOKEN_NOT_FOUND",
		})
	}

	if errors.Is(err, upload.ErrTokenExpired) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Upload token expired")
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"message": "Upload link has expired",
			"code":    "UPLOAD_TOKEN_EXPIRED",
		})
	}

	if errors.Is(err, upload.ErrTokenAlreadyUsed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Upload token already used")
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"message": "Upload link has already been used",
			"code":    "UPLOAD_TOKEN_USED",
		})
	}

	if errors.Is(err, upload.ErrInvalidFileType) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid file type")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid file type. Only images are allowed.",
		})
	}

	if errors.Is(err, upload.ErrFileTooLarge) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("File too large")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File too large. Maximum size is 10MB.",
		})
	}

	if errors.Is(err, upload.ErrFailedToUploadFile) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Failed to store uploaded file")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store uploaded file",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
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
