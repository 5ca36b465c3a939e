package callHandler

import (
	"VoiceAgentGolang/internal/api/call"
	contextPkg "VoiceAgentGolang/pkg/context"
	"VoiceAgentGolang/pkg/handlerUtil"
	"VoiceAgentGolang/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CallHandler) HandleTurn(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 15*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var event call.TurnEvent
	if err := ctx.BodyParser(&event); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(event); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"call_id":    event.CallID,
		"no_input":   event.NoInput,
	}).Debug("Processing call turn")

	response, err := h.callService.HandleTurn(c, event)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_turn")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}
