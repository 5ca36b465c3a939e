package uploadHandler

import (
	"VoiceAgentGolang/internal/api/upload"
	contextPkg "VoiceAgentGolang/pkg/context"
	"VoiceAgentGolang/pkg/handlerUtil"
	"VoiceAgentGolang/pkg/log"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *UploadHandler) CreateToken(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	var req upload.CreateTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	response, err := h.uploadService.CreateToken(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_upload_token")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, response)
}

func (h *UploadHandler) Status(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	callID := ctx.Params("call_id")
	if callID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("call_id is required"), ctx.Path())
	}

	response, err := h.uploadService.Status(c, callID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_status")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
}

func (h *UploadHandler) UploadPage(ctx *fiber.Ctx) error {
	token := ctx.Params("token")

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<title>Upload your appliance photo</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="font-family: sans-serif; max-width: 480px; margin: 40px auto; padding: 0 16px;">
	<h2>Upload a photo of your appliance</h2>
	<p>Take a clear picture of the error display or the problem area and upload it here. Keep your call going, we will talk you through the findings.</p>
	<form method="POST" action="/upload/%s" enctype="multipart/form-data">
		<input type="file" name="image" accept="image/*" required>
		<br><br>
		<button type="submit">Upload photo</button>
	</form>
</body>
</html>`, token)

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return ctx.SendString(page)
}

func (h *UploadHandler) UploadImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 60*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing photo upload")

	token := ctx.Params("token")
	if token == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("upload token is required"), ctx.Path())
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("image file is required"), ctx.Path())
	}

	response, err := h.uploadService.HandleUpload(c, upload.UploadImageRequest{
		Token: token,
		File:  file,
	})
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_image")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, response)
	}
}
