package voiceHandler

import (
	"VoiceCommerce/internal/api/voice"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/handlerUtil"
	jwtPkg "VoiceCommerce/pkg/jwt"
	"VoiceCommerce/pkg/log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const maxAudioSize = 10 * 1024 * 1024

func (h *VoiceHandler) ProcessCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing voice command request")

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req voice.ProcessCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.voiceService.ProcessCommand(c, userData.ID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "process_voice_command")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

// Transcribe accepts a multipart "audio" file plus a "language" field and
// returns the recognised text for the client to send as a command.
func (h *VoiceHandler) Transcribe(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	if _, err := jwtPkg.GetUserLoginData(ctx); err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	audioFile, err := ctx.FormFile("audio")
	if err != nil || audioFile.Size == 0 || audioFile.Size > maxAudioSize {
		return errHandler.Handle(ctx, requestID, voice.ErrInvalidAudioFile, ctx.Path(), "transcribe")
	}

	language := ctx.FormValue("language", "hindi")
	if err := h.validator.Var(language, "oneof=hindi tamil kannada bhojpuri bengali marathi gujarati english"); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	src, err := audioFile.Open()
	if err != nil {
		return errHandler.Handle(ctx, requestID, voice.ErrInvalidAudioFile, ctx.Path(), "transcribe")
	}
	defer src.Close()

	text, err := h.voiceService.Transcribe(c, audioFile.Filename, src, language)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "transcribe")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"text":     text,
			"language": language,
		})
	}
}

func (h *VoiceHandler) GetDialogue(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	dialogue, err := h.voiceService.GetDialogue(c, userData.ID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_dialogue")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"context":           dialogue,
			"processed_command": dialogue.Command(),
		})
	}
}

func (h *VoiceHandler) ResetDialogue(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 5*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	if err := h.voiceService.ResetDialogue(c, userData.ID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "reset_dialogue")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusNoContent, nil)
	}
}

func (h *VoiceHandler) GetVoiceHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	userData, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	page, err := strconv.Atoi(ctx.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(ctx.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.voiceService.GetVoiceHistory(c, userData.ID, page, limit)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_voice_history")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, history)
	}
}
