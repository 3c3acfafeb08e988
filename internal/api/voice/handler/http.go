package voiceHandler

import (
	voiceService "VoiceCommerce/internal/api/voice/service"
	"VoiceCommerce/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type VoiceHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	voiceService voiceService.IVoiceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	vs voiceService.IVoiceService,
) *VoiceHandler {
	return &VoiceHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		voiceService: vs,
	}
}

func (h *VoiceHandler) Start(srv fiber.Router) {
	voice := srv.Group("/voice")

	voice.Use(h.middleware.NewTokenMiddleware)

	voice.Post("/command", h.ProcessCommand)
	voice.Post("/transcribe", h.Transcribe)

	voice.Get("/context", h.GetDialogue)
	voice.Delete("/context", h.ResetDialogue)

	voice.Get("/history", h.GetVoiceHistory)
}
