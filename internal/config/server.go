package config

import (
	"VoiceCommerce/database/postgres"
	notificationHandler "VoiceCommerce/internal/api/notification/handler"
	notificationRepository "VoiceCommerce/internal/api/notification/repository"
	notificationService "VoiceCommerce/internal/api/notification/service"
	orderHandler "VoiceCommerce/internal/api/order/handler"
	orderRepository "VoiceCommerce/internal/api/order/repository"
	orderService "VoiceCommerce/internal/api/order/service"
	voiceHandler "VoiceCommerce/internal/api/voice/handler"
	voiceRepository "VoiceCommerce/internal/api/voice/repository"
	voiceService "VoiceCommerce/internal/api/voice/service"
	"VoiceCommerce/internal/middleware"
	"VoiceCommerce/pkg/audio"
	"VoiceCommerce/pkg/nlp"
	"VoiceCommerce/pkg/redis"
	"VoiceCommerce/pkg/s3"
	"VoiceCommerce/pkg/utils"
	websocketPkg "VoiceCommerce/pkg/websocket"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	nluEngine   nlp.Engine
	closeNLU    func()
	tts         audio.ITTS
	transcriber audio.ITranscriber
	voiceConfig *voiceService.VoiceConfig
	registry    websocketPkg.IRegistry
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.nluEngine == nil {
		server.nluEngine = nlp.NewRuleEngine()
	}
	if server.voiceConfig == nil {
		server.voiceConfig = LoadVoiceConfig()
	}
	if server.registry == nil {
		server.registry = websocketPkg.NewRegistry()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to Postgres and applies the schema when
// DB_AUTO_MIGRATE is true.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}

		if envBool("DB_AUTO_MIGRATE") {
			if err := postgres.Migrate(db); err != nil {
				db.Close()
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}

		s.db = db
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client is optional. Without a bucket spoken replies are skipped.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, audio replies disabled")
			}
			return nil
		}

		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithNLUEngine() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before the language engine")
		}
		s.nluEngine, s.closeNLU = NewNLUEngine(s.log)
		return nil
	}
}

func WithVoiceConfig(cfg *voiceService.VoiceConfig) ServerOption {
	return func(s *Server) error {
		s.voiceConfig = cfg
		return nil
	}
}

// WithSpeech enables text to speech and transcription for whichever API keys
// the voice config carries.
func WithSpeech() ServerOption {
	return func(s *Server) error {
		if s.voiceConfig == nil {
			s.voiceConfig = LoadVoiceConfig()
		}

		if s.voiceConfig.ElevenLabsAPIKey != "" && s.voiceConfig.ElevenLabsVoiceID != "" {
			s.tts = audio.NewTTSService(s.voiceConfig.ElevenLabsAPIKey, s.voiceConfig.ElevenLabsVoiceID)
		}
		if s.voiceConfig.OpenAIAPIKey != "" {
			s.transcriber = audio.NewTranscriptionService(s.voiceConfig.OpenAIAPIKey)
		}
		return nil
	}
}

func WithWebSocketRegistry(registry websocketPkg.IRegistry) ServerOption {
	return func(s *Server) error {
		s.registry = registry
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Notification Domain
	notificationRepo := notificationRepository.New(s.db, s.log)
	notificationServices := notificationService.NewNotificationService(s.log, notificationRepo, s.registry, s.utils)
	notificationHandlers := notificationHandler.New(s.log, s.validator, s.middleware, notificationServices)

	// Voice Domain
	voiceRepo := voiceRepository.New(s.db, s.log)
	voiceServices := voiceService.NewVoiceService(s.log, voiceRepo, s.redisServer, s.nluEngine, s.tts, s.transcriber, s.s3Client, s.utils, s.voiceConfig)
	voiceHandlers := voiceHandler.New(s.log, s.validator, s.middleware, voiceServices)

	// Order Domain
	orderRepo := orderRepository.New(s.db, s.log)
	orderServices := orderService.NewOrderService(s.log, orderRepo, voiceServices, nlp.NewRuleEngine(), notificationServices, s.utils)
	orderHandlers := orderHandler.New(s.log, s.validator, s.middleware, orderServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, voiceHandlers, orderHandlers, notificationHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(
		s.middleware.NewRequestIDMiddleware(),
		s.middleware.NewLoggingMiddleware(),
		s.middleware.NewRateLimiter,
	)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests and releases the database and the
// language engine.
func (s *Server) Shutdown() error {
	err := s.engine.Shutdown()

	if s.closeNLU != nil {
		s.closeNLU()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil && err == nil {
			err = dbErr
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
