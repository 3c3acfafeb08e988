package main

import (
	"VoiceCommerce/internal/config"
	"VoiceCommerce/pkg/log"
	"VoiceCommerce/pkg/redis"
	websocketPkg "VoiceCommerce/pkg/websocket"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	logger := log.NewLogger()
	if envErr != nil {
		logger.Warnf("No .env file loaded, using process environment: %v", envErr)
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()
	redisServer := redis.New()
	registry := websocketPkg.NewRegistry()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithRedisServer(redisServer),
		config.WithMiddleware(),
		config.WithS3Client(),
		config.WithVoiceConfig(config.LoadVoiceConfig()),
		config.WithSpeech(),
		config.WithNLUEngine(),
		config.WithWebSocketRegistry(registry),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
