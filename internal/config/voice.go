package config

import (
	voiceService "VoiceCommerce/internal/api/voice/service"
	"VoiceCommerce/pkg/gemini"
	"VoiceCommerce/pkg/nlp"
	"VoiceCommerce/pkg/openai"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultDialogueTTL = 30 * time.Minute

func LoadVoiceConfig() *voiceService.VoiceConfig {
	ttl := defaultDialogueTTL
	if minutes, err := strconv.Atoi(os.Getenv("DIALOGUE_TTL_MINUTES")); err == nil && minutes > 0 {
		ttl = time.Duration(minutes) * time.Minute
	}

	prefix := os.Getenv("AUDIO_PREFIX")
	if prefix == "" {
		prefix = "voice-responses"
	}

	return &voiceService.VoiceConfig{
		ElevenLabsAPIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		EnableTTS:         envBool("ENABLE_TTS"),
		DialogueTTL:       ttl,
		AudioPrefix:       strings.TrimSuffix(prefix, "/"),
	}
}

// NewNLUEngine picks the language engine from NLU_PROVIDER. The rule engine is
// used when offline mode is on, when no provider is named, or when the remote
// client cannot be built. The returned closer is never nil.
func NewNLUEngine(logger *logrus.Logger) (nlp.Engine, func()) {
	noop := func() {}

	if envBool("OFFLINE_MODE_ENABLED") {
		logger.Info("Offline mode enabled, using rule engine")
		return nlp.NewRuleEngine(), noop
	}

	switch strings.ToLower(os.Getenv("NLU_PROVIDER")) {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			logger.Warn("OPENAI_API_KEY not set, falling back to rule engine")
			return nlp.NewRuleEngine(), noop
		}
		return openai.NewNLU(), noop
	case "gemini":
		client, err := gemini.NewGeminiClient()
		if err != nil {
			logger.WithError(err).Warn("Failed to create Gemini client, falling back to rule engine")
			return nlp.NewRuleEngine(), noop
		}
		return client, client.Close
	default:
		return nlp.NewRuleEngine(), noop
	}
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
