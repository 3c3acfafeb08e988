package voiceService

import (
	"VoiceCommerce/internal/api/voice"
	voiceRepository "VoiceCommerce/internal/api/voice/repository"
	"VoiceCommerce/pkg/audio"
	"VoiceCommerce/pkg/nlp"
	"VoiceCommerce/pkg/redis"
	"VoiceCommerce/pkg/s3"
	"VoiceCommerce/pkg/utils"
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

type IVoiceService interface {
	ProcessCommand(ctx context.Context, userID string, req voice.ProcessCommandRequest) (*voice.CommandResponse, error)

	Interpret(ctx context.Context, userID, utterance string, locale nlp.Locale) (*voice.Interpretation, error)
	Respond(ctx context.Context, userID string, in *voice.Interpretation, text string, metadata map[string]interface{}) voice.Reply

	GetDialogue(ctx context.Context, userID string) (nlp.DialogueContext, error)
	ResetDialogue(ctx context.Context, userID string) error

	Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error)
	GetVoiceHistory(ctx context.Context, userID string, page, limit int) (*voice.HistoryResponse, error)
}

type voiceService struct {
	log         *logrus.Logger
	voiceRepo   voiceRepository.Repository
	redis       redis.IRedis
	engine      nlp.Engine
	tts         audio.ITTS
	transcriber audio.ITranscriber
	s3Client    s3.ItfS3
	utils       utils.IUtils
	config      *VoiceConfig
	now         func() time.Time
}

type VoiceConfig struct {
	ElevenLabsAPIKey  string        `json:"eleven_labs_api_key"`
	ElevenLabsVoiceID string        `json:"eleven_labs_voice_id"`
	OpenAIAPIKey      string        `json:"openai_api_key"`
	EnableTTS         bool          `json:"enable_tts"`
	DialogueTTL       time.Duration `json:"dialogue_ttl"`
	AudioPrefix       string        `json:"audio_prefix"`
}

// NewVoiceService wires the interpretation pipeline. tts, transcriber and
// s3Client may be nil, which disables spoken replies and audio input.
func NewVoiceService(
	log *logrus.Logger,
	voiceRepo voiceRepository.Repository,
	redis redis.IRedis,
	engine nlp.Engine,
	tts audio.ITTS,
	transcriber audio.ITranscriber,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	config *VoiceConfig,
) IVoiceService {
	return &voiceService{
		log:         log,
		voiceRepo:   voiceRepo,
		redis:       redis,
		engine:      engine,
		tts:         tts,
		transcriber: transcriber,
		s3Client:    s3Client,
		utils:       utils,
		config:      config,
		now:         time.Now,
	}
}
