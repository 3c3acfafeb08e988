package audio

import (
	"context"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// whisperLanguages maps supported languages to ISO-639-1 hints. Bhojpuri has
// no Whisper code and is transcribed with the Hindi hint.
var whisperLanguages = map[string]string{
	"english":  "en",
	"hindi":    "hi",
	"bhojpuri": "hi",
	"tamil":    "ta",
	"kannada":  "kn",
	"bengali":  "bn",
	"marathi":  "mr",
	"gujarati": "gu",
}

type ITranscriber interface {
	TranscribeAudio(ctx context.Context, filename string, audio io.Reader, language string) (string, error)
}

type TranscriptionService struct {
	client *openai.Client
}

func NewTranscriptionService(apiKey string) *TranscriptionService {
	return &TranscriptionService{client: openai.NewClient(apiKey)}
}

func (t *TranscriptionService) TranscribeAudio(ctx context.Context, filename string, audio io.Reader, language string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
		Language: WhisperLanguage(language),
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", err
	}

	return resp.Text, nil
}

func WhisperLanguage(language string) string {
	return whisperLanguages[language]
}
