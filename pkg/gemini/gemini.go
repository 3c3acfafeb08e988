package gemini

import (
	"VoiceCommerce/pkg/nlp"
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type IGemini interface {
	nlp.Engine
	Close()
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

// NewGeminiClient returns an nlp.Engine backed by Gemini with a JSON
// response mime type.
func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) Process(ctx context.Context, req nlp.Request) (*nlp.ProcessedCommand, error) {
	userPrompt, err := nlp.UserPrompt(req)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(nlp.SystemPrompt))
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	res, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, err
	}

	return nlp.DecodeCommand(responseText(res))
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
