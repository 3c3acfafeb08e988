package openai

import (
	"VoiceCommerce/pkg/nlp"
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type nluEngine struct {
	client chatCompleter
	model  string
}

// NewNLU returns an nlp.Engine backed by OpenAI chat completions in JSON mode.
func NewNLU() nlp.Engine {
	model := os.Getenv("OPENAI_CHAT_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	return &nluEngine{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		model:  model,
	}
}

func (n *nluEngine) Process(ctx context.Context, req nlp.Request) (*nlp.ProcessedCommand, error) {
	userPrompt, err := nlp.UserPrompt(req)
	if err != nil {
		return nil, err
	}

	resp, err := n.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: n.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: nlp.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
			MaxTokens:   400,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("ChatGPT API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from ChatGPT")
	}

	return nlp.DecodeCommand(resp.Choices[0].Message.Content)
}
