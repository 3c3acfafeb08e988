package nlp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SystemPrompt instructs a remote model to answer with a ProcessedCommand.
const SystemPrompt = `You are the order assistant of a voice commerce app used in India.
Interpret the customer's utterance and return ONLY valid JSON, nothing else.

Format:
{
  "type": "order" | "product" | "confirmation" | "general" | "clarification" | "unknown",
  "confidence": 0.0-1.0,
  "extracted": {
    "product": {"name": "", "category": "", "maxPrice": 0},
    "quantity": {"type": "exact" | "approximate" | "range", "value": 0, "min": 0, "max": 0, "unit": "kg" | "g" | "l" | "ml" | "piece" | "dozen" | "pack" | "unit"},
    "delivery": {"address": "", "time": "", "instructions": ""},
    "payment": {"method": "cash_on_delivery" | "upi" | "card", "splitCount": 0}
  },
  "generalType": "help" | "cancel" | "repeat",
  "confirmationType": "yes" | "no" | "maybe"
}

Rules:
- Omit every slot the customer did not mention.
- confirmation and general results carry no extracted slots and confidence 1.
- Confidence adds 0.3 for product, 0.3 for quantity, 0.2 for delivery, 0.2 for payment.
- Use the conversation context to resolve follow-up answers such as "make it 3 kg".
- Keep product names and addresses in the customer's own words.`

// UserPrompt serialises the request the way the remote model expects it.
func UserPrompt(req Request) (string, error) {
	dialect := req.Locale.Dialect
	if dialect == "" {
		dialect = "standard"
	}
	payload, err := json.Marshal(struct {
		Text     string          `json:"text"`
		Language string          `json:"language"`
		Dialect  string          `json:"dialect"`
		Context  DialogueContext `json:"context"`
	}{req.Text, req.Locale.Language, dialect, req.Context})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

var ErrEmptyModelResponse = errors.New("empty response from language model")

// DecodeCommand parses a model reply, tolerating a markdown code fence, and
// normalises the result.
func DecodeCommand(content string) (*ProcessedCommand, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	if content == "" {
		return nil, ErrEmptyModelResponse
	}

	var cmd ProcessedCommand
	if err := json.Unmarshal([]byte(content), &cmd); err != nil {
		return nil, fmt.Errorf("decode processed command: %w", err)
	}
	cmd = cmd.Normalize()
	return &cmd, nil
}
