package voice

import (
	"VoiceCommerce/pkg/nlp"
	"time"
)

type ProcessCommandRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=1000"`
	Language string `json:"language" validate:"required,oneof=hindi tamil kannada bhojpuri bengali marathi gujarati english"`
	Dialect  string `json:"dialect" validate:"omitempty,oneof=standard colloquial"`
}

// Interpretation is the outcome of one utterance against the user's dialogue.
// Effective is the command rebuilt from the accumulated context and is what
// order creation is gated on.
type Interpretation struct {
	Utterance string               `json:"utterance"`
	Locale    nlp.Locale           `json:"locale"`
	Command   nlp.ProcessedCommand `json:"command"`
	Effective nlp.ProcessedCommand `json:"effective"`
	Dialogue  nlp.DialogueContext  `json:"context"`
	Reset     bool                 `json:"reset"`
	Degraded  bool                 `json:"degraded"`
	Text      string               `json:"text"`
}

type Reply struct {
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"`
}

type CommandResponse struct {
	Command nlp.ProcessedCommand `json:"processed_command"`
	Context nlp.DialogueContext  `json:"context"`
	Reply   Reply                `json:"voice_response"`
}

type VoiceCommandHistory struct {
	ID          string                 `json:"id"`
	Transcript  string                 `json:"transcript"`
	Language    string                 `json:"language"`
	Dialect     string                 `json:"dialect"`
	CommandType string                 `json:"command_type"`
	Response    string                 `json:"response"`
	AudioURL    string                 `json:"audio_url,omitempty"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

type HistoryResponse struct {
	Commands []VoiceCommandHistory `json:"commands"`
	Total    int                   `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}
