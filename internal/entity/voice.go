package entity

import (
	"time"
)

// VoiceCommand is one interpreted utterance kept for the user's history.
type VoiceCommand struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Transcript  string                 `json:"transcript"`
	Language    string                 `json:"language"`
	Dialect     string                 `json:"dialect"`
	CommandType string                 `json:"command_type"`
	Response    string                 `json:"response"`
	AudioURL    string                 `json:"audio_url"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}
