package voice

import "VoiceCommerce/pkg/response"

var (
	ErrVoiceCommandFailed  = response.NewError(500, "failed to process voice command")
	ErrDialogueUnavailable = response.NewError(503, "dialogue context unavailable")
	ErrEmptyUtterance      = response.NewError(400, "voice command is empty")
	ErrTranscriptionFailed = response.NewError(502, "failed to transcribe audio")
	ErrTranscriptionOff    = response.NewError(501, "audio transcription is not configured")
	ErrInvalidAudioFile    = response.NewError(400, "invalid audio file")
)
