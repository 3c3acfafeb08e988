package voiceService

import (
	"VoiceCommerce/internal/api/voice"
	"VoiceCommerce/internal/entity"
	contextPkg "VoiceCommerce/pkg/context"
	"VoiceCommerce/pkg/nlp"
	"context"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (s *voiceService) ProcessCommand(ctx context.Context, userID string, req voice.ProcessCommandRequest) (*voice.CommandResponse, error) {
	locale := nlp.Locale{Language: req.Language, Dialect: req.Dialect}

	interp, err := s.Interpret(ctx, userID, req.Text, locale)
	if err != nil {
		return nil, err
	}

	reply := s.Respond(ctx, userID, interp, interp.Text, nil)

	return &voice.CommandResponse{
		Command: interp.Command,
		Context: interp.Dialogue,
		Reply:   reply,
	}, nil
}

// Interpret runs one utterance through the engine against the user's stored
// dialogue. A rejection or cancel clears the dialogue before anything else
// happens; an engine failure yields a degraded apology instead of an error.
func (s *voiceService) Interpret(ctx context.Context, userID, utterance string, locale nlp.Locale) (*voice.Interpretation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, voice.ErrEmptyUtterance
	}
	if locale.Dialect == "" {
		locale.Dialect = "standard"
	}

	dialogue, err := s.redis.GetDialogue(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to load dialogue context")
		return nil, voice.ErrDialogueUnavailable
	}

	cmd, err := s.engine.Process(ctx, nlp.Request{Text: utterance, Locale: locale, Context: dialogue})
	if err != nil || cmd == nil {
		fields := logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
		}
		if err != nil {
			fields["error"] = err.Error()
		}
		s.log.WithFields(fields).Warn("Language engine failed, answering with apology")

		return &voice.Interpretation{
			Utterance: utterance,
			Locale:    locale,
			Command:   nlp.ProcessedCommand{Type: nlp.CommandUnknown},
			Effective: dialogue.Command(),
			Dialogue:  dialogue,
			Degraded:  true,
			Text:      nlp.ApologyText(locale),
		}, nil
	}

	normalized := cmd.Normalize()
	interp := &voice.Interpretation{
		Utterance: utterance,
		Locale:    locale,
		Command:   normalized,
	}

	if normalized.ResetsContext() {
		if err := s.redis.DeleteDialogue(ctx, userID); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			}).Error("Failed to clear dialogue context")
			return nil, voice.ErrDialogueUnavailable
		}
		interp.Reset = true
		interp.Dialogue = nlp.DialogueContext{}
		interp.Effective = nlp.ProcessedCommand{Type: nlp.CommandUnknown}
		interp.Text = nlp.GenerateResponseText(normalized, interp.Dialogue, locale)
		return interp, nil
	}

	next := nlp.Merge(dialogue, normalized, utterance)
	if err := s.redis.SetDialogue(ctx, userID, next, s.config.DialogueTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to store dialogue context")
		return nil, voice.ErrDialogueUnavailable
	}

	interp.Dialogue = next
	interp.Effective = next.Command()

	spoken := normalized
	if normalized.Type == nlp.CommandOrder || normalized.Type == nlp.CommandProduct {
		spoken = interp.Effective
	}
	interp.Text = nlp.GenerateResponseText(spoken, next, locale)

	return interp, nil
}

// Respond renders text as speech when enabled and records the turn in the
// user's history. Neither step can fail the caller.
func (s *voiceService) Respond(ctx context.Context, userID string, in *voice.Interpretation, text string, metadata map[string]interface{}) voice.Reply {
	requestID := contextPkg.GetRequestID(ctx)
	reply := voice.Reply{Text: text}

	if s.config.EnableTTS && s.tts != nil && s.s3Client != nil {
		audioURL, err := s.speak(ctx, userID, text)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to generate audio response, continuing without audio")
		} else {
			reply.AudioURL = audioURL
		}
	}

	if in == nil {
		return reply
	}

	now := s.now()
	commandID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate command ID")
		return reply
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["processed_command"] = in.Command
	if in.Degraded {
		metadata["degraded"] = true
	}
	if in.Reset {
		metadata["context_reset"] = true
	}

	record := entity.VoiceCommand{
		ID:          commandID,
		UserID:      userID,
		Transcript:  in.Utterance,
		Language:    in.Locale.Language,
		Dialect:     in.Locale.Dialect,
		CommandType: string(in.Command.Type),
		Response:    text,
		AudioURL:    reply.AudioURL,
		Confidence:  in.Command.Confidence,
		Metadata:    metadata,
		CreatedAt:   now,
	}

	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return reply
	}

	if err := repo.VoiceCommands.CreateVoiceCommand(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to save voice command")
	}

	return reply
}

func (s *voiceService) speak(ctx context.Context, userID, text string) (string, error) {
	audioBytes, err := s.tts.GenerateAudio(ctx, text)
	if err != nil {
		return "", err
	}
	return s.s3Client.UploadBytes(ctx, s.config.AudioPrefix+"/"+userID, "mp3", "audio/mpeg", audioBytes)
}

func (s *voiceService) GetDialogue(ctx context.Context, userID string) (nlp.DialogueContext, error) {
	dialogue, err := s.redis.GetDialogue(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to load dialogue context")
		return nlp.DialogueContext{}, voice.ErrDialogueUnavailable
	}
	return dialogue, nil
}

func (s *voiceService) ResetDialogue(ctx context.Context, userID string) error {
	if err := s.redis.DeleteDialogue(ctx, userID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to clear dialogue context")
		return voice.ErrDialogueUnavailable
	}
	return nil
}

func (s *voiceService) Transcribe(ctx context.Context, filename string, audio io.Reader, language string) (string, error) {
	if s.transcriber == nil {
		return "", voice.ErrTranscriptionOff
	}

	text, err := s.transcriber.TranscribeAudio(ctx, filename, audio, language)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("Failed to transcribe audio")
		return "", voice.ErrTranscriptionFailed
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", voice.ErrEmptyUtterance
	}
	return text, nil
}

func (s *voiceService) GetVoiceHistory(ctx context.Context, userID string, page, limit int) (*voice.HistoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}

	commands, total, err := repo.VoiceCommands.GetVoiceCommandsByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get voice history")
		return nil, voice.ErrVoiceCommandFailed
	}

	history := make([]voice.VoiceCommandHistory, 0, len(commands))
	for _, cmd := range commands {
		audioURL := cmd.AudioURL
		if audioURL != "" && s.s3Client != nil {
			if presigned, err := s.s3Client.PresignUrl(audioURL); err == nil {
				audioURL = presigned
			} else {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"command_id": cmd.ID,
					"error":      err.Error(),
				}).Warn("Failed to presign audio URL")
			}
		}

		history = append(history, voice.VoiceCommandHistory{
			ID:          cmd.ID,
			Transcript:  cmd.Transcript,
			Language:    cmd.Language,
			Dialect:     cmd.Dialect,
			CommandType: cmd.CommandType,
			Response:    cmd.Response,
			AudioURL:    audioURL,
			Confidence:  cmd.Confidence,
			Metadata:    cmd.Metadata,
			CreatedAt:   cmd.CreatedAt,
		})
	}

	return &voice.HistoryResponse{
		Commands: history,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}
