package voiceService

import (
	"VoiceCommerce/internal/api/voice"
	voiceRepository "VoiceCommerce/internal/api/voice/repository"
	"VoiceCommerce/internal/entity"
	"VoiceCommerce/pkg/nlp"
	"VoiceCommerce/pkg/utils"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRedis struct {
	dialogues map[string]nlp.DialogueContext
	ttl       time.Duration
	failGet   bool
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{dialogues: map[string]nlp.DialogueContext{}}
}

func (m *memoryRedis) SetDialogue(_ context.Context, userID string, d nlp.DialogueContext, ttl time.Duration) error {
	m.dialogues[userID] = d
	m.ttl = ttl
	return nil
}

func (m *memoryRedis) GetDialogue(_ context.Context, userID string) (nlp.DialogueContext, error) {
	if m.failGet {
		return nlp.DialogueContext{}, errors.New("connection refused")
	}
	return m.dialogues[userID], nil
}

func (m *memoryRedis) DeleteDialogue(_ context.Context, userID string) error {
	delete(m.dialogues, userID)
	return nil
}

type failingEngine struct{}

func (failingEngine) Process(context.Context, nlp.Request) (*nlp.ProcessedCommand, error) {
	return nil, errors.New("upstream 503")
}

type memoryHistory struct {
	commands []entity.VoiceCommand
}

func (m *memoryHistory) CreateVoiceCommand(_ context.Context, cmd entity.VoiceCommand) error {
	m.commands = append(m.commands, cmd)
	return nil
}

func (m *memoryHistory) GetVoiceCommandsByUserID(_ context.Context, userID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	var out []entity.VoiceCommand
	for _, c := range m.commands {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	total := len(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeVoiceRepo struct {
	history *memoryHistory
}

func (f fakeVoiceRepo) NewClient(bool) (voiceRepository.Client, error) {
	noop := func() error { return nil }
	return voiceRepository.Client{VoiceCommands: f.history, Commit: noop, Rollback: noop}, nil
}

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) TranscribeAudio(context.Context, string, io.Reader, string) (string, error) {
	return f.text, nil
}

func newTestService(engine nlp.Engine) (*voiceService, *memoryRedis, *memoryHistory) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	r := newMemoryRedis()
	h := &memoryHistory{}
	svc := NewVoiceService(logger, fakeVoiceRepo{history: h}, r, engine, nil, nil, nil, utils.New(),
		&VoiceConfig{DialogueTTL: 30 * time.Minute, AudioPrefix: "voice-responses"}).(*voiceService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, r, h
}

var english = nlp.Locale{Language: "english"}

func TestInterpretAccumulatesAcrossTurns(t *testing.T) {
	svc, r, _ := newTestService(nlp.NewRuleEngine())
	ctx := context.Background()

	first, err := svc.Interpret(ctx, "user-1", "order 2 kg of rice", english)
	require.NoError(t, err)
	assert.Equal(t, nlp.CommandOrder, first.Command.Type)
	assert.Equal(t, 0.6, first.Effective.Confidence)
	assert.False(t, first.Effective.ShouldCreateOrder())
	assert.Equal(t, 30*time.Minute, r.ttl)

	second, err := svc.Interpret(ctx, "user-1", "deliver to 12 MG Road", english)
	require.NoError(t, err)
	assert.Equal(t, 0.8, second.Effective.Confidence)
	assert.True(t, second.Effective.ShouldCreateOrder())
	require.NotNil(t, second.Dialogue.Product)
	assert.Equal(t, "rice", second.Dialogue.Product.Name)
	assert.Equal(t, "deliver to 12 MG Road", second.Dialogue.PreviousCommand)
	assert.Equal(t, second.Dialogue, r.dialogues["user-1"])
}

func TestInterpretResetClearsStoredDialogue(t *testing.T) {
	svc, r, _ := newTestService(nlp.NewRuleEngine())
	ctx := context.Background()

	_, err := svc.Interpret(ctx, "user-1", "order 2 kg of rice", english)
	require.NoError(t, err)
	require.Contains(t, r.dialogues, "user-1")

	for _, utterance := range []string{"no", "cancel"} {
		_, err = svc.Interpret(ctx, "user-1", "order 2 kg of rice", english)
		require.NoError(t, err)

		interp, err := svc.Interpret(ctx, "user-1", utterance, english)
		require.NoError(t, err)
		assert.True(t, interp.Reset)
		assert.True(t, interp.Dialogue.IsEmpty())
		assert.NotContains(t, r.dialogues, "user-1")
	}
}

func TestInterpretDegradesOnEngineFailure(t *testing.T) {
	svc, r, _ := newTestService(failingEngine{})
	r.dialogues["user-1"] = nlp.DialogueContext{PreviousCommand: "order rice", Product: &nlp.ProductSlot{Name: "rice"}}

	interp, err := svc.Interpret(context.Background(), "user-1", "2 kg", english)
	require.NoError(t, err)
	assert.True(t, interp.Degraded)
	assert.Equal(t, nlp.ApologyText(english), interp.Text)
	assert.Equal(t, "order rice", r.dialogues["user-1"].PreviousCommand, "stored dialogue is left alone")
}

func TestInterpretErrors(t *testing.T) {
	svc, r, _ := newTestService(nlp.NewRuleEngine())

	_, err := svc.Interpret(context.Background(), "user-1", "   ", english)
	assert.ErrorIs(t, err, voice.ErrEmptyUtterance)

	r.failGet = true
	_, err = svc.Interpret(context.Background(), "user-1", "rice", english)
	assert.ErrorIs(t, err, voice.ErrDialogueUnavailable)
}

func TestProcessCommandRecordsHistory(t *testing.T) {
	svc, _, h := newTestService(nlp.NewRuleEngine())

	resp, err := svc.ProcessCommand(context.Background(), "user-1", voice.ProcessCommandRequest{Text: "help", Language: "english"})
	require.NoError(t, err)
	assert.Equal(t, nlp.CommandGeneral, resp.Command.Type)
	assert.NotEmpty(t, resp.Reply.Text)
	assert.Empty(t, resp.Reply.AudioURL)

	require.Len(t, h.commands, 1)
	assert.Equal(t, "help", h.commands[0].Transcript)
	assert.Equal(t, "general", h.commands[0].CommandType)
	assert.Equal(t, "standard", h.commands[0].Dialect)

	history, err := svc.GetVoiceHistory(context.Background(), "user-1", 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Total)
	assert.Equal(t, 1, history.Page)
	assert.Equal(t, maxHistoryLimit, history.Limit)
}

func TestTranscribe(t *testing.T) {
	svc, _, _ := newTestService(nlp.NewRuleEngine())
	_, err := svc.Transcribe(context.Background(), "a.webm", nil, "hindi")
	assert.ErrorIs(t, err, voice.ErrTranscriptionOff)

	svc.transcriber = fakeTranscriber{text: "  2 kilo chawal  "}
	text, err := svc.Transcribe(context.Background(), "a.webm", nil, "hindi")
	require.NoError(t, err)
	assert.Equal(t, "2 kilo chawal", text)
}
