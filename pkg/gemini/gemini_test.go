package gemini

import (
	"VoiceCommerce/pkg/nlp"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"type":"general",`),
				genai.Text(`"confidence":1,"generalType":"help"}`),
			}},
		}},
	}

	cmd, err := nlp.DecodeCommand(responseText(res))
	require.NoError(t, err)
	assert.Equal(t, nlp.CommandGeneral, cmd.Type)
	assert.Equal(t, nlp.GeneralHelp, cmd.GeneralType)
}

func TestResponseTextEmpty(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
}
