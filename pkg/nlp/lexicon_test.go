package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAffirmative(t *testing.T) {
	lex := DefaultLexicon()

	tests := []struct {
		utterance string
		language  string
		want      bool
	}{
		{"yes", "english", true},
		{"Yes, go ahead", "english", true},
		{"हाँ", "hindi", true},
		{"हाँ ठीक है", "hindi", true},
		{"yes", "hindi", true},
		{"haan bilkul", "hindi", true},
		{"சரி", "tamil", true},
		{"okay", "klingon", true},
		{"नहीं", "hindi", false},
		{"हाँ नहीं", "hindi", false},
		{"ok no", "english", false},
		{"not sure", "english", false},
		{"yesterday", "english", false},
		{"", "english", false},
		{"हाँ", "english", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lex.IsAffirmative(tt.utterance, tt.language), "%q in %s", tt.utterance, tt.language)
	}
}

func TestTokenizeKeepsCombiningMarks(t *testing.T) {
	assert.Equal(t, []string{"ठीक", "है"}, tokenize("ठीक है।"))
	assert.Equal(t, []string{"don't", "send"}, tokenize("Don't send!"))
}
