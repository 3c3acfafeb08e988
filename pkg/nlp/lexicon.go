package nlp

import (
	"strings"
	"unicode"
)

const fallbackLanguage = "english"

type wordList struct {
	Yes []string
	No  []string
}

// Lexicon holds per-language confirmation vocabularies.
type Lexicon map[string]wordList

var defaultLexicon = Lexicon{
	"english": {
		Yes: []string{"yes", "yeah", "yep", "sure", "okay", "ok", "correct", "confirm", "confirmed", "go ahead"},
		No:  []string{"no", "not", "nope", "nah", "cancel", "wrong", "incorrect", "don't"},
	},
	"hindi": {
		Yes: []string{"हाँ", "हां", "बिलकुल", "ठीक है", "सही है", "haan", "han", "bilkul", "theek hai", "sahi hai"},
		No:  []string{"नहीं", "नही", "मत", "रद्द", "nahi", "nahin", "mat"},
	},
	"bhojpuri": {
		Yes: []string{"हँ", "हां", "ठीक बा", "सही बा", "ha", "theek ba"},
		No:  []string{"ना", "नाहीं", "na", "nahi"},
	},
	"tamil": {
		Yes: []string{"ஆம்", "சரி", "ஆமா", "aam", "sari", "amaa"},
		No:  []string{"இல்லை", "வேண்டாம்", "illai", "vendam"},
	},
	"kannada": {
		Yes: []string{"ಹೌದು", "ಸರಿ", "houdu", "sari"},
		No:  []string{"ಇಲ್ಲ", "ಬೇಡ", "illa", "beda"},
	},
	"bengali": {
		Yes: []string{"হ্যাঁ", "ঠিক আছে", "hyan", "thik ache"},
		No:  []string{"না", "na"},
	},
	"marathi": {
		Yes: []string{"हो", "होय", "बरोबर", "ho", "hoy", "barobar"},
		No:  []string{"नाही", "नको", "nahi", "nako"},
	},
	"gujarati": {
		Yes: []string{"હા", "બરાબર", "ha", "barabar"},
		No:  []string{"ના", "નહીં", "na", "nahi"},
	},
}

func DefaultLexicon() Lexicon {
	return defaultLexicon
}

// lists returns the vocabularies to consult: the language's own, then English.
func (l Lexicon) lists(language string) []wordList {
	language = strings.ToLower(strings.TrimSpace(language))
	out := make([]wordList, 0, 2)
	if wl, ok := l[language]; ok && language != fallbackLanguage {
		out = append(out, wl)
	}
	return append(out, l[fallbackLanguage])
}

// IsAffirmative reports whether the utterance contains a yes phrase for the
// language (or English) and no negative phrase. A mixed "ok no" is rejected.
func (l Lexicon) IsAffirmative(utterance, language string) bool {
	tokens := tokenize(utterance)
	if len(tokens) == 0 {
		return false
	}

	yes := false
	for _, wl := range l.lists(language) {
		if containsAnyPhrase(tokens, wl.No) {
			return false
		}
		if containsAnyPhrase(tokens, wl.Yes) {
			yes = true
		}
	}
	return yes
}

func (l Lexicon) isExactYes(whole, language string) bool {
	return l.isExact(whole, language, func(wl wordList) []string { return wl.Yes })
}

func (l Lexicon) isExactNo(whole, language string) bool {
	return l.isExact(whole, language, func(wl wordList) []string { return wl.No })
}

func (l Lexicon) isExact(whole, language string, pick func(wordList) []string) bool {
	tokens := tokenize(whole)
	for _, wl := range l.lists(language) {
		for _, phrase := range pick(wl) {
			if equalTokens(tokens, tokenize(phrase)) {
				return true
			}
		}
	}
	return false
}

// tokenize splits on anything that is neither a letter, a mark nor a digit.
// Marks stay inside tokens so Indic syllables are not broken apart.
func tokenize(s string) []string {
	s = foldCase(normalizeText(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '\'')
	})
}

func containsAnyPhrase(tokens []string, phrases []string) bool {
	for _, p := range phrases {
		if containsPhrase(tokens, tokenize(p)) {
			return true
		}
	}
	return false
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if equalTokens(tokens[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
