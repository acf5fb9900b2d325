package callflow

import "strings"

// Intent is the coarse classification of a caller utterance. Keyword
// matching is a placeholder heuristic; anything smarter plugs in behind
// Classifier without touching the state machine.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentYes
	IntentNo
)

// Classifier decides whether an utterance is an affirmation, a refusal, or
// neither.
type Classifier interface {
	Classify(text string) Intent
}

var yesWords = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"correct": true, "right": true, "ok": true, "okay": true,
	"confirm": true, "confirmed": true, "affirmative": true, "exactly": true,
	"perfect": true, "fine": true,
}

var noWords = map[string]bool{
	"no": true, "nope": true, "nah": true, "wrong": true, "incorrect": true,
	"not": true, "cancel": true, "negative": true, "dont": true, "don't": true,
}

// KeywordClassifier matches tokenized utterances against fixed yes/no word
// lists. Mixed signals ("no wait, yes") classify as unknown.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default keyword-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (c *KeywordClassifier) Classify(text string) Intent {
	var yes, no int
	for _, word := range tokenize(text) {
		if yesWords[word] {
			yes++
		}
		if noWords[word] {
			no++
		}
	}
	switch {
	case yes > 0 && no == 0:
		return IntentYes
	case no > 0 && yes == 0:
		return IntentNo
	default:
		return IntentUnknown
	}
}

// tokenize lowercases and splits an utterance into words, stripping
// punctuation that speech recognizers occasionally attach.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '!', '?', ';', ':':
			return ' '
		}
		return r
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
