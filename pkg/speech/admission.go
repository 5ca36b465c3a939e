package speech

import (
	"strings"
	"unicode"
)

// MinConfidence is the STT confidence floor below which a transcript is
// treated as background noise.
const MinConfidence = 0.5

// Filler words that carry no content. A transcript made of nothing else is
// rejected before it can touch session state.
var fillerWords = map[string]bool{
	"uh":   true,
	"um":   true,
	"uhm":  true,
	"umm":  true,
	"hmm":  true,
	"hm":   true,
	"er":   true,
	"erm":  true,
	"ah":   true,
	"mhm":  true,
}

// Accept decides whether a transcript is good enough to feed the extraction
// pipeline. minWords is step-specific: yes/no steps accept a single word,
// open questions want at least two. Rejection is noise, not a failed attempt;
// callers must not count it against any content retry budget.
func Accept(transcript string, sttConfidence float64, minWords int) bool {
	if sttConfidence < MinConfidence {
		return false
	}

	trimmed := strings.TrimSpace(transcript)
	if trimmed == "" {
		return false
	}

	if !containsAlphanumeric(trimmed) {
		return false
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) < minWords {
		return false
	}

	for _, word := range words {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" {
			continue
		}
		if !fillerWords[word] {
			return true
		}
	}

	return false
}

func containsAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
