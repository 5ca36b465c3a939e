package speech

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Context tells the normalizer what kind of answer the dialog is expecting,
// so spoken spelling ("k a s i at g mail dot com") and number words can be
// collapsed into machine-readable text.
type Context uint8

const (
	ContextFreeform Context = iota
	ContextEmail
	ContextZip
)

var numberWords = map[string]string{
	"zero":  "0",
	"oh":    "0",
	"one":   "1",
	"two":   "2",
	"three": "3",
	"four":  "4",
	"five":  "5",
	"six":   "6",
	"seven": "7",
	"eight": "8",
	"nine":  "9",
}

// Spoken punctuation used when callers spell out an email address.
var emailSpokenTokens = map[string]string{
	"at":         "@",
	"dot":        ".",
	"period":     ".",
	"underscore": "_",
	"dash":       "-",
	"hyphen":     "-",
	"minus":      "-",
	"plus":       "+",
}

// Provider names that STT tends to split into separate words.
var emailProviderJoins = [][2]string{
	{"g mail", "gmail"},
	{"hot mail", "hotmail"},
	{"i cloud", "icloud"},
	{"proton mail", "protonmail"},
	{"out look", "outlook"},
	{"ya hoo", "yahoo"},
}

// Normalize cleans a raw spoken-word transcript for the given context.
// It is deterministic, does no I/O, and is idempotent:
// Normalize(Normalize(x, c), c) == Normalize(x, c).
func Normalize(raw string, ctx Context) string {
	text := cleanText(raw)

	switch ctx {
	case ContextEmail:
		return normalizeEmail(text)
	case ContextZip:
		return normalizeZip(text)
	default:
		return text
	}
}

func normalizeEmail(text string) string {
	for _, join := range emailProviderJoins {
		text = strings.ReplaceAll(text, join[0], join[1])
	}

	words := strings.Fields(text)
	var parts []string
	for _, word := range words {
		if sub, ok := emailSpokenTokens[word]; ok {
			parts = append(parts, sub)
			continue
		}
		if digit, ok := numberWords[word]; ok {
			parts = append(parts, digit)
			continue
		}
		parts = append(parts, word)
	}

	// Letter-by-letter spelling collapses once the tokens are glued back
	// together: "k a s i" -> "kasi".
	joined := strings.Join(parts, "")
	joined = strings.TrimRight(joined, ".,!?;:")
	return joined
}

func normalizeZip(text string) string {
	words := strings.Fields(text)
	var sb strings.Builder
	for _, word := range words {
		if digit, ok := numberWords[word]; ok {
			sb.WriteString(digit)
			continue
		}
		for _, r := range word {
			if unicode.IsDigit(r) {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

// cleanText lowercases, strips diacritics, and maps every symbol that is not
// a letter, digit, or space to a space. Matches the freeform contract on its
// own; the email context re-introduces symbols from spoken tokens afterwards.
func cleanText(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, err := transform.String(t, text)
	if err != nil {
		result = text
	}

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		// '@', '.', '_', '-', '+' survive so email output stays stable on a
		// second pass.
		switch r {
		case '@', '.', '_', '-', '+':
			return r
		}
		return ' '
	}, result)

	words := strings.Fields(result)
	return strings.Join(words, " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
