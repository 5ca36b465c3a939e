package extract

import (
	"regexp"
	"strings"
)

// Deterministic rules used when the oracle is unavailable or returns
// something that fails validation. Ported behavior, not shared state: every
// function here is pure.

var validAppliances = map[string]bool{
	"washer":       true,
	"dryer":        true,
	"refrigerator": true,
	"dishwasher":   true,
	"oven":         true,
	"hvac":         true,
}

// Names the noise filter refuses outright; STT loves handing these back when
// the caller mumbles or the TV is on.
var nameNoiseWords = map[string]bool{
	"whatever":  true,
	"coffee":    true,
	"nothing":   true,
	"nobody":    true,
	"hello":     true,
	"speaking":  true,
	"yes":       true,
	"no":        true,
	"okay":      true,
	"thanks":    true,
}

var applianceBrands = []string{
	"samsung", "lg", "whirlpool", "general electric", "maytag", "frigidaire",
	"kenmore", "bosch", "kitchenaid", "electrolux", "amana", "hotpoint",
	"haier", "thermador", "viking", "miele", "speed queen", "carrier",
	"trane", "lennox", "rheem", "goodman", "daikin",
}

var applianceHints = []string{
	"washer", "washing", "dryer", "drying", "fridge", "refrigerator",
	"freezer", "dishwasher", "dishes", "oven", "stove", "range", "cooktop",
	"microwave", "hvac", "heating", "cooling", "air conditioner", "furnace",
	"heat pump",
}

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is (\p{L}+)`),
		regexp.MustCompile(`(?i)\bthis is (\p{L}+)`),
		regexp.MustCompile(`(?i)\bi am (\p{L}+)`),
		regexp.MustCompile(`(?i)\bi'm (\p{L}+)`),
		regexp.MustCompile(`(?i)\bcall me (\p{L}+)`),
	}

	alphaOnly = regexp.MustCompile(`^\p{L}+$`)

	emailPattern = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)

	errorCodePattern = regexp.MustCompile(`(?i)\b([a-z]{1,2}\s?\d{1,3})\b`)
)

var acceptedTLDs = map[string]bool{
	"com": true, "net": true, "org": true, "edu": true, "gov": true,
	"io": true, "co": true, "us": true, "me": true, "info": true,
	"biz": true, "dev": true,
}

var urgencyMarkers = []string{
	"gas", "smoke", "fire", "burning", "spark", "flood", "flooding",
	"electric shock", "shocked me",
}

// Negative markers outrank positive ones: "the dial is good, it's already at
// max" still means the problem is there. Contractions are listed in their
// bare form; hasWord strips apostrophes before matching.
var negativeMarkers = []string{
	"no", "nope", "not", "still", "didnt", "doesnt", "wont",
	"same", "nothing", "already", "worse", "isnt",
}

var positiveMarkers = []string{
	"yes", "yeah", "yep", "fixed", "working", "worked", "helped", "solved",
	"better", "resolved", "good now",
}

var schedulingMarkers = []string{
	"schedule", "technician", "appointment", "send someone", "book",
	"come out", "come fix",
}

// fallbackName pulls a first name out of self-introduction phrasing, or
// takes a lone word as the name when the caller answered with just that.
func fallbackName(transcript string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(transcript); m != nil {
			return capitalize(m[1])
		}
	}

	words := strings.Fields(transcript)
	if len(words) == 1 && alphaOnly.MatchString(words[0]) {
		return capitalize(words[0])
	}
	return ""
}

func capitalize(word string) string {
	word = strings.ToLower(word)
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

// validName enforces the acceptance rule shared by oracle and fallback
// results: alphabetic, 2-20 runes, not a known noise word.
func validName(name string) bool {
	if !alphaOnly.MatchString(name) {
		return false
	}
	n := len([]rune(name))
	if n < 2 || n > 20 {
		return false
	}
	return !nameNoiseWords[strings.ToLower(name)]
}

// fallbackAppliance is keyword inference. "dishwasher" is checked before
// "washer" so the substring does not false-match.
func fallbackAppliance(transcript string) string {
	text := strings.ToLower(transcript)
	switch {
	case strings.Contains(text, "dishwasher"):
		return "dishwasher"
	case strings.Contains(text, "washer"), strings.Contains(text, "washing machine"):
		return "washer"
	case strings.Contains(text, "dryer"):
		return "dryer"
	case strings.Contains(text, "fridge"), strings.Contains(text, "refrigerator"), strings.Contains(text, "freezer"):
		return "refrigerator"
	case strings.Contains(text, "oven"), strings.Contains(text, "stove"), strings.Contains(text, "range"):
		return "oven"
	case strings.Contains(text, "air conditioner"), strings.Contains(text, "hvac"),
		strings.Contains(text, "furnace"), strings.Contains(text, "heat pump"),
		hasWord(text, "ac"):
		return "hvac"
	}
	return ""
}

// containsApplianceHint reports whether a brand or appliance keyword shows
// up, which short-circuits the relevance oracle call.
func containsApplianceHint(transcript string) bool {
	text := strings.ToLower(transcript)
	for _, brand := range applianceBrands {
		if strings.Contains(text, brand) {
			return true
		}
	}
	for _, hint := range applianceHints {
		if strings.Contains(text, hint) {
			return true
		}
	}
	return hasWord(text, "lg") || hasWord(text, "ge") || hasWord(text, "ac")
}

func fallbackSymptoms(transcript string) SymptomInfo {
	info := SymptomInfo{
		Summary:    transcript,
		ErrorCodes: []string{},
		Source:     SourceFallback,
	}

	text := strings.ToLower(transcript)
	for _, marker := range urgencyMarkers {
		if strings.Contains(text, marker) {
			info.IsUrgent = true
			break
		}
	}

	for _, m := range errorCodePattern.FindAllString(transcript, -1) {
		code := strings.ToUpper(strings.ReplaceAll(m, " ", ""))
		info.ErrorCodes = append(info.ErrorCodes, code)
	}

	return info
}

func fallbackEmail(normalized string) string {
	return emailPattern.FindString(strings.ToLower(normalized))
}

// validEmail checks local@domain shape and requires the top-level segment to
// be in the accepted set, which filters STT inventions like "gmail.comm".
func validEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) || emailPattern.FindString(email) != email {
		return false
	}
	dot := strings.LastIndex(email, ".")
	if dot < 0 {
		return false
	}
	return acceptedTLDs[email[dot+1:]]
}

func fallbackInterpretation(transcript string) Interpretation {
	text := strings.ToLower(transcript)

	negative := false
	for _, marker := range negativeMarkers {
		if hasWord(text, marker) {
			negative = true
			break
		}
	}
	if negative {
		return Interpretation{
			IsResolved: false,
			Confidence: 0.8,
			Rationale:  "negative marker present",
			Source:     SourceFallback,
		}
	}

	for _, marker := range positiveMarkers {
		matched := hasWord(text, marker)
		if !matched && strings.Contains(marker, " ") {
			matched = strings.Contains(text, marker)
		}
		if matched {
			return Interpretation{
				IsResolved: true,
				Confidence: 0.7,
				Rationale:  "positive marker present",
				Source:     SourceFallback,
			}
		}
	}

	// Never presume resolution without an explicit positive.
	return Interpretation{
		IsResolved: false,
		Confidence: 0.5,
		Rationale:  "no explicit confirmation",
		Source:     SourceFallback,
	}
}

// hasWord reports whether word appears as a whole token. Apostrophes are
// stripped before tokenizing so "didn't" matches the bare form "didnt".
func hasWord(text, word string) bool {
	text = strings.ReplaceAll(text, "'", "")
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == '!' || r == '?'
	}) {
		if w == word {
			return true
		}
	}
	return false
}
