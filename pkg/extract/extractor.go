package extract

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultOracleTimeout = 6 * time.Second

type extractor struct {
	oracle  Oracle
	log     *logrus.Logger
	timeout time.Duration
}

// New builds the extraction pipeline. A nil oracle is allowed; every field
// then resolves through its deterministic fallback.
func New(oracle Oracle, log *logrus.Logger) IExtractor {
	timeout := defaultOracleTimeout
	if v := os.Getenv("ORACLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	return &extractor{
		oracle:  oracle,
		log:     log,
		timeout: timeout,
	}
}

// ask runs one oracle round trip under the per-call timeout. The bool is
// false when the oracle is absent, errored, timed out, or answered with
// nothing after code fence stripping.
func (e *extractor) ask(ctx context.Context, field, prompt string) (string, bool) {
	if e.oracle == nil {
		return "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	answer, err := e.oracle.Generate(callCtx, prompt)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"field": field,
			"error": err.Error(),
		}).Warn("[Extractor] oracle call failed, falling back")
		return "", false
	}

	answer = stripCodeFence(strings.TrimSpace(answer))
	if answer == "" {
		return "", false
	}
	return answer, true
}

func (e *extractor) ExtractName(ctx context.Context, transcript string) Result {
	if answer, ok := e.ask(ctx, "name", namePrompt(transcript)); ok {
		name := capitalize(strings.TrimSpace(answer))
		if !strings.EqualFold(answer, "unknown") && validName(name) {
			return Result{Field: "name", Value: name, Source: SourceOracle, Confidence: 0.9}
		}
	}

	if name := fallbackName(transcript); name != "" && validName(name) {
		return Result{Field: "name", Value: name, Source: SourceFallback, Confidence: 0.6}
	}
	return Result{Field: "name", Source: SourceNone}
}

func (e *extractor) ClassifyAppliance(ctx context.Context, transcript string) Result {
	if answer, ok := e.ask(ctx, "appliance", appliancePrompt(transcript)); ok {
		kind := strings.ToLower(strings.TrimSpace(answer))
		if validAppliances[kind] {
			return Result{Field: "appliance", Value: kind, Source: SourceOracle, Confidence: 0.9}
		}
	}

	if kind := fallbackAppliance(transcript); kind != "" {
		return Result{Field: "appliance", Value: kind, Source: SourceFallback, Confidence: 0.7}
	}
	return Result{Field: "appliance", Source: SourceNone}
}

func (e *extractor) IsApplianceRelated(ctx context.Context, transcript string) bool {
	// Brand and keyword hints skip the oracle round trip entirely.
	if containsApplianceHint(transcript) {
		return true
	}

	if answer, ok := e.ask(ctx, "relevance", relevancePrompt(transcript)); ok {
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "yes":
			return true
		case "no":
			return false
		}
	}

	// When in doubt keep the caller in the flow rather than bounce them.
	return true
}

func (e *extractor) ExtractSymptoms(ctx context.Context, transcript string) SymptomInfo {
	if answer, ok := e.ask(ctx, "symptoms", symptomPrompt(transcript)); ok {
		var info SymptomInfo
		if err := json.UnmarshalFromString(answer, &info); err == nil {
			if strings.TrimSpace(info.Summary) == "" {
				info.Summary = transcript
			}
			if info.ErrorCodes == nil {
				info.ErrorCodes = []string{}
			}
			info.Source = SourceOracle
			return info
		}
		e.log.WithFields(logrus.Fields{
			"field": "symptoms",
		}).Warn("[Extractor] malformed symptom payload, falling back")
	}

	return fallbackSymptoms(transcript)
}

func (e *extractor) ExtractEmail(ctx context.Context, normalized string) Result {
	if answer, ok := e.ask(ctx, "email", emailPrompt(normalized)); ok {
		email := strings.ToLower(strings.TrimSpace(answer))
		if email != "none" && validEmail(email) {
			return Result{Field: "email", Value: email, Source: SourceOracle, Confidence: 0.9}
		}
	}

	if email := fallbackEmail(normalized); email != "" && validEmail(email) {
		return Result{Field: "email", Value: email, Source: SourceFallback, Confidence: 0.7}
	}
	return Result{Field: "email", Source: SourceNone}
}

// ExtractZip is fully deterministic; the input is already a digit string
// from the zip normalizer. Fewer than three digits is treated as no usable
// input rather than a wrong answer, and more than five means the caller said
// something else entirely, like a phone number, so no guess is made.
func (e *extractor) ExtractZip(normalized string) Result {
	digits := strings.TrimSpace(normalized)
	if len(digits) < 3 || len(digits) > 5 {
		return Result{Field: "zip", Source: SourceNone}
	}
	if len(digits) < 5 {
		return Result{Field: "zip", Value: digits, Source: SourceFallback, Confidence: 0.3}
	}
	return Result{Field: "zip", Value: digits, Source: SourceFallback, Confidence: 1.0}
}

func (e *extractor) InterpretResponse(ctx context.Context, stepPrompt, transcript string) Interpretation {
	if answer, ok := e.ask(ctx, "interpretation", interpretPrompt(stepPrompt, transcript)); ok {
		var result Interpretation
		if err := json.UnmarshalFromString(answer, &result); err == nil {
			if result.Confidence < 0 || result.Confidence > 1 {
				result.Confidence = 0.5
			}
			result.Source = SourceOracle
			return result
		}
		e.log.WithFields(logrus.Fields{
			"field": "interpretation",
		}).Warn("[Extractor] malformed interpretation payload, falling back")
	}

	return fallbackInterpretation(transcript)
}

func (e *extractor) WantsScheduling(transcript string) bool {
	text := strings.ToLower(transcript)
	for _, marker := range schedulingMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// stripCodeFence unwraps the ```json ... ``` framing language models keep
// adding even when told not to.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 && !strings.ContainsAny(s[:idx], "{[") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
