package extract

import (
	"context"
)

// Oracle is the external AI classification service. It is fallible and
// non-deterministic; every caller in this package validates its output and
// falls through to a deterministic rule when the answer is missing, late,
// or malformed. pkg/gemini and pkg/openai both satisfy it.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Source records which strategy produced an extraction value.
type Source uint8

const (
	SourceNone Source = iota
	SourceOracle
	SourceFallback
)

var sourceMap = map[Source]string{
	SourceNone:     "none",
	SourceOracle:   "oracle",
	SourceFallback: "fallback",
}

func (s Source) String() string {
	return sourceMap[s]
}

// Result is the transient outcome of one field extraction. Never persisted.
type Result struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// SymptomInfo is the structured read of a caller's problem description.
type SymptomInfo struct {
	Summary    string   `json:"symptom_summary"`
	ErrorCodes []string `json:"error_codes"`
	IsUrgent   bool     `json:"is_urgent"`
	Source     Source   `json:"-"`
}

// Interpretation is the structured read of a caller's answer to a
// troubleshooting step.
type Interpretation struct {
	IsResolved bool    `json:"is_resolved"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Source     Source  `json:"-"`
}

type IExtractor interface {
	ExtractName(ctx context.Context, transcript string) Result
	ClassifyAppliance(ctx context.Context, transcript string) Result
	IsApplianceRelated(ctx context.Context, transcript string) bool
	ExtractSymptoms(ctx context.Context, transcript string) SymptomInfo
	ExtractEmail(ctx context.Context, normalized string) Result
	ExtractZip(normalized string) Result
	InterpretResponse(ctx context.Context, stepPrompt, transcript string) Interpretation
	WantsScheduling(transcript string) bool
}
