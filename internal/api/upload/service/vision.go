package uploadService

import (
	"VoiceAgentGolang/internal/api/upload"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const visionTimeout = 30 * time.Second

func visionPrompt(applianceType, symptomSummary string) string {
	var contextParts []string
	if applianceType != "" {
		contextParts = append(contextParts, fmt.Sprintf("Appliance type: %s", applianceType))
	}
	if symptomSummary != "" {
		contextParts = append(contextParts, fmt.Sprintf("Reported symptoms: %s", symptomSummary))
	}
	callContext := "No additional context provided."
	if len(contextParts) > 0 {
		callContext = strings.Join(contextParts, "\n")
	}

	return fmt.Sprintf(`You are an expert appliance repair technician analyzing an image sent by a customer.

Context from the customer's call:
%s

FIRST, determine if this image actually shows the appliance mentioned above (or any home appliance if none specified).

Then analyze this image and provide:

1. IS_APPLIANCE_IMAGE: true if this image shows a home appliance (washer, dryer, refrigerator, dishwasher, oven, HVAC, etc.), false if it shows something unrelated (person, pet, random object, blank, etc.)

2. SUMMARY: Describe what you observe in the image that is relevant to diagnosing the appliance issue. Look for error codes or warning lights on displays, visible damage or wear, leaks, frost buildup, and the model number if visible. If the image does NOT show an appliance, describe what you see instead.

3. TROUBLESHOOTING: Provide 2-4 safe troubleshooting steps the customer can try at home. Be specific and practical. If the issue appears serious or requires professional repair, clearly state that. If the image does NOT show an appliance, leave this empty.

Format your response as JSON:
{
    "is_appliance_image": true or false,
    "summary": "Your detailed observations here",
    "troubleshooting": "Step 1: ...\nStep 2: ...\nStep 3: ..."
}

Be strict about is_appliance_image - only set it to true if you can clearly see a home appliance in the image.`, callContext)
}

// analyzeImage runs the photo through the vision model and never fails: a
// model error or unparseable answer degrades to a generic analysis so the
// call can keep moving.
func (s *uploadService) analyzeImage(ctx context.Context, imageBytes []byte, applianceType, symptomSummary string) upload.VisionAnalysis {
	if s.geminiClient == nil {
		return fallbackAnalysis(applianceType)
	}

	visionCtx, cancel := context.WithTimeout(ctx, visionTimeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(imageBytes)
	raw, err := s.geminiClient.AnalyzeImage(visionCtx, encoded, visionPrompt(applianceType, symptomSummary))
	if err != nil {
		s.log.Warnf("Vision analysis failed, using fallback: %v", err)
		return fallbackAnalysis(applianceType)
	}

	return parseVisionResponse(raw, applianceType)
}

func parseVisionResponse(raw, applianceType string) upload.VisionAnalysis {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		IsApplianceImage interface{} `json:"is_appliance_image"`
		Summary          string      `json:"summary"`
		Troubleshooting  string      `json:"troubleshooting"`
	}
	if err := json.UnmarshalFromString(cleaned, &parsed); err != nil {
		// Unstructured answer: keep the text, assume it is an appliance so a
		// human sees it rather than silently discarding the upload.
		return upload.VisionAnalysis{
			IsApplianceImage: true,
			Summary:          truncate(raw, 500),
			Troubleshooting:  "",
		}
	}

	isAppliance := true
	switch v := parsed.IsApplianceImage.(type) {
	case bool:
		isAppliance = v
	case string:
		isAppliance = strings.EqualFold(v, "true")
	}

	summary := parsed.Summary
	if summary == "" {
		summary = "Analysis complete."
	}

	return upload.VisionAnalysis{
		IsApplianceImage: isAppliance,
		Summary:          summary,
		Troubleshooting:  parsed.Troubleshooting,
	}
}

func fallbackAnalysis(applianceType string) upload.VisionAnalysis {
	appliance := applianceType
	if appliance == "" {
		appliance = "appliance"
	}
	return upload.VisionAnalysis{
		IsApplianceImage: true,
		Summary:          fmt.Sprintf("We received your %s photo but automated analysis is unavailable right now.", appliance),
		Troubleshooting:  "A technician will review the photo. Meanwhile, make sure the appliance is plugged in and the breaker has not tripped.",
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
