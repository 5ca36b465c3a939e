package extract

import (
	"fmt"
)

func namePrompt(transcript string) string {
	return fmt.Sprintf(`You are a call assistant for a home appliance service company.
The caller was asked for their name. Extract the caller's FIRST NAME from the
transcript below. Reply with just the first name, capitalized, no extra text.
If no plausible name is present, reply with exactly "unknown".

Transcript:
%s`, transcript)
}

func appliancePrompt(transcript string) string {
	return fmt.Sprintf(`You are a classification assistant. From the user text, identify the APPLIANCE TYPE only.
Valid answers: washer, dryer, refrigerator, dishwasher, oven, hvac, other.
Reply with just one of these words in lowercase, with no extra text.

User text:
%s`, transcript)
}

func relevancePrompt(transcript string) string {
	return fmt.Sprintf(`You are a classification assistant for a home appliance service company.
Determine if the user's message is related to home appliances (washer, dryer,
refrigerator, dishwasher, oven, HVAC, etc.).

Reply with ONLY "yes" or "no" (lowercase, no extra text).
- "yes" if the message mentions or implies a home appliance
- "no" if it's unrelated (random words, greetings without context, off-topic questions)

User message:
%s`, transcript)
}

func symptomPrompt(transcript string) string {
	return fmt.Sprintf(`You are a home appliance service assistant.
From the caller's description, extract structured information.

Always respond in valid JSON with exactly these keys:
- "symptom_summary": string (a concise 1-2 sentence summary of the problem)
- "error_codes": list of strings (error codes like "E23", "F21", etc.)
- "is_urgent": boolean (true if safety issue, flooding, fire risk, gas smell, etc.)

If there are no obvious error codes, use an empty list for "error_codes".
If it does not sound urgent, use false for "is_urgent".

Caller description:
%s`, transcript)
}

func emailPrompt(normalized string) string {
	return fmt.Sprintf(`A caller spelled out their email address over the phone. The transcript has
already been normalized. Extract the email address and reply with ONLY the
address in the form local@domain.tld, lowercase, no extra text. If no valid
email address is present, reply with exactly "none".

Normalized transcript:
%s`, normalized)
}

func interpretPrompt(stepPrompt, transcript string) string {
	return fmt.Sprintf(`You are a home appliance troubleshooting assistant. The caller was given this
instruction:

"%s"

The caller replied:

"%s"

Decide whether the caller is saying the problem is RESOLVED. Watch for replies
that sound positive but mean the problem persists, such as "the dial is good,
it's already at max".

Respond in valid JSON with exactly these keys:
- "is_resolved": boolean
- "confidence": number between 0 and 1
- "rationale": short string explaining the decision`, stepPrompt, transcript)
}
