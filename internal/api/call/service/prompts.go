package callService

import (
	"VoiceAgentGolang/internal/entity"
	"fmt"
	"strings"
	"time"
)

const (
	promptGreeting = "Hi, thanks for calling home appliance support. " +
		"I can help you troubleshoot your appliance. May I have your first name?"

	promptAskIssueNamed = "Nice to meet you, %s. What appliance are you calling about, " +
		"and what seems to be the problem?"

	promptAskIssueAnonymous = "No problem, we can skip the name. What appliance are you " +
		"calling about, and what seems to be the problem?"

	promptNameRetry = "Sorry, I didn't catch your name. Could you say just your first name?"

	promptApplianceRetry = "I'm sorry, I didn't catch what appliance you're calling about. " +
		"Please say something like washer, dryer, refrigerator, dishwasher, oven, or HVAC system."

	promptOffTopic = "I can only help with home appliances like washers, dryers, " +
		"refrigerators, dishwashers, ovens, or HVAC systems. Which one are you calling about?"

	promptNoInput = "I'm sorry, I didn't hear anything. Please say that again."

	promptDidNotCatch = "I'm sorry, I didn't quite catch that. Could you say that again?"

	promptNoInputGoodbye = "I'm still not hearing anything clearly, so I'll end the call here. " +
		"You can call us back any time. Goodbye."

	promptCheckSuffix = " After you've checked that, just say yes if it helped, " +
		"or no if the problem is still there."

	promptResolvedGoodbye = "Great, I'm glad that seemed to help! If the issue comes back, " +
		"you can always call us again. Thank you for calling. Goodbye."

	promptAskEmail = "Those quick checks didn't solve it, but a photo of the appliance " +
		"would help a lot. Could you tell me your email address, so I can send you a " +
		"secure upload link? Feel free to spell it out."

	promptEmailRetry = "Sorry, I couldn't make out a valid email address. " +
		"Could you spell it out for me, letter by letter?"

	promptEmailSkip = "That's all right, we can skip the photo. Let me help you schedule " +
		"a technician visit instead. What is your ZIP code?"

	promptLinkSent = "Thanks, I've sent an upload link to your email. Take a clear photo " +
		"of the appliance, especially any error display, and upload it there. " +
		"I'll stay on the line. Just say something like 'done' once you've uploaded it, " +
		"or 'skip' to go straight to scheduling."

	promptStillWaiting = "I don't see the photo yet. Take your time. Say 'done' once it's " +
		"uploaded, or 'skip' if you'd rather schedule a technician."

	promptUploadTimeout = "We've been waiting a while for the photo. Let's schedule a " +
		"technician visit instead. What is your ZIP code?"

	promptReupload = "Hmm, that photo doesn't seem to show the appliance. I've reset the " +
		"link, so you can use the same one to upload another picture. Say 'done' when " +
		"it's uploaded, or 'skip' to move on to scheduling."

	promptVisualNotResolved = "It sounds like this needs a technician visit. " +
		"Let me help you schedule an appointment. What is your ZIP code?"

	promptAskZip = "It sounds like this may need a technician visit. " +
		"Let me help you schedule an appointment. What is your ZIP code?"

	promptZipRetry = "I'm sorry, I didn't catch a valid ZIP code. " +
		"Please say your 5-digit ZIP code."

	promptAskTimePref = "Got it, ZIP code %s. Do you prefer a morning or afternoon appointment?"

	promptNoSlots = "I'm sorry, we don't have any technicians available in your area for " +
		"%s service at this time. Please call back later or visit our website to " +
		"schedule. Thank you for calling. Goodbye."

	promptSlotRetry = "I'm sorry, I didn't understand your selection. " +
		"Please say option 1, option 2, or option 3."

	promptSlotGone = "I'm sorry, that time was just taken by another customer. "

	promptBookingFailed = "I'm sorry, there was an error booking your appointment. " +
		"Please call back or visit our website to schedule. Thank you for calling. Goodbye."

	promptHumanHandoff = "Let me connect you with a team member who can help you further. " +
		"Please hold."

	promptSessionExpired = "This call has been quiet for a while, so I'll end it here. " +
		"You can call us back any time. Goodbye."
)

// Two escalating rounds of self-service checks per appliance. The first
// round is the quick stuff anyone can do; the second digs a little deeper.
var basicChecks = map[string][]string{
	"washer": {
		"Make sure the washer door or lid is fully closed and latched.",
		"Check that the water supply valves behind the washer are fully open.",
	},
	"dryer": {
		"Check that the lint filter is clean and seated properly.",
		"Make sure the dryer door is fully closed and the cycle is started.",
	},
	"refrigerator": {
		"Check that the temperature dial is set between 3 and 5, not at the lowest setting.",
		"Make sure the door seals are clean and the doors close fully.",
	},
	"dishwasher": {
		"Make sure the door is latched and the cycle selector is set.",
		"Check that the water supply valve under the sink is open.",
	},
	"oven": {
		"Check that the oven is not in delayed start or sabbath mode.",
		"Make sure the controls are set to bake and a temperature is selected.",
	},
	"hvac": {
		"Check that the thermostat is set to the right mode, heat or cool.",
		"Make sure the circuit breaker for the unit has not tripped.",
	},
}

var advancedChecks = map[string][]string{
	"washer": {
		"Unplug the washer for one minute, then plug it back in to reset the control board.",
		"Pull the washer out slightly and check the drain hose for kinks.",
	},
	"dryer": {
		"Unplug the dryer and check the vent hose at the back for crushing or blockage.",
		"If it's a gas dryer, confirm the gas valve on the supply line is open.",
	},
	"refrigerator": {
		"Unplug the refrigerator for two minutes to reset it, then plug it back in.",
		"Check the condenser coils at the back or underneath, and gently vacuum off heavy dust.",
	},
	"dishwasher": {
		"Remove the bottom rack and clean the filter at the base of the tub.",
		"Turn off power at the breaker for one minute to reset the control board.",
	},
	"oven": {
		"Turn the oven off at the breaker for one minute to reset the electronics.",
		"If it's a gas oven, check that the igniter glows when you start a bake cycle.",
	},
	"hvac": {
		"Replace or remove the air filter and see if airflow improves.",
		"Check that the outdoor unit is running and not blocked by debris.",
	},
}

func checkPrompt(applianceType string, step int, advanced bool) (string, bool) {
	table := basicChecks
	if advanced {
		table = advancedChecks
	}
	steps, ok := table[applianceType]
	if !ok || step >= len(steps) {
		return "", false
	}
	return steps[step], true
}

func firstCheckPrompt(summary, applianceType string) string {
	check, _ := checkPrompt(applianceType, 0, false)
	return fmt.Sprintf("Thanks. It sounds like you're experiencing: %s. "+
		"Let's try a quick check together. %s%s", summary, check, promptCheckSuffix)
}

func nextCheckPrompt(check string) string {
	return fmt.Sprintf("Okay, let's try another check. %s%s", check, promptCheckSuffix)
}

func emailConfirmPrompt(email string) string {
	return fmt.Sprintf("I heard %s. Is that correct? Please say yes or no.", spellEmail(email))
}

// spellEmail reads an address out character group by character group so the
// caller can actually verify it over the phone.
func spellEmail(email string) string {
	replacer := strings.NewReplacer(
		"@", " at ",
		".", " dot ",
		"_", " underscore ",
		"-", " dash ",
		"+", " plus ",
	)
	return replacer.Replace(email)
}

func analysisPrompt(summary, troubleshooting string) string {
	text := fmt.Sprintf("Thanks, I can see your photo now. Here's what I found: %s.", summary)
	if troubleshooting != "" {
		text += fmt.Sprintf(" Let's try this: %s", troubleshooting)
	}
	text += " Did that resolve the problem? Please say yes or no."
	return text
}

func slotSpeech(slots []entity.OfferedSlot) string {
	var b strings.Builder
	b.WriteString("Here are the available appointments: ")
	for i, slot := range slots {
		b.WriteString(formatSlotForSpeech(slot, i+1))
		b.WriteString(". ")
	}
	b.WriteString("Please say option 1, option 2, or option 3 to select your preferred time.")
	return b.String()
}

func formatSlotForSpeech(slot entity.OfferedSlot, position int) string {
	return fmt.Sprintf("Option %d: %s at %s with %s",
		position,
		slot.StartTime.Format("Monday, January 2"),
		formatHourForSpeech(slot.StartTime),
		slot.TechnicianName,
	)
}

func formatHourForSpeech(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}

func bookingConfirmationPrompt(technicianName string, start time.Time) string {
	return fmt.Sprintf("Your appointment is confirmed for %s at %s with technician %s. "+
		"You will receive a confirmation text shortly. Thank you for calling. Goodbye.",
		start.Format("Monday, January 2"),
		formatHourForSpeech(start),
		technicianName,
	)
}

func zipReadback(zip string) string {
	return strings.Join(strings.Split(zip, ""), " ")
}
