package callService

import (
	"VoiceAgentGolang/internal/api/call"
	"VoiceAgentGolang/internal/api/scheduling"
	"VoiceAgentGolang/internal/api/upload"
	"VoiceAgentGolang/internal/entity"
	contextPkg "VoiceAgentGolang/pkg/context"
	"VoiceAgentGolang/pkg/extract"
	"VoiceAgentGolang/pkg/speech"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const notifyTimeout = 15 * time.Second

// HandleTurn advances one call by one caller turn. It acquires the session
// under its per-call lock, dispatches on the current step, mutates the
// session, and returns the next prompt. A second turn arriving while one is
// in flight gets ErrDuplicateTurn and must not be retried blindly.
func (s *callService) HandleTurn(ctx context.Context, event call.TurnEvent) (*call.TurnResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	session, unlock, err := s.store.Acquire(event.CallID, event.FromNumber)
	if err != nil {
		if errors.Is(err, call.ErrSessionExpired) {
			s.store.Drop(event.CallID)
			return &call.TurnResponse{
				PromptText: promptSessionExpired,
				NextAction: call.ActionHangup,
			}, nil
		}
		return nil, err
	}
	defer unlock()

	if session.Step == entity.StepEnded {
		return nil, call.ErrCallAlreadyEnded
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"call_id":    event.CallID,
		"step":       session.Step.String(),
		"tier":       session.Step.Tier().String(),
		"turn_seq":   session.TurnSeq,
		"no_input":   event.NoInput,
	}).Info("Handling call turn")

	if event.NoInput || strings.TrimSpace(event.Transcript) == "" {
		return s.handleNoInput(session), nil
	}
	session.NoInputAttempts = 0

	// Every transcript passes admission before it can touch session state.
	// Noise is not the caller's fault; repeat the question without consuming
	// any retry budget.
	if !speech.Accept(event.Transcript, event.Confidence, minWordsFor(session.Step)) {
		return gather(repromptFor(session)), nil
	}

	// A human-handoff request wins over whatever step we are in.
	if wantsHuman(event.Transcript) {
		resp := s.redirect(session)
		s.endSession(session, resp.NextAction)
		return resp, nil
	}

	// "Just schedule a technician" short-circuits to scheduling from any
	// tier, once we know what appliance we are scheduling for.
	if session.ApplianceType != "" && session.Step.Tier() < entity.Tier4Scheduling &&
		s.extractor.WantsScheduling(event.Transcript) {
		session.Step = entity.StepCollectZip
		return gather(promptAskZip), nil
	}

	resp := s.dispatch(ctx, session, event)
	if resp.NextAction != call.ActionGather {
		s.endSession(session, resp.NextAction)
	}
	return resp, nil
}

func (s *callService) dispatch(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	switch session.Step {
	case entity.StepGreetAskName:
		return s.stepGreetAskName(ctx, session, event)
	case entity.StepAskIssue:
		return s.stepAskIssue(ctx, session, event)
	case entity.StepBasicCheck:
		return s.stepCheck(ctx, session, event, false)
	case entity.StepAdvancedCheck:
		return s.stepCheck(ctx, session, event, true)
	case entity.StepCollectEmail:
		return s.stepCollectEmail(ctx, session, event)
	case entity.StepConfirmEmail:
		return s.stepConfirmEmail(ctx, session, event)
	case entity.StepAwaitUpload:
		return s.stepAwaitUpload(ctx, session, event)
	case entity.StepVisualGuidance:
		return s.stepVisualGuidance(ctx, session, event)
	case entity.StepCollectZip:
		return s.stepCollectZip(session, event)
	case entity.StepCollectTimePref:
		return s.stepCollectTimePref(ctx, session, event)
	case entity.StepChooseSlot:
		return s.stepChooseSlot(ctx, session, event)
	case entity.StepRedirect:
		return s.redirect(session)
	default:
		s.log.WithFields(logrus.Fields{
			"call_id": session.CallID,
			"step":    session.Step.String(),
		}).Error("Dialog reached an unknown step")
		return s.redirect(session)
	}
}

func (s *callService) stepGreetAskName(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	result := s.extractor.ExtractName(ctx, event.Transcript)
	if result.Source != extract.SourceNone {
		session.CustomerName = result.Value
		session.Step = entity.StepAskIssue
		return gather(fmt.Sprintf(promptAskIssueNamed, result.Value))
	}

	session.NameAttempts++
	if session.NameAttempts >= s.config.MaxFieldAttempts {
		session.Step = entity.StepAskIssue
		return gather(promptAskIssueAnonymous)
	}
	return gather(promptNameRetry)
}

func (s *callService) stepAskIssue(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	if !s.extractor.IsApplianceRelated(ctx, event.Transcript) {
		session.ApplianceAttempts++
		if session.ApplianceAttempts >= s.config.MaxFieldAttempts {
			return s.redirect(session)
		}
		return gather(promptOffTopic)
	}

	result := s.extractor.ClassifyAppliance(ctx, event.Transcript)
	if result.Source == extract.SourceNone {
		session.ApplianceAttempts++
		if session.ApplianceAttempts >= s.config.MaxFieldAttempts {
			return s.redirect(session)
		}
		return gather(promptApplianceRetry)
	}

	session.ApplianceType = result.Value
	session.Symptoms = event.Transcript

	info := s.extractor.ExtractSymptoms(ctx, event.Transcript)
	session.SymptomSummary = info.Summary
	session.ErrorCodes = info.ErrorCodes
	session.IsUrgent = info.IsUrgent

	session.Step = entity.StepBasicCheck
	session.TroubleshootStep = 0
	return gather(firstCheckPrompt(info.Summary, result.Value))
}

// stepCheck handles both self-service rounds; the caller just answered the
// check we asked them to perform.
func (s *callService) stepCheck(ctx context.Context, session *entity.CallSession, event call.TurnEvent, advanced bool) *call.TurnResponse {
	stepText, _ := checkPrompt(session.ApplianceType, session.TroubleshootStep, advanced)
	interp := s.extractor.InterpretResponse(ctx, stepText, event.Transcript)
	if interp.IsResolved {
		session.Resolved = true
		return hangup(promptResolvedGoodbye)
	}

	session.TroubleshootStep++
	if next, ok := checkPrompt(session.ApplianceType, session.TroubleshootStep, advanced); ok {
		return gather(nextCheckPrompt(next))
	}

	if !advanced {
		session.Step = entity.StepAdvancedCheck
		session.TroubleshootStep = 0
		next, ok := checkPrompt(session.ApplianceType, 0, true)
		if ok {
			return gather(nextCheckPrompt(next))
		}
	}

	session.Step = entity.StepCollectEmail
	session.TroubleshootStep = 0
	return gather(promptAskEmail)
}

func (s *callService) stepCollectEmail(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	normalized := speech.Normalize(event.Transcript, speech.ContextEmail)
	result := s.extractor.ExtractEmail(ctx, normalized)
	if result.Source != extract.SourceNone {
		session.PendingEmail = result.Value
		session.Step = entity.StepConfirmEmail
		return gather(emailConfirmPrompt(result.Value))
	}

	session.EmailAttempts++
	if session.EmailAttempts >= s.config.MaxFieldAttempts {
		session.Step = entity.StepCollectZip
		return gather(promptEmailSkip)
	}
	return gather(promptEmailRetry)
}

func (s *callService) stepConfirmEmail(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	lower := strings.ToLower(event.Transcript)
	switch {
	case hasWord(lower, "yes") || hasWord(lower, "yeah") || hasWord(lower, "correct") || hasWord(lower, "right"):
		session.CustomerEmail = session.PendingEmail
		session.PendingEmail = ""
		return s.sendUploadLink(ctx, session)
	case hasWord(lower, "no") || hasWord(lower, "nope") || hasWord(lower, "wrong"):
		// An explicit decline consumes a confirmation attempt too, or the
		// caller could loop between collection and read-back forever.
		session.PendingEmail = ""
		session.EmailConfirmAttempts++
		if session.EmailConfirmAttempts >= s.config.MaxFieldAttempts {
			session.Step = entity.StepCollectZip
			return gather(promptEmailSkip)
		}
		session.Step = entity.StepCollectEmail
		return gather(promptEmailRetry)
	}

	session.EmailConfirmAttempts++
	if session.EmailConfirmAttempts >= s.config.MaxFieldAttempts {
		session.Step = entity.StepCollectZip
		return gather(promptEmailSkip)
	}
	return gather(emailConfirmPrompt(session.PendingEmail))
}

func (s *callService) sendUploadLink(ctx context.Context, session *entity.CallSession) *call.TurnResponse {
	resp, err := s.upload.CreateToken(ctx, upload.CreateTokenRequest{
		CallID:         session.CallID,
		Email:          session.CustomerEmail,
		ApplianceType:  session.ApplianceType,
		SymptomSummary: session.SymptomSummary,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    session.CallID,
			"error":      err.Error(),
		}).Error("Failed to create upload token, skipping to scheduling")
		session.Step = entity.StepCollectZip
		return gather(promptEmailSkip)
	}

	session.UploadToken = resp.Token
	session.UploadEmailSent = true
	session.Step = entity.StepAwaitUpload
	session.UploadPollCount = 0
	return gather(promptLinkSent)
}

func (s *callService) stepAwaitUpload(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	if hasWord(strings.ToLower(event.Transcript), "skip") {
		session.Step = entity.StepCollectZip
		return gather(promptAskZip)
	}

	session.UploadPollCount++
	if session.UploadPollCount > s.config.MaxUploadPolls {
		session.Step = entity.StepCollectZip
		return gather(promptUploadTimeout)
	}

	status, err := s.upload.Status(ctx, session.CallID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    session.CallID,
			"error":      err.Error(),
		}).Error("Failed to poll upload status")
		return gather(promptStillWaiting)
	}

	if !status.AnalysisReady {
		return gather(promptStillWaiting)
	}

	if status.IsApplianceImage != nil && !*status.IsApplianceImage && !session.ReuploadOffered {
		session.ReuploadOffered = true
		if _, err := s.upload.ResetForReupload(ctx, session.CallID); err != nil {
			s.log.WithFields(logrus.Fields{
				"call_id": session.CallID,
				"error":   err.Error(),
			}).Error("Failed to reset upload token for reupload")
			session.Step = entity.StepCollectZip
			return gather(promptAskZip)
		}
		return gather(promptReupload)
	}

	session.AnalysisSpoken = true
	session.Step = entity.StepVisualGuidance
	return gather(analysisPrompt(status.AnalysisSummary, status.Troubleshooting))
}

func (s *callService) stepVisualGuidance(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	interp := s.extractor.InterpretResponse(ctx, "photo-based troubleshooting suggestion", event.Transcript)
	if interp.IsResolved {
		session.Resolved = true
		return hangup(promptResolvedGoodbye)
	}

	session.Step = entity.StepCollectZip
	return gather(promptVisualNotResolved)
}

func (s *callService) stepCollectZip(session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	normalized := speech.Normalize(event.Transcript, speech.ContextZip)
	result := s.extractor.ExtractZip(normalized)

	// Nothing ZIP-shaped heard, either too few digits or something much
	// longer like a phone number; repeat without charging the caller an
	// attempt.
	if result.Source == extract.SourceNone {
		return gather(promptZipRetry)
	}

	if len(result.Value) == 5 {
		session.ZipCode = result.Value
		session.Step = entity.StepCollectTimePref
		return gather(fmt.Sprintf(promptAskTimePref, zipReadback(result.Value)))
	}

	session.ZipAttempts++
	if session.ZipAttempts >= s.config.MaxFieldAttempts {
		return s.redirect(session)
	}
	return gather(promptZipRetry)
}

func (s *callService) stepCollectTimePref(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	lower := strings.ToLower(event.Transcript)
	switch {
	case strings.Contains(lower, "morning"):
		session.TimePreference = "morning"
	case strings.Contains(lower, "afternoon"):
		session.TimePreference = "afternoon"
	case strings.Contains(lower, "evening"):
		// No evening slots exist; afternoon is the closest we can offer.
		session.TimePreference = "afternoon"
	default:
		session.TimePreference = ""
	}

	return s.offerSlots(ctx, session)
}

func (s *callService) offerSlots(ctx context.Context, session *entity.CallSession) *call.TurnResponse {
	resp, err := s.scheduling.FindSlots(ctx, scheduling.FindSlotsRequest{
		ZipCode:        session.ZipCode,
		ApplianceType:  session.ApplianceType,
		TimePreference: session.TimePreference,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    session.CallID,
			"error":      err.Error(),
		}).Error("Failed to find available slots")
		return hangup(promptBookingFailed)
	}

	if len(resp.Slots) == 0 {
		return hangup(fmt.Sprintf(promptNoSlots, session.ApplianceType))
	}

	session.OfferedSlots = session.OfferedSlots[:0]
	for _, slot := range resp.Slots {
		session.OfferedSlots = append(session.OfferedSlots, entity.OfferedSlot{
			SlotID:         slot.SlotID,
			TechnicianID:   slot.TechnicianID,
			TechnicianName: slot.TechnicianName,
			StartTime:      slot.StartTime,
			EndTime:        slot.EndTime,
		})
	}

	session.Step = entity.StepChooseSlot
	return gather(slotSpeech(session.OfferedSlots))
}

func (s *callService) stepChooseSlot(ctx context.Context, session *entity.CallSession, event call.TurnEvent) *call.TurnResponse {
	choice := parseSlotChoice(event.Transcript, len(session.OfferedSlots))
	if choice < 0 {
		session.SlotChoiceAttempts++
		if session.SlotChoiceAttempts >= s.config.MaxFieldAttempts {
			return s.redirect(session)
		}
		return gather(promptSlotRetry)
	}

	slot := session.OfferedSlots[choice]
	resp, err := s.scheduling.Book(ctx, scheduling.BookingRequest{
		SlotID:         slot.SlotID,
		CallID:         session.CallID,
		CustomerPhone:  session.CustomerPhone,
		ZipCode:        session.ZipCode,
		ApplianceType:  session.ApplianceType,
		SymptomSummary: session.SymptomSummary,
		ErrorCodes:     strings.Join(session.ErrorCodes, ","),
		IsUrgent:       session.IsUrgent,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotConflict) || errors.Is(err, scheduling.ErrSlotNotFound) {
			// Someone else won the slot between offer and selection.
			// Re-query and read a fresh set.
			reoffer := s.offerSlots(ctx, session)
			reoffer.PromptText = promptSlotGone + reoffer.PromptText
			return reoffer
		}
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"call_id":    session.CallID,
			"slot_id":    slot.SlotID,
			"error":      err.Error(),
		}).Error("Failed to book appointment")
		return hangup(promptBookingFailed)
	}

	session.AppointmentBooked = true
	session.AppointmentID = resp.AppointmentID
	s.notifyBooking(session, resp)

	return hangup(bookingConfirmationPrompt(resp.TechnicianName, resp.StartTime))
}

// notifyBooking sends the confirmation message in the background. The
// booking already committed; a messaging failure only costs the text.
func (s *callService) notifyBooking(session *entity.CallSession, booking *scheduling.BookingResponse) {
	if s.whatsappClient == nil || session.CustomerPhone == "" {
		return
	}

	callID := session.CallID
	phone := session.CustomerPhone
	message := fmt.Sprintf("Your appliance service appointment is confirmed for %s at %s with technician %s. Reply to this message if you need to make changes.",
		booking.StartTime.Format("Monday, January 2"),
		formatHourForSpeech(booking.StartTime),
		booking.TechnicianName,
	)

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.whatsappClient.SendMessage(sendCtx, phone, message); err != nil {
			s.log.WithFields(logrus.Fields{
				"call_id": callID,
				"error":   err.Error(),
			}).Error("Failed to send booking confirmation message")
		}
	}()
}

func (s *callService) handleNoInput(session *entity.CallSession) *call.TurnResponse {
	// The greeting turn itself arrives empty.
	if session.Step == entity.StepGreetAskName && session.TurnSeq <= 1 {
		return gather(promptGreeting)
	}

	session.NoInputAttempts++
	if session.NoInputAttempts >= s.config.MaxNoInput {
		resp := hangup(promptNoInputGoodbye)
		s.endSession(session, resp.NextAction)
		return resp
	}
	return gather(promptNoInput)
}

func (s *callService) redirect(session *entity.CallSession) *call.TurnResponse {
	session.Step = entity.StepRedirect
	return &call.TurnResponse{
		PromptText: promptHumanHandoff,
		NextAction: call.ActionRedirect,
	}
}

func (s *callService) endSession(session *entity.CallSession, action string) {
	session.Step = entity.StepEnded
	s.log.WithFields(logrus.Fields{
		"call_id":  session.CallID,
		"action":   action,
		"resolved": session.Resolved,
		"booked":   session.AppointmentBooked,
	}).Info("Call ended")
	s.store.Drop(session.CallID)
}

func gather(prompt string) *call.TurnResponse {
	return &call.TurnResponse{PromptText: prompt, NextAction: call.ActionGather}
}

func hangup(prompt string) *call.TurnResponse {
	return &call.TurnResponse{PromptText: prompt, NextAction: call.ActionHangup}
}

// minWordsFor sets the admission threshold per step. The issue description
// is an open question and needs at least two words; names, yes/no answers,
// digit strings, and slot choices can be a single word.
func minWordsFor(step entity.Step) int {
	if step == entity.StepAskIssue {
		return 2
	}
	return 1
}

// repromptFor picks the retry wording for the step the rejected transcript
// was meant to answer.
func repromptFor(session *entity.CallSession) string {
	switch session.Step {
	case entity.StepGreetAskName:
		return promptNameRetry
	case entity.StepAskIssue:
		return promptApplianceRetry
	case entity.StepCollectEmail:
		return promptEmailRetry
	case entity.StepConfirmEmail:
		return emailConfirmPrompt(session.PendingEmail)
	case entity.StepAwaitUpload:
		return promptStillWaiting
	case entity.StepCollectZip:
		return promptZipRetry
	case entity.StepChooseSlot:
		return promptSlotRetry
	default:
		return promptDidNotCatch
	}
}

var humanMarkers = []string{"representative", "human", "real person", "agent", "speak to someone", "talk to someone", "operator"}

func wantsHuman(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, marker := range humanMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseSlotChoice maps "option two", "the first one", "2" and the like onto
// an offered-slot index. Returns -1 when nothing usable was said.
func parseSlotChoice(transcript string, offered int) int {
	lower := strings.ToLower(transcript)
	candidates := []struct {
		markers []string
		index   int
	}{
		{[]string{"1", "one", "first"}, 0},
		{[]string{"2", "two", "second"}, 1},
		{[]string{"3", "three", "third"}, 2},
	}

	for _, c := range candidates {
		if c.index >= offered {
			continue
		}
		for _, marker := range c.markers {
			if hasWord(lower, marker) {
				return c.index
			}
		}
	}
	return -1
}

// hasWord reports whether word appears as a whole token, so "no" does not
// match inside "know".
func hasWord(text, word string) bool {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if token == word {
			return true
		}
	}
	return false
}
