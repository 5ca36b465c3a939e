package callService

import (
	"VoiceAgentGolang/internal/api/call"
	"VoiceAgentGolang/internal/api/scheduling"
	"VoiceAgentGolang/internal/api/upload"
	"VoiceAgentGolang/internal/entity"
	"VoiceAgentGolang/pkg/extract"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type fakeExtractor struct {
	name        extract.Result
	appliance   extract.Result
	related     bool
	symptoms    extract.SymptomInfo
	email       extract.Result
	interp      extract.Interpretation
	wantsSched  bool
	interpCalls int
}

func (f *fakeExtractor) ExtractName(_ context.Context, _ string) extract.Result { return f.name }
func (f *fakeExtractor) ClassifyAppliance(_ context.Context, _ string) extract.Result {
	return f.appliance
}
func (f *fakeExtractor) IsApplianceRelated(_ context.Context, _ string) bool { return f.related }
func (f *fakeExtractor) ExtractSymptoms(_ context.Context, _ string) extract.SymptomInfo {
	return f.symptoms
}
func (f *fakeExtractor) ExtractEmail(_ context.Context, _ string) extract.Result { return f.email }
func (f *fakeExtractor) ExtractZip(normalized string) extract.Result {
	digits := ""
	for _, r := range normalized {
		if r >= '0' && r <= '9' {
			digits += string(r)
		}
	}
	if len(digits) < 3 || len(digits) > 5 {
		return extract.Result{Field: "zip", Source: extract.SourceNone}
	}
	if len(digits) < 5 {
		return extract.Result{Field: "zip", Value: digits, Source: extract.SourceFallback, Confidence: 0.3}
	}
	return extract.Result{Field: "zip", Value: digits, Source: extract.SourceFallback, Confidence: 1.0}
}
func (f *fakeExtractor) InterpretResponse(_ context.Context, _, _ string) extract.Interpretation {
	f.interpCalls++
	return f.interp
}
func (f *fakeExtractor) WantsScheduling(transcript string) bool {
	return f.wantsSched || strings.Contains(strings.ToLower(transcript), "technician")
}

type fakeScheduling struct {
	slots    []scheduling.SlotResponse
	bookErr  error
	booked   []scheduling.BookingRequest
	bookResp *scheduling.BookingResponse
}

func (f *fakeScheduling) FindSlots(_ context.Context, _ scheduling.FindSlotsRequest) (*scheduling.FindSlotsResponse, error) {
	return &scheduling.FindSlotsResponse{Slots: f.slots}, nil
}

func (f *fakeScheduling) Book(_ context.Context, req scheduling.BookingRequest) (*scheduling.BookingResponse, error) {
	if f.bookErr != nil {
		err := f.bookErr
		f.bookErr = nil
		return nil, err
	}
	f.booked = append(f.booked, req)
	return f.bookResp, nil
}

type fakeUpload struct {
	tokenErr   error
	created    []upload.CreateTokenRequest
	status     upload.StatusResponse
	statusErr  error
	resetCalls int
}

func (f *fakeUpload) CreateToken(_ context.Context, req upload.CreateTokenRequest) (*upload.CreateTokenResponse, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	f.created = append(f.created, req)
	return &upload.CreateTokenResponse{Token: "tok123", UploadURL: "http://localhost:3000/upload/tok123"}, nil
}

func (f *fakeUpload) HandleUpload(_ context.Context, _ upload.UploadImageRequest) (*upload.UploadImageResponse, error) {
	return nil, nil
}

func (f *fakeUpload) Status(_ context.Context, _ string) (*upload.StatusResponse, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	status := f.status
	return &status, nil
}

func (f *fakeUpload) ResetForReupload(_ context.Context, _ string) (string, error) {
	f.resetCalls++
	return "http://localhost:3000/upload/tok123", nil
}

type fakeWhatsapp struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeWhatsapp) SendMessage(_ context.Context, _, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeWhatsapp) Disconnect() error { return nil }
func (f *fakeWhatsapp) IsConnected() bool { return true }

type dialogFixture struct {
	service    *callService
	extractor  *fakeExtractor
	scheduling *fakeScheduling
	upload     *fakeUpload
	whatsapp   *fakeWhatsapp
}

func newDialogFixture(t *testing.T) *dialogFixture {
	t.Helper()

	extractor := &fakeExtractor{related: true}
	sched := &fakeScheduling{}
	up := &fakeUpload{}
	wa := &fakeWhatsapp{}

	log := logrus.New()
	svc := New(log, extractor, sched, up, wa, DialogConfig{
		MaxFieldAttempts:   3,
		MaxNoInput:         3,
		MaxUploadPolls:     18,
		SessionIdleTimeout: time.Minute,
		JanitorInterval:    time.Hour,
	}).(*callService)
	t.Cleanup(svc.Close)

	return &dialogFixture{
		service:    svc,
		extractor:  extractor,
		scheduling: sched,
		upload:     up,
		whatsapp:   wa,
	}
}

func (f *dialogFixture) turn(t *testing.T, callID, transcript string) *call.TurnResponse {
	t.Helper()
	resp, err := f.service.HandleTurn(context.Background(), call.TurnEvent{
		CallID:     callID,
		FromNumber: "15551234",
		Transcript: transcript,
		Confidence: 0.9,
		NoInput:    transcript == "",
	})
	if err != nil {
		t.Fatalf("turn %q failed: %v", transcript, err)
	}
	return resp
}

func (f *dialogFixture) session(t *testing.T, callID string) *entity.CallSession {
	t.Helper()
	f.service.store.mu.Lock()
	defer f.service.store.mu.Unlock()
	entry, ok := f.service.store.sessions[callID]
	if !ok {
		t.Fatalf("no session for %s", callID)
	}
	return entry.session
}

// advanceToCheck walks a fresh call through greeting and issue capture so a
// test can start at the first self-service check.
func (f *dialogFixture) advanceToCheck(t *testing.T, callID string) {
	t.Helper()
	f.extractor.name = extract.Result{Field: "name", Value: "Maria", Source: extract.SourceOracle, Confidence: 0.9}
	f.extractor.appliance = extract.Result{Field: "appliance", Value: "refrigerator", Source: extract.SourceOracle, Confidence: 0.9}
	f.extractor.symptoms = extract.SymptomInfo{Summary: "fridge not cooling", Source: extract.SourceOracle}

	f.turn(t, callID, "")
	f.turn(t, callID, "Maria")
	f.turn(t, callID, "my refrigerator is not cooling")
}

func TestGreetingOnFirstTurn(t *testing.T) {
	f := newDialogFixture(t)

	resp := f.turn(t, "c1", "")
	if resp.NextAction != call.ActionGather {
		t.Fatalf("expected gather, got %s", resp.NextAction)
	}
	if !strings.Contains(resp.PromptText, "first name") {
		t.Errorf("expected greeting asking for a name, got %q", resp.PromptText)
	}
}

func TestNameCapturedThenIssueAsked(t *testing.T) {
	f := newDialogFixture(t)
	f.extractor.name = extract.Result{Field: "name", Value: "Maria", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "")
	resp := f.turn(t, "c1", "Maria")

	if !strings.Contains(resp.PromptText, "Maria") {
		t.Errorf("expected the caller's name in the prompt, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepAskIssue {
		t.Errorf("expected ask_issue, got %s", got)
	}
}

func TestNameFailuresFallBackToAnonymous(t *testing.T) {
	f := newDialogFixture(t)
	f.extractor.name = extract.Result{Field: "name", Source: extract.SourceNone}

	f.turn(t, "c1", "")
	f.turn(t, "c1", "mumble")
	f.turn(t, "c1", "mumble")
	resp := f.turn(t, "c1", "mumble")

	if !strings.Contains(resp.PromptText, "skip the name") {
		t.Errorf("expected anonymous fallback, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepAskIssue {
		t.Errorf("expected ask_issue after name budget, got %s", got)
	}
}

func TestLowConfidenceNoiseLeavesStateUntouched(t *testing.T) {
	f := newDialogFixture(t)
	f.extractor.name = extract.Result{Field: "name", Value: "Uh", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "")
	resp, err := f.service.HandleTurn(context.Background(), call.TurnEvent{
		CallID:     "c1",
		FromNumber: "15551234",
		Transcript: "uh",
		Confidence: 0.2,
	})
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if !strings.Contains(resp.PromptText, "catch your name") {
		t.Errorf("expected a name retry, got %q", resp.PromptText)
	}
	session := f.session(t, "c1")
	if session.Step != entity.StepGreetAskName {
		t.Errorf("expected to stay at greet_ask_name, got %s", session.Step)
	}
	if session.CustomerName != "" {
		t.Errorf("expected no name captured from noise, got %q", session.CustomerName)
	}
	if session.NameAttempts != 0 {
		t.Errorf("expected no attempt consumed for noise, got %d", session.NameAttempts)
	}
}

func TestFillerIssueRepromptsWithoutCharge(t *testing.T) {
	f := newDialogFixture(t)
	f.extractor.name = extract.Result{Field: "name", Value: "Maria", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "")
	f.turn(t, "c1", "Maria")
	resp := f.turn(t, "c1", "um")

	if !strings.Contains(resp.PromptText, "didn't catch what appliance") {
		t.Errorf("expected an appliance retry, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").ApplianceAttempts; got != 0 {
		t.Errorf("expected no attempt consumed for filler, got %d", got)
	}
}

func TestOffTopicThreeStrikesRedirects(t *testing.T) {
	f := newDialogFixture(t)
	f.extractor.name = extract.Result{Field: "name", Value: "Maria", Source: extract.SourceOracle, Confidence: 0.9}
	f.extractor.related = false

	f.turn(t, "c1", "")
	f.turn(t, "c1", "Maria")
	f.turn(t, "c1", "tell me a joke")
	f.turn(t, "c1", "what about stocks")
	resp := f.turn(t, "c1", "who won the game")

	if resp.NextAction != call.ActionRedirect {
		t.Fatalf("expected redirect after three off-topic turns, got %s", resp.NextAction)
	}
}

func TestIssueCapturedStartsBasicCheck(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")

	session := f.session(t, "c1")
	if session.Step != entity.StepBasicCheck {
		t.Fatalf("expected basic_check, got %s", session.Step)
	}
	if session.ApplianceType != "refrigerator" {
		t.Errorf("expected appliance captured, got %q", session.ApplianceType)
	}
	if session.SymptomSummary != "fridge not cooling" {
		t.Errorf("expected symptom summary captured, got %q", session.SymptomSummary)
	}
}

func TestResolvedCheckEndsCall(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")
	f.extractor.interp = extract.Interpretation{IsResolved: true, Confidence: 0.9}

	resp := f.turn(t, "c1", "yes that fixed it")
	if resp.NextAction != call.ActionHangup {
		t.Fatalf("expected hangup on resolution, got %s", resp.NextAction)
	}
	if !strings.Contains(resp.PromptText, "glad") {
		t.Errorf("expected a goodbye, got %q", resp.PromptText)
	}
}

func TestChecksExhaustedEscalateToEmail(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")
	f.extractor.interp = extract.Interpretation{IsResolved: false, Confidence: 0.9}

	// Two basic checks, then two advanced checks, all unresolved.
	f.turn(t, "c1", "no still broken")
	resp := f.turn(t, "c1", "no still broken")
	if got := f.session(t, "c1").Step; got != entity.StepAdvancedCheck {
		t.Fatalf("expected advanced_check after basic round, got %s", got)
	}
	resp = f.turn(t, "c1", "no still broken")
	resp = f.turn(t, "c1", "no still broken")

	if !strings.Contains(resp.PromptText, "email") {
		t.Errorf("expected email request after all checks, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectEmail {
		t.Errorf("expected collect_email, got %s", got)
	}
}

func TestSchedulingShortcutFromCheck(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")

	resp := f.turn(t, "c1", "just send a technician please")
	if !strings.Contains(resp.PromptText, "ZIP") {
		t.Errorf("expected ZIP question, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectZip {
		t.Errorf("expected collect_zip, got %s", got)
	}
}

func advanceToEmail(t *testing.T, f *dialogFixture, callID string) {
	t.Helper()
	f.advanceToCheck(t, callID)
	f.extractor.interp = extract.Interpretation{IsResolved: false}
	f.turn(t, callID, "no")
	f.turn(t, callID, "no")
	f.turn(t, callID, "no")
	f.turn(t, callID, "no")
}

func TestEmailConfirmedSendsUploadLink(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}

	resp := f.turn(t, "c1", "maria at example dot com")
	if !strings.Contains(resp.PromptText, "at example dot com") {
		t.Errorf("expected the address read back for confirmation, got %q", resp.PromptText)
	}

	resp = f.turn(t, "c1", "yes")
	if !strings.Contains(resp.PromptText, "upload link") {
		t.Errorf("expected upload link confirmation, got %q", resp.PromptText)
	}

	if len(f.upload.created) != 1 {
		t.Fatalf("expected one token created, got %d", len(f.upload.created))
	}
	if f.upload.created[0].Email != "maria@example.com" {
		t.Errorf("expected confirmed email on token request, got %q", f.upload.created[0].Email)
	}
	if got := f.session(t, "c1").Step; got != entity.StepAwaitUpload {
		t.Errorf("expected await_upload, got %s", got)
	}
}

func TestEmailRejectedRestartsCollection(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "maria at example dot com")
	f.turn(t, "c1", "no that's wrong")

	if got := f.session(t, "c1").Step; got != entity.StepCollectEmail {
		t.Errorf("expected collect_email after rejection, got %s", got)
	}
	if len(f.upload.created) != 0 {
		t.Error("expected no token for a rejected email")
	}
}

func TestRepeatedEmailDeclinesSkipToScheduling(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}

	// Each read-back the caller declines consumes a confirmation attempt,
	// so the collect-confirm loop cannot run forever.
	f.turn(t, "c1", "maria at example dot com")
	f.turn(t, "c1", "no")
	f.turn(t, "c1", "maria at example dot com")
	f.turn(t, "c1", "no")
	f.turn(t, "c1", "maria at example dot com")
	resp := f.turn(t, "c1", "no")

	if !strings.Contains(resp.PromptText, "ZIP") {
		t.Errorf("expected skip to scheduling after repeated declines, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectZip {
		t.Errorf("expected collect_zip, got %s", got)
	}
	if len(f.upload.created) != 0 {
		t.Error("expected no token for a never-confirmed email")
	}
}

func TestLowConfidenceYesDoesNotConfirmEmail(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "maria at example dot com")
	resp, err := f.service.HandleTurn(context.Background(), call.TurnEvent{
		CallID:     "c1",
		FromNumber: "15551234",
		Transcript: "yes",
		Confidence: 0.2,
	})
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}

	if !strings.Contains(resp.PromptText, "Is that correct") {
		t.Errorf("expected the read-back repeated, got %q", resp.PromptText)
	}
	if len(f.upload.created) != 0 {
		t.Error("expected no token created from a noise confirmation")
	}
	session := f.session(t, "c1")
	if session.Step != entity.StepConfirmEmail {
		t.Errorf("expected to stay at confirm_email, got %s", session.Step)
	}
	if session.EmailConfirmAttempts != 0 {
		t.Errorf("expected no attempt consumed for noise, got %d", session.EmailConfirmAttempts)
	}
}

func TestEmailFailuresSkipToScheduling(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Source: extract.SourceNone}

	f.turn(t, "c1", "mumble")
	f.turn(t, "c1", "mumble")
	resp := f.turn(t, "c1", "mumble")

	if !strings.Contains(resp.PromptText, "ZIP") {
		t.Errorf("expected skip to scheduling, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectZip {
		t.Errorf("expected collect_zip, got %s", got)
	}
}

func TestEmailConfirmFailuresSkipToScheduling(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}

	f.turn(t, "c1", "maria at example dot com")
	f.turn(t, "c1", "mumble")
	f.turn(t, "c1", "mumble")
	resp := f.turn(t, "c1", "mumble")

	if !strings.Contains(resp.PromptText, "ZIP") {
		t.Errorf("expected skip to scheduling after confirm budget, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectZip {
		t.Errorf("expected collect_zip, got %s", got)
	}
}

func TestRetryBudgetsAreIndependent(t *testing.T) {
	f := newDialogFixture(t)
	advanceToEmail(t, f, "c1")
	f.extractor.email = extract.Result{Field: "email", Source: extract.SourceNone}

	// Burn the whole email budget.
	f.turn(t, "c1", "mumble")
	f.turn(t, "c1", "mumble")
	f.turn(t, "c1", "mumble")

	session := f.session(t, "c1")
	if session.EmailAttempts != 3 {
		t.Fatalf("expected email budget exhausted, got %d", session.EmailAttempts)
	}
	if session.ZipAttempts != 0 {
		t.Fatalf("expected a fresh ZIP budget, got %d", session.ZipAttempts)
	}

	// The ZIP field still gets its own three attempts.
	f.turn(t, "c1", "606")
	f.turn(t, "c1", "9021")
	resp := f.turn(t, "c1", "123 4")

	if resp.NextAction != call.ActionRedirect {
		t.Fatalf("expected redirect only after three ZIP failures, got %s", resp.NextAction)
	}
}

func advanceToAwaitUpload(t *testing.T, f *dialogFixture, callID string) {
	t.Helper()
	advanceToEmail(t, f, callID)
	f.extractor.email = extract.Result{Field: "email", Value: "maria@example.com", Source: extract.SourceOracle, Confidence: 0.9}
	f.turn(t, callID, "maria at example dot com")
	f.turn(t, callID, "yes")
}

func TestAwaitUploadPollsUntilReady(t *testing.T) {
	f := newDialogFixture(t)
	advanceToAwaitUpload(t, f, "c1")
	f.upload.status = upload.StatusResponse{TokenExists: true}

	resp := f.turn(t, "c1", "checking now")
	if !strings.Contains(resp.PromptText, "don't see the photo yet") {
		t.Errorf("expected waiting prompt, got %q", resp.PromptText)
	}

	isAppliance := true
	f.upload.status = upload.StatusResponse{
		TokenExists:      true,
		ImageUploaded:    true,
		AnalysisReady:    true,
		AnalysisSummary:  "the compressor fan is blocked by ice",
		Troubleshooting:  "unplug the unit and let the ice melt for two hours",
		IsApplianceImage: &isAppliance,
	}

	resp = f.turn(t, "c1", "done")
	if !strings.Contains(resp.PromptText, "compressor fan") {
		t.Errorf("expected analysis spoken, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepVisualGuidance {
		t.Errorf("expected visual_guidance, got %s", got)
	}
}

func TestAwaitUploadOffersOneReupload(t *testing.T) {
	f := newDialogFixture(t)
	advanceToAwaitUpload(t, f, "c1")

	notAppliance := false
	f.upload.status = upload.StatusResponse{
		TokenExists:      true,
		ImageUploaded:    true,
		AnalysisReady:    true,
		AnalysisSummary:  "this appears to be a cat",
		IsApplianceImage: &notAppliance,
	}

	resp := f.turn(t, "c1", "done")
	if !strings.Contains(resp.PromptText, "doesn't seem to show the appliance") {
		t.Errorf("expected reupload offer, got %q", resp.PromptText)
	}
	if f.upload.resetCalls != 1 {
		t.Fatalf("expected one reset, got %d", f.upload.resetCalls)
	}

	// Second bad photo is not offered another retry; the analysis is
	// spoken as-is and the flow moves on.
	resp = f.turn(t, "c1", "done")
	if f.upload.resetCalls != 1 {
		t.Errorf("expected no second reset, got %d", f.upload.resetCalls)
	}
	if got := f.session(t, "c1").Step; got != entity.StepVisualGuidance {
		t.Errorf("expected visual_guidance, got %s", got)
	}
	_ = resp
}

func TestAwaitUploadSkipGoesToScheduling(t *testing.T) {
	f := newDialogFixture(t)
	advanceToAwaitUpload(t, f, "c1")

	resp := f.turn(t, "c1", "skip")
	if !strings.Contains(resp.PromptText, "ZIP") {
		t.Errorf("expected ZIP question, got %q", resp.PromptText)
	}
}

func TestAwaitUploadPollBudgetExhausted(t *testing.T) {
	f := newDialogFixture(t)
	advanceToAwaitUpload(t, f, "c1")
	f.upload.status = upload.StatusResponse{TokenExists: true}
	f.service.config.MaxUploadPolls = 2

	f.turn(t, "c1", "hold on")
	f.turn(t, "c1", "almost")
	resp := f.turn(t, "c1", "still going")

	if !strings.Contains(resp.PromptText, "waiting a while") {
		t.Errorf("expected timeout prompt, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectZip {
		t.Errorf("expected collect_zip after poll budget, got %s", got)
	}
}

func advanceToZip(t *testing.T, f *dialogFixture, callID string) {
	t.Helper()
	f.advanceToCheck(t, callID)
	f.turn(t, callID, "just send a technician please")
}

func TestZipPartialConsumesAttempt(t *testing.T) {
	f := newDialogFixture(t)
	advanceToZip(t, f, "c1")

	// Too few digits heard does not charge the caller.
	f.turn(t, "c1", "uh")
	if got := f.session(t, "c1").ZipAttempts; got != 0 {
		t.Errorf("expected no attempt consumed for unusable audio, got %d", got)
	}

	f.turn(t, "c1", "606")
	if got := f.session(t, "c1").ZipAttempts; got != 1 {
		t.Errorf("expected partial ZIP to consume an attempt, got %d", got)
	}

	resp := f.turn(t, "c1", "60601")
	if !strings.Contains(resp.PromptText, "6 0 6 0 1") {
		t.Errorf("expected ZIP read back, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").Step; got != entity.StepCollectTimePref {
		t.Errorf("expected collect_time_pref, got %s", got)
	}
}

func TestZipFailuresRedirect(t *testing.T) {
	f := newDialogFixture(t)
	advanceToZip(t, f, "c1")

	f.turn(t, "c1", "606")
	f.turn(t, "c1", "123 4")
	resp := f.turn(t, "c1", "9021")

	if resp.NextAction != call.ActionRedirect {
		t.Fatalf("expected redirect after ZIP budget, got %s", resp.NextAction)
	}
}

func offeredSlots() []scheduling.SlotResponse {
	base := time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	return []scheduling.SlotResponse{
		{SlotID: 11, TechnicianID: 1, TechnicianName: "Alex Martinez", StartTime: base, EndTime: base.Add(3 * time.Hour)},
		{SlotID: 12, TechnicianID: 2, TechnicianName: "Sarah Johnson", StartTime: base.Add(4 * time.Hour), EndTime: base.Add(7 * time.Hour)},
		{SlotID: 13, TechnicianID: 1, TechnicianName: "Alex Martinez", StartTime: base.Add(24 * time.Hour), EndTime: base.Add(27 * time.Hour)},
	}
}

func advanceToSlotChoice(t *testing.T, f *dialogFixture, callID string) {
	t.Helper()
	f.scheduling.slots = offeredSlots()
	advanceToZip(t, f, callID)
	f.turn(t, callID, "60601")
	f.turn(t, callID, "morning please")
}

func TestSlotsOfferedAfterTimePreference(t *testing.T) {
	f := newDialogFixture(t)
	f.scheduling.slots = offeredSlots()
	advanceToZip(t, f, "c1")
	f.turn(t, "c1", "60601")

	resp := f.turn(t, "c1", "morning please")
	if !strings.Contains(resp.PromptText, "Option 1") || !strings.Contains(resp.PromptText, "Option 3") {
		t.Errorf("expected three options read out, got %q", resp.PromptText)
	}
	if !strings.Contains(resp.PromptText, "Alex Martinez") {
		t.Errorf("expected technician names, got %q", resp.PromptText)
	}
	if got := f.session(t, "c1").TimePreference; got != "morning" {
		t.Errorf("expected morning preference, got %q", got)
	}
}

func TestNoSlotsEndsCall(t *testing.T) {
	f := newDialogFixture(t)
	advanceToZip(t, f, "c1")
	f.turn(t, "c1", "60601")

	resp := f.turn(t, "c1", "afternoon")
	if resp.NextAction != call.ActionHangup {
		t.Fatalf("expected hangup when no slots exist, got %s", resp.NextAction)
	}
	if !strings.Contains(resp.PromptText, "refrigerator") {
		t.Errorf("expected appliance named in apology, got %q", resp.PromptText)
	}
}

func TestSlotChoiceBooksAndConfirms(t *testing.T) {
	f := newDialogFixture(t)
	start := time.Date(2026, 9, 3, 13, 0, 0, 0, time.UTC)
	f.scheduling.bookResp = &scheduling.BookingResponse{
		AppointmentID:  77,
		TechnicianName: "Sarah Johnson",
		StartTime:      start,
		EndTime:        start.Add(3 * time.Hour),
	}
	advanceToSlotChoice(t, f, "c1")

	resp := f.turn(t, "c1", "option two")
	if resp.NextAction != call.ActionHangup {
		t.Fatalf("expected hangup after booking, got %s", resp.NextAction)
	}
	if !strings.Contains(resp.PromptText, "Sarah Johnson") || !strings.Contains(resp.PromptText, "1 PM") {
		t.Errorf("expected confirmation details, got %q", resp.PromptText)
	}

	if len(f.scheduling.booked) != 1 {
		t.Fatalf("expected one booking, got %d", len(f.scheduling.booked))
	}
	booked := f.scheduling.booked[0]
	if booked.SlotID != 12 {
		t.Errorf("expected slot 12 for option two, got %d", booked.SlotID)
	}
	if booked.ZipCode != "60601" || booked.ApplianceType != "refrigerator" {
		t.Errorf("expected captured fields on booking, got %+v", booked)
	}
}

func TestSlotConflictReoffers(t *testing.T) {
	f := newDialogFixture(t)
	f.scheduling.bookErr = scheduling.ErrSlotConflict
	start := time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	f.scheduling.bookResp = &scheduling.BookingResponse{
		AppointmentID:  78,
		TechnicianName: "Alex Martinez",
		StartTime:      start,
		EndTime:        start.Add(3 * time.Hour),
	}
	advanceToSlotChoice(t, f, "c1")

	resp := f.turn(t, "c1", "option one")
	if resp.NextAction != call.ActionGather {
		t.Fatalf("expected a fresh offer after conflict, got %s", resp.NextAction)
	}
	if !strings.Contains(resp.PromptText, "just taken") {
		t.Errorf("expected conflict apology, got %q", resp.PromptText)
	}

	resp = f.turn(t, "c1", "option one")
	if resp.NextAction != call.ActionHangup {
		t.Fatalf("expected booking to succeed on retry, got %s", resp.NextAction)
	}
}

func TestBadSlotChoicesRedirect(t *testing.T) {
	f := newDialogFixture(t)
	advanceToSlotChoice(t, f, "c1")

	f.turn(t, "c1", "the purple slot")
	f.turn(t, "c1", "whichever")
	resp := f.turn(t, "c1", "give me the late slot")

	if resp.NextAction != call.ActionRedirect {
		t.Fatalf("expected redirect after selection budget, got %s", resp.NextAction)
	}
}

func TestHumanRequestRedirectsFromAnyStep(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")

	resp := f.turn(t, "c1", "I want to talk to a representative")
	if resp.NextAction != call.ActionRedirect {
		t.Fatalf("expected redirect on human request, got %s", resp.NextAction)
	}
}

func TestNoInputBudget(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")

	f.turn(t, "c1", "")
	f.turn(t, "c1", "")
	resp := f.turn(t, "c1", "")

	if resp.NextAction != call.ActionHangup {
		t.Fatalf("expected hangup after silence budget, got %s", resp.NextAction)
	}
}

func TestNoInputCounterResetsOnSpeech(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")
	f.extractor.interp = extract.Interpretation{IsResolved: false}

	f.turn(t, "c1", "")
	f.turn(t, "c1", "")
	f.turn(t, "c1", "no, still broken")
	f.turn(t, "c1", "")
	resp := f.turn(t, "c1", "")

	if resp.NextAction != call.ActionGather {
		t.Fatalf("expected the silence budget to reset after speech, got %s", resp.NextAction)
	}
}

func TestEndedCallRejectsFurtherTurns(t *testing.T) {
	f := newDialogFixture(t)
	f.advanceToCheck(t, "c1")
	f.extractor.interp = extract.Interpretation{IsResolved: true}

	f.turn(t, "c1", "all fixed, thanks")

	// The session was dropped at hangup; a stray late turn starts a fresh
	// session rather than erroring.
	resp := f.turn(t, "c1", "")
	if !strings.Contains(resp.PromptText, "first name") {
		t.Errorf("expected a fresh greeting on a recycled call ID, got %q", resp.PromptText)
	}
}

func TestBookingSendsConfirmationMessage(t *testing.T) {
	f := newDialogFixture(t)
	start := time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC)
	f.scheduling.bookResp = &scheduling.BookingResponse{
		AppointmentID:  79,
		TechnicianName: "Alex Martinez",
		StartTime:      start,
		EndTime:        start.Add(3 * time.Hour),
	}
	advanceToSlotChoice(t, f, "c1")

	f.turn(t, "c1", "one")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.whatsapp.mu.Lock()
		n := len(f.whatsapp.messages)
		f.whatsapp.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	f.whatsapp.mu.Lock()
	defer f.whatsapp.mu.Unlock()
	if len(f.whatsapp.messages) != 1 {
		t.Fatalf("expected one confirmation message, got %d", len(f.whatsapp.messages))
	}
	if !strings.Contains(f.whatsapp.messages[0], "Alex Martinez") {
		t.Errorf("expected technician in message, got %q", f.whatsapp.messages[0])
	}
}
