package entity

import (
	"time"
)

// Tier is the escalation depth the dialog is currently working at.
type Tier uint8

const (
	TierGreeting Tier = iota
	Tier1Basic
	Tier2Advanced
	Tier3Visual
	Tier4Scheduling
	TierRedirect
	TierEnded
)

var TierMap = map[Tier]string{
	TierGreeting:    "greeting",
	Tier1Basic:      "tier1_basic",
	Tier2Advanced:   "tier2_advanced",
	Tier3Visual:     "tier3_visual",
	Tier4Scheduling: "tier4_scheduling",
	TierRedirect:    "redirect",
	TierEnded:       "ended",
}

func (t Tier) String() string {
	return TierMap[t]
}

// Step is the fine-grained dialog position inside a tier. The state machine
// dispatches on Step with an exhaustive switch; every Step belongs to exactly
// one Tier.
type Step uint8

const (
	StepGreetAskName Step = iota
	StepAskIssue
	StepBasicCheck
	StepAdvancedCheck
	StepCollectEmail
	StepConfirmEmail
	StepAwaitUpload
	StepVisualGuidance
	StepCollectZip
	StepCollectTimePref
	StepChooseSlot
	StepRedirect
	StepEnded
)

var stepTierMap = map[Step]Tier{
	StepGreetAskName:    TierGreeting,
	StepAskIssue:        TierGreeting,
	StepBasicCheck:      Tier1Basic,
	StepAdvancedCheck:   Tier2Advanced,
	StepCollectEmail:    Tier3Visual,
	StepConfirmEmail:    Tier3Visual,
	StepAwaitUpload:     Tier3Visual,
	StepVisualGuidance:  Tier3Visual,
	StepCollectZip:      Tier4Scheduling,
	StepCollectTimePref: Tier4Scheduling,
	StepChooseSlot:      Tier4Scheduling,
	StepRedirect:        TierRedirect,
	StepEnded:           TierEnded,
}

func (s Step) Tier() Tier {
	return stepTierMap[s]
}

var stepNameMap = map[Step]string{
	StepGreetAskName:    "greet_ask_name",
	StepAskIssue:        "ask_issue",
	StepBasicCheck:      "basic_check",
	StepAdvancedCheck:   "advanced_check",
	StepCollectEmail:    "collect_email",
	StepConfirmEmail:    "confirm_email",
	StepAwaitUpload:     "await_upload",
	StepVisualGuidance:  "visual_guidance",
	StepCollectZip:      "collect_zip",
	StepCollectTimePref: "collect_time_pref",
	StepChooseSlot:      "choose_slot",
	StepRedirect:        "redirect",
	StepEnded:           "ended",
}

func (s Step) String() string {
	return stepNameMap[s]
}

// OfferedSlot is the snapshot of a slot offer spoken to the caller, kept on
// the session so a later "option two" can be resolved.
type OfferedSlot struct {
	SlotID         int64     `json:"slot_id"`
	TechnicianID   int64     `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

// CallSession is the per-call dialog state. It is owned by the call service's
// session store and mutated only there, one turn at a time.
type CallSession struct {
	ID     string `json:"id"`
	CallID string `json:"call_id"`

	Step    Step  `json:"step"`
	TurnSeq int64 `json:"turn_seq"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	ApplianceType string `json:"appliance_type"`

	Symptoms       string   `json:"symptoms"`
	SymptomSummary string   `json:"symptom_summary"`
	ErrorCodes     []string `json:"error_codes"`
	IsUrgent       bool     `json:"is_urgent"`

	CustomerEmail string `json:"customer_email"`
	PendingEmail  string `json:"pending_email"`

	ZipCode        string        `json:"zip_code"`
	TimePreference string        `json:"time_preference"`
	OfferedSlots   []OfferedSlot `json:"offered_slots"`

	TroubleshootStep int  `json:"troubleshoot_step"`
	Resolved         bool `json:"resolved"`

	AppointmentBooked bool   `json:"appointment_booked"`
	AppointmentID     int64  `json:"appointment_id"`
	UploadToken       string `json:"upload_token"`
	UploadEmailSent   bool   `json:"upload_email_sent"`
	AnalysisSpoken    bool   `json:"analysis_spoken"`
	ReuploadOffered   bool   `json:"reupload_offered"`

	// Retry counters. Each field keeps its own budget; they never feed into
	// one another.
	NoInputAttempts      int `json:"no_input_attempts"`
	NameAttempts         int `json:"name_attempts"`
	ApplianceAttempts    int `json:"appliance_attempts"`
	EmailAttempts        int `json:"email_attempts"`
	EmailConfirmAttempts int `json:"email_confirm_attempts"`
	ZipAttempts          int `json:"zip_attempts"`
	SlotChoiceAttempts   int `json:"slot_choice_attempts"`
	UploadPollCount      int `json:"upload_poll_count"`

	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}
