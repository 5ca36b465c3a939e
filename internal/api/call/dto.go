package call

// TurnEvent is one caller turn as delivered by the telephony gateway. The
// gateway owns speech capture; we receive the finished transcript with its
// recognizer confidence.
type TurnEvent struct {
	CallID      string  `json:"call_id" validate:"required"`
	FromNumber  string  `json:"from_number"`
	Transcript  string  `json:"transcript"`
	Confidence  float64 `json:"confidence"`
	NoInput     bool    `json:"no_input"`
	IsInterrupt bool    `json:"is_interrupt"`
}

const (
	ActionGather   = "gather"
	ActionHangup   = "hangup"
	ActionRedirect = "redirect"
)

// TurnResponse tells the gateway what to say and what to do next: gather
// keeps listening, hangup ends the call, redirect transfers to a human.
type TurnResponse struct {
	PromptText string `json:"prompt_text"`
	NextAction string `json:"next_action"`
}
