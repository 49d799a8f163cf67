package domain

// ResponseKind tells the presentation layer what to do with a Response.
type ResponseKind string

const (
	ResponseAsk     ResponseKind = "ask"
	ResponseConfirm ResponseKind = "confirm"
	ResponseDisplay ResponseKind = "display"
	// ResponseNone carries informational text only (help, greetings, clarifications).
	ResponseNone ResponseKind = "none"
)

// Response is the result of processing one utterance.
type Response struct {
	Kind        ResponseKind      `json:"kind"`
	Message     string            `json:"message"`
	Intent      IntentTag         `json:"intent,omitempty"`
	Slot        SlotName          `json:"slot,omitempty"`
	Examples    []string          `json:"examples,omitempty"`
	Result      *ExecutionResult  `json:"result,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
	ErrorKind   ErrorKind         `json:"error_kind,omitempty"`
	State       ConversationState `json:"state"`
}
