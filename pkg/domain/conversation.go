package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ConversationState is the position of a session in the dialogue state machine.
type ConversationState string

const (
	StateIdle        ConversationState = "idle"
	StateSlotFilling ConversationState = "slot_filling"
	StateConfirming  ConversationState = "confirming"
	StateExecuting   ConversationState = "executing"
)

// MaxHistory bounds the number of turns kept per session.
const MaxHistory = 20

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// CheckSessionID accepts IDs that are safe as file names and redis keys.
func CheckSessionID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// PendingAction is the single in-flight action of a session.
type PendingAction struct {
	ID     string            `json:"id"`
	Intent IntentTag         `json:"intent"`
	Slots  Slots             `json:"slots"`
	State  ConversationState `json:"state"`

	// Awaiting is the slot currently requested from the user (SLOT_FILLING only).
	Awaiting SlotName `json:"awaiting,omitempty"`
	// Asked lists slots explicitly requested from the user; they are never auto-filled.
	Asked []SlotName `json:"asked,omitempty"`
	// Defaulted lists slots filled from remembered preferences.
	Defaulted []SlotName `json:"defaulted,omitempty"`
	// ConfirmPrompt is repeated verbatim on unrecognized confirmation input.
	ConfirmPrompt string `json:"confirm_prompt,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPendingAction creates a pending action in SLOT_FILLING with a copy of slots.
func NewPendingAction(id string, intent IntentTag, slots Slots) *PendingAction {
	if slots == nil {
		slots = Slots{}
	}
	return &PendingAction{
		ID:        id,
		Intent:    intent,
		Slots:     slots.Clone(),
		State:     StateSlotFilling,
		CreatedAt: time.Now().UTC(),
	}
}

// WasAsked reports whether the slot was explicitly requested.
func (p *PendingAction) WasAsked(name SlotName) bool {
	return containsSlot(p.Asked, name)
}

// WasDefaulted reports whether the slot was filled from a preference.
func (p *PendingAction) WasDefaulted(name SlotName) bool {
	return containsSlot(p.Defaulted, name)
}

// MarkAsked records that the slot is being requested from the user.
func (p *PendingAction) MarkAsked(name SlotName) {
	if !p.WasAsked(name) {
		p.Asked = append(p.Asked, name)
	}
	p.Awaiting = name
}

// MarkDefaulted records that the slot was auto-filled.
func (p *PendingAction) MarkDefaulted(name SlotName) {
	if !p.WasDefaulted(name) {
		p.Defaulted = append(p.Defaulted, name)
	}
}

func containsSlot(list []SlotName, name SlotName) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation history.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the per-conversation mutable state.
// Sessions never share data; remembered defaults live in the preferences store.
type Session struct {
	ID      string         `json:"id"`
	Pending *PendingAction `json:"pending,omitempty"`
	History []Turn         `json:"history,omitempty"`

	// LastCompleted and LastUsed are hints for suggestions only.
	LastCompleted IntentTag `json:"last_completed,omitempty"`
	LastUsed      Slots     `json:"last_used,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed holds the encrypted form of the session when written by an
	// encrypting store. A sealed session carries no other conversation data.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an idle session.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		LastUsed:  Slots{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State returns the conversation state. A session without a pending action is idle.
func (s *Session) State() ConversationState {
	if s.Pending == nil {
		return StateIdle
	}
	return s.Pending.State
}

// Reset discards the pending action.
func (s *Session) Reset() {
	s.Pending = nil
}

// AddTurn appends a turn, keeping at most MaxHistory entries.
func (s *Session) AddTurn(role Role, text string) {
	s.History = append(s.History, Turn{Role: role, Text: text, At: time.Now().UTC()})
	if over := len(s.History) - MaxHistory; over > 0 {
		s.History = append([]Turn(nil), s.History[over:]...)
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.History = append([]Turn(nil), s.History...)
	if s.LastUsed != nil {
		out.LastUsed = s.LastUsed.Clone()
	}
	if s.Pending != nil {
		p := *s.Pending
		p.Slots = s.Pending.Slots.Clone()
		p.Asked = append([]SlotName(nil), s.Pending.Asked...)
		p.Defaulted = append([]SlotName(nil), s.Pending.Defaulted...)
		out.Pending = &p
	}
	return &out
}
