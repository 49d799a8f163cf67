package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/DanielDerefaka/tao-cli/internal/logging"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/executor"
	"github.com/DanielDerefaka/tao-cli/pkg/observability"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/DanielDerefaka/tao-cli/pkg/session"
	"github.com/google/uuid"
)

// DefaultMinConfidence is the classifier confidence below which the engine asks for clarification.
const DefaultMinConfidence = 0.5

// Translator builds invocation specs for completed intents.
type Translator interface {
	Translate(ctx context.Context, intent domain.IntentTag, slots domain.Slots) (domain.InvocationSpec, error)
}

// Runner executes an invocation spec. It never returns an error; every outcome is a result.
type Runner interface {
	Run(ctx context.Context, spec domain.InvocationSpec, secrets ports.SecretProvider, timeout time.Duration) domain.ExecutionResult
}

// Engine is the slot-filling dialogue state machine.
type Engine struct {
	sessions   *session.Manager
	classifier ports.IntentClassifier
	translator Translator
	runner     Runner

	prefs         ports.PreferencesStore
	secrets       ports.SecretProvider
	metrics       *observability.Metrics
	logger        *slog.Logger
	minConfidence float64
	timeout       time.Duration
	newID         func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPreferences sets the store used for remembered defaults.
func WithPreferences(p ports.PreferencesStore) Option {
	return func(e *Engine) {
		e.prefs = p
	}
}

// WithSecrets sets the provider used when the wrapped tool asks for a password.
func WithSecrets(s ports.SecretProvider) Option {
	return func(e *Engine) {
		e.secrets = s
	}
}

// WithMetrics sets the collector for state transitions and responses.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMinConfidence sets the clarification threshold.
func WithMinConfidence(c float64) Option {
	return func(e *Engine) {
		e.minConfidence = c
	}
}

// WithTimeout sets the execution timeout. Zero uses the runner's default.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// New creates an Engine. Preferences default to an in-memory store.
func New(sessions *session.Manager, classifier ports.IntentClassifier, translator Translator, runner Runner, opts ...Option) (*Engine, error) {
	if sessions == nil || classifier == nil || translator == nil || runner == nil {
		return nil, errors.New("dialogue: sessions, classifier, translator and runner are required")
	}
	e := &Engine{
		sessions:      sessions,
		classifier:    classifier,
		translator:    translator,
		runner:        runner,
		logger:        logging.NewNop(),
		minConfidence: DefaultMinConfidence,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.prefs == nil {
		e.prefs = memory.NewPreferences(nil)
	}
	return e, nil
}

// Process handles one utterance for the session and returns the response.
// Errors are reserved for infrastructure failures such as an unavailable store;
// every conversational outcome is a Response.
func (e *Engine) Process(ctx context.Context, sessionID, utterance string) (domain.Response, error) {
	var resp domain.Response
	err := e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		from := s.State()
		r, err := e.step(ctx, s, strings.TrimSpace(utterance))
		if err != nil {
			return err
		}
		r.State = s.State()
		s.AddTurn(domain.RoleUser, utterance)
		s.AddTurn(domain.RoleAssistant, r.Message)

		e.logger.Debug("utterance processed",
			"session_id", sessionID,
			"from", from,
			"to", r.State,
			"kind", r.Kind,
		)
		resp = r
		return nil
	})
	if err != nil {
		return domain.Response{}, err
	}
	e.metrics.Response(string(resp.Kind))
	return resp, nil
}

// Reset discards any pending action of the session.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.sessions.Update(ctx, sessionID, func(ctx context.Context, s *domain.Session) error {
		e.reset(s)
		return nil
	})
}

func (e *Engine) step(ctx context.Context, s *domain.Session, text string) (domain.Response, error) {
	switch s.State() {
	case domain.StateSlotFilling:
		return e.fill(ctx, s, text)
	case domain.StateConfirming:
		return e.confirm(ctx, s, text)
	case domain.StateExecuting:
		// Only reachable if a previous turn died mid-execution; never resume it.
		e.logger.Warn("discarding stale executing action", "session_id", s.ID, "intent", s.Pending.Intent)
		e.reset(s)
	}
	return e.interpret(ctx, s, text)
}

// interpret starts a new pending action from a classified utterance.
func (e *Engine) interpret(ctx context.Context, s *domain.Session, text string) (domain.Response, error) {
	cls, err := e.classifier.Classify(ctx, text, s.History)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Response{}, ctx.Err()
		}
		e.logger.Warn("classifier failed", "session_id", s.ID, "err", err)
		return none(msgNotUnderstood), nil
	}

	switch cls.Intent {
	case domain.IntentHelp:
		return none(helpText), nil
	case domain.IntentGreeting:
		return none(msgGreeting), nil
	case domain.IntentCancel:
		return none(msgNothingPending), nil
	case domain.IntentSetDefault:
		return e.setDefault(ctx, cls.Slots)
	}

	spec, ok := domain.Lookup(cls.Intent)
	if !ok {
		if strings.Contains(text, "?") || startsWithQuestion(text) {
			return none(msgOffTopic), nil
		}
		return none(msgNotUnderstood), nil
	}

	if cls.Ambiguous || cls.Confidence < e.minConfidence {
		return e.clarify(cls), nil
	}

	slots := domain.Slots{}
	for name, raw := range cls.Slots {
		slot, ok := spec.Slot(name)
		if !ok {
			continue
		}
		v, err := slot.Validate(raw)
		if err != nil {
			// The slot will be asked for explicitly.
			e.logger.Debug("dropping invalid extracted slot", "slot", name, "err", err)
			continue
		}
		slots[name] = v
	}

	from := s.State()
	s.Pending = domain.NewPendingAction(e.newID(), cls.Intent, slots)
	e.metrics.Transition(string(from), string(domain.StateSlotFilling))
	return e.advance(ctx, s, "")
}

// fill treats text as the value of the slot being awaited.
func (e *Engine) fill(ctx context.Context, s *domain.Session, text string) (domain.Response, error) {
	if isCancel(text) {
		e.reset(s)
		return none(msgCancelled), nil
	}

	p := s.Pending
	slot, ok := domain.Catalog[p.Intent].Slot(p.Awaiting)
	if !ok {
		return e.advance(ctx, s, "")
	}

	v, err := slot.Validate(text)
	if err != nil {
		resp := e.ask(p, slot, correction(err))
		resp.ErrorKind = domain.KindValidation
		return resp, nil
	}
	p.Slots[slot.Name] = v
	p.Awaiting = ""
	return e.advance(ctx, s, "")
}

// advance asks for the first missing required slot in catalog order.
// Once every required slot is filled it moves to CONFIRMING or EXECUTING.
func (e *Engine) advance(ctx context.Context, s *domain.Session, prefix string) (domain.Response, error) {
	p := s.Pending
	spec := domain.Catalog[p.Intent]

	for _, slot := range spec.Slots {
		if p.Slots.Has(slot.Name) {
			continue
		}
		if slot.DefaultKey != "" && !p.WasAsked(slot.Name) {
			filled, err := e.applyDefault(ctx, p, slot)
			if err != nil {
				return domain.Response{}, err
			}
			if filled {
				continue
			}
		}
		if !slot.Required {
			continue
		}
		p.MarkAsked(slot.Name)
		return e.ask(p, slot, prefix), nil
	}
	p.Awaiting = ""

	if !spec.Mutating {
		return e.execute(ctx, s)
	}

	inv, err := e.translator.Translate(ctx, p.Intent, p.Slots)
	if err != nil {
		return e.translateFailure(s, err)
	}
	e.transition(s, p.State, domain.StateConfirming)
	p.ConfirmPrompt = summary(p, inv)
	return domain.Response{
		Kind:    domain.ResponseConfirm,
		Message: p.ConfirmPrompt,
		Intent:  p.Intent,
	}, nil
}

func (e *Engine) applyDefault(ctx context.Context, p *domain.PendingAction, slot domain.Slot) (bool, error) {
	raw, ok, err := e.prefs.Get(ctx, slot.DefaultKey)
	if err != nil {
		return false, fmt.Errorf("failed to read preference %s: %w", slot.DefaultKey, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	v, err := slot.Validate(raw)
	if err != nil {
		e.logger.Warn("ignoring invalid remembered default", "key", slot.DefaultKey, "err", err)
		return false, nil
	}
	p.Slots[slot.Name] = v
	p.MarkDefaulted(slot.Name)
	return true, nil
}

// confirm gates execution behind an explicit affirmative answer.
func (e *Engine) confirm(ctx context.Context, s *domain.Session, text string) (domain.Response, error) {
	p := s.Pending
	switch confirmation(text) {
	case answerAffirmative:
		return e.execute(ctx, s)
	case answerNegative:
		e.reset(s)
		return none(msgCancelled), nil
	default:
		return domain.Response{
			Kind:    domain.ResponseConfirm,
			Message: p.ConfirmPrompt,
			Intent:  p.Intent,
		}, nil
	}
}

// execute translates and runs the pending action, then returns the session to IDLE.
func (e *Engine) execute(ctx context.Context, s *domain.Session) (domain.Response, error) {
	p := s.Pending
	e.transition(s, p.State, domain.StateExecuting)

	inv, err := e.translator.Translate(ctx, p.Intent, p.Slots)
	if err != nil {
		return e.translateFailure(s, err)
	}

	e.logger.Info("executing", "session_id", s.ID, "intent", p.Intent, "command", executor.Redact(inv.CommandLine()))
	res := e.runner.Run(executor.WithSessionID(ctx, s.ID), inv, e.secrets, e.timeout)

	s.LastCompleted = p.Intent
	if s.LastUsed == nil {
		s.LastUsed = domain.Slots{}
	}
	for k, v := range p.Slots {
		s.LastUsed[k] = v
	}
	e.reset(s)

	return domain.Response{
		Kind:        domain.ResponseDisplay,
		Message:     resultMessage(res),
		Intent:      p.Intent,
		Result:      &res,
		Suggestions: suggestions(p.Intent, res),
		ErrorKind:   res.ErrorKind,
	}, nil
}

// translateFailure re-asks a slot rejected by the translator, or refuses the operation.
func (e *Engine) translateFailure(s *domain.Session, err error) (domain.Response, error) {
	p := s.Pending

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		if slot, ok := domain.Catalog[p.Intent].Slot(ve.Slot); ok {
			delete(p.Slots, slot.Name)
			e.transition(s, p.State, domain.StateSlotFilling)
			p.MarkAsked(slot.Name)
			resp := e.ask(p, slot, correction(err))
			resp.ErrorKind = domain.KindValidation
			return resp, nil
		}
	}

	e.logger.Warn("translation refused", "session_id", s.ID, "intent", p.Intent, "err", err)
	e.reset(s)
	kind := domain.KindOf(err)
	return domain.Response{
		Kind:      domain.ResponseDisplay,
		Message:   fmt.Sprintf("I can't do that [%s]: %v", kind, err),
		Intent:    p.Intent,
		ErrorKind: kind,
	}, nil
}

// setDefault writes an explicitly requested preference.
func (e *Engine) setDefault(ctx context.Context, slots domain.Slots) (domain.Response, error) {
	for _, name := range []domain.SlotName{domain.SlotWallet, domain.SlotHotkey, domain.SlotNetuid} {
		raw, ok := slots[name]
		if !ok {
			continue
		}
		key, typ := defaultFor(name)
		v, err := domain.ValidateValue(typ, raw)
		if err != nil {
			resp := none(correction(err) + " " + msgDefaultsHelp)
			resp.ErrorKind = domain.KindValidation
			return resp, nil
		}
		if err := e.prefs.Set(ctx, key, v); err != nil {
			return domain.Response{}, fmt.Errorf("failed to write preference %s: %w", key, err)
		}
		e.logger.Info("preference remembered", "key", key)
		return none(fmt.Sprintf("Got it! I'll use %s %s by default.", describeSlot(name), v)), nil
	}
	return none(msgDefaultsHelp), nil
}

func defaultFor(name domain.SlotName) (string, domain.SlotType) {
	switch name {
	case domain.SlotHotkey:
		return domain.PrefDefaultHotkey, domain.SlotTypeName
	case domain.SlotNetuid:
		return domain.PrefDefaultNetuid, domain.SlotTypeIdentifier
	default:
		return domain.PrefDefaultWallet, domain.SlotTypeName
	}
}

func describeSlot(name domain.SlotName) string {
	if name == domain.SlotNetuid {
		return "subnet"
	}
	return string(name)
}

func (e *Engine) clarify(cls ports.Classification) domain.Response {
	if len(cls.Alternatives) > 1 {
		names := make([]string, 0, len(cls.Alternatives))
		for _, alt := range cls.Alternatives {
			names = append(names, string(alt))
		}
		resp := none(fmt.Sprintf("I can only do one thing at a time. Did you mean to %s?", strings.Join(names, " or ")))
		resp.Suggestions = names
		return resp
	}
	return none(fmt.Sprintf("I'm not sure you want to %s. Could you rephrase that?", cls.Intent))
}

func (e *Engine) ask(p *domain.PendingAction, slot domain.Slot, prefix string) domain.Response {
	msg := askMessage(slot)
	if prefix != "" {
		msg = prefix + " " + msg
	}
	return domain.Response{
		Kind:     domain.ResponseAsk,
		Message:  msg,
		Intent:   p.Intent,
		Slot:     slot.Name,
		Examples: slot.Examples,
	}
}

func (e *Engine) transition(s *domain.Session, from, to domain.ConversationState) {
	if s.Pending != nil {
		s.Pending.State = to
	}
	e.metrics.Transition(string(from), string(to))
}

func (e *Engine) reset(s *domain.Session) {
	from := s.State()
	s.Reset()
	e.metrics.Transition(string(from), string(domain.StateIdle))
}

func none(msg string) domain.Response {
	return domain.Response{Kind: domain.ResponseNone, Message: msg}
}

func startsWithQuestion(text string) bool {
	t := strings.ToLower(text)
	for _, w := range []string{"what", "how", "why", "when", "where", "who"} {
		if strings.HasPrefix(t, w) {
			return true
		}
	}
	return false
}
