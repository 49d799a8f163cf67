package dialogue_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DanielDerefaka/tao-cli/pkg/adapters/classifier"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/directory"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/dialogue"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/DanielDerefaka/tao-cli/pkg/session"
	"github.com/DanielDerefaka/tao-cli/pkg/translator"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const exampleHotkey = "5F4tQyWrhfGVcNhoqeiNsR6KjD4wMZ2kfhLj4oHYuyHbZAc3"

type fakeRunner struct {
	mu     sync.Mutex
	specs  []domain.InvocationSpec
	result domain.ExecutionResult
}

func (r *fakeRunner) Run(_ context.Context, spec domain.InvocationSpec, _ ports.SecretProvider, _ time.Duration) domain.ExecutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	res := r.result
	if res.Status == "" {
		res.Status = domain.StatusSuccess
	}
	res.Command = spec.CommandLine()
	return res
}

func (r *fakeRunner) calls() []domain.InvocationSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.InvocationSpec(nil), r.specs...)
}

type recordingTranslator struct {
	inner dialogue.Translator
	mu    sync.Mutex
	slots []domain.Slots
}

func (t *recordingTranslator) Translate(ctx context.Context, intent domain.IntentTag, slots domain.Slots) (domain.InvocationSpec, error) {
	t.mu.Lock()
	t.slots = append(t.slots, slots.Clone())
	t.mu.Unlock()
	return t.inner.Translate(ctx, intent, slots)
}

type harness struct {
	engine     *dialogue.Engine
	sessions   *session.Manager
	runner     *fakeRunner
	translator *recordingTranslator
	prefs      *memory.Preferences
}

func newHarness(t *testing.T, prefs map[string]string) *harness {
	t.Helper()
	dir, err := directory.NewStatic(directory.DemoValidators)
	require.NoError(t, err)

	h := &harness{
		sessions: session.NewManager(memory.NewStore()),
		runner:   &fakeRunner{},
		translator: &recordingTranslator{
			inner: translator.New(translator.WithNetwork("test"), translator.WithDirectory(dir)),
		},
		prefs: memory.NewPreferences(prefs),
	}
	h.engine, err = dialogue.New(h.sessions, classifier.New(), h.translator, h.runner, dialogue.WithPreferences(h.prefs))
	require.NoError(t, err)
	return h
}

func (h *harness) say(t *testing.T, sessionID, utterance string) domain.Response {
	t.Helper()
	resp, err := h.engine.Process(context.Background(), sessionID, utterance)
	require.NoError(t, err)
	return resp
}

func (h *harness) pending(t *testing.T, sessionID string) *domain.PendingAction {
	t.Helper()
	s, err := h.sessions.Load(context.Background(), sessionID)
	require.NoError(t, err)
	return s.Pending
}

func TestEngine_StakeScenario(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "stake 10 TAO")
	assert.Equal(t, domain.ResponseAsk, resp.Kind)
	assert.Equal(t, domain.SlotValidator, resp.Slot)
	assert.Equal(t, domain.StateSlotFilling, resp.State)

	resp = h.say(t, "s1", "Example-Validator")
	assert.Equal(t, domain.ResponseAsk, resp.Kind)
	assert.Equal(t, domain.SlotNetuid, resp.Slot)

	resp = h.say(t, "s1", "1")
	require.Equal(t, domain.ResponseConfirm, resp.Kind)
	assert.Equal(t, domain.StateConfirming, resp.State)
	assert.Contains(t, resp.Message, "10")
	assert.Contains(t, resp.Message, "Example-Validator")
	assert.Contains(t, resp.Message, "subnet 1")
	assert.Empty(t, h.runner.calls(), "nothing runs before confirmation")

	resp = h.say(t, "s1", "yes")
	require.Equal(t, domain.ResponseDisplay, resp.Kind)
	assert.Equal(t, domain.StateIdle, resp.State)
	require.NotNil(t, resp.Result)
	assert.Equal(t, domain.StatusSuccess, resp.Result.Status)
	assert.Contains(t, resp.Suggestions, "View updated portfolio")

	want := domain.Slots{domain.SlotAmount: "10", domain.SlotValidator: "Example-Validator", domain.SlotNetuid: "1"}
	last := h.translator.slots[len(h.translator.slots)-1]
	if diff := cmp.Diff(want, last); diff != "" {
		t.Errorf("translated slots mismatch (-want +got):\n%s", diff)
	}

	calls := h.runner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{
		"stake", "add", "--hotkey-ss58", exampleHotkey, "--netuid", "1", "--amount", "10", "--network", "test", "--no-prompt",
	}, calls[0].Argv())
	assert.Nil(t, h.pending(t, "s1"))
}

func TestEngine_UnrecognizedConfirmationRepeatsPrompt(t *testing.T) {
	h := newHarness(t, nil)

	prompt := h.say(t, "s1", "stake 10 TAO to Example-Validator on subnet 1")
	require.Equal(t, domain.ResponseConfirm, prompt.Kind)

	for _, input := range []string{"maybe", "yes please", "sure?", ""} {
		resp := h.say(t, "s1", input)
		assert.Equal(t, domain.ResponseConfirm, resp.Kind, input)
		assert.Equal(t, prompt.Message, resp.Message, "prompt must repeat verbatim for %q", input)
		assert.Equal(t, domain.StateConfirming, resp.State)
	}
	assert.Empty(t, h.runner.calls())
}

func TestEngine_Cancellation(t *testing.T) {
	t.Run("From Slot Filling", func(t *testing.T) {
		h := newHarness(t, nil)
		h.say(t, "s1", "stake 10 TAO")

		resp := h.say(t, "s1", "cancel")
		assert.Equal(t, domain.StateIdle, resp.State)
		assert.Nil(t, h.pending(t, "s1"))
	})

	t.Run("From Confirming", func(t *testing.T) {
		h := newHarness(t, nil)
		h.say(t, "s1", "transfer 5 tao to 5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")

		resp := h.say(t, "s1", "No")
		assert.Equal(t, domain.StateIdle, resp.State)
		assert.Nil(t, h.pending(t, "s1"))
		assert.Empty(t, h.runner.calls())
	})

	t.Run("Nothing Pending", func(t *testing.T) {
		h := newHarness(t, nil)
		resp := h.say(t, "s1", "cancel")
		assert.Equal(t, domain.ResponseNone, resp.Kind)
	})
}

func TestEngine_ReadOnlySkipsConfirmation(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "what's my balance?")
	require.Equal(t, domain.ResponseDisplay, resp.Kind)
	assert.Equal(t, domain.StateIdle, resp.State)

	calls := h.runner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "wallet", calls[0].Group)
	assert.Equal(t, "balance", calls[0].Subcommand)
	assert.False(t, calls[0].RequiresSecret)
}

func TestEngine_AsksInCatalogOrder(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "I want to stake")
	assert.Equal(t, domain.SlotAmount, resp.Slot)

	resp = h.say(t, "s1", "all")
	assert.Equal(t, domain.SlotValidator, resp.Slot)

	p := h.pending(t, "s1")
	assert.Equal(t, domain.AmountAll, p.Slots[domain.SlotAmount])
	assert.Equal(t, []domain.SlotName{domain.SlotAmount, domain.SlotValidator}, p.Asked)
}

func TestEngine_DefaultsAreAutoFilled(t *testing.T) {
	h := newHarness(t, map[string]string{
		domain.PrefDefaultNetuid: "1",
		domain.PrefDefaultWallet: "alice",
	})

	resp := h.say(t, "s1", "stake 10 TAO to Example-Validator")
	require.Equal(t, domain.ResponseConfirm, resp.Kind)
	assert.Contains(t, resp.Message, "Wallet: alice (default)")
	assert.Contains(t, resp.Message, "on subnet 1")

	p := h.pending(t, "s1")
	assert.ElementsMatch(t, []domain.SlotName{domain.SlotNetuid, domain.SlotWallet}, p.Defaulted)
}

func TestEngine_ValidationReasksSameSlot(t *testing.T) {
	h := newHarness(t, nil)
	h.say(t, "s1", "stake 10 TAO to Example-Validator")

	resp := h.say(t, "s1", "not-a-subnet")
	assert.Equal(t, domain.ResponseAsk, resp.Kind)
	assert.Equal(t, domain.SlotNetuid, resp.Slot)
	assert.Equal(t, domain.KindValidation, resp.ErrorKind)
	assert.Contains(t, resp.Message, "doesn't look right")
	assert.Equal(t, domain.StateSlotFilling, resp.State)
}

func TestEngine_UnknownValidatorIsReasked(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "stake 10 TAO to Example-Validatr on subnet 1")
	assert.Equal(t, domain.ResponseAsk, resp.Kind)
	assert.Equal(t, domain.SlotValidator, resp.Slot)
	assert.Contains(t, resp.Message, `did you mean "Example-Validator"`)

	resp = h.say(t, "s1", "Example-Validator")
	assert.Equal(t, domain.ResponseConfirm, resp.Kind)
}

func TestEngine_SetDefault(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "my wallet is alice")
	assert.Equal(t, domain.ResponseNone, resp.Kind)

	v, ok, err := h.prefs.Get(context.Background(), domain.PrefDefaultWallet)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	resp = h.say(t, "s1", "set default subnet to banana")
	assert.Equal(t, domain.KindValidation, resp.ErrorKind)
	_, ok, _ = h.prefs.Get(context.Background(), domain.PrefDefaultNetuid)
	assert.False(t, ok)
}

func TestEngine_TimeoutSuggestsRetry(t *testing.T) {
	h := newHarness(t, nil)
	h.runner.result = domain.ExecutionResult{Status: domain.StatusTimeout, ErrorKind: domain.KindTimeout, Error: "timed out after 2m0s"}

	resp := h.say(t, "s1", "show my portfolio")
	require.Equal(t, domain.ResponseDisplay, resp.Kind)
	assert.Equal(t, domain.KindTimeout, resp.ErrorKind)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "Retry the operation", resp.Suggestions[0])
	assert.Contains(t, resp.Message, "timeout")
}

func TestEngine_AmbiguousAsksForClarification(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.say(t, "s1", "stake 10 and transfer 5")
	assert.Equal(t, domain.ResponseNone, resp.Kind)
	assert.Equal(t, domain.StateIdle, resp.State)
	assert.Nil(t, h.pending(t, "s1"))
}

func TestEngine_UtteranceWhileFillingIsSlotValue(t *testing.T) {
	h := newHarness(t, nil)
	h.say(t, "s1", "stake 10 TAO")

	// While a slot is awaited the utterance is a value, not a new intent.
	resp := h.say(t, "s1", "show my balance")
	assert.Equal(t, domain.StateSlotFilling, resp.State)
	assert.Equal(t, domain.IntentStake, h.pending(t, "s1").Intent)
	assert.Empty(t, h.runner.calls())
}

func TestEngine_SessionsAreIndependent(t *testing.T) {
	h := newHarness(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for _, u := range []string{"stake 10 TAO", "Example-Validator", "1", "yes"} {
				_, err := h.engine.Process(context.Background(), id, u)
				assert.NoError(t, err)
			}
		}(fmt.Sprintf("session-%d", i))
	}
	wg.Wait()

	assert.Len(t, h.runner.calls(), 8)
}
