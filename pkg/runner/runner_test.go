package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scriptedEngine answers each utterance with the next queued response.
type scriptedEngine struct {
	mu         sync.Mutex
	responses  []domain.Response
	errs       []error
	utterances []string
	resets     int
}

func (e *scriptedEngine) Process(_ context.Context, _ string, utterance string) (domain.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.utterances = append(e.utterances, utterance)
	var err error
	if len(e.errs) > 0 {
		err, e.errs = e.errs[0], e.errs[1:]
	}
	if err != nil {
		return domain.Response{}, err
	}
	if len(e.responses) == 0 {
		return domain.Response{Kind: domain.ResponseNone, Message: "ok"}, nil
	}
	resp := e.responses[0]
	e.responses = e.responses[1:]
	return resp, nil
}

func (e *scriptedEngine) Reset(context.Context, string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resets++
	return nil
}

func confirmResp() domain.Response {
	return domain.Response{Kind: domain.ResponseConfirm, Message: "Here's what I'll do:\nProceed? (yes/no)"}
}

func TestRunner_Run_BasicFlow(t *testing.T) {
	engine := &scriptedEngine{responses: []domain.Response{
		{Kind: domain.ResponseAsk, Message: "How much TAO would you like to stake?"},
		{Kind: domain.ResponseDisplay, Message: "Done.", Suggestions: []string{"Check your portfolio"}},
	}}
	in := strings.NewReader("stake on subnet 1\n\n10\nexit\n")
	out := &bytes.Buffer{}

	r := NewRunner(WithInputHandler(NewTextHandler(in, out)), WithBanner("taox ready"))
	require.NoError(t, r.Run(t.Context(), engine, "s-1"))

	assert.Equal(t, []string{"stake on subnet 1", "10"}, engine.utterances)
	text := out.String()
	assert.Contains(t, text, "[taox] taox ready")
	assert.Contains(t, text, "How much TAO would you like to stake?")
	assert.Contains(t, text, "- Check your portfolio")
}

func TestRunner_Run_EOFEndsSession(t *testing.T) {
	engine := &scriptedEngine{}
	r := NewRunner(WithInputHandler(NewTextHandler(strings.NewReader("balance"), io.Discard)))

	require.NoError(t, r.Run(t.Context(), engine, "s-1"))
	assert.Equal(t, []string{"balance"}, engine.utterances, "a final line without newline is still processed")
}

func TestRunner_Run_EngineErrorKeepsLoop(t *testing.T) {
	engine := &scriptedEngine{errs: []error{errors.New("store unavailable")}}
	out := &bytes.Buffer{}
	r := NewRunner(WithInputHandler(NewTextHandler(strings.NewReader("balance\nbalance\n"), out)))

	require.NoError(t, r.Run(t.Context(), engine, "s-1"))
	assert.Len(t, engine.utterances, 2)
	assert.Contains(t, out.String(), "Something went wrong: store unavailable")
}

func TestRunner_Run_ParentCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(t.Context())
	r := NewRunner(WithInputHandler(NewTextHandler(pr, io.Discard)))

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, &scriptedEngine{}, "s-1") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}

func TestRunner_Exec(t *testing.T) {
	t.Run("Auto Approve", func(t *testing.T) {
		engine := &scriptedEngine{responses: []domain.Response{
			confirmResp(),
			{Kind: domain.ResponseDisplay, Message: "Done."},
		}}
		r := NewRunner(WithConfirmPolicy(AutoApprove()))

		resp, err := r.Exec(t.Context(), engine, "s-1", "stake 10 to Example-Validator on subnet 1")
		require.NoError(t, err)
		assert.Equal(t, domain.ResponseDisplay, resp.Kind)
		assert.Equal(t, []string{"stake 10 to Example-Validator on subnet 1", "yes"}, engine.utterances)
	})

	t.Run("Auto Deny", func(t *testing.T) {
		engine := &scriptedEngine{responses: []domain.Response{
			confirmResp(),
			{Kind: domain.ResponseNone, Message: "Cancelled."},
		}}
		r := NewRunner(WithConfirmPolicy(AutoDeny()))

		resp, err := r.Exec(t.Context(), engine, "s-1", "unstake all from subnet 1")
		require.NoError(t, err)
		assert.Equal(t, "Cancelled.", resp.Message)
		assert.Equal(t, "no", engine.utterances[1])
	})

	t.Run("Missing Information", func(t *testing.T) {
		engine := &scriptedEngine{responses: []domain.Response{
			{Kind: domain.ResponseAsk, Message: "Which subnet?"},
		}}
		r := NewRunner(WithConfirmPolicy(AutoApprove()))

		_, err := r.Exec(t.Context(), engine, "s-1", "stake 10")
		assert.ErrorIs(t, err, ErrIncomplete)
		assert.Contains(t, err.Error(), "Which subnet?")
		assert.Equal(t, 1, engine.resets, "the half-filled action must be discarded")
	})

	t.Run("Unresolved Confirmation", func(t *testing.T) {
		engine := &scriptedEngine{responses: []domain.Response{
			confirmResp(), confirmResp(), confirmResp(), confirmResp(),
		}}
		policy := func(context.Context, domain.Response) (string, error) { return "maybe", nil }
		r := NewRunner(WithConfirmPolicy(policy))

		_, err := r.Exec(t.Context(), engine, "s-1", "transfer 1 to 5F4tQyWrhfGVcNhoqeiNsR6KjD4wMZ2kfhLj4oHYuyHbZAc3")
		assert.ErrorIs(t, err, ErrUnconfirmed)
		assert.Len(t, engine.utterances, 1+maxConfirmRounds)
		assert.Equal(t, 1, engine.resets)
	})

	t.Run("Oversized Input", func(t *testing.T) {
		engine := &scriptedEngine{}
		_, err := NewRunner().Exec(t.Context(), engine, "s-1", strings.Repeat("x", DefaultMaxInputSize+1))
		assert.ErrorIs(t, err, ErrInputTooLarge)
		assert.Empty(t, engine.utterances)
	})
}
