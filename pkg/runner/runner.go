package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/DanielDerefaka/tao-cli/internal/logging"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// maxConfirmRounds bounds how often Exec re-answers a repeated confirmation prompt.
const maxConfirmRounds = 3

var (
	// ErrIncomplete is returned by Exec when the utterance lacks required information.
	ErrIncomplete = errors.New("utterance is missing required information")
	// ErrUnconfirmed is returned by Exec when the confirmation policy never produced a usable answer.
	ErrUnconfirmed = errors.New("confirmation was not resolved")
)

// Runner handles the conversation loop between an IOHandler and the engine.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Policy answers confirmations in Exec. If nil, the user is asked through Handler.
	Policy ConfirmPolicy

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Banner is shown once when Run starts.
	Banner string
}

// NewRunner creates a Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads utterances until the input ends, the user types exit/quit, the user
// interrupts at the prompt, or ctx is cancelled. An interrupt while a turn is
// running cancels only that turn.
func (r *Runner) Run(ctx context.Context, engine Engine, sessionID string) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if r.Banner != "" {
		if err := handler.SystemOutput(ctx, r.Banner); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		text, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			switch {
			case ctx.Err() != nil:
				return nil
			case signals.Interrupted():
				r.Logger.Debug("interrupted at prompt", "session_id", sessionID)
				_ = handler.SystemOutput(ctx, "Goodbye.")
				return nil
			case errors.Is(err, io.EOF):
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if text == "" {
			continue
		}
		if isExit(text) {
			return nil
		}

		resp, err := engine.Process(signals.Context(), sessionID, text)
		if signals.Interrupted() {
			r.Logger.Debug("turn interrupted", "session_id", sessionID)
			_ = handler.SystemOutput(ctx, "Interrupted.")
			signals.Reset()
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.Logger.Error("turn failed", "session_id", sessionID, "err", err)
			if outErr := handler.SystemOutput(ctx, "Something went wrong: "+err.Error()); outErr != nil {
				return fmt.Errorf("output error: %w", outErr)
			}
			continue
		}

		if err := handler.Output(ctx, resp); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// Exec processes a single utterance to completion without a conversation.
// Confirmations are answered by the Policy. When the engine needs more
// information the pending action is discarded and ErrIncomplete is returned
// together with the question it asked.
func (r *Runner) Exec(ctx context.Context, engine Engine, sessionID, utterance string) (domain.Response, error) {
	clean, err := SanitizeInput(utterance)
	if err != nil {
		return domain.Response{}, err
	}

	resp, err := engine.Process(ctx, sessionID, clean)
	if err != nil {
		return domain.Response{}, err
	}

	policy := r.resolvePolicy()
	for round := 0; resp.Kind == domain.ResponseConfirm; round++ {
		if round == maxConfirmRounds {
			r.discard(ctx, engine, sessionID)
			return resp, ErrUnconfirmed
		}
		answer, err := policy(ctx, resp)
		if err != nil {
			r.discard(ctx, engine, sessionID)
			return resp, fmt.Errorf("confirmation failed: %w", err)
		}
		r.Logger.Debug("confirmation answered", "session_id", sessionID, "answer", answer)
		if resp, err = engine.Process(ctx, sessionID, answer); err != nil {
			return domain.Response{}, err
		}
	}

	if resp.Kind == domain.ResponseAsk {
		r.discard(ctx, engine, sessionID)
		return resp, fmt.Errorf("%w: %s", ErrIncomplete, resp.Message)
	}
	return resp, nil
}

func (r *Runner) discard(ctx context.Context, engine Engine, sessionID string) {
	if err := engine.Reset(context.WithoutCancel(ctx), sessionID); err != nil {
		r.Logger.Warn("failed to discard pending action", "session_id", sessionID, "err", err)
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize so a second Run reuses the same input pump.
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

func (r *Runner) resolvePolicy() ConfirmPolicy {
	if r.Policy != nil {
		return r.Policy
	}
	return PromptPolicy(r.resolveHandler())
}

func isExit(text string) bool {
	switch strings.ToLower(text) {
	case "exit", "quit":
		return true
	}
	return false
}
