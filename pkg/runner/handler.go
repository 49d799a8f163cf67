package runner

import (
	"context"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Output presents an engine response to the user.
	Output(ctx context.Context, resp domain.Response) error

	// Input reads the next utterance. It returns io.EOF when the user is gone.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (banner, interrupt notice, internal error).
	// This is distinct from engine responses.
	SystemOutput(ctx context.Context, msg string) error
}

// Engine is the conversational core driven by the runner.
type Engine interface {
	Process(ctx context.Context, sessionID, utterance string) (domain.Response, error)
	Reset(ctx context.Context, sessionID string) error
}

// ContentRenderer transforms markdown before it is printed (e.g. to ANSI).
type ContentRenderer func(string) (string, error)
