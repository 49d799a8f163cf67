package runner

import (
	"context"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// ConfirmPolicy answers a confirmation request on behalf of the user.
// It returns the utterance to hand back to the engine.
type ConfirmPolicy func(ctx context.Context, resp domain.Response) (string, error)

// AutoApprove confirms everything. Used by `exec --yes`.
func AutoApprove() ConfirmPolicy {
	return func(ctx context.Context, resp domain.Response) (string, error) {
		return "yes", nil
	}
}

// AutoDeny declines everything, so mutating intents never reach the executor.
func AutoDeny() ConfirmPolicy {
	return func(ctx context.Context, resp domain.Response) (string, error) {
		return "no", nil
	}
}

// PromptPolicy shows the confirmation summary through the handler and relays the user's answer.
func PromptPolicy(handler IOHandler) ConfirmPolicy {
	return func(ctx context.Context, resp domain.Response) (string, error) {
		if err := handler.Output(ctx, resp); err != nil {
			return "", err
		}
		return handler.Input(ctx)
	}
}
