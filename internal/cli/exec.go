package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/runner"
	"github.com/google/uuid"
)

// ErrCommandFailed is returned by RunExec when the wrapped tool did not succeed.
var ErrCommandFailed = errors.New("command did not succeed")

// ExecOptions contains the configuration for the one-shot exec command.
type ExecOptions struct {
	Utterance string
	SessionID string // empty runs in a throwaway session
	Yes       bool   // approve confirmations without asking
	JSON      bool
	In        io.Reader
	Out       io.Writer
}

// RunExec processes one utterance to completion and prints the final response.
func RunExec(ctx context.Context, app *App, opts ExecOptions) (domain.Response, error) {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "exec-" + uuid.NewString()
		defer func() {
			if err := app.Sessions.Delete(context.WithoutCancel(ctx), sessionID); err != nil {
				app.Logger.Warn("Failed to remove exec session", "session_id", sessionID, "err", err)
			}
		}()
	} else if err := domain.CheckSessionID(sessionID); err != nil {
		return domain.Response{}, err
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		handler = runner.NewTextHandler(opts.In, opts.Out)
	}

	policy := runner.PromptPolicy(handler)
	if opts.Yes {
		policy = runner.AutoApprove()
	}

	r := runner.NewRunner(
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithConfirmPolicy(policy),
	)

	resp, err := r.Exec(ctx, app.Engine, sessionID, opts.Utterance)
	if err != nil {
		if errors.Is(err, runner.ErrIncomplete) {
			_ = handler.Output(ctx, resp)
		}
		return resp, err
	}
	if err := handler.Output(ctx, resp); err != nil {
		return resp, fmt.Errorf("output error: %w", err)
	}
	if resp.Result != nil && !succeeded(resp.Result.Status) {
		return resp, fmt.Errorf("%w: %s", ErrCommandFailed, resp.Result.Status)
	}
	return resp, nil
}

func succeeded(s domain.ExecutionStatus) bool {
	switch s {
	case domain.StatusSuccess, domain.StatusDryRun, domain.StatusDemoMode:
		return true
	}
	return false
}
