package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/DanielDerefaka/tao-cli/internal/presentation/tui"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/runner"
)

// DefaultSessionID is used by chat and prefs when --session is not given.
const DefaultSessionID = "default"

// ChatOptions contains the configuration for the chat command.
type ChatOptions struct {
	SessionID string
	JSON      bool
	Plain     bool // no markdown rendering
	Fresh     bool // discard the stored session first
	Version   string
	In        io.Reader
	Out       io.Writer
}

// RunChat runs the interactive conversation until the user leaves or ctx ends.
func RunChat(ctx context.Context, app *App, opts ChatOptions) error {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if err := domain.CheckSessionID(sessionID); err != nil {
		return err
	}

	if opts.Fresh {
		if err := app.Sessions.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	var handler runner.IOHandler
	if opts.JSON {
		handler = runner.NewJSONHandler(opts.In, opts.Out)
	} else {
		var textOpts []runner.TextHandlerOption
		if !opts.Plain {
			render, err := tui.NewRenderer(0)
			if err != nil {
				return err
			}
			textOpts = append(textOpts, runner.WithTextHandlerRenderer(render))
		}
		handler = runner.NewTextHandler(opts.In, opts.Out, textOpts...)

		tui.PrintBanner(opts.Out, tui.BannerInfo{
			Version: opts.Version,
			Network: app.Config.Network,
			DryRun:  app.Config.DryRun,
			Demo:    app.Config.Demo,
		})
	}

	r := runner.NewRunner(
		runner.WithLogger(app.Logger),
		runner.WithInputHandler(handler),
		runner.WithBanner(sessionStatus(ctx, app, sessionID)),
	)

	err := r.Run(ctx, app.Engine, sessionID)
	app.Logger.Info("Chat Finished", "session_id", sessionID, "err", err)
	return handleExecutionError(err)
}

// sessionStatus reports whether the session resumes earlier turns.
func sessionStatus(ctx context.Context, app *App, sessionID string) string {
	s, err := app.Sessions.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return fmt.Sprintf("Session '%s' active.", sessionID)
	case err != nil:
		app.Logger.Warn("Failed to inspect session", "session_id", sessionID, "err", err)
		return fmt.Sprintf("Session '%s' active.", sessionID)
	default:
		return fmt.Sprintf("Resuming session '%s' (%d earlier turns).", sessionID, len(s.History))
	}
}
