package runner

import (
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithConfirmPolicy configures how Exec answers confirmation prompts.
func WithConfirmPolicy(policy ConfirmPolicy) Option {
	return func(r *Runner) {
		r.Policy = policy
	}
}

// WithBanner sets the message shown when Run starts.
func WithBanner(banner string) Option {
	return func(r *Runner) {
		r.Banner = banner
	}
}
