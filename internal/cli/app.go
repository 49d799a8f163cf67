// Package cli wires configuration, adapters and the dialogue engine together
// for the taox commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielDerefaka/tao-cli/internal/config"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/classifier"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/directory"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/secret"
	"github.com/DanielDerefaka/tao-cli/pkg/dialogue"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/executor"
	"github.com/DanielDerefaka/tao-cli/pkg/observability"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/DanielDerefaka/tao-cli/pkg/session"
	"github.com/DanielDerefaka/tao-cli/pkg/translator"
)

// demoSamples is what demo mode prints instead of calling the wrapped tool.
var demoSamples = executor.StaticDemo{
	domain.IntentBalance:    "Wallet: default\nFree: 100.0000 τ\nStaked: 500.0000 τ\nTotal: 600.0000 τ",
	domain.IntentPortfolio:  "Netuid  Hotkey              Stake\n1       Example-Validator   500.0000 τ",
	domain.IntentValidators: "Rank  Name                Stake\n1     Example-Validator   1,204,331 τ",
	domain.IntentSubnets:    "Netuid  Name     Emission\n1       apex     2.31%\n18      cortex   1.87%",
	domain.IntentMetagraph:  "UID  Stake     Trust  Incentive\n0    500.00 τ  0.98   0.012",
	domain.IntentStake:      "✅ Finalized. Transaction hash: 0x5c8e0f7d3a1b2c4d6e8f0a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6e7f8a9b0c1d",
	domain.IntentUnstake:    "✅ Finalized. Transaction hash: 0x1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b",
	domain.IntentTransfer:   "✅ Finalized. Transaction hash: 0x9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08",
	domain.IntentRegister:   "✅ Registered on subnet. Transaction hash: 0x3e23e8160039594a33894f6564e1b1348bbd7a0088d42c4acb73eeaed59c009d",
}

// App holds every wired component for one taox process.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Metrics  *observability.Metrics
	Sessions *session.Manager
	Prefs    ports.PreferencesStore
	Engine   *dialogue.Engine

	secrets ports.SecretProvider
	closers []func() error
}

// Option configures NewApp.
type Option func(*App)

// WithSecrets replaces the default secret provider (environment, then terminal).
func WithSecrets(p ports.SecretProvider) Option {
	return func(a *App) { a.secrets = p }
}

// NewApp builds the state backends, translator, executor and dialogue engine from cfg.
// Callers must Close the returned App.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.New(),
		secrets: secret.Chain(secret.Env{Name: secret.DefaultEnvVar}, secret.NewTerminal()),
	}
	for _, opt := range opts {
		opt(a)
	}

	st, err := openState(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)
	a.Prefs = st.prefs

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if st.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(st.locker), session.WithLockTTL(cfg.LockTTL()))
	}
	a.Sessions = session.NewManager(st.sessions, sessionOpts...)

	validators := cfg.Validators
	if len(validators) == 0 && cfg.Demo {
		validators = directory.DemoValidators
	}
	dir, err := directory.NewStatic(validators)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("validator directory: %w", err)
	}

	tr := translator.New(
		translator.WithProgram(cfg.Program),
		translator.WithNetwork(cfg.Network),
		translator.WithDirectory(dir),
		translator.WithLogger(logger),
	)

	profile, err := executor.LoadProfile(cfg.Executor.Profile)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.KillGrace > 0 {
		profile.KillGrace = cfg.KillGrace
	}
	exec, err := executor.New(
		executor.WithProfile(profile),
		executor.WithDefaultTimeout(cfg.Timeout),
		executor.WithDryRun(cfg.DryRun),
		executor.WithDemo(cfg.Demo, demoSamples),
		executor.WithAuditSink(st.audit),
		executor.WithMetrics(a.Metrics),
		executor.WithEnv(cfg.Executor.Env...),
		executor.WithLogger(logger),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("executor profile: %w", err)
	}

	a.Engine, err = dialogue.New(a.Sessions, classifier.New(), tr, exec,
		dialogue.WithPreferences(st.prefs),
		dialogue.WithSecrets(a.secrets),
		dialogue.WithMetrics(a.Metrics),
		dialogue.WithLogger(logger),
		dialogue.WithMinConfidence(cfg.MinConfidence),
		dialogue.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug("App Ready",
		"backend", cfg.State.Backend,
		"network", cfg.Network,
		"dry_run", cfg.DryRun,
		"demo", cfg.Demo,
		"validators", len(dir.Names()),
	)
	return a, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
