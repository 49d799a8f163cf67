package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/DanielDerefaka/tao-cli/internal/logging"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/observability"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
)

const (
	DefaultTimeout = 120 * time.Second

	// SpawnHint is shown when the wrapped tool cannot be started.
	SpawnHint = "install the wrapped tool (pip install bittensor-cli) or set 'program' in the config"

	readChunkSize  = 4096
	maxPendingSize = 8192
	drainWindow    = 200 * time.Millisecond
)

// phase is the position of the read loop.
type phase int

const (
	// phaseAwaitPrompt reads output and answers secret prompts.
	phaseAwaitPrompt phase = iota
	// phaseAwaitExit has seen end-of-stream and waits for the exit status.
	phaseAwaitExit
)

type sessionKey struct{}

// WithSessionID tags ctx so audit records carry the originating session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// DemoData supplies sample output used instead of spawning in demo mode.
type DemoData interface {
	Sample(intent domain.IntentTag) (string, bool)
}

// StaticDemo is a DemoData backed by a map.
type StaticDemo map[domain.IntentTag]string

func (d StaticDemo) Sample(intent domain.IntentTag) (string, bool) {
	s, ok := d[intent]
	return s, ok
}

// Executor runs invocation specs against the wrapped tool.
type Executor struct {
	patterns *patternTable
	markers  markers
	profile  Profile
	timeout  time.Duration
	dryRun   bool
	demo     bool
	demoData DemoData
	audit    ports.AuditSink
	metrics  *observability.Metrics
	logger   *slog.Logger
	extraEnv []string
}

// Option configures the Executor.
type Option func(*Executor)

// WithProfile replaces the default marker profile.
func WithProfile(p Profile) Option {
	return func(e *Executor) { e.profile = p }
}

// WithDefaultTimeout sets the timeout used when Run receives a non-positive one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDryRun short-circuits every run after the spec is built.
func WithDryRun(enabled bool) Option {
	return func(e *Executor) { e.dryRun = enabled }
}

// WithDemo short-circuits every run with sample output from data.
func WithDemo(enabled bool, data DemoData) Option {
	return func(e *Executor) {
		e.demo = enabled
		e.demoData = data
	}
}

// WithAuditSink sets where per-invocation records are written.
func WithAuditSink(s ports.AuditSink) Option {
	return func(e *Executor) { e.audit = s }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithEnv appends KEY=VALUE pairs to the child environment.
func WithEnv(kv ...string) Option {
	return func(e *Executor) { e.extraEnv = append(e.extraEnv, kv...) }
}

// New creates an Executor. It fails only when a profile prompt pattern does not compile.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		profile: DefaultProfile(),
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	table, err := newPatternTable(e.profile.Prompts)
	if err != nil {
		return nil, err
	}
	e.patterns = table
	e.markers = newMarkers(e.profile)
	if e.profile.MaxSecretAttempts <= 0 {
		e.profile.MaxSecretAttempts = DefaultProfile().MaxSecretAttempts
	}
	return e, nil
}

// Run executes spec and classifies the outcome. Every terminal condition,
// including spawn failures, timeouts and cancellation, is reported through the
// returned ExecutionResult.
func (e *Executor) Run(ctx context.Context, spec domain.InvocationSpec, secrets ports.SecretProvider, timeout time.Duration) domain.ExecutionResult {
	if timeout <= 0 {
		timeout = e.timeout
	}
	command := Redact(spec.CommandLine())
	logger := e.logger.With("intent", spec.Intent, "command", command)

	var res domain.ExecutionResult
	switch {
	case e.dryRun:
		res = domain.ExecutionResult{
			Status:  domain.StatusDryRun,
			Output:  "Dry run: would execute " + command,
			Command: command,
		}
	case e.demo:
		res = e.demoResult(spec, command)
	default:
		res = e.run(ctx, spec, secrets, timeout, logger)
	}

	logger.Info("invocation finished", "status", res.Status, "duration", res.Duration, "error_kind", res.ErrorKind)
	e.metrics.ObserveExecution(string(spec.Intent), string(res.Status), res.Duration)
	e.record(ctx, spec, res)
	return res
}

func (e *Executor) demoResult(spec domain.InvocationSpec, command string) domain.ExecutionResult {
	out := "Demo mode: no command was executed."
	if e.demoData != nil {
		if sample, ok := e.demoData.Sample(spec.Intent); ok {
			out = Redact(sample)
		}
	}
	return domain.ExecutionResult{
		Status:     domain.StatusDemoMode,
		Output:     out,
		Identifier: ExtractIdentifier(out),
		Command:    command,
	}
}

// run owns the child process for the duration of one invocation.
func (e *Executor) run(ctx context.Context, spec domain.InvocationSpec, secrets ports.SecretProvider, timeout time.Duration, logger *slog.Logger) domain.ExecutionResult {
	start := time.Now()
	res := domain.ExecutionResult{Command: Redact(spec.CommandLine()), ExitCode: -1}

	cmd := exec.Command(spec.Program, spec.Argv()...)
	setProcessGroup(cmd)
	cmd.Env = append(os.Environ(), e.extraEnv...)

	// One pipe carries both streams so prompts and markers keep their order.
	pr, pw, err := os.Pipe()
	if err != nil {
		return e.spawnFailure(res, start, err)
	}
	defer pr.Close()
	cmd.Stdout = pw
	cmd.Stderr = pw

	stdin, err := cmd.StdinPipe()
	if err != nil {
		pw.Close()
		return e.spawnFailure(res, start, err)
	}

	if err := cmd.Start(); err != nil {
		pw.Close()
		return e.spawnFailure(res, start, err)
	}
	pw.Close()
	logger.Debug("process started", "pid", cmd.Process.Pid)

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	stop := make(chan struct{})
	defer close(stop)
	chunks := make(chan []byte)
	go readLoop(pr, chunks, stop)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var (
		transcript strings.Builder
		pending    string
		supplied   []string
		attempts   = make(map[int]int)
		state      = phaseAwaitPrompt
		exitErr    error
	)

	finish := func(status domain.ExecutionStatus, kind domain.ErrorKind, note string) domain.ExecutionResult {
		if note != "" {
			transcript.WriteString("\n" + note + "\n")
		}
		clean := scrub(transcript.String(), supplied)
		res.Output = Redact(clean)
		res.Status = status
		res.ErrorKind = kind
		res.Duration = time.Since(start)
		if res.Identifier == "" {
			res.Identifier = ExtractIdentifier(res.Output)
		}
		if status != domain.StatusSuccess && res.Error == "" {
			res.Error = describe(kind, res.Output, timeout)
		}
		return res
	}

	abort := func(status domain.ExecutionStatus, kind domain.ErrorKind, note string) domain.ExecutionResult {
		e.terminate(cmd, waitDone, logger)
		drain(chunks, &transcript)
		return finish(status, kind, note)
	}

	// answer handles a matched secret prompt. It returns false when the run must abort.
	answer := func(idx int) (domain.ExecutionResult, bool) {
		attempts[idx]++
		if attempts[idx] > e.profile.MaxSecretAttempts {
			logger.Warn("secret re-prompted too many times", "prompt", idx, "attempts", attempts[idx]-1)
			e.metrics.SecretPrompt("retry_exceeded")
			return abort(domain.StatusFailed, domain.KindSecretRetryExceeded, "[aborted: secret rejected too many times]"), false
		}
		if secrets == nil {
			e.metrics.SecretPrompt("unavailable")
			return abort(domain.StatusFailed, domain.KindSecretUnavailable, "[aborted: no secret provider available]"), false
		}
		secret, err := secrets.Secret(ctx)
		if err != nil {
			logger.Warn("secret provider failed", "err", err)
			e.metrics.SecretPrompt("unavailable")
			res.Error = fmt.Sprintf("%v: %v", domain.ErrSecretUnavailable, err)
			return abort(domain.StatusFailed, domain.KindSecretUnavailable, "[aborted: secret unavailable]"), false
		}
		if secret != "" {
			supplied = append(supplied, secret)
		}
		if _, err := io.WriteString(stdin, secret+"\n"); err != nil {
			logger.Debug("failed to write secret", "err", err)
		}
		transcript.WriteString("\n" + SecretSuppliedMarker + "\n")
		e.metrics.SecretPrompt("supplied")
		return domain.ExecutionResult{}, true
	}

	for {
		// Pattern index of this step: 0..N-1 prompt, N end-of-stream, N+1 timeout.
		idx := -1

		select {
		case chunk, ok := <-chunks:
			if !ok {
				idx = e.patterns.eofIndex()
				break
			}
			transcript.Write(chunk)
			if state != phaseAwaitPrompt {
				continue
			}
			pending += string(chunk)
			if len(pending) > maxPendingSize {
				pending = pending[len(pending)-maxPendingSize:]
			}
			for {
				promptIdx, end := e.patterns.matchPrompt(pending)
				if promptIdx < 0 {
					break
				}
				pending = pending[end:]
				if r, ok := answer(promptIdx); !ok {
					return r
				}
			}
			continue
		case <-timer.C:
			idx = e.patterns.timeoutIndex()
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				idx = e.patterns.timeoutIndex()
				break
			}
			return abort(domain.StatusCancelled, domain.KindCancelled, "[cancelled: process group terminated]")
		}

		switch e.patterns.classify(idx) {
		case eventEOF:
			state = phaseAwaitExit
			select {
			case exitErr = <-waitDone:
			case <-timer.C:
				return abort(domain.StatusTimeout, domain.KindTimeout, timeoutNote(timeout))
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return abort(domain.StatusTimeout, domain.KindTimeout, timeoutNote(timeout))
				}
				return abort(domain.StatusCancelled, domain.KindCancelled, "[cancelled: process group terminated]")
			}
			// Descendants may outlive the leader; the group is ours to clean up.
			_ = killGroup(cmd)
			res.ExitCode = exitCode(exitErr)

			clean := scrub(transcript.String(), supplied)
			status := e.markers.classify(clean, res.ExitCode, spec.Mutating)
			kind := domain.KindNone
			switch status {
			case domain.StatusFailed:
				kind = domain.KindFailed
			case domain.StatusUnknown:
				kind = domain.KindUnknownStatus
			}
			return finish(status, kind, "")

		case eventTimeout:
			logger.Warn("process timed out", "timeout", timeout)
			return abort(domain.StatusTimeout, domain.KindTimeout, timeoutNote(timeout))

		default:
			return abort(domain.StatusFailed, domain.KindFailed, "[aborted: unexpected read loop event]")
		}
	}
}

// readLoop forwards output chunks until end-of-stream or stop.
func readLoop(r io.Reader, out chan<- []byte, stop <-chan struct{}) {
	defer close(out)
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case out <- chunk:
			case <-stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// drain collects output still buffered after the group was terminated.
func drain(chunks <-chan []byte, transcript *strings.Builder) {
	deadline := time.NewTimer(drainWindow)
	defer deadline.Stop()
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				return
			}
			transcript.Write(chunk)
		case <-deadline.C:
			return
		}
	}
}

// terminate sends SIGTERM to the process group, then SIGKILL after the grace period.
func (e *Executor) terminate(cmd *exec.Cmd, waitDone <-chan error, logger *slog.Logger) {
	if err := terminateGroup(cmd); err != nil {
		logger.Debug("failed to signal process group", "err", err)
	}
	grace := time.NewTimer(e.profile.KillGrace)
	defer grace.Stop()
	exited := false
	select {
	case <-waitDone:
		// Leader exited; descendants still get the hard kill below.
		exited = true
	case <-grace.C:
	}
	if err := killGroup(cmd); err != nil {
		logger.Debug("failed to kill process group", "err", err)
	}
	if exited {
		return
	}
	reap := time.NewTimer(e.profile.KillGrace + time.Second)
	defer reap.Stop()
	select {
	case <-waitDone:
	case <-reap.C:
		logger.Warn("process did not exit after SIGKILL", "pid", cmd.Process.Pid)
	}
}

func (e *Executor) spawnFailure(res domain.ExecutionResult, start time.Time, err error) domain.ExecutionResult {
	e.logger.Error("failed to start process", "err", err)
	res.Status = domain.StatusFailed
	res.ErrorKind = domain.KindSpawn
	res.Error = fmt.Sprintf("%v: %v; %s", domain.ErrSpawn, err, SpawnHint)
	res.Duration = time.Since(start)
	return res
}

func (e *Executor) record(ctx context.Context, spec domain.InvocationSpec, res domain.ExecutionResult) {
	if e.audit == nil {
		return
	}
	rec := domain.AuditRecord{
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionFrom(ctx),
		Intent:     spec.Intent,
		Command:    res.Command,
		Transcript: res.Output,
		Status:     res.Status,
		DurationMS: res.Duration.Milliseconds(),
		Identifier: res.Identifier,
		ErrorKind:  res.ErrorKind,
	}
	// The invocation already happened; a lost audit record must not change its result.
	if err := e.audit.Record(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Error("failed to write audit record", "err", err)
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

func timeoutNote(d time.Duration) string {
	return fmt.Sprintf("[timed out after %s: process group terminated]", d)
}

// describe builds the human-readable cause of a non-successful result.
func describe(kind domain.ErrorKind, output string, timeout time.Duration) string {
	switch kind {
	case domain.KindTimeout:
		return fmt.Sprintf("the operation did not finish within %s", timeout)
	case domain.KindCancelled:
		return "the operation was cancelled"
	case domain.KindSecretRetryExceeded:
		return "the wallet password was rejected too many times"
	case domain.KindSecretUnavailable:
		return "no wallet password could be read"
	case domain.KindUnknownStatus:
		return "the outcome could not be determined from the output; check the chain before retrying"
	}
	if cause, ok := Explain(output); ok {
		return cause.Message
	}
	return excerpt(output, 3)
}
