package domain

import (
	"strings"
	"time"
)

// InvocationSpec is the fully resolved description of an external operation.
type InvocationSpec struct {
	Program    string    `json:"program"`
	Group      string    `json:"group"`
	Subcommand string    `json:"subcommand"`
	Args       []string  `json:"args"`
	Intent     IntentTag `json:"intent"`

	// RequiresSecret marks invocations that may prompt for a wallet password.
	RequiresSecret bool `json:"requires_secret"`
	// Mutating marks invocations that change on-chain state.
	Mutating bool `json:"mutating"`
}

// Argv returns the argument vector passed to the program (group, subcommand, args).
func (s InvocationSpec) Argv() []string {
	argv := make([]string, 0, len(s.Args)+2)
	argv = append(argv, s.Group, s.Subcommand)
	return append(argv, s.Args...)
}

// CommandLine renders the invocation for display and audit only. It is never executed.
func (s InvocationSpec) CommandLine() string {
	parts := []string{quoteArg(s.Program)}
	for _, a := range s.Argv() {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteArg(a string) string {
	if a == "" {
		return "''"
	}
	if strings.ContainsAny(a, " \t\n'\"\\$`;&|<>*?()[]{}!#~") {
		return "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return a
}

// ExecutionStatus is the classified outcome of an invocation.
type ExecutionStatus string

const (
	StatusSuccess   ExecutionStatus = "success"
	StatusFailed    ExecutionStatus = "failed"
	StatusTimeout   ExecutionStatus = "timeout"
	StatusCancelled ExecutionStatus = "cancelled"
	StatusUnknown   ExecutionStatus = "unknown"
	StatusDryRun    ExecutionStatus = "dry_run"
	StatusDemoMode  ExecutionStatus = "demo_mode"
)

// ExecutionResult is the classified outcome of one invocation.
// Output is always redacted.
type ExecutionResult struct {
	Status     ExecutionStatus `json:"status"`
	Output     string          `json:"output"`
	Identifier string          `json:"identifier,omitempty"`
	Duration   time.Duration   `json:"duration"`
	ExitCode   int             `json:"exit_code"`
	Command    string          `json:"command"`
	ErrorKind  ErrorKind       `json:"error_kind,omitempty"`
	// Error is a human-readable excerpt of the cause.
	Error string `json:"error,omitempty"`
}

// OK reports whether the invocation completed successfully or was simulated.
func (r ExecutionResult) OK() bool {
	switch r.Status {
	case StatusSuccess, StatusDryRun, StatusDemoMode:
		return true
	}
	return false
}

// AuditRecord is the durable trace of one invocation.
type AuditRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	SessionID  string          `json:"session_id,omitempty"`
	Intent     IntentTag       `json:"intent"`
	Command    string          `json:"command"`
	Transcript string          `json:"transcript"`
	Status     ExecutionStatus `json:"status"`
	DurationMS int64           `json:"duration_ms"`
	Identifier string          `json:"identifier,omitempty"`
	ErrorKind  ErrorKind       `json:"error_kind,omitempty"`
}
