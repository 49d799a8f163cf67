package ports

import (
	"context"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// SessionStore defines the interface for persisting conversation state.
type SessionStore interface {
	// Save persists the session under the given ID.
	Save(ctx context.Context, sessionID string, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}

// PreferencesStore holds session-independent remembered defaults.
// Implementations must allow concurrent reads and serialize writes.
type PreferencesStore interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// List returns a snapshot of every stored preference.
	List(ctx context.Context) (map[string]string, error)
}

// AuditSink receives one record per invocation. Records are already redacted.
type AuditSink interface {
	Record(ctx context.Context, rec domain.AuditRecord) error
}
