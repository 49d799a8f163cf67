package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// AuditLog appends one JSON line per invocation.
// The directory is created 0700 and the file 0600.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

// NewAuditLog creates an audit log at path (e.g. ~/.taox/audit.jsonl).
func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (a *AuditLog) Record(ctx context.Context, rec domain.AuditRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), dirPerm); err != nil {
		return fmt.Errorf("failed to ensure audit directory: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	// Tighten files created by older versions or a permissive umask.
	if err := f.Chmod(filePerm); err != nil {
		return fmt.Errorf("failed to restrict audit log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}
