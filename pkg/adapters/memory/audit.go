package memory

import (
	"context"
	"sync"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// AuditLog keeps audit records in memory. Useful for tests and demo mode.
type AuditLog struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (a *AuditLog) Record(ctx context.Context, rec domain.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

// Records returns a copy of every record written so far.
func (a *AuditLog) Records() []domain.AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuditRecord(nil), a.records...)
}
