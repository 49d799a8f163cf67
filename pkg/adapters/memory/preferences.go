package memory

import (
	"context"
	"sync"
)

// Preferences implements ports.PreferencesStore in memory.
// Reads share a read lock; writes are serialized.
type Preferences struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewPreferences creates a preferences store seeded with initial values.
func NewPreferences(initial map[string]string) *Preferences {
	p := &Preferences{data: make(map[string]string, len(initial))}
	for k, v := range initial {
		p.data[k] = v
	}
	return p
}

func (p *Preferences) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[key]
	return v, ok, nil
}

func (p *Preferences) Set(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = value
	return nil
}

func (p *Preferences) List(ctx context.Context) (map[string]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]string, len(p.data))
	for k, v := range p.data {
		out[k] = v
	}
	return out, nil
}
