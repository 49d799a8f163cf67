package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Preferences implements ports.PreferencesStore as a single JSON document.
// The file is created with owner-only permissions.
type Preferences struct {
	path string
	mu   sync.RWMutex
}

// NewPreferences creates a preferences store at path (e.g. ~/.taox/preferences.json).
func NewPreferences(path string) *Preferences {
	return &Preferences{path: path}
}

func (p *Preferences) Get(ctx context.Context, key string) (string, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, err := p.read()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (p *Preferences) Set(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, err := p.read()
	if err != nil {
		return err
	}
	data[key] = value
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return writeAtomic(filepath.Dir(p.path), filepath.Base(p.path), raw)
}

func (p *Preferences) List(ctx context.Context) (map[string]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.read()
}

func (p *Preferences) read() (map[string]string, error) {
	data := map[string]string{}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	return data, nil
}
