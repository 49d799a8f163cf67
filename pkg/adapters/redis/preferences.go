package redis

import (
	"context"
	"errors"
	"fmt"

	backend "github.com/redis/go-redis/v9"
)

// Preferences implements ports.PreferencesStore as a single Redis hash.
type Preferences struct {
	client *backend.Client
	key    string
}

// NewPreferences stores preferences under key (default "taox:preferences").
func NewPreferences(client *backend.Client, key string) *Preferences {
	if key == "" {
		key = "taox:preferences"
	}
	return &Preferences{client: client, key: key}
}

func (p *Preferences) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := p.client.HGet(ctx, p.key, key).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read preference: %w", err)
	}
	return val, true, nil
}

func (p *Preferences) Set(ctx context.Context, key, value string) error {
	if err := p.client.HSet(ctx, p.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to write preference: %w", err)
	}
	return nil
}

func (p *Preferences) List(ctx context.Context) (map[string]string, error) {
	all, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return all, nil
}
