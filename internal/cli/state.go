package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/DanielDerefaka/tao-cli/internal/config"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/file"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/adapters/redis"
	"github.com/DanielDerefaka/tao-cli/pkg/persistence/middleware"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
)

const (
	redisPrefsKey   = "taox:prefs"
	redisLockPrefix = "taox:lock:"
)

// state is the set of backends selected by state.backend.
type state struct {
	sessions ports.SessionStore
	prefs    ports.PreferencesStore
	audit    ports.AuditSink
	locker   ports.DistributedLocker
	close    func() error
}

func openState(ctx context.Context, cfg config.Config, logger *slog.Logger) (*state, error) {
	st := &state{close: func() error { return nil }}

	switch cfg.State.Backend {
	case config.BackendMemory:
		st.sessions = memory.NewStore()
		st.prefs = memory.NewPreferences(nil)
		st.audit = memory.NewAuditLog()
	case config.BackendFile:
		st.sessions = file.New(cfg.State.Dir)
		st.prefs = file.NewPreferences(cfg.Prefs.Path)
		st.audit = file.NewAuditLog(cfg.Audit.Path)
	case config.BackendRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		if err := store.Client().Ping(ctx).Err(); err != nil {
			store.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		st.sessions = store
		st.prefs = redis.NewPreferences(store.Client(), redisPrefsKey)
		st.audit = file.NewAuditLog(cfg.Audit.Path)
		st.locker = redis.NewLocker(store.Client(), redisLockPrefix)
		st.close = store.Close
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}

	mws, err := storeMiddleware(cfg)
	if err != nil {
		st.close()
		return nil, err
	}
	st.sessions = middleware.Chain(st.sessions, mws...)

	logger.Debug("State Opened", "backend", cfg.State.Backend, "encrypted", cfg.EncryptionKey != "", "dir", filepath.Clean(cfg.State.Dir))
	return st, nil
}

// storeMiddleware always masks secrets in history and seals sessions when a key is configured.
// Redaction runs first so the sealed copy never holds a secret either.
func storeMiddleware(cfg config.Config) ([]middleware.Middleware, error) {
	redact, err := middleware.NewRedactionMiddleware()
	if err != nil {
		return nil, err
	}
	mws := []middleware.Middleware{redact}

	if cfg.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("encryption_key: %w", err)
		}
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, seal)
	}
	return mws, nil
}
