// Package config loads taox settings from defaults, a YAML file, TAOX_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. TAOX_NETWORK.
const EnvPrefix = "TAOX"

// EnvConfigFile names an explicit config file when --config is not given.
const EnvConfigFile = "TAOX_CONFIG"

// Storage backends accepted by state.backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	Network       string            `mapstructure:"network"`
	Program       string            `mapstructure:"program"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	KillGrace     time.Duration     `mapstructure:"kill_grace"`
	DryRun        bool              `mapstructure:"dry_run"`
	Demo          bool              `mapstructure:"demo"`
	MinConfidence float64           `mapstructure:"min_confidence"`
	EncryptionKey string            `mapstructure:"encryption_key"`
	Validators    map[string]string `mapstructure:"validators"`

	Log      LogConfig      `mapstructure:"log"`
	State    StateConfig    `mapstructure:"state"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Prefs    PrefsConfig    `mapstructure:"prefs"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Executor ExecutorConfig `mapstructure:"executor"`
	Server   ServerConfig   `mapstructure:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StateConfig selects where sessions live.
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type PrefsConfig struct {
	Path string `mapstructure:"path"`
}

type AuditConfig struct {
	Path string `mapstructure:"path"`
}

// ExecutorConfig points at an optional YAML marker profile and lists
// KEY=VALUE pairs added to the wrapped tool's environment.
type ExecutorConfig struct {
	Profile string   `mapstructure:"profile"`
	Env     []string `mapstructure:"env"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Home returns the taox state directory, ~/.taox.
func Home() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".taox")
}

// New prepares a viper instance with defaults and environment overrides.
// configFile may be empty, in which case TAOX_CONFIG and then ~/.taox/config.yaml are used.
func New(configFile string) *viper.Viper {
	v := viper.New()
	base := Home()

	// default values
	v.SetDefault("network", "finney")
	v.SetDefault("program", "btcli")
	v.SetDefault("timeout", 120*time.Second)
	v.SetDefault("kill_grace", 2*time.Second)
	v.SetDefault("dry_run", false)
	v.SetDefault("demo", false)
	v.SetDefault("min_confidence", 0.5)
	v.SetDefault("encryption_key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("state.backend", BackendFile)
	v.SetDefault("state.dir", filepath.Join(base, "sessions"))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "taox:session:")
	v.SetDefault("prefs.path", filepath.Join(base, "preferences.json"))
	v.SetDefault("audit.path", filepath.Join(base, "audit.jsonl"))
	v.SetDefault("executor.profile", "")
	v.SetDefault("executor.env", []string{})
	v.SetDefault("server.addr", "localhost:8080")

	v.SetConfigType("yaml")
	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(base)
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// BindFlags binds config keys to flags of fs. Keys map to flag names;
// flags that fs does not define are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the config file if present and decodes the result.
// A missing default file is fine; an explicit file that cannot be read is not.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.State.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("state.backend: unknown backend %q", c.State.Backend))
	}
	if c.State.Backend == BackendFile && c.State.Dir == "" {
		errs = append(errs, errors.New("state.dir: required for the file backend"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout: must be positive, got %s", c.Timeout))
	}
	if c.KillGrace < 0 {
		errs = append(errs, fmt.Errorf("kill_grace: must not be negative, got %s", c.KillGrace))
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min_confidence: must be within [0,1], got %v", c.MinConfidence))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	for _, kv := range c.Executor.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || strings.TrimSpace(k) == "" {
			errs = append(errs, fmt.Errorf("executor.env: %q is not KEY=VALUE", kv))
		}
	}
	if strings.TrimSpace(c.Program) == "" {
		errs = append(errs, errors.New("program: required"))
	}
	if strings.TrimSpace(c.Network) == "" {
		errs = append(errs, errors.New("network: required"))
	}
	return errors.Join(errs...)
}

// LockTTL is the distributed session lock lifetime. It outlasts a full
// execution so the lock is never lost while the wrapped tool still runs.
func (c Config) LockTTL() time.Duration {
	return c.Timeout + c.KillGrace + 30*time.Second
}
