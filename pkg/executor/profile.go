package executor

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Profile holds the markers agreed with the wrapped tool.
type Profile struct {
	// Prompts are case-insensitive regular expressions of secret prompts.
	Prompts []string `yaml:"prompts" mapstructure:"prompts"`
	// Success and Failure are case-insensitive literal markers, matched on
	// word boundaries.
	Success []string `yaml:"success" mapstructure:"success"`
	Failure []string `yaml:"failure" mapstructure:"failure"`
	// FailurePrecedence makes failure markers win when both classes match.
	FailurePrecedence bool `yaml:"failure_precedence" mapstructure:"failure_precedence"`
	// MaxSecretAttempts bounds secret submissions per prompt.
	MaxSecretAttempts int `yaml:"max_secret_attempts" mapstructure:"max_secret_attempts"`
	// KillGrace is the delay between SIGTERM and SIGKILL of the process group.
	KillGrace time.Duration `yaml:"kill_grace" mapstructure:"kill_grace"`
}

// DefaultProfile returns the markers used by btcli.
func DefaultProfile() Profile {
	return Profile{
		Prompts: []string{
			`enter (?:your )?(?:wallet |coldkey )?password[^:\n]*:`,
			`(?:wallet |coldkey )?passphrase[^:\n]*:`,
		},
		Success: []string{
			"✅",
			"finalized",
			"extrinsic submitted",
			"success",
			"complete",
		},
		Failure: []string{
			"❌",
			"error",
			"failed",
			"insufficient",
			"invalid",
			"unsuccessful",
			"incomplete",
			"not complete",
			"not included",
		},
		FailurePrecedence: true,
		MaxSecretAttempts: 2,
		KillGrace:         2 * time.Second,
	}
}

// LoadProfile reads a YAML profile on top of DefaultProfile.
// A missing file yields the default profile.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, fmt.Errorf("failed to read executor profile: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return p, fmt.Errorf("failed to parse executor profile: %w", err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return p, err
	}
	if err := decoder.Decode(raw); err != nil {
		return p, fmt.Errorf("failed to decode executor profile: %w", err)
	}
	if p.MaxSecretAttempts <= 0 {
		p.MaxSecretAttempts = DefaultProfile().MaxSecretAttempts
	}
	return p, nil
}
