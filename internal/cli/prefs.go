package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// preferenceTypes lists the preferences the engine reads and how values are checked.
var preferenceTypes = map[string]domain.SlotType{
	domain.PrefDefaultWallet: domain.SlotTypeName,
	domain.PrefDefaultHotkey: domain.SlotTypeName,
	domain.PrefDefaultNetuid: domain.SlotTypeIdentifier,
}

// PreferenceKeys returns the known preference keys in sorted order.
func PreferenceKeys() []string {
	keys := make([]string, 0, len(preferenceTypes))
	for k := range preferenceTypes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetPreference validates value the same way the dialogue validates slot answers.
func SetPreference(ctx context.Context, app *App, key, value string) (string, error) {
	t, ok := preferenceTypes[key]
	if !ok {
		return "", fmt.Errorf("unknown preference %q (known: %v)", key, PreferenceKeys())
	}
	clean, err := domain.ValidateValue(t, value)
	if err != nil {
		return "", err
	}
	if err := app.Prefs.Set(ctx, key, clean); err != nil {
		return "", fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	app.Logger.Info("Preference Set", "key", key)
	return clean, nil
}

// GetPreference returns the stored value and whether it was set.
func GetPreference(ctx context.Context, app *App, key string) (string, bool, error) {
	if _, ok := preferenceTypes[key]; !ok {
		return "", false, fmt.Errorf("unknown preference %q (known: %v)", key, PreferenceKeys())
	}
	return app.Prefs.Get(ctx, key)
}
