// Package directory resolves validator names to hotkey addresses.
package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/agnivade/levenshtein"
)

// DemoValidators is the directory used by demo mode.
var DemoValidators = map[string]string{
	"Example-Validator": "5F4tQyWrhfGVcNhoqeiNsR6KjD4wMZ2kfhLj4oHYuyHbZAc3",
}

// Static is an immutable name to address directory. Lookups ignore case.
type Static struct {
	byKey map[string]entry
}

type entry struct {
	name    string
	address string
}

// NewStatic builds a directory from a name to SS58 map.
// Entries with an invalid address are rejected.
func NewStatic(validators map[string]string) (*Static, error) {
	s := &Static{byKey: make(map[string]entry, len(validators))}
	for name, addr := range validators {
		if _, err := domain.ValidateAddress(addr); err != nil {
			return nil, fmt.Errorf("validator %q: %w", name, err)
		}
		s.byKey[normalize(name)] = entry{name: name, address: addr}
	}
	return s, nil
}

// Resolve returns the hotkey for name. SS58 input passes through unchanged.
func (s *Static) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if domain.IsAddress(name) {
		return name, nil
	}
	if e, ok := s.byKey[normalize(name)]; ok {
		return e.address, nil
	}

	reason := "unknown validator; use its name from the directory or an SS58 hotkey"
	if hint := s.suggest(name); hint != "" {
		reason = fmt.Sprintf("unknown validator, did you mean %q?", hint)
	}
	return "", &domain.ValidationError{Slot: domain.SlotValidator, Value: name, Reason: reason}
}

// Names lists the known validator names in sorted order.
func (s *Static) Names() []string {
	names := make([]string, 0, len(s.byKey))
	for _, e := range s.byKey {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// suggest returns the closest known name within an edit distance of a third of its length.
func (s *Static) suggest(name string) string {
	key := normalize(name)
	best, bestDist := "", -1
	for k, e := range s.byKey {
		d := levenshtein.ComputeDistance(key, k)
		limit := max(2, len(k)/3)
		if d > limit {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && e.name < best) {
			best, bestDist = e.name, d
		}
	}
	return best
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
