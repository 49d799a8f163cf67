package translator

import "sort"

// AllowList is the fixed set of (group, subcommand) pairs the translator may produce.
// It follows a strict registry pattern: anything not registered is refused.
type AllowList struct {
	groups map[string]map[string]struct{}
}

// DefaultAllowList mirrors the operations exposed by the wrapped tool.
func DefaultAllowList() *AllowList {
	a := &AllowList{groups: make(map[string]map[string]struct{})}
	a.Register("wallet", "list", "balance", "create", "transfer", "new-coldkey", "new-hotkey")
	a.Register("stake", "add", "remove", "list", "move", "wizard")
	a.Register("subnets", "list", "metagraph", "hyperparameters", "register", "burn-cost")
	a.Register("config", "set", "get", "clear")
	a.Register("sudo", "get-take", "set-take")
	a.Register("root", "list", "weights")
	return a
}

// Register adds trusted subcommands of a group to the allow-list.
func (a *AllowList) Register(group string, subcommands ...string) {
	subs, ok := a.groups[group]
	if !ok {
		subs = make(map[string]struct{})
		a.groups[group] = subs
	}
	for _, s := range subcommands {
		subs[s] = struct{}{}
	}
}

// Allowed reports whether the pair is registered.
func (a *AllowList) Allowed(group, subcommand string) bool {
	subs, ok := a.groups[group]
	if !ok {
		return false
	}
	_, ok = subs[subcommand]
	return ok
}

// Pairs lists every registered pair as "group subcommand", sorted.
func (a *AllowList) Pairs() []string {
	var out []string
	for g, subs := range a.groups {
		for s := range subs {
			out = append(out, g+" "+s)
		}
	}
	sort.Strings(out)
	return out
}
