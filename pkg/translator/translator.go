package translator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielDerefaka/tao-cli/internal/logging"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
)

const (
	DefaultProgram = "btcli"
	DefaultNetwork = "finney"
)

// route is the (group, subcommand) pair an intent maps to.
type route struct {
	group      string
	subcommand string
}

var routes = map[domain.IntentTag]route{
	domain.IntentStake:      {"stake", "add"},
	domain.IntentUnstake:    {"stake", "remove"},
	domain.IntentTransfer:   {"wallet", "transfer"},
	domain.IntentRegister:   {"subnets", "register"},
	domain.IntentBalance:    {"wallet", "balance"},
	domain.IntentPortfolio:  {"stake", "list"},
	domain.IntentSubnets:    {"subnets", "list"},
	domain.IntentMetagraph:  {"subnets", "metagraph"},
	domain.IntentValidators: {"subnets", "metagraph"},
}

// Translator maps completed intents to invocation specs.
type Translator struct {
	program   string
	network   string
	allow     *AllowList
	directory ports.ValidatorDirectory
	logger    *slog.Logger
}

// Option configures the Translator.
type Option func(*Translator)

// WithProgram sets the wrapped executable name.
func WithProgram(program string) Option {
	return func(t *Translator) {
		if program != "" {
			t.program = program
		}
	}
}

// WithNetwork sets the value passed to --network.
func WithNetwork(network string) Option {
	return func(t *Translator) {
		if network != "" {
			t.network = network
		}
	}
}

// WithAllowList replaces the default allow-list.
func WithAllowList(a *AllowList) Option {
	return func(t *Translator) {
		t.allow = a
	}
}

// WithDirectory sets the directory used to resolve validator names.
// Without one, only SS58 addresses are accepted as validators.
func WithDirectory(d ports.ValidatorDirectory) Option {
	return func(t *Translator) {
		t.directory = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) {
		t.logger = l
	}
}

// New creates a Translator.
func New(opts ...Option) *Translator {
	t := &Translator{
		program: DefaultProgram,
		network: DefaultNetwork,
		allow:   DefaultAllowList(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate builds the InvocationSpec for a completed intent.
// It fails with *domain.UnsupportedOperationError when the implied pair is not
// allow-listed and with *domain.ValidationError when a slot value is invalid.
func (t *Translator) Translate(ctx context.Context, intent domain.IntentTag, slots domain.Slots) (domain.InvocationSpec, error) {
	catalog, ok := domain.Lookup(intent)
	if !ok {
		return domain.InvocationSpec{}, &domain.UnsupportedOperationError{Intent: intent}
	}
	r, ok := routes[intent]
	if !ok {
		return domain.InvocationSpec{}, &domain.UnsupportedOperationError{Intent: intent}
	}
	if intent == domain.IntentValidators && !slots.Has(domain.SlotNetuid) {
		r = route{"root", "list"}
	}

	values, err := t.validate(catalog, slots)
	if err != nil {
		return domain.InvocationSpec{}, err
	}

	if values.Has(domain.SlotValidator) {
		hotkey, err := t.resolveValidator(ctx, values[domain.SlotValidator])
		if err != nil {
			return domain.InvocationSpec{}, err
		}
		values[domain.SlotValidator] = hotkey
	}

	if !t.allow.Allowed(r.group, r.subcommand) {
		t.logger.Warn("operation refused by allow-list", "intent", intent, "group", r.group, "subcommand", r.subcommand)
		return domain.InvocationSpec{}, &domain.UnsupportedOperationError{Group: r.group, Subcommand: r.subcommand, Intent: intent}
	}

	spec := domain.InvocationSpec{
		Program:        t.program,
		Group:          r.group,
		Subcommand:     r.subcommand,
		Args:           t.buildArgs(intent, values, catalog.Mutating),
		Intent:         intent,
		Mutating:       catalog.Mutating,
		RequiresSecret: catalog.Mutating,
	}
	t.logger.Debug("translated intent", "intent", intent, "command", spec.CommandLine())
	return spec, nil
}

// validate re-checks every supplied slot and the presence of required ones.
func (t *Translator) validate(catalog domain.IntentSpec, slots domain.Slots) (domain.Slots, error) {
	values := domain.Slots{}
	for _, slot := range catalog.Slots {
		raw, present := slots[slot.Name]
		if !present || raw == "" {
			if slot.Required {
				return nil, &domain.ValidationError{Slot: slot.Name, Reason: "is required"}
			}
			continue
		}
		v, err := slot.Validate(raw)
		if err != nil {
			return nil, err
		}
		values[slot.Name] = v
	}
	return values, nil
}

func (t *Translator) resolveValidator(ctx context.Context, name string) (string, error) {
	if domain.IsAddress(name) {
		return name, nil
	}
	if t.directory == nil {
		return "", &domain.ValidationError{Slot: domain.SlotValidator, Value: name, Reason: "is not a known validator; use its hotkey address"}
	}
	hotkey, err := t.directory.Resolve(ctx, name)
	if err != nil {
		return "", err
	}
	if !domain.IsAddress(hotkey) {
		return "", &domain.ValidationError{Slot: domain.SlotValidator, Value: name, Reason: fmt.Sprintf("resolved to an invalid hotkey %q", hotkey)}
	}
	return hotkey, nil
}

func (t *Translator) buildArgs(intent domain.IntentTag, v domain.Slots, mutating bool) []string {
	var args []string
	add := func(flag string, name domain.SlotName) {
		if v.Has(name) {
			args = append(args, flag, v[name])
		}
	}

	add("--wallet-name", domain.SlotWallet)

	switch intent {
	case domain.IntentStake, domain.IntentUnstake:
		add("--hotkey-ss58", domain.SlotValidator)
		add("--netuid", domain.SlotNetuid)
		args = appendAmount(args, v[domain.SlotAmount])
	case domain.IntentTransfer:
		add("--dest", domain.SlotDestination)
		args = appendAmount(args, v[domain.SlotAmount])
	case domain.IntentRegister:
		add("--hotkey", domain.SlotHotkey)
		add("--netuid", domain.SlotNetuid)
	case domain.IntentValidators, domain.IntentMetagraph:
		add("--netuid", domain.SlotNetuid)
	}

	args = append(args, "--network", t.network)
	if mutating {
		args = append(args, "--no-prompt")
	}
	return args
}

func appendAmount(args []string, amount string) []string {
	if amount == domain.AmountAll {
		return append(args, "--all")
	}
	return append(args, "--amount", amount)
}
