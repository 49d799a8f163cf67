package translator

import (
	"context"
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hotkey = "5F4tQyWrhfGVcNhoqeiNsR6KjD4wMZ2kfhLj4oHYuyHbZAc3"
	dest   = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
)

type fakeDirectory map[string]string

func (d fakeDirectory) Resolve(_ context.Context, name string) (string, error) {
	if v, ok := d[name]; ok {
		return v, nil
	}
	return "", &domain.ValidationError{Slot: domain.SlotValidator, Value: name, Reason: "unknown validator"}
}

func newTestTranslator(opts ...Option) *Translator {
	base := []Option{
		WithNetwork("test"),
		WithDirectory(fakeDirectory{"Example-Validator": hotkey}),
	}
	return New(append(base, opts...)...)
}

func TestTranslate_ArgumentVectors(t *testing.T) {
	tests := []struct {
		name     string
		intent   domain.IntentTag
		slots    domain.Slots
		wantArgv []string
		secret   bool
	}{
		{
			name:   "Stake Resolves Validator Name",
			intent: domain.IntentStake,
			slots:  domain.Slots{domain.SlotAmount: "10", domain.SlotValidator: "Example-Validator", domain.SlotNetuid: "1"},
			wantArgv: []string{"stake", "add", "--hotkey-ss58", hotkey, "--netuid", "1",
				"--amount", "10", "--network", "test", "--no-prompt"},
			secret: true,
		},
		{
			name:   "Unstake All With Wallet",
			intent: domain.IntentUnstake,
			slots:  domain.Slots{domain.SlotAmount: "all", domain.SlotValidator: hotkey, domain.SlotNetuid: "sn 3", domain.SlotWallet: "alice"},
			wantArgv: []string{"stake", "remove", "--wallet-name", "alice", "--hotkey-ss58", hotkey,
				"--netuid", "3", "--all", "--network", "test", "--no-prompt"},
			secret: true,
		},
		{
			name:   "Transfer",
			intent: domain.IntentTransfer,
			slots:  domain.Slots{domain.SlotAmount: "1.5 TAO", domain.SlotDestination: dest},
			wantArgv: []string{"wallet", "transfer", "--dest", dest, "--amount", "1.5",
				"--network", "test", "--no-prompt"},
			secret: true,
		},
		{
			name:     "Register",
			intent:   domain.IntentRegister,
			slots:    domain.Slots{domain.SlotNetuid: "18", domain.SlotHotkey: "hk1"},
			wantArgv: []string{"subnets", "register", "--hotkey", "hk1", "--netuid", "18", "--network", "test", "--no-prompt"},
			secret:   true,
		},
		{
			name:     "Balance Is Read Only",
			intent:   domain.IntentBalance,
			slots:    domain.Slots{domain.SlotWallet: "alice"},
			wantArgv: []string{"wallet", "balance", "--wallet-name", "alice", "--network", "test"},
		},
		{
			name:     "Validators Without Subnet Use Root List",
			intent:   domain.IntentValidators,
			slots:    domain.Slots{},
			wantArgv: []string{"root", "list", "--network", "test"},
		},
		{
			name:     "Validators On Subnet Use Metagraph",
			intent:   domain.IntentValidators,
			slots:    domain.Slots{domain.SlotNetuid: "1"},
			wantArgv: []string{"subnets", "metagraph", "--netuid", "1", "--network", "test"},
		},
		{
			name:     "Subnets",
			intent:   domain.IntentSubnets,
			wantArgv: []string{"subnets", "list", "--network", "test"},
		},
	}

	tr := newTestTranslator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := tr.Translate(context.Background(), tt.intent, tt.slots)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.wantArgv, spec.Argv()); diff != "" {
				t.Errorf("argv mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, DefaultProgram, spec.Program)
			assert.Equal(t, tt.secret, spec.RequiresSecret)
			assert.Equal(t, tt.secret, spec.Mutating)
		})
	}
}

func TestTranslate_ValidationErrors(t *testing.T) {
	tr := newTestTranslator()
	ctx := context.Background()

	cases := map[string]struct {
		intent domain.IntentTag
		slots  domain.Slots
		slot   domain.SlotName
	}{
		"Negative Amount":   {domain.IntentStake, domain.Slots{domain.SlotAmount: "-1", domain.SlotValidator: hotkey, domain.SlotNetuid: "1"}, domain.SlotAmount},
		"Missing Netuid":    {domain.IntentStake, domain.Slots{domain.SlotAmount: "1", domain.SlotValidator: hotkey}, domain.SlotNetuid},
		"Bad Destination":   {domain.IntentTransfer, domain.Slots{domain.SlotAmount: "1", domain.SlotDestination: "5abc"}, domain.SlotDestination},
		"Unknown Validator": {domain.IntentStake, domain.Slots{domain.SlotAmount: "1", domain.SlotValidator: "Nobody", domain.SlotNetuid: "1"}, domain.SlotValidator},
		"Flag Injection":    {domain.IntentBalance, domain.Slots{domain.SlotWallet: "--wallet-path=/tmp"}, domain.SlotWallet},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tr.Translate(ctx, tc.intent, tc.slots)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.slot, ve.Slot)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestTranslate_UnsupportedOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("Meta Intent", func(t *testing.T) {
		_, err := newTestTranslator().Translate(ctx, domain.IntentHelp, nil)
		assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	})

	t.Run("Pair Missing From Allow-List", func(t *testing.T) {
		restricted := &AllowList{groups: map[string]map[string]struct{}{}}
		restricted.Register("wallet", "balance")
		tr := newTestTranslator(WithAllowList(restricted))

		_, err := tr.Translate(ctx, domain.IntentStake, domain.Slots{domain.SlotAmount: "1", domain.SlotValidator: hotkey, domain.SlotNetuid: "1"})
		var ue *domain.UnsupportedOperationError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "stake", ue.Group)
		assert.Equal(t, "add", ue.Subcommand)

		_, err = tr.Translate(ctx, domain.IntentBalance, nil)
		assert.NoError(t, err)
	})
}

func TestTranslate_ValueStaysOneArgument(t *testing.T) {
	tr := newTestTranslator()
	spec, err := tr.Translate(context.Background(), domain.IntentBalance, domain.Slots{domain.SlotWallet: "my wallet; rm -rf ~"})
	require.NoError(t, err)
	assert.Contains(t, spec.Args, "my wallet; rm -rf ~")
}

func TestDefaultAllowList(t *testing.T) {
	a := DefaultAllowList()
	assert.True(t, a.Allowed("stake", "add"))
	assert.True(t, a.Allowed("root", "list"))
	assert.False(t, a.Allowed("wallet", "regen-coldkey"))
	assert.False(t, a.Allowed("shell", "exec"))
	assert.Contains(t, a.Pairs(), "subnets metagraph")

	for intent, r := range routes {
		assert.True(t, a.Allowed(r.group, r.subcommand), "route of %s must be allow-listed", intent)
	}
}
