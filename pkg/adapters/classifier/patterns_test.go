package classifier_test

import (
	"context"
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/adapters/classifier"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dest = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

func TestClassify(t *testing.T) {
	tests := []struct {
		utterance string
		intent    domain.IntentTag
		slots     domain.Slots
	}{
		{"stake 10 TAO", domain.IntentStake, domain.Slots{domain.SlotAmount: "10"}},
		{"stake 10 TAO to Example-Validator on subnet 1", domain.IntentStake, domain.Slots{
			domain.SlotAmount: "10", domain.SlotValidator: "Example-Validator", domain.SlotNetuid: "1",
		}},
		{"I want to stake", domain.IntentStake, domain.Slots{}},
		{"stake all to Taostats from wallet alice", domain.IntentStake, domain.Slots{
			domain.SlotAmount: domain.AmountAll, domain.SlotValidator: "Taostats", domain.SlotWallet: "alice",
		}},
		{"unstake 5 from OpenTensor Foundation on sn 18", domain.IntentUnstake, domain.Slots{
			domain.SlotAmount: "5", domain.SlotValidator: "OpenTensor Foundation", domain.SlotNetuid: "18",
		}},
		{"remove stake 2.5", domain.IntentUnstake, domain.Slots{domain.SlotAmount: "2.5"}},
		{"send 3 tao to " + dest, domain.IntentTransfer, domain.Slots{
			domain.SlotAmount: "3", domain.SlotDestination: dest,
		}},
		{"register on subnet 18 with hotkey miner1", domain.IntentRegister, domain.Slots{
			domain.SlotNetuid: "18", domain.SlotHotkey: "miner1",
		}},
		{"register on 7", domain.IntentRegister, domain.Slots{domain.SlotNetuid: "7"}},
		{"what's my balance?", domain.IntentBalance, domain.Slots{}},
		{"show my stakes", domain.IntentPortfolio, domain.Slots{}},
		{"show metagraph for 3", domain.IntentMetagraph, domain.Slots{domain.SlotNetuid: "3"}},
		{"top validators on subnet 1", domain.IntentValidators, domain.Slots{domain.SlotNetuid: "1"}},
		{"list subnets", domain.IntentSubnets, domain.Slots{}},
		{"remember my wallet is alice", domain.IntentSetDefault, domain.Slots{domain.SlotWallet: "alice"}},
		{"set default subnet to 18", domain.IntentSetDefault, domain.Slots{domain.SlotNetuid: "18"}},
		{"use hotkey hk-1", domain.IntentSetDefault, domain.Slots{domain.SlotHotkey: "hk-1"}},
	}

	c := classifier.New()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.utterance, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.intent, got.Intent)
			assert.False(t, got.Ambiguous)
			assert.Equal(t, classifier.MatchConfidence, got.Confidence)
			if diff := cmp.Diff(tt.slots, got.Slots); diff != "" {
				t.Errorf("slots mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify_MetaIntents(t *testing.T) {
	c := classifier.New()
	ctx := context.Background()

	for utterance, want := range map[string]domain.IntentTag{
		"hello":               domain.IntentGreeting,
		"gm":                  domain.IntentGreeting,
		"help":                domain.IntentHelp,
		"what can you do":     domain.IntentHelp,
		"cancel":              domain.IntentCancel,
		"never mind":          domain.IntentCancel,
		"the weather is nice": domain.IntentUnknown,
		"   ":                 domain.IntentUnknown,
	} {
		got, err := c.Classify(ctx, utterance, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got.Intent, utterance)
	}
}

func TestClassify_Ambiguous(t *testing.T) {
	got, err := classifier.New().Classify(context.Background(), "stake 10 and transfer 5", nil)
	require.NoError(t, err)

	assert.True(t, got.Ambiguous)
	assert.Less(t, got.Confidence, classifier.MatchConfidence)
	assert.ElementsMatch(t, []domain.IntentTag{domain.IntentStake, domain.IntentTransfer}, got.Alternatives)
}

func TestClassify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := classifier.New().Classify(ctx, "stake 10", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
