package dialogue

import (
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestConfirmation(t *testing.T) {
	for _, in := range []string{"yes", "Y", "ok", "Okay!", "confirm", "sure", "proceed", "go", "do it", "  Do   It. "} {
		assert.Equal(t, answerAffirmative, confirmation(in), in)
	}
	for _, in := range []string{"no", "N", "cancel", "stop", "abort", "nevermind", "never mind"} {
		assert.Equal(t, answerNegative, confirmation(in), in)
	}
	for _, in := range []string{"maybe", "yes please", "yeah", "sure?", "", "y e s", "not sure"} {
		assert.Equal(t, answerUnrecognized, confirmation(in), in)
	}
}

func TestIsCancel(t *testing.T) {
	assert.True(t, isCancel("Quit"))
	assert.True(t, isCancel("never mind"))
	assert.False(t, isCancel("no"), "a plain no is a slot value, not a cancellation")
	assert.False(t, isCancel("cancel my stake"))
}

func TestSuggestions(t *testing.T) {
	got := suggestions(domain.IntentBalance, domain.ExecutionResult{Status: domain.StatusSuccess})
	assert.Equal(t, []string{"View portfolio", "Show top validators"}, got)

	got = suggestions(domain.IntentBalance, domain.ExecutionResult{Status: domain.StatusTimeout})
	assert.Equal(t, "Retry the operation", got[0])
}

func TestAskMessage(t *testing.T) {
	slot, _ := domain.Catalog[domain.IntentStake].Slot(domain.SlotAmount)
	assert.Equal(t, "How much TAO would you like to stake? (e.g., 10, 50.5)", askMessage(slot))
}
