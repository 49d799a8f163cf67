package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

const (
	msgCancelled      = "Cancelled. What else can I help with?"
	msgNothingPending = "There is nothing to cancel. What would you like to do?"
	msgGreeting       = "Hey! What can I help you with? Try 'show my balance' or 'stake 10 TAO'."
	msgOffTopic       = "I focus on Bittensor operations: balance, staking, transfers and registrations. What would you like to do?"
	msgNotUnderstood  = "Not sure I understood that. Try something like 'show my balance' or 'stake 10 TAO'."
	msgProceed        = "Proceed? (yes/no)"
	msgDefaultsHelp   = "I can remember defaults for you. Try 'my wallet is alice', 'use hotkey miner1' or 'set default subnet to 1'."
)

const helpText = `I can help you with:

Queries:
  • "what's my balance?"
  • "show my portfolio"
  • "show validators on subnet 1"
  • "list subnets"
  • "show metagraph for subnet 18"

Transactions (always confirmed first):
  • "stake 10 TAO to Taostats on subnet 1"
  • "unstake 5 TAO from Taostats on subnet 1"
  • "transfer 20 TAO to 5Grw..."
  • "register on subnet 18"

Defaults:
  • "my wallet is alice"
  • "set default subnet to 1"

Say "cancel" at any time to drop the current action.`

var followUps = map[domain.IntentTag][]string{
	domain.IntentStake:      {"View updated portfolio", "Check balance", "Stake to another validator"},
	domain.IntentUnstake:    {"View updated portfolio", "Check balance", "Stake to a new validator"},
	domain.IntentTransfer:   {"Check balance", "View portfolio"},
	domain.IntentRegister:   {"Show metagraph for the subnet", "Check balance"},
	domain.IntentBalance:    {"View portfolio", "Show top validators"},
	domain.IntentPortfolio:  {"Stake more TAO", "Unstake from a position"},
	domain.IntentValidators: {"Stake to a validator", "View metagraph"},
	domain.IntentSubnets:    {"Show validators on a subnet", "Register on a subnet"},
	domain.IntentMetagraph:  {"Stake to a validator", "Register on this subnet"},
}

// suggestions returns follow-ups for a completed intent.
// A timeout puts an explicit retry first since the executor never retries.
func suggestions(intent domain.IntentTag, res domain.ExecutionResult) []string {
	var out []string
	if res.Status == domain.StatusTimeout {
		out = append(out, "Retry the operation")
	}
	return append(out, followUps[intent]...)
}

func askMessage(slot domain.Slot) string {
	if len(slot.Examples) == 0 {
		return slot.Prompt
	}
	ex := slot.Examples
	if len(ex) > 2 {
		ex = ex[:2]
	}
	return fmt.Sprintf("%s (e.g., %s)", slot.Prompt, strings.Join(ex, ", "))
}

func correction(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg := fmt.Sprintf("That doesn't look right: %s %s", displayValue(ve.Value), ve.Reason)
		if !strings.HasSuffix(msg, "?") && !strings.HasSuffix(msg, ".") {
			msg += "."
		}
		return msg
	}
	return "That doesn't look right."
}

func displayValue(v string) string {
	if v == "" {
		return "the value"
	}
	return fmt.Sprintf("%q", v)
}

func amountLabel(v string) string {
	if v == domain.AmountAll {
		return "all available"
	}
	return v + " τ"
}

// summary renders the confirmation prompt listing every filled slot.
func summary(p *domain.PendingAction, inv domain.InvocationSpec) string {
	s := p.Slots
	var b strings.Builder
	b.WriteString("Here's what I'll do:\n\n")

	switch p.Intent {
	case domain.IntentStake:
		fmt.Fprintf(&b, "  • Stake %s to %s on subnet %s\n", amountLabel(s[domain.SlotAmount]), s[domain.SlotValidator], s[domain.SlotNetuid])
	case domain.IntentUnstake:
		fmt.Fprintf(&b, "  • Unstake %s from %s on subnet %s\n", amountLabel(s[domain.SlotAmount]), s[domain.SlotValidator], s[domain.SlotNetuid])
	case domain.IntentTransfer:
		fmt.Fprintf(&b, "  • Transfer %s to %s\n", amountLabel(s[domain.SlotAmount]), s[domain.SlotDestination])
	case domain.IntentRegister:
		fmt.Fprintf(&b, "  • Register on subnet %s\n", s[domain.SlotNetuid])
	default:
		fmt.Fprintf(&b, "  • %s\n", domain.Catalog[p.Intent].Description)
	}

	for _, name := range []domain.SlotName{domain.SlotWallet, domain.SlotHotkey} {
		if !s.Has(name) {
			continue
		}
		label := "Wallet"
		if name == domain.SlotHotkey {
			label = "Hotkey"
		}
		fmt.Fprintf(&b, "  • %s: %s", label, s[name])
		if p.WasDefaulted(name) {
			b.WriteString(" (default)")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nCommand: %s\n\n%s", inv.CommandLine(), msgProceed)
	return b.String()
}

// resultMessage is the one-line headline of a DISPLAY response.
// The transcript travels separately in Response.Result.
func resultMessage(res domain.ExecutionResult) string {
	switch res.Status {
	case domain.StatusSuccess:
		if res.Identifier != "" {
			return "Done. Transaction hash: " + res.Identifier
		}
		return "Done."
	case domain.StatusDryRun:
		return "Dry run, nothing was executed. Would run: " + res.Command
	case domain.StatusDemoMode:
		return "Demo mode, simulated result."
	case domain.StatusUnknown:
		return fmt.Sprintf("Could not tell whether the operation succeeded [%s]. Check the output before retrying.", res.ErrorKind)
	case domain.StatusTimeout:
		return fmt.Sprintf("The operation timed out [%s]: %s", res.ErrorKind, res.Error)
	default:
		return fmt.Sprintf("The operation failed [%s]: %s", res.ErrorKind, res.Error)
	}
}
