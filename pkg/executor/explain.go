package executor

import (
	"regexp"
	"strings"
)

// Cause is a recognized failure cause with user guidance.
type Cause struct {
	Category    string
	Message     string
	SafeToRetry bool
}

type causePattern struct {
	re    *regexp.Regexp
	cause Cause
}

var causes = []causePattern{
	{regexp.MustCompile(`(?i)(ratelimitexceeded|rate.?limit|custom error:?\s*6)`), Cause{"rate_limit", "You're rate limited. Wait a few minutes before trying again.", false}},
	{regexp.MustCompile(`(?i)(registration.*full|interval.*full|try again in\s*\d+\s*blocks?)`), Cause{"interval_full", "Subnet registration is full right now.", false}},
	{regexp.MustCompile(`(?i)(insufficient|not enough|balance too low)`), Cause{"insufficient_balance", "Not enough free TAO to cover amount + fee.", false}},
	{regexp.MustCompile(`(?i)(invalid.*address|invalid.*ss58|bad address)`), Cause{"invalid_address", "The address you provided is invalid.", true}},
	{regexp.MustCompile(`(?i)(network error|connection refused|could not connect|rpc.*error|endpoint.*unreachable)`), Cause{"network_error", "Cannot reach the network. Check your connection or RPC endpoint.", true}},
	{regexp.MustCompile(`(?i)(invalid.*transaction|transaction.*rejected|stale nonce|bad signature)`), Cause{"invalid_transaction", "Transaction was rejected by the network.", false}},
	{regexp.MustCompile(`(?i)(wallet.*not found|no wallet|cannot find wallet|coldkey.*not found)`), Cause{"wallet_not_found", "Wallet not found.", true}},
	{regexp.MustCompile(`(?i)(hotkey.*not found|no hotkey|cannot find hotkey)`), Cause{"hotkey_not_found", "Hotkey not found.", true}},
	{regexp.MustCompile(`(?i)already registered`), Cause{"already_registered", "You're already registered on this subnet.", false}},
	{regexp.MustCompile(`(?i)(not registered|must be registered)`), Cause{"not_registered", "You need to be registered on this subnet first.", false}},
	{regexp.MustCompile(`(?i)(permission denied|access denied|unauthorized|wrong password|decryption failed)`), Cause{"permission_denied", "Permission denied. Check your password or permissions.", true}},
}

// Explain maps a redacted transcript to a known failure cause.
func Explain(transcript string) (Cause, bool) {
	for _, c := range causes {
		if c.re.MatchString(transcript) {
			return c.cause, true
		}
	}
	return Cause{}, false
}

// excerpt returns the last non-empty lines of s, at most max lines.
func excerpt(s string, max int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < max; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			kept = append([]string{l}, kept...)
		}
	}
	return strings.Join(kept, "\n")
}
