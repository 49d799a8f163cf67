// Package classifier provides a pattern-matching intent classifier.
//
// It recognizes the intent keywords, amounts, SS58 addresses, subnet
// identifiers and names that the dialogue engine needs without any model.
// Extracted slot values are raw; the engine validates them.
package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
)

const (
	// MatchConfidence is reported for an unambiguous keyword match.
	MatchConfidence = 0.8
	// AmbiguousConfidence is reported when several actionable intents match.
	AmbiguousConfidence = 0.4
)

var (
	ss58Pattern   = regexp.MustCompile(`\b5[1-9A-HJ-NP-Za-km-z]{47}\b`)
	netuidClause  = regexp.MustCompile(`(?i)\b(?:on\s+)?(?:subnet|sn|netuid)\s*#?\s*(\d+)\b`)
	walletClause  = regexp.MustCompile(`(?i)\b(?:from|using|with|use)\s+(?:my\s+|the\s+)?(?:wallet|coldkey)\s+([^\s,]+)`)
	hotkeyClause  = regexp.MustCompile(`(?i)\b(?:with\s+|using\s+)?hotkey\s+([^\s,]+)`)
	amountPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:tao\b|τ)?`)
	allPattern    = regexp.MustCompile(`(?i)\ball\b`)
	toTarget      = regexp.MustCompile(`(?i)\b(?:to|with|into|on)\s+(?:validator\s+)?(.+?)\s*$`)
	fromTarget    = regexp.MustCompile(`(?i)\bfrom\s+(?:validator\s+)?(.+?)\s*$`)
	bareNumber    = regexp.MustCompile(`\b(\d+)\b`)
	stakeVerb     = regexp.MustCompile(`(?i)\b(?:un)?stake\b|\b(?:un)?delegate\b|\bwithdraw\b`)
	trailingNoise = regexp.MustCompile(`(?i)[\s.!?]+$|\s+(?:please|pls)$`)
)

// setDefault patterns capture (kind, value).
var setDefaultPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:please\s+)?(?:remember|set|use|make|change)\s+(?:my\s+|the\s+)?(?:default\s+)?(wallet|coldkey|hotkey|subnet|netuid)\s+(?:as\s+|to\s+|is\s+|=\s*)?([^\s,]+)`),
	regexp.MustCompile(`(?i)^\s*(?:my\s+|the\s+)?(?:default\s+)?(wallet|coldkey|hotkey|subnet|netuid)\s+(?:is|should be|=)\s+([^\s,]+)`),
	regexp.MustCompile(`(?i)^\s*(?:i(?:'m| am)\s+)?using\s+(wallet|coldkey|hotkey)\s+([^\s,]+)`),
}

type rule struct {
	intent   domain.IntentTag
	patterns []*regexp.Regexp
}

func compile(tag domain.IntentTag, exprs ...string) rule {
	r := rule{intent: tag}
	for _, e := range exprs {
		r.patterns = append(r.patterns, regexp.MustCompile(`(?i)`+e))
	}
	return r
}

func (r rule) match(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Order matters: earlier rules win.
var rules = []rule{
	compile(domain.IntentCancel,
		`^\s*(?:cancel|stop|abort|quit|never\s*mind)\b`,
	),
	compile(domain.IntentUnstake,
		`\bunstake\b`,
		`\bremove\s+(?:\d+(?:\.\d+)?\s*(?:tao\s*)?)?stake\b`,
		`\bwithdraw\s+(?:\d|all\b)`,
		`\bundelegate\b`,
	),
	compile(domain.IntentPortfolio,
		`\bportfolio\b`,
		`\bshow\s+(?:me\s+)?(?:my\s+)?(?:stakes?|positions)\b`,
		`\bwhat(?:'s| is| are)\s+my\s+(?:stakes?|positions)\b`,
		`\blist\s+(?:my\s+)?stakes?\b`,
	),
	compile(domain.IntentStake,
		`\bstake\s+(?:\d|all\b)`,
		`\badd\s+(?:\d+(?:\.\d+)?\s*(?:tao\s*)?)?stake\b`,
		`\bdelegate\b`,
		`^\s*(?:i\s+(?:want|would like)\s+to\s+)?stake\b`,
	),
	compile(domain.IntentTransfer,
		`\b(?:transfer|send)\b`,
	),
	compile(domain.IntentRegister,
		`\bregister\b`,
		`\bjoin\s+(?:a\s+)?(?:subnet|sn)\b`,
	),
	compile(domain.IntentBalance,
		`\bbalance\b`,
		`\bhow\s+much\s+(?:tao\s+)?(?:do\s+i\s+have)\b`,
		`\bhow\s+many\s+tao\b`,
		`\bmy\s+tao\b`,
		`\bwhat\s+do\s+i\s+have\b`,
	),
	compile(domain.IntentMetagraph,
		`\bmetagraph\b`,
	),
	compile(domain.IntentValidators,
		`\bvalidators?\b`,
	),
	compile(domain.IntentSubnets,
		`\b(?:show|list)\s+(?:\w+\s+)*subnets\b`,
		`^\s*subnets?\s*$`,
		`\bwhat\s+subnets\b`,
	),
	compile(domain.IntentHelp,
		`\bhelp\b`,
		`\bwhat\s+(?:else\s+)?can\s+you\s+do\b`,
		`\bhow\s+do\s+i\b`,
		`\bhow\s+(?:does|do)\s+(?:this|taox)\s+work\b`,
		`\b(?:getting\s+started|tutorial|usage)\b`,
	),
	compile(domain.IntentGreeting,
		`^\s*(?:hi+|hello+|hey+|sup|yo+|gm|greetings)\b`,
		`^\s*good\s*(?:morning|afternoon|evening)\b`,
		`\bwhat'?s\s*(?:up|good)\b`,
		`\bhow'?s\s*it\s*going\b`,
	),
}

// Classifier is a regex implementation of ports.IntentClassifier.
type Classifier struct{}

// New returns a pattern classifier.
func New() *Classifier {
	return &Classifier{}
}

var _ ports.IntentClassifier = (*Classifier)(nil)

// Classify maps the utterance to an intent and extracts raw slot values.
// History is not consulted; follow-up context lives in the pending action.
func (c *Classifier) Classify(ctx context.Context, utterance string, history []domain.Turn) (ports.Classification, error) {
	if err := ctx.Err(); err != nil {
		return ports.Classification{}, err
	}
	text := strings.TrimSpace(utterance)
	if text == "" {
		return ports.Classification{Intent: domain.IntentUnknown}, nil
	}

	if cls, ok := classifySetDefault(text); ok {
		return cls, nil
	}

	var matched []domain.IntentTag
	for _, r := range rules {
		if r.match(text) {
			matched = append(matched, r.intent)
		}
	}
	if len(matched) == 0 {
		return ports.Classification{Intent: domain.IntentUnknown}, nil
	}

	intent := matched[0]
	cls := ports.Classification{
		Intent:     intent,
		Slots:      Extract(intent, text),
		Confidence: MatchConfidence,
	}

	// Two different state-changing operations in one utterance cannot be served.
	if domain.IsMutating(intent) {
		for _, other := range matched[1:] {
			if other != intent && domain.IsMutating(other) && !subsumes(intent, other) {
				cls.Ambiguous = true
				cls.Alternatives = append(cls.Alternatives, other)
			}
		}
		if cls.Ambiguous {
			cls.Alternatives = append([]domain.IntentTag{intent}, cls.Alternatives...)
			cls.Confidence = AmbiguousConfidence
		}
	}
	return cls, nil
}

// subsumes reports whether a match of other is implied by intent's own wording,
// as in "remove stake 5" matching both unstake and stake.
func subsumes(intent, other domain.IntentTag) bool {
	return intent == domain.IntentUnstake && other == domain.IntentStake
}

func classifySetDefault(text string) (ports.Classification, bool) {
	for _, p := range setDefaultPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var slot domain.SlotName
		switch strings.ToLower(m[1]) {
		case "wallet", "coldkey":
			slot = domain.SlotWallet
		case "hotkey":
			slot = domain.SlotHotkey
		default:
			slot = domain.SlotNetuid
		}
		return ports.Classification{
			Intent:     domain.IntentSetDefault,
			Slots:      domain.Slots{slot: trimValue(m[2])},
			Confidence: MatchConfidence,
		}, true
	}
	return ports.Classification{}, false
}

// Extract pulls raw slot values for intent out of text.
// Clauses are consumed in order so later patterns do not see earlier values.
func Extract(intent domain.IntentTag, text string) domain.Slots {
	slots := domain.Slots{}
	rest := text

	take := func(re *regexp.Regexp, name domain.SlotName) {
		if m := re.FindStringSubmatchIndex(rest); m != nil {
			slots[name] = trimValue(rest[m[2]:m[3]])
			rest = rest[:m[0]] + " " + rest[m[1]:]
		}
	}

	if addr := ss58Pattern.FindString(rest); addr != "" {
		switch intent {
		case domain.IntentTransfer:
			slots[domain.SlotDestination] = addr
		case domain.IntentStake, domain.IntentUnstake:
			slots[domain.SlotValidator] = addr
		}
		rest = strings.Replace(rest, addr, " ", 1)
	}

	take(walletClause, domain.SlotWallet)
	if intent == domain.IntentRegister {
		take(hotkeyClause, domain.SlotHotkey)
	}
	take(netuidClause, domain.SlotNetuid)

	switch intent {
	case domain.IntentStake, domain.IntentUnstake, domain.IntentTransfer:
		if m := amountPattern.FindStringSubmatchIndex(rest); m != nil {
			slots[domain.SlotAmount] = rest[m[2]:m[3]]
			rest = rest[:m[0]] + " " + rest[m[1]:]
		} else if allPattern.MatchString(rest) {
			slots[domain.SlotAmount] = domain.AmountAll
		}
	case domain.IntentRegister, domain.IntentMetagraph, domain.IntentValidators:
		if !slots.Has(domain.SlotNetuid) {
			if m := bareNumber.FindStringSubmatch(rest); m != nil {
				slots[domain.SlotNetuid] = m[1]
			}
		}
	}

	if (intent == domain.IntentStake || intent == domain.IntentUnstake) && !slots.Has(domain.SlotValidator) {
		target := toTarget
		if intent == domain.IntentUnstake {
			target = fromTarget
		}
		// Only look past the last verb so "I want to stake" yields no target.
		if verbs := stakeVerb.FindAllStringIndex(rest, -1); len(verbs) > 0 {
			rest = rest[verbs[len(verbs)-1][1]:]
		}
		if m := target.FindStringSubmatch(rest); m != nil {
			if v := trimValue(m[1]); v != "" && !strings.EqualFold(v, "tao") {
				slots[domain.SlotValidator] = v
			}
		}
	}
	return slots
}

func trimValue(s string) string {
	s = strings.TrimSpace(s)
	for {
		t := strings.TrimSpace(trailingNoise.ReplaceAllString(s, ""))
		if t == s {
			return strings.Trim(s, `"'`)
		}
		s = t
	}
}
