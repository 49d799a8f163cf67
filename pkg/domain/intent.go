package domain

// IntentTag identifies the classified purpose of an utterance.
type IntentTag string

const (
	IntentStake      IntentTag = "stake"
	IntentUnstake    IntentTag = "unstake"
	IntentTransfer   IntentTag = "transfer"
	IntentRegister   IntentTag = "register"
	IntentBalance    IntentTag = "balance"
	IntentPortfolio  IntentTag = "portfolio"
	IntentValidators IntentTag = "validators"
	IntentSubnets    IntentTag = "subnets"
	IntentMetagraph  IntentTag = "metagraph"

	// Meta intents never create a pending action.
	IntentHelp       IntentTag = "help"
	IntentGreeting   IntentTag = "greeting"
	IntentSetDefault IntentTag = "set_default"
	IntentCancel     IntentTag = "cancel"
	IntentUnknown    IntentTag = "unknown"
)

// IsMeta reports whether the intent is handled without a pending action.
func (t IntentTag) IsMeta() bool {
	switch t {
	case IntentHelp, IntentGreeting, IntentSetDefault, IntentCancel, IntentUnknown, "":
		return true
	}
	return false
}

// SlotName is the name of a parameter an intent requires.
type SlotName string

const (
	SlotAmount      SlotName = "amount"
	SlotValidator   SlotName = "validator"
	SlotNetuid      SlotName = "netuid"
	SlotWallet      SlotName = "wallet"
	SlotHotkey      SlotName = "hotkey"
	SlotDestination SlotName = "destination"
)

// SlotType selects the validator applied to a slot value.
type SlotType string

const (
	SlotTypeAmount     SlotType = "amount"
	SlotTypeAddress    SlotType = "address"
	SlotTypeIdentifier SlotType = "identifier"
	SlotTypeName       SlotType = "name"
)

// Preference keys used for remembered defaults.
const (
	PrefDefaultWallet = "default_wallet"
	PrefDefaultHotkey = "default_hotkey"
	PrefDefaultNetuid = "default_netuid"
)

// Slot declares a named field of an intent.
type Slot struct {
	Name     SlotName
	Type     SlotType
	Required bool
	Prompt   string
	Examples []string
	// DefaultKey is the preference key used to auto-fill the slot, if any.
	DefaultKey string
}

// Validate normalizes raw against the slot type.
func (s Slot) Validate(raw string) (string, error) {
	v, err := ValidateValue(s.Type, raw)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Slot = s.Name
		}
		return "", err
	}
	return v, nil
}

// IntentSpec is the catalog entry of an actionable intent.
type IntentSpec struct {
	Tag         IntentTag
	Description string
	// Mutating intents must be confirmed before execution.
	Mutating bool
	// Slots are listed in the order they are asked for.
	Slots []Slot
}

// Slot returns the slot declaration with the given name.
func (s IntentSpec) Slot(name SlotName) (Slot, bool) {
	for _, sl := range s.Slots {
		if sl.Name == name {
			return sl, true
		}
	}
	return Slot{}, false
}

// Slots maps slot names to their (normalized) values.
type Slots map[SlotName]string

// Clone returns a copy of the map.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether the slot has a non-empty value.
func (s Slots) Has(name SlotName) bool {
	return s[name] != ""
}

var (
	amountSlot = func(verb string) Slot {
		return Slot{
			Name:     SlotAmount,
			Type:     SlotTypeAmount,
			Required: true,
			Prompt:   "How much TAO would you like to " + verb + "?",
			Examples: []string{"10", "50.5", "all"},
		}
	}
	walletSlot = Slot{
		Name:       SlotWallet,
		Type:       SlotTypeName,
		Prompt:     "Which wallet should I use?",
		Examples:   []string{"default", "my-wallet"},
		DefaultKey: PrefDefaultWallet,
	}
)

// Catalog is the closed set of actionable intents.
var Catalog = map[IntentTag]IntentSpec{
	IntentStake: {
		Tag:         IntentStake,
		Description: "Stake TAO to a validator",
		Mutating:    true,
		Slots: []Slot{
			amountSlot("stake"),
			{Name: SlotValidator, Type: SlotTypeName, Required: true, Prompt: "Which validator would you like to stake to?", Examples: []string{"Taostats", "OpenTensor Foundation"}},
			{Name: SlotNetuid, Type: SlotTypeIdentifier, Required: true, Prompt: "On which subnet?", Examples: []string{"1", "18"}, DefaultKey: PrefDefaultNetuid},
			walletSlot,
		},
	},
	IntentUnstake: {
		Tag:         IntentUnstake,
		Description: "Remove stake from a validator",
		Mutating:    true,
		Slots: []Slot{
			amountSlot("unstake"),
			{Name: SlotValidator, Type: SlotTypeName, Required: true, Prompt: "Which validator would you like to unstake from?", Examples: []string{"Taostats"}},
			{Name: SlotNetuid, Type: SlotTypeIdentifier, Required: true, Prompt: "On which subnet?", Examples: []string{"1", "18"}, DefaultKey: PrefDefaultNetuid},
			walletSlot,
		},
	},
	IntentTransfer: {
		Tag:         IntentTransfer,
		Description: "Transfer TAO to another address",
		Mutating:    true,
		Slots: []Slot{
			amountSlot("transfer"),
			{Name: SlotDestination, Type: SlotTypeAddress, Required: true, Prompt: "What is the destination address?", Examples: []string{"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"}},
			walletSlot,
		},
	},
	IntentRegister: {
		Tag:         IntentRegister,
		Description: "Register a hotkey on a subnet",
		Mutating:    true,
		Slots: []Slot{
			{Name: SlotNetuid, Type: SlotTypeIdentifier, Required: true, Prompt: "Which subnet would you like to register on?", Examples: []string{"1", "18"}, DefaultKey: PrefDefaultNetuid},
			walletSlot,
			{Name: SlotHotkey, Type: SlotTypeName, Prompt: "Which hotkey should be registered?", Examples: []string{"default"}, DefaultKey: PrefDefaultHotkey},
		},
	},
	IntentBalance: {
		Tag:         IntentBalance,
		Description: "Show wallet balance",
		Slots:       []Slot{walletSlot},
	},
	IntentPortfolio: {
		Tag:         IntentPortfolio,
		Description: "Show stake positions",
		Slots:       []Slot{walletSlot},
	},
	IntentValidators: {
		Tag:         IntentValidators,
		Description: "List validators",
		Slots: []Slot{
			{Name: SlotNetuid, Type: SlotTypeIdentifier, Prompt: "On which subnet?", Examples: []string{"1"}},
		},
	},
	IntentSubnets: {
		Tag:         IntentSubnets,
		Description: "List subnets",
	},
	IntentMetagraph: {
		Tag:         IntentMetagraph,
		Description: "Show a subnet metagraph",
		Slots: []Slot{
			{Name: SlotNetuid, Type: SlotTypeIdentifier, Required: true, Prompt: "Which subnet's metagraph?", Examples: []string{"1"}},
		},
	},
}

// Lookup returns the catalog entry of an actionable intent.
func Lookup(tag IntentTag) (IntentSpec, bool) {
	spec, ok := Catalog[tag]
	return spec, ok
}

// IsMutating reports whether the intent changes on-chain state.
func IsMutating(tag IntentTag) bool {
	return Catalog[tag].Mutating
}
