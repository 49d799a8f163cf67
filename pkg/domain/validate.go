package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// AmountAll is the sentinel amount meaning "the whole balance".
const AmountAll = "all"

const (
	ss58Length    = 48
	maxNameLength = 64
	maxNetuid     = 65535
)

var (
	amountSuffix = regexp.MustCompile(`(?i)\s*(tao|τ)$`)
	netuidInput  = regexp.MustCompile(`(?i)^(?:subnet|sn|netuid)?\s*#?\s*(\d+)$`)
	base58       = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]+$`)
)

// ValidateValue normalizes raw according to the slot type.
func ValidateValue(t SlotType, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	switch t {
	case SlotTypeAmount:
		return ValidateAmount(v)
	case SlotTypeAddress:
		return ValidateAddress(v)
	case SlotTypeIdentifier:
		return ValidateNetuid(v)
	case SlotTypeName:
		return ValidateName(v)
	default:
		if v == "" {
			return "", &ValidationError{Value: raw, Reason: "must not be empty"}
		}
		return v, nil
	}
}

// ValidateAmount accepts a positive decimal number or the "all" sentinel.
func ValidateAmount(raw string) (string, error) {
	v := strings.TrimSpace(amountSuffix.ReplaceAllString(strings.TrimSpace(raw), ""))
	if strings.EqualFold(v, AmountAll) {
		return AmountAll, nil
	}
	if v == "" {
		return "", &ValidationError{Slot: SlotAmount, Value: raw, Reason: "must be a positive number or 'all'"}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &ValidationError{Slot: SlotAmount, Value: raw, Reason: "must be a positive number or 'all'"}
	}
	if f <= 0 {
		return "", &ValidationError{Slot: SlotAmount, Value: raw, Reason: "must be greater than zero"}
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// ValidateAddress accepts an SS58 address (48 base58 characters starting with '5').
func ValidateAddress(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if len(v) != ss58Length || !strings.HasPrefix(v, "5") || !base58.MatchString(v) {
		return "", &ValidationError{Slot: SlotDestination, Value: raw, Reason: "must be an SS58 address starting with 5"}
	}
	return v, nil
}

// IsAddress reports whether s looks like an SS58 address.
func IsAddress(s string) bool {
	_, err := ValidateAddress(s)
	return err == nil
}

// ValidateNetuid accepts "1", "sn1", "subnet 18" and returns the bare integer.
func ValidateNetuid(raw string) (string, error) {
	m := netuidInput.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", &ValidationError{Slot: SlotNetuid, Value: raw, Reason: "must be a subnet number"}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > maxNetuid {
		return "", &ValidationError{Slot: SlotNetuid, Value: raw, Reason: "is out of range"}
	}
	return strconv.Itoa(n), nil
}

// ValidateName accepts a non-empty name that cannot be mistaken for a flag.
func ValidateName(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	switch {
	case v == "":
		return "", &ValidationError{Value: raw, Reason: "must not be empty"}
	case strings.HasPrefix(v, "-"):
		return "", &ValidationError{Value: raw, Reason: "must not start with '-'"}
	case len(v) > maxNameLength:
		return "", &ValidationError{Value: raw, Reason: "is too long"}
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return "", &ValidationError{Value: raw, Reason: "contains control characters"}
		}
	}
	return v, nil
}
