package ports

import (
	"context"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
)

// SecretProvider yields a credential for interactive entry.
// It must return domain.ErrNoInteractiveInput when no input source is available.
type SecretProvider interface {
	Secret(ctx context.Context) (string, error)
}

// SecretFunc adapts a function to SecretProvider.
type SecretFunc func(ctx context.Context) (string, error)

func (f SecretFunc) Secret(ctx context.Context) (string, error) { return f(ctx) }

// Classification is the output of an intent classifier.
type Classification struct {
	Intent     domain.IntentTag
	Slots      domain.Slots
	Confidence float64
	// Ambiguous is set when more than one intent matched with similar confidence.
	Ambiguous bool
	// Alternatives lists competing intents when Ambiguous is set.
	Alternatives []domain.IntentTag
}

// IntentClassifier turns a raw utterance into an intent plus partially extracted slots.
// The dialogue engine is agnostic to which implementation supplied the result.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string, history []domain.Turn) (Classification, error)
}

// ValidatorDirectory resolves human validator names to hotkey addresses.
type ValidatorDirectory interface {
	// Resolve returns the SS58 hotkey of name. Unknown names yield a *domain.ValidationError.
	Resolve(ctx context.Context, name string) (string, error)
}
