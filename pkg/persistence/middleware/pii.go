package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/executor"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
)

type redactionMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that scrubs conversation history
// before it is written. Every turn goes through the executor's keyword-anchored
// redaction ("mnemonic: ...", "password=..."); text matching any of the extra
// patterns is masked as well. The in-memory session is never modified.
func NewRedactionMiddleware(patternStrings ...string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, session *domain.Session) error {
	cloned := session.Clone()
	for i := range cloned.History {
		cloned.History[i].Text = m.mask(cloned.History[i].Text)
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactionMiddleware) mask(text string) string {
	text = executor.Redact(text)
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, executor.RedactionMarker)
	}
	return text
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
