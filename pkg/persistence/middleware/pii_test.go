package middleware_test

import (
	"context"
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/persistence/middleware"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_Contract(t *testing.T) {
	mw, err := middleware.NewRedactionMiddleware()
	require.NoError(t, err)
	ports.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestRedactionMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware(`\b\d{3}-\d{2}-\d{4}\b`)
	require.NoError(t, err)
	store := mw(underlying)

	ctx := context.Background()
	s := domain.NewSession("pii-session")
	s.AddTurn(domain.RoleUser, "my mnemonic: abandon ability able about")
	s.AddTurn(domain.RoleUser, "ssn 999-99-9999 please")
	s.AddTurn(domain.RoleAssistant, "Done. Transaction hash: 0x9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08")

	require.NoError(t, store.Save(ctx, s.ID, s))

	assert.Equal(t, "my mnemonic: abandon ability able about", s.History[0].Text, "in-memory session must not change")

	stored, err := underlying.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "my mnemonic: [REDACTED]", stored.History[0].Text)
	assert.Equal(t, "ssn [REDACTED] please", stored.History[1].Text)
	assert.Contains(t, stored.History[2].Text, "0x9f86d0", "hashes are not secrets")
}

func TestRedactionMiddleware_KeyMaterialOnNextLine(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware()
	require.NoError(t, err)
	store := mw(underlying)

	ctx := context.Background()
	s := domain.NewSession("mnemonic-lines")
	s.AddTurn(domain.RoleAssistant, "The mnemonic to the new coldkey is:\n\nabandon ability able about\n\nKeep it safe.")
	s.AddTurn(domain.RoleUser, "my password is hunter2")
	require.NoError(t, store.Save(ctx, s.ID, s))

	stored, err := underlying.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.History[0].Text, "abandon")
	assert.Contains(t, stored.History[0].Text, "Keep it safe.")
	assert.Equal(t, "my password is [REDACTED]", stored.History[1].Text)
}

func TestRedactionMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewRedactionMiddleware(`(`)
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactionMiddleware()
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(underlying, redact, seal)

	ctx := context.Background()
	s := domain.NewSession("chain")
	s.AddTurn(domain.RoleUser, "password=hunter2")
	require.NoError(t, store.Save(ctx, s.ID, s))

	raw, err := underlying.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "password=[REDACTED]", loaded.History[0].Text, "redaction runs before sealing")
}
