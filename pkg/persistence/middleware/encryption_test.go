package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/persistence/middleware"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sealed(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, sealed(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	s := domain.NewSession("enc-session")
	s.AddTurn(domain.RoleUser, "transfer 5 to 5F4tQyWrhfGVcNhoqeiNsR6KjD4wMZ2kfhLj4oHYuyHbZAc3")
	s.LastUsed = domain.Slots{domain.SlotWallet: "cold"}

	require.NoError(t, secure.Save(ctx, s.ID, s))

	raw, err := underlying.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.History, "history must not reach the inner store")
	assert.Empty(t, raw.LastUsed)
	assert.NotContains(t, raw.Sealed, "5F4tQy")

	loaded, err := secure.Load(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, loaded.History, 1)
	assert.Equal(t, s.History[0].Text, loaded.History[0].Text)
	assert.Equal(t, "cold", loaded.LastUsed[domain.SlotWallet])
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	s := domain.NewSession("rotation")
	s.AddTurn(domain.RoleUser, "old")
	require.NoError(t, oldStore.Save(ctx, s.ID, s))

	newStore := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, s.ID)
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "old", loaded.History[0].Text)

	require.NoError(t, newStore.Save(ctx, s.ID, loaded))
	_, err = oldStore.Load(ctx, s.ID)
	assert.Error(t, err, "data re-sealed with the new key must not open with the old one")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, "plain", domain.NewSession("plain")))

	_, err := sealed(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey(strings.Repeat("ab", 16))
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
	_, err = middleware.ParseKey("not-hex")
	assert.Error(t, err)
}
