package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		session.Pending = domain.NewPendingAction("p-1", domain.IntentStake, domain.Slots{domain.SlotAmount: "10"})
		session.Pending.MarkAsked(domain.SlotValidator)
		session.AddTurn(domain.RoleUser, "stake 10 TAO")

		err := store.Save(ctx, sessionID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.NotNil(t, loaded.Pending)
		assert.Equal(t, domain.IntentStake, loaded.Pending.Intent)
		assert.Equal(t, "10", loaded.Pending.Slots[domain.SlotAmount])
		assert.Equal(t, domain.SlotValidator, loaded.Pending.Awaiting)
		assert.Equal(t, domain.StateSlotFilling, loaded.State())
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "stake 10 TAO", loaded.History[0].Text)
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		session := domain.NewSession(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, session))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.LastCompleted = domain.IntentTransfer

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Empty(t, again.LastCompleted)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewSession(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1))
		_ = store.Save(ctx, id2, domain.NewSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunPreferencesContract verifies that a PreferencesStore implementation honours
// the get/set semantics and tolerates concurrent access.
func RunPreferencesContract(t *testing.T, prefs PreferencesStore) {
	ctx := context.Background()

	t.Run("Get Missing", func(t *testing.T) {
		_, ok, err := prefs.Get(ctx, "missing-key")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, prefs.Set(ctx, domain.PrefDefaultWallet, "alice"))

		v, ok, err := prefs.Get(ctx, domain.PrefDefaultWallet)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "alice", v)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, prefs.Set(ctx, domain.PrefDefaultNetuid, "1"))
		require.NoError(t, prefs.Set(ctx, domain.PrefDefaultNetuid, "18"))

		v, _, err := prefs.Get(ctx, domain.PrefDefaultNetuid)
		require.NoError(t, err)
		assert.Equal(t, "18", v)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, prefs.Set(ctx, domain.PrefDefaultHotkey, "hk"))

		all, err := prefs.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hk", all[domain.PrefDefaultHotkey])
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, prefs.Set(ctx, fmt.Sprintf("k%d", i), "v"))
			}(i)
			go func() {
				defer wg.Done()
				_, _, err := prefs.Get(ctx, domain.PrefDefaultWallet)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		all, err := prefs.List(ctx)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			assert.Equal(t, "v", all[fmt.Sprintf("k%d", i)])
		}
	})
}
