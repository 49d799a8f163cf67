package memory_test

import (
	"context"
	"testing"

	"github.com/DanielDerefaka/tao-cli/pkg/adapters/memory"
	"github.com/DanielDerefaka/tao-cli/pkg/domain"
	"github.com/DanielDerefaka/tao-cli/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryPreferences_Contract(t *testing.T) {
	ports.RunPreferencesContract(t, memory.NewPreferences(nil))
}

func TestMemoryPreferences_Seeded(t *testing.T) {
	seed := map[string]string{domain.PrefDefaultWallet: "alice"}
	prefs := memory.NewPreferences(seed)
	seed[domain.PrefDefaultWallet] = "mallory"

	v, ok, err := prefs.Get(context.Background(), domain.PrefDefaultWallet)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestMemoryAuditLog(t *testing.T) {
	log := memory.NewAuditLog()
	_ = log.Record(context.Background(), domain.AuditRecord{Intent: domain.IntentStake, Status: domain.StatusSuccess})

	records := log.Records()
	assert.Len(t, records, 1)
	records[0].Status = domain.StatusFailed
	assert.Equal(t, domain.StatusSuccess, log.Records()[0].Status)
}
