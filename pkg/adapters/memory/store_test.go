package memory_test

import (
	"context"
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunDatasetStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	d := &ports.Dataset{ID: "a", Data: []byte(`{}`)}
	require.NoError(t, store.Save(ctx, d))

	d.Data[0] = '['
	loaded, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), loaded.Data)

	loaded.Data[0] = '['
	again, _ := store.Load(ctx, "a")
	assert.Equal(t, []byte(`{}`), again.Data)
}
