package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
)

func newTestKV(t *testing.T) *KVStorage {
	t.Helper()

	store, err := NewStore(common.NewSilentLogger(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewKVStorage(store, common.NewSilentLogger())
}

func TestKVStorage_SetGet(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "portfolio:previous", `{"entries":[]}`))

	value, err := kv.Get(ctx, "portfolio:previous")
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[]}`, value)
}

func TestKVStorage_Overwrite(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "first"))
	require.NoError(t, kv.Set(ctx, "k", "second"))

	value, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestKVStorage_MissingKey(t *testing.T) {
	kv := newTestKV(t)

	_, err := kv.Get(context.Background(), "absent")
	assert.Error(t, err)
}

func TestKVStorage_Delete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.Error(t, err)

	// Deleting an absent key is not an error.
	assert.NoError(t, kv.Delete(ctx, "k"))
}
