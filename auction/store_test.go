package auction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		id, err := store.Append(ctx, &Auction{Item: "lot", StartAt: 1, EndAt: 2})
		require.NoError(t, err)
		assert.Equal(t, ID(i), id)
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, a := range all {
		assert.Equal(t, ID(i), a.ID)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Append(ctx, &Auction{Item: "painting", StartingPrice: 100, StartAt: 1, EndAt: 2})
	require.NoError(t, err)

	a, err := store.Get(ctx, id)
	require.NoError(t, err)

	// Mutating the returned record must not touch the stored one.
	a.Stopped = true
	a.FinalPrice = 42

	fresh, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, fresh.Stopped)
	assert.Equal(t, Amount(0), fresh.FinalPrice)
}

func TestMemoryStore_GetUnknownID(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MarkSettledOneShot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Append(ctx, &Auction{Item: "lot", StartAt: 1, EndAt: 2})
	require.NoError(t, err)

	require.NoError(t, store.MarkSettled(ctx, id, 90))

	a, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, a.Stopped)
	assert.Equal(t, Amount(90), a.FinalPrice)

	// A second settlement of the same id must never succeed, and must not
	// overwrite the final price.
	err = store.MarkSettled(ctx, id, 50)
	assert.ErrorIs(t, err, ErrStopped)

	a, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Amount(90), a.FinalPrice)
}

func TestMemoryStore_MarkSettledUnknownID(t *testing.T) {
	store := NewMemoryStore()

	err := store.MarkSettled(context.Background(), 3, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
