package physac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyPoolInsertAndExhaust(t *testing.T) {
	pool := NewBodyPool(2)
	body := *testCircle(t, Vector2{}, 1)

	h0, err := pool.insert(body)
	require.NoError(t, err)
	h1, err := pool.insert(body)
	require.NoError(t, err)

	assert.Equal(t, Handle{Index: 0, Generation: 1}, h0)
	assert.Equal(t, Handle{Index: 1, Generation: 1}, h1)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, 0, pool.Available())

	_, err = pool.insert(body)
	assert.ErrorIs(t, err, ErrPoolExhausted)
	assert.Equal(t, 2, pool.Len())

	b, ok := pool.Get(h1)
	require.True(t, ok)
	assert.Equal(t, h1, b.ID)
}

func TestBodyPoolStaleHandles(t *testing.T) {
	pool := NewBodyPool(2)
	body := *testCircle(t, Vector2{}, 1)

	h0, err := pool.insert(body)
	require.NoError(t, err)
	h1, err := pool.insert(body)
	require.NoError(t, err)

	require.NoError(t, pool.remove(h0))
	assert.Nil(t, pool.lookup(h0))
	assert.ErrorIs(t, pool.remove(h0), ErrNotFound)

	// the freed slot is reused with a new generation
	h2, err := pool.insert(body)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), h2.Index)
	assert.Equal(t, uint32(2), h2.Generation)
	assert.Nil(t, pool.lookup(h0))
	assert.NotNil(t, pool.lookup(h2))

	// creation order skips the removed body
	first, ok := pool.At(0)
	require.True(t, ok)
	assert.Equal(t, h1, first)
	second, ok := pool.At(1)
	require.True(t, ok)
	assert.Equal(t, h2, second)
	_, ok = pool.At(2)
	assert.False(t, ok)
	_, ok = pool.At(-1)
	assert.False(t, ok)
}

func TestBodyPoolRejectsForeignHandles(t *testing.T) {
	pool := NewBodyPool(1)
	assert.Nil(t, pool.lookup(Handle{}))
	assert.Nil(t, pool.lookup(Handle{Index: 5, Generation: 1}))
	assert.Nil(t, pool.lookup(Handle{Index: 0, Generation: 1}))
	assert.True(t, Handle{}.IsZero())
}

func TestBodyPoolClear(t *testing.T) {
	pool := NewBodyPool(3)
	body := *testCircle(t, Vector2{}, 1)

	var handles []Handle
	for i := 0; i < 3; i++ {
		h, err := pool.insert(body)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	pool.clear()
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 3, pool.Available())
	for _, h := range handles {
		assert.Nil(t, pool.lookup(h))
	}

	h, err := pool.insert(body)
	require.NoError(t, err)
	assert.Equal(t, Handle{Index: 0, Generation: 2}, h)
}
