package appstate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_AddToCart(t *testing.T) {
	store := NewMemoryStore()

	var seen []int
	unsubscribe := store.Subscribe(func(s State) {
		seen = append(seen, s.CartCount)
	})

	store.AddToCart("p1", 1)
	store.AddToCart("p1", 2)
	store.AddToCart("p2", 1)
	store.AddToCart("", 1)
	store.AddToCart("p3", 0)

	state := store.Get()
	assert.Equal(t, 4, state.CartCount)
	assert.Equal(t, map[string]int{"p1": 3, "p2": 1}, state.CartItems)
	assert.Equal(t, []int{1, 3, 4}, seen)

	unsubscribe()
	unsubscribe()
	store.AddToCart("p2", 1)
	assert.Equal(t, []int{1, 3, 4}, seen)
}

func TestMemoryStore_SnapshotIsolation(t *testing.T) {
	store := NewMemoryStore()
	store.AddToCart("p1", 1)
	store.SetUser(&User{ID: "u1", Name: "Kani"})

	snap := store.Get()
	snap.CartItems["p1"] = 99
	snap.User.Name = "changed"

	again := store.Get()
	assert.Equal(t, 1, again.CartItems["p1"])
	require.NotNil(t, again.User)
	assert.Equal(t, "Kani", again.User.Name)

	store.SetUser(nil)
	assert.Nil(t, store.Get().User)
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddToCart("p1", 1)
			_ = store.Get()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Get().CartCount)
}

func TestMemoryStore_Version(t *testing.T) {
	store := NewMemoryStore()
	assert.Zero(t, store.Get().Version)

	var versions []uint64
	unsubscribe := store.Subscribe(func(s State) {
		versions = append(versions, s.Version)
	})
	defer unsubscribe()

	store.AddToCart("p1", 1)
	store.SetUser(&User{ID: "u1", Name: "Kani"})
	store.AddToCart("p2", 1)

	assert.Equal(t, []uint64{1, 2, 3}, versions)
	assert.Equal(t, uint64(3), store.Get().Version)
}
