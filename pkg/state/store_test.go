package state

import (
	"sync"
	"testing"

	"github.com/shouni/product-scene-studio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetNotifiesListeners(t *testing.T) {
	store := NewStore(State{Prompt: "initial"})

	var got []State
	unsubscribe := store.Subscribe(func(s State) {
		got = append(got, s)
	})

	store.Set(func(s *State) { s.IsLoading = true })
	store.Set(func(s *State) { s.Error = "boom" })

	require.Len(t, got, 2)
	assert.True(t, got[0].IsLoading)
	assert.Empty(t, got[0].Error)
	assert.Equal(t, "initial", got[1].Prompt)
	assert.Equal(t, "boom", got[1].Error)

	unsubscribe()
	store.Set(func(s *State) { s.Prompt = "after" })
	assert.Len(t, got, 2, "解除後は通知されないのだ")
	assert.Equal(t, "after", store.Snapshot().Prompt)
}

func TestStore_ReplacesInsteadOfMutating(t *testing.T) {
	store := NewStore(State{})
	store.Set(func(s *State) {
		s.GeneratedImages = []domain.GeneratedImage{{Name: "a"}}
	})

	before := store.Snapshot()
	before.GeneratedImages[0].Name = "changed outside"

	assert.Equal(t, "a", store.Snapshot().GeneratedImages[0].Name)
}

func TestStore_PreservesNilVersusEmpty(t *testing.T) {
	store := NewStore(State{})
	assert.Nil(t, store.Snapshot().GeneratedImages)

	store.Set(func(s *State) { s.GeneratedImages = []domain.GeneratedImage{} })
	got := store.Snapshot().GeneratedImages
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_Transition(t *testing.T) {
	store := NewStore(State{})
	notified := 0
	store.Subscribe(func(State) { notified++ })

	notLoading := func(s State) bool { return !s.IsLoading }
	setLoading := func(s *State) { s.IsLoading = true }

	assert.True(t, store.Transition(notLoading, setLoading))
	assert.False(t, store.Transition(notLoading, setLoading))
	assert.Equal(t, 1, notified, "guard が false のときは通知しないのだ")
}

func TestStore_TransitionIsAtomic(t *testing.T) {
	store := NewStore(State{})
	notLoading := func(s State) bool { return !s.IsLoading }

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		started int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.Transition(notLoading, func(s *State) { s.IsLoading = true }) {
				mu.Lock()
				started++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, started)
}
