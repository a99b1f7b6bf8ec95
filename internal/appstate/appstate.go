// internal/appstate/appstate.go
package appstate

import (
	"sync"
)

// User is the signed-in shopper, if any.
type User struct {
	ID    string
	Name  string
	Email string
}

// State is a snapshot of application-wide state shared between views.
// Version increases with every change, so a reader can drop snapshots that
// arrive out of order.
type State struct {
	Version   uint64
	CartCount int
	CartItems map[string]int
	User      *User
}

// Store is the application state the catalog browser reads and updates.
//
// Get returns a snapshot; mutating it has no effect on the store.
// Subscribe registers fn to receive every snapshot produced after a change
// and returns a func that removes the subscription. fn is called
// synchronously from the goroutine that made the change and must not call
// back into the store.
type Store interface {
	Get() State
	Subscribe(fn func(State)) (unsubscribe func())
	AddToCart(productID string, quantity int)
	SetUser(user *User)
}

type memoryStore struct {
	mu          sync.RWMutex
	state       State
	nextID      int
	subscribers map[int]func(State)
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore() Store {
	return &memoryStore{
		state:       State{CartItems: make(map[string]int)},
		subscribers: make(map[int]func(State)),
	}
}

func (s *memoryStore) Get() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *memoryStore) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *memoryStore) AddToCart(productID string, quantity int) {
	if productID == "" || quantity <= 0 {
		return
	}
	s.update(func(st *State) {
		st.CartItems[productID] += quantity
		st.CartCount += quantity
	})
}

func (s *memoryStore) SetUser(user *User) {
	s.update(func(st *State) {
		if user == nil {
			st.User = nil
			return
		}
		u := *user
		st.User = &u
	})
}

func (s *memoryStore) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.Version++
	snap := s.snapshot()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// snapshot must be called with s.mu held.
func (s *memoryStore) snapshot() State {
	snap := State{
		Version:   s.state.Version,
		CartCount: s.state.CartCount,
		CartItems: make(map[string]int, len(s.state.CartItems)),
	}
	for k, v := range s.state.CartItems {
		snap.CartItems[k] = v
	}
	if s.state.User != nil {
		u := *s.state.User
		snap.User = &u
	}
	return snap
}
