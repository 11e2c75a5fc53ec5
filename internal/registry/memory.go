package registry

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a process-local Store for tests and throwaway setups.
type MemoryStore struct {
	mu sync.Mutex
	st *State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: NewState()}
}

func (m *MemoryStore) Load(ctx context.Context) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.st), nil
}

func (m *MemoryStore) Save(ctx context.Context, st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = copyState(st)
	return nil
}

func copyState(st *State) *State {
	out := NewState()
	for nick, rec := range st.Users {
		cp := rec
		cp.Alts = slices.Clone(rec.Alts)
		out.Users[nick] = cp
	}
	out.IgnoredGuests = slices.Clone(st.IgnoredGuests)
	for channel, ids := range st.History {
		out.History[channel] = slices.Clone(ids)
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
