// Package registry defines the persisted state of the bot (user records,
// already-notified guest nicks, channel history) and the Store port it is
// loaded from and saved to. The bot core only depends on the port; the
// SQLite implementation lives alongside it.
package registry

import (
	"context"

	"github.com/4poc/zgbot/internal/users"
)

// State is the logical shape of everything the bot persists.
type State struct {
	Users         map[string]users.Record
	IgnoredGuests []string
	History       map[string][]int64
}

// NewState returns an empty, fully-initialized state.
func NewState() *State {
	return &State{
		Users:   make(map[string]users.Record),
		History: make(map[string][]int64),
	}
}

// Store loads and saves the registry. Save replaces the stored state
// wholesale; the registry is small and mutated rarely.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, st *State) error
}
