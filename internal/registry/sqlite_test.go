package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4poc/zgbot/internal/users"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "registry.db")
	s, err := OpenSQLite(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleState() *State {
	st := NewState()
	st.Users["alice"] = users.Record{
		Email:     "alice@example.com",
		Secret:    "s3cret",
		Shortcuts: true,
		Notify:    true,
		Alts:      []string{"alice_", "bob2"},
	}
	st.Users["carol"] = users.Record{Email: "carol@example.com", Secret: "x"}
	st.IgnoredGuests = []string{"drive-by"}
	st.History = map[string][]int64{
		"#chan":  {10, 20, 30},
		"#other": {7},
	}
	return st
}

func TestSQLiteStore_EmptyLoad(t *testing.T) {
	s := newTestStore(t)

	st, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, st.Users)
	assert.Empty(t, st.IgnoredGuests)
	assert.Empty(t, st.History)
	require.NotNil(t, st.Users)
	require.NotNil(t, st.History)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleState()))

	st, err := s.Load(ctx)
	require.NoError(t, err)

	require.Contains(t, st.Users, "alice")
	alice := st.Users["alice"]
	assert.Equal(t, "alice@example.com", alice.Email)
	assert.True(t, alice.Shortcuts)
	assert.True(t, alice.Notify)
	assert.False(t, alice.Nickserv)
	assert.ElementsMatch(t, []string{"alice_", "bob2"}, alice.Alts)

	assert.Equal(t, []string{"drive-by"}, st.IgnoredGuests)
	// submission order survives the round trip
	assert.Equal(t, []int64{10, 20, 30}, st.History["#chan"])
	assert.Equal(t, []int64{7}, st.History["#other"])
}

func TestSQLiteStore_SaveReplacesPreviousState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleState()))

	st := NewState()
	st.Users["dave"] = users.Record{Email: "dave@example.com", Secret: "d"}
	st.History["#chan"] = []int64{99}
	require.NoError(t, s.Save(ctx, st))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotContains(t, got.Users, "alice")
	require.Contains(t, got.Users, "dave")
	assert.Empty(t, got.IgnoredGuests)
	assert.Equal(t, []int64{99}, got.History["#chan"])
}

func TestMemoryStore_RoundTripAndIsolation(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	st := sampleState()
	require.NoError(t, m.Save(ctx, st))

	// mutating the saved-in state must not leak into the store
	st.History["#chan"][0] = 999

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, got.History["#chan"])

	// mutating a loaded state must not leak either
	got.IgnoredGuests = append(got.IgnoredGuests, "extra")
	got2, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"drive-by"}, got2.IgnoredGuests)
}
