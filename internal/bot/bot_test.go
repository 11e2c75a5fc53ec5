package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/4poc/zgbot/internal/api"
	"github.com/4poc/zgbot/internal/config"
	"github.com/4poc/zgbot/internal/logging"
	"github.com/4poc/zgbot/internal/registry"
)

type createCall struct {
	urls []string
	tags string
}

type updateCall struct {
	id       int64
	add, del string
}

type voteCall struct {
	id     int64
	remove bool
}

// fakeClient scripts the remote API for handler tests.
type fakeClient struct {
	cred *api.Credential

	authOK    bool
	items     map[int64]*api.Item
	created   []api.Item
	createErr error
	itemErr   error
	updateErr error
	deleteErr error
	voteErr   error
	upvotes   int

	createCalls []createCall
	updateCalls []updateCall
	deleteCalls []int64
	voteCalls   []voteCall
}

func (f *fakeClient) CheckAuth(ctx context.Context) bool {
	return f.authOK
}

func (f *fakeClient) CreateFromURLs(ctx context.Context, urls []string, tags string, announce bool) ([]api.Item, error) {
	f.createCalls = append(f.createCalls, createCall{urls: urls, tags: tags})
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeClient) Item(ctx context.Context, id int64) (*api.Item, error) {
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	item, ok := f.items[id]
	if !ok {
		return nil, &api.GenericError{Message: "item not found"}
	}
	return item, nil
}

func (f *fakeClient) UpdateTags(ctx context.Context, id int64, addTags, delTags string) (*api.Item, error) {
	f.updateCalls = append(f.updateCalls, updateCall{id: id, add: addTags, del: delTags})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.Item(ctx, id)
}

func (f *fakeClient) Delete(ctx context.Context, id int64) (int64, error) {
	f.deleteCalls = append(f.deleteCalls, id)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return id, nil
}

func (f *fakeClient) Upvote(ctx context.Context, id int64, remove bool) (*api.VoteResult, error) {
	f.voteCalls = append(f.voteCalls, voteCall{id: id, remove: remove})
	if f.voteErr != nil {
		return nil, f.voteErr
	}
	return &api.VoteResult{ID: id, Upvotes: f.upvotes}, nil
}

// fakeResponder records everything sent back through the transport.
type fakeResponder struct {
	replies []string
	private []string
	said    map[string][]string
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{said: make(map[string][]string)}
}

func (r *fakeResponder) Reply(msg string)        { r.replies = append(r.replies, msg) }
func (r *fakeResponder) ReplyPrivate(msg string) { r.private = append(r.private, msg) }
func (r *fakeResponder) Say(target, msg string)  { r.said[target] = append(r.said[target], msg) }

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

// newTestPlugin builds a plugin on an in-memory store with a scripted
// remote. The fake is shared across all clientFor calls; the credential of
// the last construction is recorded on it.
func newTestPlugin(t *testing.T, fc *fakeClient) (*Plugin, *registry.MemoryStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Listen = []string{"#chan"}
	cfg.Announce = []string{"#ann"}

	store := registry.NewMemoryStore()
	p, err := New(context.Background(), cfg, testLogger(), store,
		WithClientFactory(func(cred *api.Credential) Client {
			fc.cred = cred
			return fc
		}))
	require.NoError(t, err)
	return p, store
}
