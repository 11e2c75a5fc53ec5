// Package bot wires the zeitgeist plugin together: command handlers, the
// ambient channel-message pipeline (link submission, shortcuts, short
// upvotes), the per-channel error log, and state persistence. The chat
// transport itself is an external collaborator: it feeds Messages in and
// supplies a Responder for everything going out.
package bot

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"github.com/4poc/zgbot/internal/api"
	"github.com/4poc/zgbot/internal/common"
	"github.com/4poc/zgbot/internal/config"
	"github.com/4poc/zgbot/internal/history"
	"github.com/4poc/zgbot/internal/logging"
	"github.com/4poc/zgbot/internal/registry"
	"github.com/4poc/zgbot/internal/users"
)

// Message is one inbound chat event, already parsed by the transport.
type Message struct {
	Nick       string
	Channel    string // empty for private messages
	Text       string
	Identified bool // sender is identified with nickserv, per the transport
}

// Responder delivers replies back through the chat transport.
type Responder interface {
	// Reply answers in the originating context (channel or query).
	Reply(msg string)
	// ReplyPrivate sends a private notice to the message's sender.
	ReplyPrivate(msg string)
	// Say sends to an arbitrary channel or nick.
	Say(target, msg string)
}

// Client is the remote-API surface the bot depends on; *api.Client
// satisfies it. Tests substitute fakes.
type Client interface {
	CheckAuth(ctx context.Context) bool
	CreateFromURLs(ctx context.Context, urls []string, tags string, announce bool) ([]api.Item, error)
	Item(ctx context.Context, id int64) (*api.Item, error)
	UpdateTags(ctx context.Context, id int64, addTags, delTags string) (*api.Item, error)
	Delete(ctx context.Context, id int64) (int64, error)
	Upvote(ctx context.Context, id int64, remove bool) (*api.VoteResult, error)
}

// ClientFactory builds a Client bound to the given credential; nil means
// anonymous. A fresh client per operation keeps credentials out of shared
// state.
type ClientFactory func(cred *api.Credential) Client

// Plugin is the bot core. All exported methods are safe for concurrent use;
// the directory and history serialize their own mutations.
type Plugin struct {
	cfg       *config.Config
	log       logging.Logger
	store     registry.Store
	newClient ClientFactory
	render    Formatter
	disp      *Dispatcher

	dir    *users.Directory
	hist   *history.History
	errlog *ErrorLog

	mu            sync.Mutex
	ignoredGuests map[string]struct{}
}

// Option customizes a Plugin at construction time.
type Option func(*Plugin)

// WithClientFactory replaces the default api.NewClient-backed factory.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Plugin) { p.newClient = f }
}

// WithFormatter replaces the default plain-text item formatter.
func WithFormatter(f Formatter) Option {
	return func(p *Plugin) { p.render = f }
}

// New loads the persisted registry from store and builds the plugin.
func New(ctx context.Context, cfg *config.Config, log logging.Logger, store registry.Store, opts ...Option) (*Plugin, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	httpc := &http.Client{Timeout: cfg.RequestTimeout}

	p := &Plugin{
		cfg:   cfg,
		log:   log,
		store: store,
		newClient: func(cred *api.Credential) Client {
			return api.NewClient(cfg.BaseURL, cred, httpc)
		},
		render:        PlainFormatter{BaseURL: cfg.BaseURL},
		disp:          NewDispatcher(log, int64(cfg.Workers)),
		dir:           users.NewDirectoryFromSnapshot(st.Users),
		hist:          history.NewFromSnapshot(cfg.HistoryLimit, st.History),
		errlog:        NewErrorLog(cfg.ErrorLogLimit),
		ignoredGuests: make(map[string]struct{}, len(st.IgnoredGuests)),
	}
	for _, nick := range st.IgnoredGuests {
		p.ignoredGuests[nick] = struct{}{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DispatchChannelMessage schedules HandleChannelMessage on the worker pool
// so a slow remote call never delays the transport's ingestion loop.
func (p *Plugin) DispatchChannelMessage(ctx context.Context, m Message, r Responder) error {
	return p.disp.Dispatch(ctx, "channel-message", func(ctx context.Context, log logging.Logger) {
		p.HandleChannelMessage(ctx, m, r)
	})
}

// Dispatcher exposes the worker pool so the transport can schedule explicit
// commands the same way.
func (p *Plugin) Dispatcher() *Dispatcher {
	return p.disp
}

// Wait blocks until all dispatched units of work have finished.
func (p *Plugin) Wait() {
	p.disp.Wait()
}

// clientFor builds an API client acting as the given user, or anonymously
// for a nil record.
func (p *Plugin) clientFor(rec *users.Record) Client {
	if rec == nil {
		return p.newClient(nil)
	}
	return p.newClient(&api.Credential{Email: rec.Email, Secret: rec.Secret})
}

// auth is the gate in front of command handlers. On denial it replies to
// the user and reports ok=false. With requireRecord=false a missing record
// is not a denial: ok is true and the record is nil (anonymous).
func (p *Plugin) auth(m Message, r Responder, requireRecord, requireNickserv bool) (string, *users.Record, bool) {
	primary, rec, err := p.dir.Authenticate(m.Nick, requireRecord, requireNickserv, m.Identified)
	switch {
	case errors.Is(err, common.ErrorNotAuthenticated):
		r.Reply("You need to authenticate first, see: help auth")
		return "", nil, false
	case errors.Is(err, common.ErrorNickservRequired):
		r.Reply("NickServ authentication required to continue.")
		return "", nil, false
	}
	return primary, rec, true
}

// actingUser resolves the sender of an ambient channel message. Denials are
// not replied to here; an unidentified user whose record demands nickserv
// is simply treated as a guest.
func (p *Plugin) actingUser(ctx context.Context, m Message) (string, *users.Record) {
	primary, rec, err := p.dir.Authenticate(m.Nick, false, false, m.Identified)
	if err != nil {
		p.log.Debug(ctx, "treating sender as guest", "nick", m.Nick, "reason", err)
		return "", nil
	}
	return primary, rec
}

func (p *Plugin) listening(channel string) bool {
	for _, c := range p.cfg.Listen {
		if c == channel {
			return true
		}
	}
	return false
}

// markGuestNotified records that the guest has received the one-time
// submission notice. Returns true the first time for a given nick.
func (p *Plugin) markGuestNotified(nick string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.ignoredGuests[nick]; ok {
		return false
	}
	p.ignoredGuests[nick] = struct{}{}
	return true
}

func (p *Plugin) guestSnapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.ignoredGuests))
	for nick := range p.ignoredGuests {
		out = append(out, nick)
	}
	sort.Strings(out)
	return out
}

// saveState persists the registry. Persistence failures are logged, never
// surfaced to the chat user.
func (p *Plugin) saveState(ctx context.Context) {
	st := registry.NewState()
	st.Users = p.dir.Snapshot()
	st.History = p.hist.Snapshot()
	st.IgnoredGuests = p.guestSnapshot()

	if err := p.store.Save(ctx, st); err != nil {
		p.log.Error(ctx, "failed to save registry", "error", err)
	}
}

// host extracts the display host of the configured installation.
func (p *Plugin) host() string {
	u, err := url.Parse(p.cfg.BaseURL)
	if err != nil || u.Host == "" {
		return p.cfg.BaseURL
	}
	return u.Host
}
