// Package cli implements zgctl, an interactive console for a zeitgeist
// installation. It speaks the same API the bot does and shares the bot's
// registry database, keeping the console credential under a reserved nick.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/4poc/zgbot/internal/api"
	"github.com/4poc/zgbot/internal/bot"
	"github.com/4poc/zgbot/internal/config"
	"github.com/4poc/zgbot/internal/logging"
	"github.com/4poc/zgbot/internal/registry"
	"github.com/4poc/zgbot/internal/shortcut"
	"github.com/4poc/zgbot/internal/users"
)

// consoleNick is the registry slot the console credential lives under.
const consoleNick = "console"

type App struct {
	cfg    *config.Config
	log    logging.Logger
	store  registry.Store
	render bot.Formatter
	reader *bufio.Reader
	out    io.Writer

	httpc *http.Client
	cred  *api.Credential
}

// NewApp loads the registry and restores a previously stored console
// credential, if any.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, store registry.Store) (*App, error) {
	st, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		render: bot.PlainFormatter{BaseURL: cfg.BaseURL},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		httpc:  &http.Client{Timeout: cfg.RequestTimeout},
	}
	if rec, ok := st.Users[consoleNick]; ok {
		a.cred = &api.Credential{Email: rec.Email, Secret: rec.Secret}
	}
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	a.log.Debug(ctx, "console started", "base_url", a.cfg.BaseURL, "registry", a.cfg.RegistryPath)
	fmt.Fprintf(a.out, "zgctl - %s (type 'help' for commands)\n", a.cfg.BaseURL)
	runREPL(ctx, a, bufio.NewScanner(os.Stdin))
}

func (a *App) client() *api.Client {
	return api.NewClient(a.cfg.BaseURL, a.cred, a.httpc)
}

// Auth prompts for a credential, validates it against the service and
// stores it in the registry for future sessions.
func (a *App) Auth(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	secret, err := GetSecret(a.out)
	if err != nil {
		return err
	}

	cred := &api.Credential{Email: email, Secret: secret}
	if !api.NewClient(a.cfg.BaseURL, cred, a.httpc).CheckAuth(ctx) {
		return fmt.Errorf("unable to authenticate as %s", email)
	}
	a.cred = cred

	st, err := a.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	st.Users[consoleNick] = users.Record{Email: email, Secret: secret}
	if err := a.store.Save(ctx, st); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Test probes the stored credential.
func (a *App) Test(ctx context.Context) error {
	if a.cred == nil {
		return fmt.Errorf("no credential stored, run 'auth' first")
	}
	if !a.client().CheckAuth(ctx) {
		return fmt.Errorf("authentication test failed for %s", a.cred.Email)
	}
	fmt.Fprintf(a.out, "Authentication test successful for %s.\n", a.cred.Email)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	item, err := a.client().Item(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.render.FormatItem(item))
	return nil
}

// Create submits one or more URLs; a trailing "# tag1, tag2" segment is
// applied to all of them.
func (a *App) Create(ctx context.Context, args []string) error {
	urls, tags := splitTagSegment(args)
	if len(urls) == 0 {
		return fmt.Errorf("usage: create <URL>... [# tag1, tag2]")
	}
	items, err := a.client().CreateFromURLs(ctx, urls, tags, false)
	if err != nil {
		return err
	}
	for i := range items {
		fmt.Fprintln(a.out, a.render.FormatItem(&items[i]))
	}
	return nil
}

// Upload submits a local media file.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: upload <FILE> [# tag1, tag2]")
	}
	paths, tags := splitTagSegment(args)
	if len(paths) != 1 {
		return fmt.Errorf("usage: upload <FILE> [# tag1, tag2]")
	}

	f, err := os.Open(paths[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	items, err := a.client().CreateFromUpload(ctx, f.Name(), f, tags, false)
	if err != nil {
		return err
	}
	for i := range items {
		fmt.Fprintln(a.out, a.render.FormatItem(&items[i]))
	}
	return nil
}

func (a *App) Update(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: update <ID> <tag1, -tag2, ...>")
	}
	id, err := parseID(args[:1])
	if err != nil {
		return err
	}

	add, del := shortcut.ParseTagEdits(strings.Join(args[1:], " "))
	item, err := a.client().UpdateTags(ctx, id, strings.Join(add, ","), strings.Join(del, ","))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.render.FormatItem(item))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	confirmed, err := a.client().Delete(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Item %d deleted.\n", confirmed)
	return nil
}

// Upvote casts an upvote; "upvote remove <ID>" withdraws one.
func (a *App) Upvote(ctx context.Context, args []string) error {
	remove := false
	if len(args) > 0 && args[0] == "remove" {
		remove = true
		args = args[1:]
	}
	id, err := parseID(args)
	if err != nil {
		return err
	}
	res, err := a.client().Upvote(ctx, id, remove)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d now at +%d\n", res.ID, res.Upvotes)
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected a single item id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item id %q", args[0])
	}
	return id, nil
}

// splitTagSegment separates "<arg>... # tag1, tag2" into the leading
// arguments and the joined tag segment.
func splitTagSegment(args []string) ([]string, string) {
	for i, arg := range args {
		if arg == "#" {
			return args[:i], strings.Join(args[i+1:], " ")
		}
	}
	return args, ""
}
