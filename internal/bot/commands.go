package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/4poc/zgbot/internal/api"
	"github.com/4poc/zgbot/internal/common"
	"github.com/4poc/zgbot/internal/shortcut"
)

// CmdMain replies with the account and option summary, or with the
// anonymous-posting hint for unrecognized users.
func (p *Plugin) CmdMain(ctx context.Context, m Message, r Responder) {
	_, user, ok := p.auth(m, r, false, false)
	if !ok {
		return
	}

	if user == nil {
		r.ReplyPrivate(fmt.Sprintf(
			"You're not yet recognized and thus post anonymously. If you register an account at %s "+
				"you can authenticate with the bot: this lets you delete your submissions, upvote items "+
				"and enable features like channel shortcuts and notification messages. See: help auth",
			p.host()))
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You're recognized as %s. You've got the following options:", user.Email)
	fmt.Fprintf(&b, " | shortcuts (%s) - opt-in the ^ syntax", onOff(user.Shortcuts))
	fmt.Fprintf(&b, " | shortupvotes (%s) - opt-in the use of +1 and -1 for upvotes", onOff(user.ShortUpvotes))
	fmt.Fprintf(&b, " | notify (%s) - get queried about own submissions, taggings and upvotes", onOff(user.Notify))
	fmt.Fprintf(&b, " | nickserv (%s) - increase security by enforcing nickserv identification", onOff(user.Nickserv))
	alts := "none"
	if len(user.Alts) > 0 {
		alts = strings.Join(user.Alts, ", ")
	}
	fmt.Fprintf(&b, " | alt (%s) - alternative nicknames to recognize you under", alts)
	r.ReplyPrivate(b.String())
}

func onOff(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

// CmdAuth validates the given credential against the service and stores it:
// a record is created on a nick's first successful validation, an existing
// record gets its credential replaced. With missing arguments it explains
// where to find the api secret.
func (p *Plugin) CmdAuth(ctx context.Context, m Message, r Responder, email, secret string) {
	if email == "" || secret == "" {
		r.ReplyPrivate(fmt.Sprintf(
			"To authenticate with your zeitgeist account or to change existing credentials, "+
				"visit %sapi_secret to get your api secret and set it with: auth <EMAIL> <API SECRET>",
			ensureTrailingSlash(p.cfg.BaseURL)))
		return
	}

	client := p.newClient(&api.Credential{Email: email, Secret: secret})
	if !client.CheckAuth(ctx) {
		r.ReplyPrivate(fmt.Sprintf("Unable to authenticate as %s.", email))
		return
	}

	if _, _, found := p.dir.Find(m.Nick); found {
		if err := p.dir.SetCredential(m.Nick, email, secret); err != nil {
			p.log.Error(ctx, "failed to update credential", "nick", m.Nick, "error", err)
			return
		}
	} else {
		if err := p.dir.Create(m.Nick, email, secret); err != nil {
			p.log.Error(ctx, "failed to create user", "nick", m.Nick, "error", err)
			return
		}
	}
	p.saveState(ctx)

	r.ReplyPrivate(fmt.Sprintf(
		"Success! You've been authenticated as %s with your nickname %s and will be recognized.",
		email, m.Nick))
}

// CmdEnable turns a boolean option on.
func (p *Plugin) CmdEnable(ctx context.Context, m Message, r Responder, option string) {
	p.setOption(ctx, m, r, option, true)
}

// CmdDisable turns a boolean option off.
func (p *Plugin) CmdDisable(ctx context.Context, m Message, r Responder, option string) {
	p.setOption(ctx, m, r, option, false)
}

func (p *Plugin) setOption(ctx context.Context, m Message, r Responder, option string, value bool) {
	nick, _, ok := p.auth(m, r, true, false)
	if !ok {
		return
	}

	changed, err := p.dir.SetOption(nick, option, value)
	switch {
	case errors.Is(err, common.ErrorUnknownOption):
		r.Reply("Invalid option.")
	case err != nil:
		p.log.Error(ctx, "failed to set option", "nick", nick, "option", option, "error", err)
	case !changed:
		if value {
			r.Reply("Already enabled.")
		} else {
			r.Reply("Already disabled.")
		}
	default:
		p.saveState(ctx)
		r.Reply("Okay.")
	}
}

// CmdAlt adds the alternative nickname if the account does not have it yet
// and removes it otherwise. An alias claimed by another account is refused.
func (p *Plugin) CmdAlt(ctx context.Context, m Message, r Responder, alt string) {
	nick, _, ok := p.auth(m, r, true, false)
	if !ok {
		return
	}

	added, err := p.dir.ToggleAlt(nick, alt)
	switch {
	case errors.Is(err, common.ErrorAliasTaken):
		r.Reply(fmt.Sprintf("The nickname %s is already claimed by someone else.", alt))
	case err != nil:
		p.log.Error(ctx, "failed to toggle alt", "nick", nick, "alt", alt, "error", err)
	case added:
		p.saveState(ctx)
		r.Reply(fmt.Sprintf("Recognize %s as an alternative nickname.", alt))
	default:
		p.saveState(ctx)
		r.Reply(fmt.Sprintf("No longer recognize %s as an alternative nickname.", alt))
	}
}

// CmdTest probes the stored credential against the service and reports the
// result together with the caller's nickserv status.
func (p *Plugin) CmdTest(ctx context.Context, m Message, r Responder) {
	nick, user, ok := p.auth(m, r, true, false)
	if !ok {
		return
	}

	status := "not identified"
	if m.Identified {
		status = "nickserv identified"
	}

	if p.clientFor(user).CheckAuth(ctx) {
		r.Reply(fmt.Sprintf("Zeitgeist authentication test successful for %s using %s. (%s)",
			nick, user.Email, status))
	} else {
		r.Reply(fmt.Sprintf("Zeitgeist authentication test failed for %s using %s. (%s)",
			nick, user.Email, status))
	}
}

// CmdShow fetches and displays one item by id.
func (p *Plugin) CmdShow(ctx context.Context, m Message, r Responder, id int64) {
	item, err := p.newClient(nil).Item(ctx, id)
	if err != nil {
		p.replyAPIError(r, err)
		return
	}
	r.Reply(p.render.FormatItem(item))
}

// CmdCreate submits a URL with optional tags, acting as the sender's account
// when one is known. Created items are recorded in the invoking channel's
// history.
func (p *Plugin) CmdCreate(ctx context.Context, m Message, r Responder, itemURL, tags string) {
	_, user, ok := p.auth(m, r, false, false)
	if !ok {
		return
	}

	items, err := p.clientFor(user).CreateFromURLs(ctx, []string{itemURL}, tags, false)
	if err != nil {
		var cie *api.CreateItemError
		if errors.As(err, &cie) {
			r.Reply(fmt.Sprintf("Can't create item: %s", causeMessage(cie.Cause)))
			return
		}
		p.replyAPIError(r, err)
		return
	}

	if m.Channel != "" {
		for _, item := range items {
			p.hist.Append(m.Channel, item.ID)
		}
		p.saveState(ctx)
	}
	r.Reply("Item created: " + p.formatItems(items))
}

// CmdUpdate adds and removes tags on an item. Entries prefixed "-" are
// removals, anything else is an addition.
func (p *Plugin) CmdUpdate(ctx context.Context, m Message, r Responder, id int64, tags string) {
	_, user, ok := p.auth(m, r, false, false)
	if !ok {
		return
	}

	add, del := shortcut.ParseTagEdits(tags)
	item, err := p.clientFor(user).UpdateTags(ctx, id, strings.Join(add, ","), strings.Join(del, ","))
	if err != nil {
		p.replyAPIError(r, err)
		return
	}
	r.Reply("Updated item: " + p.render.FormatItem(item))
}

// CmdDelete removes an item. It requires both a stored credential and
// nickserv identification.
func (p *Plugin) CmdDelete(ctx context.Context, m Message, r Responder, id int64) {
	_, user, ok := p.auth(m, r, true, true)
	if !ok {
		return
	}

	confirmed, err := p.clientFor(user).Delete(ctx, id)
	if err != nil {
		p.replyAPIError(r, err)
		return
	}
	r.Reply(fmt.Sprintf("Item %d deleted.", confirmed))
}

// CmdUpvote casts or withdraws an upvote on an item.
func (p *Plugin) CmdUpvote(ctx context.Context, m Message, r Responder, id int64, remove bool) {
	_, user, ok := p.auth(m, r, true, false)
	if !ok {
		return
	}

	res, err := p.clientFor(user).Upvote(ctx, id, remove)
	if err != nil {
		p.replyAPIError(r, err)
		return
	}
	if remove {
		r.Reply(fmt.Sprintf("%d upvote removed +%d", res.ID, res.Upvotes))
	} else {
		r.Reply(fmt.Sprintf("%d upvoted +%d", res.ID, res.Upvotes))
	}
}

// CmdErrors replies with the last three recorded submission failures of a
// channel (the invoking channel when none is named).
func (p *Plugin) CmdErrors(ctx context.Context, m Message, r Responder, channel string) {
	if channel == "" {
		channel = m.Channel
	}

	entries := p.errlog.Recent(channel, 3)
	if len(entries) == 0 {
		r.Reply("no errors logged")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Errors in %s:", channel)
	for i, entry := range entries {
		fmt.Fprintf(&b, " %d - %s ", i+1, entry.Time.Format("02-01-2006 15:04"))

		var rem *api.RemoteError
		if errors.As(entry.Err, &rem) {
			fmt.Fprintf(&b, "(%s) %s", rem.URL, causeMessage(rem.Cause))
		} else {
			b.WriteString(entry.Err.Error())
		}
	}
	r.Reply(b.String())
}

// CmdAnnounce fetches an item and announces it to the configured announce
// channels, recording it into each channel's history. Failures are logged
// only; announcements are not user-initiated.
func (p *Plugin) CmdAnnounce(ctx context.Context, m Message, r Responder, id int64) {
	item, err := p.newClient(nil).Item(ctx, id)
	if err != nil {
		p.log.Debug(ctx, "announce failed", "id", id, "error", err)
		return
	}

	for _, channel := range p.cfg.Announce {
		r.Say(channel, "zeitgeist submission - "+p.render.FormatItem(item))
		p.hist.Append(channel, item.ID)
	}
	p.saveState(ctx)
}

// replyAPIError reports a failed remote operation to the user, following the
// taxonomy: connection problems get the friendly unreachable message, every
// other kind surfaces its message verbatim.
func (p *Plugin) replyAPIError(r Responder, err error) {
	var conn *api.ConnectionError
	if errors.As(err, &conn) {
		r.Reply("I can't connect to zeitgeist: " + conn.Message)
		return
	}
	r.Reply("Error occurred: " + err.Error())
}

// causeMessage digs out the message a user actually cares about: for a
// remote fetch failure that is the nested cause, not the envelope.
func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	var rem *api.RemoteError
	if errors.As(err, &rem) && rem.Cause != nil {
		return rem.Cause.Error()
	}
	return err.Error()
}

func (p *Plugin) formatItems(items []api.Item) string {
	parts := make([]string, 0, len(items))
	for i := range items {
		parts = append(parts, p.render.FormatItem(&items[i]))
	}
	return strings.Join(parts, " | ")
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
