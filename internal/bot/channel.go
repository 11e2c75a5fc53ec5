package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/4poc/zgbot/internal/api"
	"github.com/4poc/zgbot/internal/shortcut"
	"github.com/4poc/zgbot/internal/users"
)

var urlRe = regexp.MustCompile(`https?://[^ \)\}\]]+`)

// tagSuffixRe matches a " # tag1, tag2" trailer. Only the text after the
// last URL is considered, so URL fragments never read as tags.
var tagSuffixRe = regexp.MustCompile(` #\s*([^#]+)$`)

// HandleChannelMessage is the ambient pipeline: every message of a listened
// channel passes through it. Media links are submitted, the ^/~ shortcut
// grammar resolves against the channel's history, and +1/-1 upvotes the last
// item. Messages starting with "#" are ignored entirely.
func (p *Plugin) HandleChannelMessage(ctx context.Context, m Message, r Responder) {
	text := strings.TrimSpace(m.Text)
	if strings.HasPrefix(text, "#") {
		return
	}
	if !p.listening(m.Channel) {
		return
	}

	_, user := p.actingUser(ctx, m)

	if urls := urlRe.FindAllString(text, -1); len(urls) > 0 {
		p.submitURLs(ctx, m, r, user, text, urls)
	}

	if cmd, ok := shortcut.Parse(text); ok {
		if user != nil && user.Shortcuts {
			p.runShortcut(ctx, m, r, user, cmd)
		}
	}

	if remove, ok := shortcut.ParseVote(text); ok {
		if user != nil && user.ShortUpvotes {
			p.runShortUpvote(ctx, m, r, user, remove)
		}
	}
}

func (p *Plugin) submitURLs(ctx context.Context, m Message, r Responder, user *users.Record, text string, urls []string) {
	tags := ""
	lastEnd := strings.LastIndex(text, urls[len(urls)-1]) + len(urls[len(urls)-1])
	if match := tagSuffixRe.FindStringSubmatch(text[lastEnd:]); match != nil {
		tags = strings.TrimSpace(match[1])
	}

	items, err := p.clientFor(user).CreateFromURLs(ctx, urls, tags, false)
	if err != nil {
		p.submitFailed(ctx, m, r, err)
		return
	}

	for _, item := range items {
		p.hist.Append(m.Channel, item.ID)
	}

	announce := fmt.Sprintf("%d item(s) submitted: %s", len(items), p.formatItems(items))
	switch {
	case user == nil:
		if p.markGuestNotified(m.Nick) {
			r.ReplyPrivate(fmt.Sprintf("The link(s) you've mentioned in %s have been submitted to %s: %s",
				m.Channel, p.host(), announce))
			p.CmdMain(ctx, m, r)
			r.ReplyPrivate("(I won't bother you again with this don't worry)")
		}
	case user.Notify:
		r.ReplyPrivate(announce)
	}

	p.saveState(ctx)
}

// submitFailed handles an ambient submission failure. Connection problems
// are logged only; a creation failure is recorded in the channel's error log
// and its partially-created siblings still enter the history. A duplicate
// is the one failure worth mentioning in the channel, pointing at the
// existing item.
func (p *Plugin) submitFailed(ctx context.Context, m Message, r Responder, err error) {
	var conn *api.ConnectionError
	if errors.As(err, &conn) {
		p.log.Debug(ctx, "can't connect to zeitgeist", "error", conn.Message)
		return
	}

	var cie *api.CreateItemError
	if !errors.As(err, &cie) {
		p.log.Debug(ctx, "submission failed", "channel", m.Channel, "error", err)
		return
	}

	var dup *api.DuplicateError
	if errors.As(cie.Cause, &dup) {
		if item, ierr := p.newClient(nil).Item(ctx, dup.ID); ierr == nil {
			r.Reply("identical item found: " + p.render.FormatItem(item))
		}
	}

	p.errlog.Append(m.Channel, cie)

	if len(cie.Items) > 0 {
		for _, item := range cie.Items {
			p.hist.Append(m.Channel, item.ID)
		}
		p.saveState(ctx)
	}
}

func (p *Plugin) runShortcut(ctx context.Context, m Message, r Responder, user *users.Record, cmd *shortcut.Command) {
	intent, err := cmd.Resolve(p.hist, m.Channel)
	if err != nil {
		p.log.Debug(ctx, "shortcut resolution failed", "channel", m.Channel, "error", err)
		return
	}

	client := p.clientFor(user)
	switch it := intent.(type) {
	case shortcut.Show:
		item, err := client.Item(ctx, it.ID)
		if err != nil {
			p.log.Debug(ctx, "shortcut show failed", "id", it.ID, "error", err)
			return
		}
		r.Reply("item: " + p.render.FormatItem(item))

	case shortcut.Retag:
		item, err := client.UpdateTags(ctx, it.ID, strings.Join(it.Add, ","), strings.Join(it.Del, ","))
		if err != nil {
			p.log.Debug(ctx, "shortcut retag failed", "id", it.ID, "error", err)
			return
		}
		if user.Notify {
			r.ReplyPrivate("item tagged: " + p.render.FormatItem(item))
		}
	}
}

func (p *Plugin) runShortUpvote(ctx context.Context, m Message, r Responder, user *users.Record, remove bool) {
	intent, err := shortcut.ResolveVote(p.hist, m.Channel, remove)
	if err != nil {
		p.log.Debug(ctx, "short upvote resolution failed", "channel", m.Channel, "error", err)
		return
	}
	vote := intent.(shortcut.Vote)

	client := p.clientFor(user)
	if _, err := client.Upvote(ctx, vote.ID, vote.Remove); err != nil {
		p.log.Debug(ctx, "short upvote failed", "id", vote.ID, "error", err)
		return
	}

	if user.Notify {
		item, err := client.Item(ctx, vote.ID)
		if err != nil {
			return
		}
		verb := "upvoted"
		if vote.Remove {
			verb = "upvote removed"
		}
		r.ReplyPrivate(fmt.Sprintf("item %s %s", verb, p.render.FormatItem(item)))
	}
}
