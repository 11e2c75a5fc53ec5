// Package shortcut parses the terse channel-message grammar that addresses
// previously submitted items without naming an id:
//
//	^        show the last item submitted in this channel
//	^-2      show the item two back
//	^42      show item 42 (absolute id)
//	^ cat, -dog, +fox   retag the last item
//	~        same as ^
//
// and the independent +1 / -1 shorthand that upvotes the last item. Both are
// opt-in per user; the gating happens in the bot layer.
package shortcut

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/4poc/zgbot/internal/history"
)

var (
	commandRe = regexp.MustCompile(`^[\^~](-?[0-9]+)? ?(.*)$`)
	voteRe    = regexp.MustCompile(`([+\-])1`)
)

// Intent is the normalized outcome of resolving a shortcut: exactly one of
// Show, Retag or Vote.
type Intent interface {
	isIntent()
}

// Show displays the resolved item.
type Show struct {
	ID int64
}

// Retag applies tag additions and removals to the resolved item.
type Retag struct {
	ID  int64
	Add []string
	Del []string
}

// Vote casts (or withdraws) an upvote on the last item of the channel.
type Vote struct {
	ID     int64
	Remove bool
}

func (Show) isIntent()  {}
func (Retag) isIntent() {}
func (Vote) isIntent()  {}

// Command is a parsed shortcut invocation, before history resolution.
type Command struct {
	Ref  history.Ref
	Tags string // raw tag-mutation segment, may be empty
}

// Parse recognizes the shortcut grammar at the start of a channel message.
// A missing number resolves to the channel's last entry; a negative number
// is an offset from the end; a non-negative number is an absolute item id.
func Parse(text string) (*Command, bool) {
	m := commandRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil, false
	}

	cmd := &Command{Ref: history.Last(), Tags: m[2]}
	if m[1] != "" {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, false
		}
		if strings.HasPrefix(m[1], "-") {
			cmd.Ref = history.Offset(int(n))
		} else {
			cmd.Ref = history.Absolute(n)
		}
	}
	return cmd, true
}

// Resolve turns the command into a Show or Retag intent against the given
// channel's history. Out-of-range offsets yield common.ErrorNotFound.
func (c *Command) Resolve(h *history.History, channel string) (Intent, error) {
	id, err := h.Resolve(channel, c.Ref)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(c.Tags) == "" {
		return Show{ID: id}, nil
	}
	add, del := ParseTagEdits(c.Tags)
	return Retag{ID: id, Add: add, Del: del}, nil
}

// ParseTagEdits splits a comma-separated tag-mutation list into additions
// and removals. Entries prefixed "-" are removals, "+" or no prefix are
// additions; per-entry whitespace is trimmed, content is otherwise passed
// through verbatim.
func ParseTagEdits(list string) (add, del []string) {
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		switch entry[0] {
		case '-':
			del = append(del, entry[1:])
		case '+':
			add = append(add, entry[1:])
		default:
			add = append(add, entry)
		}
	}
	return add, del
}

// ParseVote recognizes the +1 / -1 shorthand anywhere in a message.
// It reports (remove, matched): "+1" casts an upvote, "-1" withdraws one.
func ParseVote(text string) (remove, ok bool) {
	m := voteRe.FindStringSubmatch(text)
	if m == nil {
		return false, false
	}
	return m[1] == "-", true
}

// ResolveVote builds a Vote intent against the last entry of the channel's
// history; the vote shorthand never takes an explicit offset.
func ResolveVote(h *history.History, channel string, remove bool) (Intent, error) {
	id, err := h.Resolve(channel, history.Last())
	if err != nil {
		return nil, err
	}
	return Vote{ID: id, Remove: remove}, nil
}
