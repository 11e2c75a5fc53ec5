// Package users implements the user directory: records keyed by the primary
// nick an account was created under, alias resolution, boolean preference
// flags, and the authentication gate consulted before privileged operations.
package users

import (
	"slices"
	"sync"

	"github.com/4poc/zgbot/internal/common"
)

// Preference option names, as exposed to users.
const (
	OptionShortcuts    = "shortcuts"
	OptionShortUpvotes = "shortupvotes"
	OptionNotify       = "notify"
	OptionNickserv     = "nickserv"
)

// Options lists all toggleable preference names.
var Options = []string{OptionShortcuts, OptionShortUpvotes, OptionNotify, OptionNickserv}

// Record is one user account: stored credential, preference flags, and
// alternative nicks the user is recognized under.
type Record struct {
	Email  string
	Secret string

	Shortcuts    bool // opt-in the ^/~ shortcut syntax
	ShortUpvotes bool // opt-in +1/-1 channel upvotes
	Notify       bool // private notices about own submissions and taggings
	Nickserv     bool // require nickserv identification for this account

	Alts []string
}

func (r *Record) clone() *Record {
	c := *r
	c.Alts = slices.Clone(r.Alts)
	return &c
}

// Option returns the value of the named preference flag.
func (r *Record) Option(name string) (bool, error) {
	switch name {
	case OptionShortcuts:
		return r.Shortcuts, nil
	case OptionShortUpvotes:
		return r.ShortUpvotes, nil
	case OptionNotify:
		return r.Notify, nil
	case OptionNickserv:
		return r.Nickserv, nil
	default:
		return false, common.ErrorUnknownOption
	}
}

func (r *Record) setOption(name string, value bool) error {
	switch name {
	case OptionShortcuts:
		r.Shortcuts = value
	case OptionShortUpvotes:
		r.ShortUpvotes = value
	case OptionNotify:
		r.Notify = value
	case OptionNickserv:
		r.Nickserv = value
	default:
		return common.ErrorUnknownOption
	}
	return nil
}

// Directory stores user records keyed by primary nick. All mutations are
// serialized by the directory mutex; read accessors return defensive copies,
// so a returned Record is a snapshot, not a live view.
type Directory struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewDirectory() *Directory {
	return &Directory{records: make(map[string]*Record)}
}

// NewDirectoryFromSnapshot restores a directory from persisted records.
func NewDirectoryFromSnapshot(records map[string]Record) *Directory {
	d := NewDirectory()
	for nick, rec := range records {
		d.records[nick] = rec.clone()
	}
	return d
}

// Snapshot returns a deep copy of all records for persistence.
func (d *Directory) Snapshot() map[string]Record {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]Record, len(d.records))
	for nick, rec := range d.records {
		out[nick] = *rec.clone()
	}
	return out
}

// Create registers a new record under the given primary nick with the
// default (all off) preferences. The nick must not already be a primary
// or an alias of another account.
func (d *Directory) Create(nick, email, secret string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, _, ok := d.findLocked(nick); ok {
		return common.ErrorAliasTaken
	}
	d.records[nick] = &Record{Email: email, Secret: secret}
	return nil
}

// SetCredential replaces the stored credential of an existing account.
// The nick may be a primary or an alias.
func (d *Directory) SetCredential(nick, email, secret string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, rec, ok := d.findLocked(nick)
	if !ok {
		return common.ErrorNotFound
	}
	rec.Email = email
	rec.Secret = secret
	return nil
}

// Find resolves a nick to (primary nick, record snapshot). The primary nicks
// are matched first; failing that, the alias lists are scanned and the first
// match wins.
func (d *Directory) Find(nick string) (string, *Record, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	primary, rec, ok := d.findLocked(nick)
	if !ok {
		return "", nil, false
	}
	return primary, rec.clone(), true
}

func (d *Directory) findLocked(nick string) (string, *Record, bool) {
	if rec, ok := d.records[nick]; ok {
		return nick, rec, true
	}
	for primary, rec := range d.records {
		if slices.Contains(rec.Alts, nick) {
			return primary, rec, true
		}
	}
	return "", nil, false
}

// Authenticate is the gate consulted before operations acting on behalf of
// a user.
//
// Denials:
//   - no record found and requireRecord: common.ErrorNotAuthenticated
//   - the record demands nickserv (or the call site does) and the caller is
//     not externally identified: common.ErrorNickservRequired
//
// When no record is found and requireRecord is false, ("", nil, nil) is
// returned: anonymous access allowed.
func (d *Directory) Authenticate(nick string, requireRecord, requireNickserv, identified bool) (string, *Record, error) {
	primary, rec, ok := d.Find(nick)
	if !ok {
		if requireRecord {
			return "", nil, common.ErrorNotAuthenticated
		}
		return "", nil, nil
	}

	if (rec.Nickserv || requireNickserv) && !identified {
		return "", nil, common.ErrorNickservRequired
	}
	return primary, rec, nil
}

// SetOption sets a preference flag on an existing account (nick may be an
// alias). The returned bool reports whether anything changed; setting an
// already-matching value is a distinct no-op so callers can reply
// "already enabled" instead of confirming.
func (d *Directory) SetOption(nick, option string, value bool) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, rec, ok := d.findLocked(nick)
	if !ok {
		return false, common.ErrorNotFound
	}

	current, err := rec.Option(option)
	if err != nil {
		return false, err
	}
	if current == value {
		return false, nil
	}
	return true, rec.setOption(option, value)
}

// ToggleAlt adds the alias if the account does not have it yet and removes
// it otherwise; the returned bool reports whether it was added. Adding an
// alias already claimed by a different account (or equal to any primary
// nick) is rejected with common.ErrorAliasTaken.
func (d *Directory) ToggleAlt(nick, alt string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	primary, rec, ok := d.findLocked(nick)
	if !ok {
		return false, common.ErrorNotFound
	}

	if i := slices.Index(rec.Alts, alt); i >= 0 {
		rec.Alts = slices.Delete(rec.Alts, i, i+1)
		return false, nil
	}

	if owner, _, ok := d.findLocked(alt); ok && owner != primary {
		return false, common.ErrorAliasTaken
	}
	rec.Alts = append(rec.Alts, alt)
	return true, nil
}
