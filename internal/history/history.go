// Package history keeps the per-channel record of item ids submitted through
// that channel, in submission order, for relative addressing ("the item two
// back in #chan").
package history

import (
	"sync"

	"github.com/4poc/zgbot/internal/common"
)

// Ref addresses an item either absolutely by id or relative to the end of a
// channel's history.
type Ref struct {
	absolute bool
	id       int64
	offset   int // 0 = last entry, -k = k entries from the end
}

// Absolute addresses an item by id, bypassing history.
func Absolute(id int64) Ref {
	return Ref{absolute: true, id: id}
}

// Last addresses the most recent entry of a channel's history.
func Last() Ref {
	return Ref{}
}

// Offset addresses the entry n positions from the end, 1-indexed from the
// end: -1 is the last entry, -2 the one before it. Offset(0) is Last.
func Offset(n int) Ref {
	return Ref{offset: n}
}

// History is the per-channel append-only log of submitted item ids. Appends
// within a channel are serialized; entries are never reordered or
// deduplicated.
//
// When a per-channel cap is configured, the oldest entries are discarded on
// overflow, so offsets only address the retained window.
type History struct {
	mu         sync.Mutex
	maxPerChan int // 0 = unbounded
	channels   map[string][]int64
}

// New creates an empty history. maxPerChannel caps each channel's retained
// entries; 0 means unbounded.
func New(maxPerChannel int) *History {
	return &History{
		maxPerChan: maxPerChannel,
		channels:   make(map[string][]int64),
	}
}

// NewFromSnapshot restores a history from persisted state, applying the cap
// to each restored channel.
func NewFromSnapshot(maxPerChannel int, channels map[string][]int64) *History {
	h := New(maxPerChannel)
	for channel, ids := range channels {
		for _, id := range ids {
			h.appendLocked(channel, id)
		}
	}
	return h
}

// Append records an item id at the end of the channel's sequence, creating
// the sequence if absent.
func (h *History) Append(channel string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appendLocked(channel, id)
}

func (h *History) appendLocked(channel string, id int64) {
	ids := append(h.channels[channel], id)
	if h.maxPerChan > 0 && len(ids) > h.maxPerChan {
		ids = ids[len(ids)-h.maxPerChan:]
	}
	h.channels[channel] = ids
}

// Resolve turns a Ref into an item id. Absolute refs are returned verbatim;
// relative refs out of the channel's retained range yield
// common.ErrorNotFound.
func (h *History) Resolve(channel string, ref Ref) (int64, error) {
	if ref.absolute {
		return ref.id, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ids := h.channels[channel]
	idx := len(ids) - 1
	if ref.offset < 0 {
		idx = len(ids) + ref.offset
	}
	if idx < 0 || idx >= len(ids) {
		return 0, common.ErrorNotFound
	}
	return ids[idx], nil
}

// Snapshot returns a deep copy of all channel sequences for persistence.
func (h *History) Snapshot() map[string][]int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string][]int64, len(h.channels))
	for channel, ids := range h.channels {
		cp := make([]int64, len(ids))
		copy(cp, ids)
		out[channel] = cp
	}
	return out
}
