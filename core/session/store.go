// Package session keeps per-(user, chat) navigation state for the lifetime
// of the process.
package session

import (
	"context"
	"hash/maphash"
	"sync"
	"time"
)

const shardCount = 32

// Key identifies a conversation.
type Key struct {
	UserID int64
	ChatID int64
}

// State is the navigation state of one conversation.
type State struct {
	// Anchor is the first day of the month shown by the calendar.
	Anchor time.Time
	// NoteDate is the day picked on the calendar, zero until one is picked.
	NoteDate time.Time
	// NotePage is the 1-based page of the note pager.
	NotePage int
}

// BrowseDate returns the day the pager should show.
func (s State) BrowseDate() time.Time {
	if s.NoteDate.IsZero() {
		return s.Anchor
	}
	return s.NoteDate
}

type entry struct {
	state    State
	lastSeen time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// Store maps keys to state. Keys are spread over shards so unrelated
// conversations rarely contend; all updates of a key are serialized.
type Store struct {
	shards [shardCount]shard
	seed   maphash.Seed
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Store that forgets entries idle for longer than ttl.
// A ttl of zero keeps entries forever.
func New(ttl time.Duration) *Store {
	s := &Store{
		seed: maphash.MakeSeed(),
		ttl:  ttl,
		now:  time.Now,
	}
	for i := range s.shards {
		s.shards[i].entries = make(map[Key]*entry)
	}
	return s
}

// WithClock overrides the time source (for testing).
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Get returns the state of key, creating it with defaults if absent.
func (s *Store) Get(key Key) State {
	return s.Update(key, func(st State) State { return st })
}

// Update applies fn to the state of key and stores the result. fn runs with
// the shard locked, so it must not block.
func (s *Store) Update(key Key, fn func(State) State) State {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	now := s.now()
	e, ok := sh.entries[key]
	if !ok {
		e = &entry{state: s.defaultState(now)}
		sh.entries[key] = e
	}
	e.state = normalize(fn(e.state))
	e.lastSeen = now
	return e.state
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// Sweep drops entries idle for longer than the ttl and reports how many
// were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for k, e := range sh.entries {
			if e.lastSeen.Before(cutoff) {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Run sweeps at the given interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

func (s *Store) shardFor(key Key) *shard {
	var h maphash.Hash
	h.SetSeed(s.seed)
	var buf [16]byte
	putInt64(buf[:8], key.UserID)
	putInt64(buf[8:], key.ChatID)
	h.Write(buf[:])
	return &s.shards[h.Sum64()%shardCount]
}

func (s *Store) defaultState(now time.Time) State {
	now = now.UTC()
	return State{
		Anchor:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		NotePage: 1,
	}
}

// normalize keeps the anchor on the first of its month and the page positive.
func normalize(st State) State {
	a := st.Anchor.UTC()
	st.Anchor = time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, time.UTC)
	if st.NotePage < 1 {
		st.NotePage = 1
	}
	return st
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}
