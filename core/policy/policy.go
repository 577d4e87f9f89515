package policy

import (
	"errors"
	"fmt"
	"sync"
)

const (
	maxSeenIDs = 10000
	pruneCount = 1000
)

var (
	ErrMalformed = errors.New("malformed event")
	ErrDuplicate = errors.New("duplicate update")
)

// Policy admits inbound events that carry a sender and a chat and whose
// update_id has not been seen recently.
type Policy struct {
	mu        sync.Mutex
	seen      map[int64]bool
	seenOrder []int64
}

// New creates an empty Policy.
func New() *Policy {
	return &Policy{
		seen: make(map[int64]bool),
	}
}

// Admit checks whether an event should be processed. An updateID of zero
// is not tracked for duplicates.
func (p *Policy) Admit(updateID, userID, chatID int64) error {
	if userID == 0 {
		return fmt.Errorf("%w: missing sender", ErrMalformed)
	}
	if chatID == 0 {
		return fmt.Errorf("%w: missing chat", ErrMalformed)
	}
	if updateID == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen[updateID] {
		return fmt.Errorf("%w: %d", ErrDuplicate, updateID)
	}

	// Prune oldest entries if at capacity.
	if len(p.seen) >= maxSeenIDs {
		n := min(pruneCount, len(p.seenOrder))
		for _, id := range p.seenOrder[:n] {
			delete(p.seen, id)
		}
		p.seenOrder = p.seenOrder[n:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
