package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jdelaire/notebot/core/note"
)

// DefaultCooldown is the minimum time between two notes of a user in a chat.
const DefaultCooldown = 5 * time.Minute

var (
	ErrCooldown    = errors.New("note cooldown has not elapsed")
	ErrInvalidSize = errors.New("note text is empty or too long")
)

// Source reports when a user last wrote a note.
type Source interface {
	MostRecent(ctx context.Context, userID, chatID int64) (time.Time, bool, error)
}

// Gate decides whether a new note may be written.
type Gate struct {
	src      Source
	cooldown time.Duration
}

// New creates a Gate. A non-positive cooldown uses DefaultCooldown.
func New(src Source, cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Gate{src: src, cooldown: cooldown}
}

// Cooldown returns the configured window.
func (g *Gate) Cooldown() time.Duration {
	return g.cooldown
}

// Check returns ErrCooldown if the previous note is younger than the
// cooldown at sentAt, ErrInvalidSize if text is not a storable note, or a
// wrapped store error.
func (g *Gate) Check(ctx context.Context, userID, chatID int64, text string, sentAt time.Time) error {
	last, ok, err := g.src.MostRecent(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("load last note time: %w", err)
	}
	if ok && last.Add(g.cooldown).After(sentAt) {
		return ErrCooldown
	}
	return ValidateText(text)
}

// ValidateText accepts 1 to note.MaxLen characters.
func ValidateText(text string) error {
	n := utf8.RuneCountInString(text)
	if n == 0 || n > note.MaxLen {
		return ErrInvalidSize
	}
	return nil
}
