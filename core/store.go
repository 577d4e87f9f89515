package core

import (
	"context"
	"time"

	"github.com/jdelaire/notebot/core/note"
)

// NoteStore persists notes. Days are UTC calendar days.
type NoteStore interface {
	Add(ctx context.Context, n note.Note) (int64, error)
	// Count returns the number of notes of the user in the chat, restricted
	// to a single day when day is non-nil.
	Count(ctx context.Context, userID, chatID int64, day *time.Time) (int, error)
	// MostRecent returns the newest note time, and false when there is none.
	MostRecent(ctx context.Context, userID, chatID int64) (time.Time, bool, error)
	// At returns the note at offset on day, ordered by write time ascending.
	At(ctx context.Context, userID, chatID int64, day time.Time, offset int) (note.Note, error)
	GroupByMonth(ctx context.Context, userID, chatID int64) ([]note.MonthCount, error)
}
