// Package note holds the note model shared by the store and the views.
package note

import (
	"fmt"
	"time"
)

// MaxLen is the largest accepted note, in characters.
const MaxLen = 3999

// Note is a single persisted note.
type Note struct {
	ID        int64     `json:"id" yaml:"id"`
	UserID    int64     `json:"user_id" yaml:"user_id"`
	ChatID    int64     `json:"chat_id" yaml:"chat_id"`
	MessageID int64     `json:"message_id" yaml:"message_id"`
	Text      string    `json:"text" yaml:"text"`
	WrittenAt time.Time `json:"written_at" yaml:"written_at"`
}

// MonthCount is the number of notes written in one calendar month.
type MonthCount struct {
	Year  int
	Month time.Month
	Count int
}

// Period formats the month as "<year>.<month>", e.g. "2023.1".
func (m MonthCount) Period() string {
	return fmt.Sprintf("%d.%d", m.Year, int(m.Month))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns midnight UTC of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
