// Package pager shows the notes of one day, one note per page.
package pager

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jdelaire/notebot/core/keyboard"
	"github.com/jdelaire/notebot/core/note"
)

const writtenLayout = "2006-01-02 15:04:05"

// Source is the slice of the note store the pager reads from.
type Source interface {
	Count(ctx context.Context, userID, chatID int64, day *time.Time) (int, error)
	At(ctx context.Context, userID, chatID int64, day time.Time, offset int) (note.Note, error)
}

// Query selects a page of notes. Page is 1-based.
type Query struct {
	UserID int64
	ChatID int64
	Day    time.Time
	Page   int
}

// View is the result of a lookup. When InRange is false, only Total is set.
type View struct {
	Total    int
	Page     int
	InRange  bool
	Note     note.Note
	Text     string
	Keyboard keyboard.Keyboard
}

// Lookup counts the notes of q.Day and renders the requested page.
func Lookup(ctx context.Context, src Source, q Query) (View, error) {
	day := note.Day(q.Day)
	total, err := src.Count(ctx, q.UserID, q.ChatID, &day)
	if err != nil {
		return View{}, fmt.Errorf("count notes: %w", err)
	}
	if q.Page <= 0 || q.Page > total {
		return View{Total: total, Page: q.Page}, nil
	}

	n, err := src.At(ctx, q.UserID, q.ChatID, day, q.Page-1)
	if err != nil {
		return View{}, fmt.Errorf("load note %d of %d: %w", q.Page, total, err)
	}

	text, kb := Render(day, q.Page, total, n)
	return View{
		Total:    total,
		Page:     q.Page,
		InRange:  true,
		Note:     n,
		Text:     text,
		Keyboard: kb,
	}, nil
}

// Render formats a single note page and its navigation row.
func Render(day time.Time, page, total int, n note.Note) (string, keyboard.Keyboard) {
	text := fmt.Sprintf("You wrote: %d notes (%s).\nNote Date: %s\nNote's content:\n%s",
		total, day.Format(keyboard.DateLayout), n.WrittenAt.UTC().Format(writtenLayout), n.Text)

	kb := keyboard.Keyboard{{
		{Text: "<", Data: keyboard.PayloadPreviousNote},
		keyboard.Noop(strconv.Itoa(page) + "/" + strconv.Itoa(total)),
		{Text: ">", Data: keyboard.PayloadNextNote},
	}}
	return text, kb
}

// Empty is the reply for a day without a note at the requested page.
func Empty(day time.Time) string {
	return "0 notes at this date: " + day.Format(keyboard.DateLayout)
}
