// Package stats summarizes how many notes a user wrote and when.
package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jdelaire/notebot/core/note"
)

// Source is the slice of the note store the aggregator reads from.
type Source interface {
	Count(ctx context.Context, userID, chatID int64, day *time.Time) (int, error)
	GroupByMonth(ctx context.Context, userID, chatID int64) ([]note.MonthCount, error)
}

// Summary is the note count of a user in a chat, total and per month.
type Summary struct {
	Total int
	// Months is ordered newest first.
	Months []note.MonthCount
}

// Aggregate loads the summary for a user in a chat.
func Aggregate(ctx context.Context, src Source, userID, chatID int64) (Summary, error) {
	total, err := src.Count(ctx, userID, chatID, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("count notes: %w", err)
	}
	months, err := src.GroupByMonth(ctx, userID, chatID)
	if err != nil {
		return Summary{}, fmt.Errorf("group notes by month: %w", err)
	}
	SortNewestFirst(months)
	return Summary{Total: total, Months: months}, nil
}

// SortNewestFirst orders months by year then month, descending.
func SortNewestFirst(months []note.MonthCount) {
	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year > months[j].Year
		}
		return months[i].Month > months[j].Month
	})
}

// Render formats the summary as a plain text reply.
func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString("Your stats:\n")
	fmt.Fprintf(&b, "You wrote: %d notes.\n", s.Total)
	if s.Total == 0 {
		b.WriteString("Statistics by period (by month): 0\n")
	} else {
		b.WriteString("Statistics by period (by month):\n")
	}
	for _, m := range s.Months {
		fmt.Fprintf(&b, "%s : %d\n", m.Period(), m.Count)
	}
	return b.String()
}
