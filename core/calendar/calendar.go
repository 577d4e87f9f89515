// Package calendar renders a month as an inline keyboard of selectable days.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jdelaire/notebot/core/keyboard"
)

const (
	weeks      = 6
	daysInWeek = 7
)

var weekdays = [daysInWeek]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// Render builds the calendar keyboard for the month containing anchor.
// The grid is always 6 weeks of 7 days, Monday first. Day cells carry the
// date as payload; everything else is a no-op button.
func Render(anchor time.Time) keyboard.Keyboard {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := DaysIn(first)
	dow := isoWeekday(first)

	kb := make(keyboard.Keyboard, 0, weeks+3)
	kb = append(kb, []keyboard.Button{
		keyboard.Noop(fmt.Sprintf("%s %d", first.Month(), first.Year())),
	})

	header := make([]keyboard.Button, 0, daysInWeek)
	for _, wd := range weekdays {
		header = append(header, keyboard.Noop(wd))
	}
	kb = append(kb, header)

	for row := 0; row < weeks; row++ {
		cells := make([]keyboard.Button, 0, daysInWeek)
		for col := 0; col < daysInWeek; col++ {
			day := row*daysInWeek + col - dow + 1
			if day < 1 || day > days {
				cells = append(cells, keyboard.Noop(" "))
				continue
			}
			date := first.AddDate(0, 0, day-1)
			cells = append(cells, keyboard.Button{
				Text: strconv.Itoa(day),
				Data: date.Format(keyboard.DateLayout),
			})
		}
		kb = append(kb, cells)
	}

	kb = append(kb, []keyboard.Button{
		{Text: "<", Data: keyboard.PayloadPrevious},
		keyboard.Noop(" "),
		{Text: ">", Data: keyboard.PayloadNext},
	})
	return kb
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// isoWeekday maps Monday to 0 and Sunday to 6.
func isoWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
