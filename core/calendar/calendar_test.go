package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaire/notebot/core/keyboard"
)

func TestRenderLayout(t *testing.T) {
	kb := Render(time.Date(2023, time.March, 17, 0, 0, 0, 0, time.UTC))

	require.Len(t, kb, 9)
	assert.Equal(t, []keyboard.Button{{Text: "March 2023", Data: "empty"}}, kb[0])

	require.Len(t, kb[1], 7)
	assert.Equal(t, "Mo", kb[1][0].Text)
	assert.Equal(t, "Su", kb[1][6].Text)
	for _, b := range kb[1] {
		assert.Equal(t, keyboard.PayloadEmpty, b.Data)
	}

	for i := 2; i < 8; i++ {
		assert.Len(t, kb[i], 7, "week row %d", i-2)
	}

	assert.Equal(t, []keyboard.Button{
		{Text: "<", Data: "previous"},
		{Text: " ", Data: "empty"},
		{Text: ">", Data: "next"},
	}, kb[8])
}

// March 2023 has 31 days and starts on a Wednesday.
func TestRenderWednesdayStart(t *testing.T) {
	kb := Render(time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))
	grid := kb[2:8]

	assert.Equal(t, keyboard.Noop(" "), grid[0][0])
	assert.Equal(t, keyboard.Noop(" "), grid[0][1])
	assert.Equal(t, keyboard.Button{Text: "1", Data: "2023-03-01"}, grid[0][2])

	// 2 + 31 - 1 = 32 -> row 4, col 4 (a Friday).
	assert.Equal(t, keyboard.Button{Text: "31", Data: "2023-03-31"}, grid[4][4])

	blanks, days := 0, 0
	for _, row := range grid {
		for _, b := range row {
			if b.Data == keyboard.PayloadEmpty {
				blanks++
			} else {
				days++
			}
		}
	}
	assert.Equal(t, 31, days)
	assert.Equal(t, 42-31, blanks)

	// Trailing blanks after the 31st.
	for col := 5; col < 7; col++ {
		assert.Equal(t, keyboard.PayloadEmpty, grid[4][col].Data)
	}
	for _, b := range grid[5] {
		assert.Equal(t, keyboard.PayloadEmpty, b.Data)
	}
}

func TestRenderMondayStart(t *testing.T) {
	// May 2023 starts on a Monday.
	kb := Render(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, keyboard.Button{Text: "1", Data: "2023-05-01"}, kb[2][0])
}

func TestRenderSundayStartUsesSixthWeek(t *testing.T) {
	// October 2023 starts on a Sunday and needs all six weeks.
	kb := Render(time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC))
	grid := kb[2:8]
	assert.Equal(t, keyboard.Button{Text: "1", Data: "2023-10-01"}, grid[0][6])
	assert.Equal(t, keyboard.Button{Text: "31", Data: "2023-10-31"}, grid[5][1])
}

func TestRenderLeapFebruary(t *testing.T) {
	kb := Render(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "February 2024", kb[0][0].Text)

	var last keyboard.Button
	for _, row := range kb[2:8] {
		for _, b := range row {
			if b.Data != keyboard.PayloadEmpty {
				last = b
			}
		}
	}
	assert.Equal(t, keyboard.Button{Text: "29", Data: "2024-02-29"}, last)
}

func TestRenderIsDeterministic(t *testing.T) {
	a := Render(time.Date(2022, time.December, 5, 13, 0, 0, 0, time.UTC))
	b := Render(time.Date(2022, time.December, 28, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, a, b)
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		month time.Time
		want  int
	}{
		{time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC), 28},
		{time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), 29},
		{time.Date(2023, time.April, 30, 0, 0, 0, 0, time.UTC), 30},
		{time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysIn(tt.month), tt.month.Format("2006-01"))
	}
}
