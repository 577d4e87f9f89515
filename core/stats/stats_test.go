package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdelaire/notebot/core/note"
)

type fakeSource struct {
	total    int
	months   []note.MonthCount
	countErr error
	groupErr error
}

func (f *fakeSource) Count(_ context.Context, _, _ int64, day *time.Time) (int, error) {
	if day != nil {
		return 0, errors.New("stats must count all days")
	}
	return f.total, f.countErr
}

func (f *fakeSource) GroupByMonth(_ context.Context, _, _ int64) ([]note.MonthCount, error) {
	return f.months, f.groupErr
}

func TestAggregateSortsAcrossYears(t *testing.T) {
	src := &fakeSource{
		total: 6,
		months: []note.MonthCount{
			{Year: 2023, Month: time.January, Count: 1},
			{Year: 2022, Month: time.December, Count: 2},
			{Year: 2023, Month: time.February, Count: 3},
		},
	}

	s, err := Aggregate(context.Background(), src, 1, 2)
	require.NoError(t, err)

	var periods []string
	for _, m := range s.Months {
		periods = append(periods, m.Period())
	}
	assert.Equal(t, []string{"2023.2", "2023.1", "2022.12"}, periods)
	assert.Equal(t, 6, s.Total)
}

func TestSortDoubleDigitMonths(t *testing.T) {
	months := []note.MonthCount{
		{Year: 2023, Month: time.September},
		{Year: 2023, Month: time.November},
		{Year: 2023, Month: time.October},
	}
	SortNewestFirst(months)
	assert.Equal(t, time.November, months[0].Month)
	assert.Equal(t, time.September, months[2].Month)
}

func TestRenderEmpty(t *testing.T) {
	s, err := Aggregate(context.Background(), &fakeSource{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Your stats:\nYou wrote: 0 notes.\nStatistics by period (by month): 0\n", s.Render())
}

func TestRenderHistogram(t *testing.T) {
	s := Summary{
		Total: 3,
		Months: []note.MonthCount{
			{Year: 2023, Month: time.February, Count: 2},
			{Year: 2022, Month: time.December, Count: 1},
		},
	}
	want := "Your stats:\nYou wrote: 3 notes.\nStatistics by period (by month):\n2023.2 : 2\n2022.12 : 1\n"
	assert.Equal(t, want, s.Render())
}

func TestAggregateErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Aggregate(context.Background(), &fakeSource{countErr: boom}, 1, 2)
	assert.ErrorIs(t, err, boom)

	_, err = Aggregate(context.Background(), &fakeSource{groupErr: boom}, 1, 2)
	assert.ErrorIs(t, err, boom)
}
