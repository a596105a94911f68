package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcal2org/internal/model"
)

func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func Test_NormalizeTimedEvent(t *testing.T) {
	loc := pacific(t)

	// 16:00 UTC on a summer date is 09:00 PDT (UTC-7).
	raws := []model.RawEvent{{
		Title: "Standup",
		Start: time.Date(2025, time.August, 27, 16, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.August, 27, 17, 0, 0, 0, time.UTC),
	}}

	events := Normalize(raws, loc)
	require.Len(t, events, 1)

	assert.Equal(t, "Standup", events[0].Title)
	assert.Equal(t, loc, events[0].Start.Location())
	assert.Equal(t, 9, events[0].Start.Hour())
	assert.Equal(t, 10, events[0].End.Hour())
}

func Test_NormalizeHonorsDST(t *testing.T) {
	loc := pacific(t)

	// Same UTC wall time in winter lands an hour earlier: PST is UTC-8.
	raws := []model.RawEvent{{
		Title: "Winter",
		Start: time.Date(2025, time.December, 10, 16, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.December, 10, 17, 0, 0, 0, time.UTC),
	}}

	events := Normalize(raws, loc)
	require.Len(t, events, 1)
	assert.Equal(t, 8, events[0].Start.Hour())
}

func Test_NormalizeAllDay(t *testing.T) {
	loc := pacific(t)

	raws := []model.RawEvent{{
		Title:  "Holiday",
		Start:  time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		AllDay: true,
	}}

	events := Normalize(raws, loc)
	require.Len(t, events, 1)

	want := time.Date(2025, time.September, 1, 6, 0, 0, 0, loc)
	assert.True(t, events[0].Start.Equal(want), "start %v, want %v", events[0].Start, want)
	assert.Equal(t, 30*time.Minute, events[0].End.Sub(events[0].Start))
}

func Test_NormalizeDropsCancelled(t *testing.T) {
	loc := pacific(t)

	raws := []model.RawEvent{
		{Title: "Keep", Start: time.Now(), End: time.Now()},
		{Title: "Gone", Start: time.Now(), End: time.Now(), Cancelled: true},
	}

	events := Normalize(raws, loc)
	require.Len(t, events, 1)
	assert.Equal(t, "Keep", events[0].Title)
}

func Test_NormalizeClampsReversedInterval(t *testing.T) {
	loc := pacific(t)

	start := time.Date(2025, time.August, 27, 16, 0, 0, 0, time.UTC)
	raws := []model.RawEvent{{Title: "Odd", Start: start, End: start.Add(-time.Hour)}}

	events := Normalize(raws, loc)
	require.Len(t, events, 1)
	assert.False(t, events[0].End.Before(events[0].Start))
	assert.True(t, events[0].Start.Equal(events[0].End))
}

func Test_NormalizePreservesOrder(t *testing.T) {
	loc := pacific(t)

	base := time.Date(2025, time.August, 27, 16, 0, 0, 0, time.UTC)
	raws := []model.RawEvent{
		{Title: "first", Start: base, End: base},
		{Title: "second", Start: base, End: base},
		{Title: "third", Start: base, End: base},
	}

	events := Normalize(raws, loc)
	require.Len(t, events, 3)
	assert.Equal(t, "first", events[0].Title)
	assert.Equal(t, "second", events[1].Title)
	assert.Equal(t, "third", events[2].Title)
}
