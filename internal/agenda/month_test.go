package agenda

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcal2org/internal/model"
)

func Test_Window(t *testing.T) {
	loc := pacific(t)

	months := Window(time.Date(2025, time.August, 27, 12, 0, 0, 0, loc), 3, loc)
	assert.Equal(t, []Month{
		{2025, time.August},
		{2025, time.September},
		{2025, time.October},
	}, months)
}

func Test_WindowWrapsYear(t *testing.T) {
	loc := pacific(t)

	months := Window(time.Date(2025, time.November, 15, 0, 0, 0, 0, loc), 3, loc)
	assert.Equal(t, []Month{
		{2025, time.November},
		{2025, time.December},
		{2026, time.January},
	}, months)
}

func Test_WindowUsesTargetZoneMonth(t *testing.T) {
	loc := pacific(t)

	// 2025-09-01 03:00 UTC is still 2025-08-31 in Pacific.
	months := Window(time.Date(2025, time.September, 1, 3, 0, 0, 0, time.UTC), 3, loc)
	assert.Equal(t, Month{2025, time.August}, months[0])
}

func Test_Bounds(t *testing.T) {
	loc := pacific(t)

	months := Window(time.Date(2025, time.August, 27, 0, 0, 0, 0, loc), 3, loc)
	start, end := Bounds(months, loc)

	assert.True(t, start.Equal(time.Date(2025, time.August, 1, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2025, time.October, 31, 23, 59, 59, 0, loc)))
}

func Test_MonthString(t *testing.T) {
	assert.Equal(t, "2025-08", Month{2025, time.August}.String())
	assert.Equal(t, "2026-01", Month{2026, time.January}.String())
}

func Test_BucketPartitionsAndSorts(t *testing.T) {
	loc := pacific(t)
	months := []Month{{2025, time.August}, {2025, time.September}, {2025, time.October}}

	at := func(month time.Month, day, hour int) time.Time {
		return time.Date(2025, month, day, hour, 0, 0, 0, loc)
	}

	events := []model.Event{
		{Title: "sep", Start: at(time.September, 3, 9)},
		{Title: "aug-late", Start: at(time.August, 28, 10)},
		{Title: "aug-early", Start: at(time.August, 27, 9)},
		{Title: "outside", Start: at(time.November, 1, 9)},
	}

	buckets := Bucket(events, months)
	require.Len(t, buckets, 3)

	aug := buckets[Month{2025, time.August}]
	require.Len(t, aug, 2)
	assert.Equal(t, "aug-early", aug[0].Title)
	assert.Equal(t, "aug-late", aug[1].Title)

	assert.Len(t, buckets[Month{2025, time.September}], 1)
	assert.Empty(t, buckets[Month{2025, time.October}])
}

func Test_BucketSortIsStable(t *testing.T) {
	loc := pacific(t)
	months := []Month{{2025, time.August}}

	same := time.Date(2025, time.August, 27, 9, 0, 0, 0, loc)
	events := []model.Event{
		{Title: "fetched-first", Start: same},
		{Title: "fetched-second", Start: same},
		{Title: "fetched-third", Start: same},
	}

	buckets := Bucket(events, months)
	got := buckets[Month{2025, time.August}]
	require.Len(t, got, 3)
	assert.Equal(t, "fetched-first", got[0].Title)
	assert.Equal(t, "fetched-second", got[1].Title)
	assert.Equal(t, "fetched-third", got[2].Title)
}

func Test_BucketEmptyMonthStillPresent(t *testing.T) {
	months := []Month{{2025, time.August}}
	buckets := Bucket(nil, months)

	got, ok := buckets[Month{2025, time.August}]
	require.True(t, ok)
	assert.Empty(t, got)
}
