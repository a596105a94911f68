package agenda

import (
	"fmt"
	"sort"
	"time"

	"gcal2org/internal/model"
)

// Month identifies one calendar month in the target zone.
type Month struct {
	Year  int
	Month time.Month
}

// String returns the YYYY-MM form used for filenames and logs.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Window returns n consecutive months starting at the month containing now
// in loc. time.Date normalizes month overflow, so year boundaries wrap.
func Window(now time.Time, n int, loc *time.Location) []Month {
	now = now.In(loc)
	months := make([]Month, 0, n)
	for i := 0; i < n; i++ {
		t := time.Date(now.Year(), now.Month()+time.Month(i), 1, 0, 0, 0, 0, loc)
		months = append(months, Month{Year: t.Year(), Month: t.Month()})
	}
	return months
}

// Bounds returns the fetch interval covering the given months: first day
// 00:00 of the first month through 23:59:59 of the last day of the final
// month, in loc.
func Bounds(months []Month, loc *time.Location) (time.Time, time.Time) {
	first := months[0]
	last := months[len(months)-1]
	start := time.Date(first.Year, first.Month, 1, 0, 0, 0, 0, loc)
	end := time.Date(last.Year, last.Month+1, 1, 0, 0, 0, 0, loc).Add(-time.Second)
	return start, end
}

// Bucket partitions events by the month of their start time and sorts each
// bucket ascending by start. The sort is stable so events with equal start
// keep their fetch order. Events outside the given months are discarded.
// Every requested month gets a bucket, possibly empty.
func Bucket(events []model.Event, months []Month) map[Month][]model.Event {
	buckets := make(map[Month][]model.Event, len(months))
	for _, m := range months {
		buckets[m] = []model.Event{}
	}

	for _, ev := range events {
		key := Month{Year: ev.Start.Year(), Month: ev.Start.Month()}
		if _, ok := buckets[key]; !ok {
			continue
		}
		buckets[key] = append(buckets[key], ev)
	}

	for _, m := range months {
		b := buckets[m]
		sort.SliceStable(b, func(i, j int) bool {
			return b[i].Start.Before(b[j].Start)
		})
	}
	return buckets
}
