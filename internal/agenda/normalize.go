package agenda

import (
	"time"

	"gcal2org/internal/model"
)

const (
	allDayHour   = 6
	allDayLength = 30 * time.Minute
)

// Normalize converts raw occurrences into agenda events in the target zone.
// Cancelled occurrences are dropped. All-day occurrences become a synthetic
// 06:00-06:30 slot on their date, since the org timestamp format has no
// all-day representation. Input order is preserved.
func Normalize(raws []model.RawEvent, loc *time.Location) []model.Event {
	events := make([]model.Event, 0, len(raws))
	for _, r := range raws {
		if r.Cancelled {
			continue
		}

		var start, end time.Time
		if r.AllDay {
			y, m, d := r.Start.Date()
			start = time.Date(y, m, d, allDayHour, 0, 0, 0, loc)
			end = start.Add(allDayLength)
		} else {
			start = r.Start.In(loc)
			end = r.End.In(loc)
			if end.Before(start) {
				end = start
			}
		}

		events = append(events, model.Event{
			Title: r.Title,
			Start: start,
			End:   end,
		})
	}
	return events
}
