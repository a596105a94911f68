package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	"gcal2org/internal/log"
	"gcal2org/internal/model"
)

// maxOccurrences caps per-event expansion as a guard against pathological
// rules; the fetch window is only a few months so real feeds stay far below.
const maxOccurrences = 1000

// expand turns parsed feed events into concrete raw occurrences within
// [start, end]. Non-recurring events pass through with an overlap check;
// RRULE events are expanded with EXDATEs removed and the original duration
// preserved. Feed order is kept for deterministic downstream sorting.
func expand(events []feedEvent, start, end time.Time) []model.RawEvent {
	var raws []model.RawEvent
	for _, ev := range events {
		if ev.rrule == "" {
			if overlaps(ev.start, ev.end, start, end) {
				raws = append(raws, toRaw(ev, ev.start))
			}
			continue
		}
		raws = append(raws, expandRule(ev, start, end)...)
	}
	return raws
}

func expandRule(ev feedEvent, start, end time.Time) []model.RawEvent {
	rule, err := rrule.StrToRRule(ev.rrule)
	if err != nil {
		log.Error("ics: unparsable RRULE, emitting base event only", err, "summary", ev.summary, "rrule", ev.rrule)
		if overlaps(ev.start, ev.end, start, end) {
			return []model.RawEvent{toRaw(ev, ev.start)}
		}
		return nil
	}
	rule.DTStart(ev.start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.exDates {
		set.ExDate(ex.In(ev.start.Location()))
	}

	// Between wants the window in the event's own zone.
	loc := ev.start.Location()
	starts := set.Between(start.In(loc), end.In(loc), true)
	if len(starts) > maxOccurrences {
		log.Error("ics: recurrence expansion truncated", nil, "summary", ev.summary, "cap", maxOccurrences)
		starts = starts[:maxOccurrences]
	}

	raws := make([]model.RawEvent, 0, len(starts))
	for _, s := range starts {
		raws = append(raws, toRaw(ev, s))
	}
	return raws
}

// toRaw builds the occurrence starting at occStart, shifting the event's end
// by the same offset so the duration survives expansion.
func toRaw(ev feedEvent, occStart time.Time) model.RawEvent {
	return model.RawEvent{
		Title:     ev.summary,
		Start:     occStart,
		End:       occStart.Add(ev.end.Sub(ev.start)),
		AllDay:    ev.allDay,
		Cancelled: ev.cancelled,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
