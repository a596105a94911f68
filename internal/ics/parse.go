package ics

import (
	"bytes"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"gcal2org/internal/log"
)

// feedEvent is one VEVENT with enough recurrence context to expand it.
type feedEvent struct {
	summary   string
	start     time.Time
	end       time.Time
	allDay    bool
	cancelled bool
	rrule     string
	exDates   []time.Time
}

// parseFeed decodes an ICS payload into feed events. Individual malformed
// VEVENTs are skipped; the library resolves VTIMEZONE/TZID so start/end
// already carry a proper Location.
func parseFeed(body []byte) ([]feedEvent, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]feedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, ok := parseEvent(ve)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseEvent(ve *ical.VEvent) (feedEvent, bool) {
	var ev feedEvent

	start, err := ve.GetStartAt()
	if err != nil {
		log.Debug("ics: event without parsable DTSTART, skipping")
		return ev, false
	}
	ev.start = start

	if end, err := ve.GetEndAt(); err == nil {
		ev.end = end
	} else {
		ev.end = start
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.summary = p.Value
	}
	if ev.summary == "" {
		ev.summary = "No Title"
	}

	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		ev.cancelled = strings.EqualFold(p.Value, string(ical.ObjectStatusCancelled))
	}

	ev.allDay = isAllDay(ve)

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.rrule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseStamp(strings.TrimSpace(part), ev.start.Location()); err == nil {
				ev.exDates = append(ev.exDates, t)
			}
		}
	}

	return ev, true
}

// isAllDay detects date-only DTSTART, either via VALUE=DATE or a value
// without a time component.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseStamp handles the three EXDATE value shapes: UTC date-time, floating
// date-time and date-only. Floating values are anchored to loc, the event's
// own timezone.
func parseStamp(v string, loc *time.Location) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}
