package model

import (
	"errors"
	"time"
)

// ErrCalendarNotFound is returned by a source when the calendar it was
// configured with does not exist on the provider side. The pipeline skips
// such sources instead of failing the run.
var ErrCalendarNotFound = errors.New("calendar not found")

// RawEvent is a single event occurrence as delivered by a calendar source,
// after recurrence expansion but before timezone normalization. For all-day
// events only the year/month/day of Start are meaningful.
type RawEvent struct {
	Title     string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Cancelled bool
}

// Event is a normalized agenda entry. Start and End are always expressed in
// the target timezone and Start <= End holds. Cancelled occurrences never
// reach this type.
type Event struct {
	Title string
	Start time.Time
	End   time.Time
}
