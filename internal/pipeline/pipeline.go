// Package pipeline runs the fetch -> normalize -> bucket -> write sequence
// that turns calendar sources into monthly org-agenda files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gcal2org/internal/agenda"
	"gcal2org/internal/log"
	"gcal2org/internal/model"
	"gcal2org/internal/org"
)

// Source lists raw event occurrences intersecting a time window. Both the
// Google Calendar client and ICS subscriptions satisfy it, and tests swap in
// fakes.
type Source interface {
	Name() string
	Events(ctx context.Context, start, end time.Time) ([]model.RawEvent, error)
}

// Pipeline holds everything one run needs. It carries no cross-run state;
// Run may be called repeatedly (e.g. from a cron schedule).
type Pipeline struct {
	Sources   []Source
	OutputDir string
	Location  *time.Location
	Months    int

	// Now stamps headers and anchors the month window; defaults to
	// time.Now. Fixed in tests for deterministic output.
	Now func() time.Time
}

// Run executes one full conversion. A source whose calendar does not exist
// is logged and skipped without failing the run; any other source failure,
// and any per-month write failure, is collected and returned after the
// remaining work is attempted.
func (p *Pipeline) Run(ctx context.Context) error {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}

	n := p.Months
	if n <= 0 {
		n = 3
	}

	months := agenda.Window(now, n, p.Location)
	start, end := agenda.Bounds(months, p.Location)
	log.Info("starting run",
		"months", fmt.Sprintf("%s..%s", months[0], months[len(months)-1]),
		"sources", len(p.Sources),
	)

	var errs []error

	var raws []model.RawEvent
	for _, src := range p.Sources {
		evs, err := src.Events(ctx, start, end)
		if err != nil {
			if errors.Is(err, model.ErrCalendarNotFound) {
				log.Error("calendar not found, skipping", err, "source", src.Name())
				continue
			}
			log.Error("source failed", err, "source", src.Name())
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name(), err))
			continue
		}
		raws = append(raws, evs...)
	}

	events := agenda.Normalize(raws, p.Location)
	buckets := agenda.Bucket(events, months)

	for _, m := range months {
		if err := org.WriteMonth(p.OutputDir, m, buckets[m], now); err != nil {
			log.Error("month write failed", err, "month", m)
			errs = append(errs, err)
			continue
		}
		log.Info("wrote agenda file", "file", org.Filename(m), "events", len(buckets[m]))
	}

	return errors.Join(errs...)
}
