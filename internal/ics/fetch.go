// Package ics provides an agenda source backed by an ICS subscription URL.
// Unlike the Google Calendar API, ICS feeds carry raw recurrence rules, so
// expansion happens client-side (see expand.go).
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gcal2org/internal/log"
	"gcal2org/internal/model"
)

const fetchTimeout = 15 * time.Second

// Subscription is one ICS feed, usable as a pipeline source.
type Subscription struct {
	// URL is the ICS endpoint.
	URL string
	// Label names the feed in logs and errors; falls back to the URL host.
	Label string

	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

func (s *Subscription) Name() string {
	if s.Label != "" {
		return s.Label
	}
	if u, err := url.Parse(s.URL); err == nil && u.Host != "" {
		return u.Host
	}
	return s.URL
}

// Events fetches the feed, parses it and expands recurrences into the
// requested window.
func (s *Subscription) Events(ctx context.Context, start, end time.Time) ([]model.RawEvent, error) {
	body, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.Name(), err)
	}

	raws := expand(parsed, start, end)
	log.Info("fetched ics feed", "feed", s.Name(), "events", len(parsed), "occurrences", len(raws))
	return raws, nil
}

func (s *Subscription) fetch(ctx context.Context) ([]byte, error) {
	if s.URL == "" {
		return nil, errors.New("ics: subscription URL is empty")
	}

	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: %s", s.Name(), resp.Status)
	}
	return io.ReadAll(resp.Body)
}
