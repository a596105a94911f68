package gcal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"gcal2org/internal/log"
	"gcal2org/internal/model"
)

// Primary selects the account's default calendar.
const Primary = "primary"

const (
	maxResultsPerPage = 2500
	retryBackoff      = 2 * time.Second
)

// Client wraps the Calendar API for windowed, recurrence-expanded event
// listing by calendar name.
type Client struct {
	svc *calendar.Service

	// byName caches the calendar list, keyed by lowercased summary.
	// Loaded once per run on first non-primary lookup.
	byName map[string]string
}

// NewClient builds a Client on top of an authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CalendarID resolves a human calendar name to its API identifier. The empty
// name and Primary map to the default calendar. Unknown names yield
// model.ErrCalendarNotFound.
func (c *Client) CalendarID(ctx context.Context, name string) (string, error) {
	if name == "" || strings.EqualFold(name, Primary) {
		return Primary, nil
	}

	if c.byName == nil {
		if err := c.loadCalendarList(ctx); err != nil {
			return "", err
		}
	}

	id, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("calendar %q: %w", name, model.ErrCalendarNotFound)
	}
	return id, nil
}

func (c *Client) loadCalendarList(ctx context.Context) error {
	byName := make(map[string]string)

	pageToken := ""
	for {
		call := c.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := withRetry(ctx, "calendar list", func() (*calendar.CalendarList, error) {
			return call.Do()
		})
		if err != nil {
			return fmt.Errorf("list calendars: %w", err)
		}

		for _, entry := range list.Items {
			byName[strings.ToLower(entry.Summary)] = entry.Id
		}
		if pageToken = list.NextPageToken; pageToken == "" {
			break
		}
	}

	c.byName = byName
	return nil
}

// Events lists all occurrences in [start, end] for the named calendar.
// Recurring events come back expanded to single instances and cancelled
// instances are excluded server-side; the Cancelled flag is still mapped so
// the normalizer can drop stragglers.
func (c *Client) Events(ctx context.Context, name string, start, end time.Time) ([]model.RawEvent, error) {
	id, err := c.CalendarID(ctx, name)
	if err != nil {
		return nil, err
	}

	var raws []model.RawEvent
	pageToken := ""
	for {
		call := c.svc.Events.List(id).
			Context(ctx).
			SingleEvents(true).
			ShowDeleted(false).
			OrderBy("startTime").
			TimeMin(start.Format(time.RFC3339)).
			TimeMax(end.Format(time.RFC3339)).
			MaxResults(maxResultsPerPage)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := withRetry(ctx, "events list", func() (*calendar.Events, error) {
			return call.Do()
		})
		if err != nil {
			return nil, fmt.Errorf("list events for %q: %w", name, err)
		}

		for _, item := range page.Items {
			raw, ok := toRawEvent(item)
			if !ok {
				log.Debug("skipping event without usable times", "calendar", name, "summary", item.Summary)
				continue
			}
			raws = append(raws, raw)
		}
		if pageToken = page.NextPageToken; pageToken == "" {
			break
		}
	}

	log.Info("fetched events", "calendar", name, "count", len(raws))
	return raws, nil
}

// withRetry performs one API call, retrying exactly once after a short
// backoff when the failure looks transient (rate limit, 5xx, timeout).
func withRetry[T any](ctx context.Context, op string, call func() (T, error)) (T, error) {
	out, err := call()
	if err == nil || !IsTransient(err) {
		return out, err
	}

	log.Error("transient API failure, retrying once", err, "op", op, "backoff", retryBackoff)
	select {
	case <-time.After(retryBackoff):
	case <-ctx.Done():
		return out, ctx.Err()
	}
	return call()
}

// IsTransient reports whether an API error is worth a single retry.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// toRawEvent maps an API event to the pipeline's raw shape. Events without
// start information are dropped (ok=false).
func toRawEvent(item *calendar.Event) (model.RawEvent, bool) {
	raw := model.RawEvent{
		Title:     strings.TrimSpace(item.Summary),
		Cancelled: strings.EqualFold(item.Status, "cancelled"),
	}
	if raw.Title == "" {
		raw.Title = "No Title"
	}

	switch {
	case item.Start == nil:
		return model.RawEvent{}, false

	case item.Start.DateTime != "":
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return model.RawEvent{}, false
		}
		raw.Start = start
		raw.End = start
		if item.End != nil && item.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				raw.End = end
			}
		}

	case item.Start.Date != "":
		date, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			return model.RawEvent{}, false
		}
		raw.AllDay = true
		raw.Start = date
		raw.End = date

	default:
		return model.RawEvent{}, false
	}

	return raw, true
}

// CalendarSource adapts one named calendar of a Client to the pipeline
// source interface.
type CalendarSource struct {
	Client   *Client
	Calendar string
}

func (s CalendarSource) Name() string {
	if s.Calendar == "" {
		return Primary
	}
	return s.Calendar
}

func (s CalendarSource) Events(ctx context.Context, start, end time.Time) ([]model.RawEvent, error) {
	return s.Client.Events(ctx, s.Calendar, start, end)
}
