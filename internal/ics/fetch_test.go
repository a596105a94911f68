package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_SubscriptionEvents(t *testing.T) {
	body := feed(
		"BEGIN:VEVENT",
		"UID:a@test",
		"DTSTAMP:20250801T000000Z",
		"DTSTART:20250827T160000Z",
		"DTEND:20250827T170000Z",
		"SUMMARY:Standup",
		"END:VEVENT",
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	sub := &Subscription{URL: srv.URL, Label: "team", HTTPClient: srv.Client()}
	start, end := window()

	raws, err := sub.Events(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Standup", raws[0].Title)
	assert.True(t, raws[0].Start.Equal(time.Date(2025, time.August, 27, 16, 0, 0, 0, time.UTC)))
}

func Test_SubscriptionEventsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	sub := &Subscription{URL: srv.URL, HTTPClient: srv.Client()}
	start, end := window()

	_, err := sub.Events(context.Background(), start, end)
	assert.Error(t, err)
}

func Test_SubscriptionName(t *testing.T) {
	assert.Equal(t, "team", (&Subscription{URL: "https://example.com/x.ics", Label: "team"}).Name())
	assert.Equal(t, "example.com", (&Subscription{URL: "https://example.com/x.ics"}).Name())
}
