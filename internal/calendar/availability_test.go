package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	events  []Event
	err     error
	queries []EventQuery
}

func (f *fakeLister) ListEvents(_ context.Context, query EventQuery) ([]Event, error) {
	f.queries = append(f.queries, query)
	return f.events, f.err
}

func TestIsBusyAt(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		events []Event
		want   bool
	}{
		{
			name: "no events",
			want: false,
		},
		{
			name:   "all-day event",
			events: []Event{{Start: EventTime{Date: "2024-01-01"}}},
			want:   true,
		},
		{
			name:   "all-day event in the future",
			events: []Event{{Start: EventTime{Date: "2024-12-24"}}},
			want:   true,
		},
		{
			name:   "timed event already started",
			events: []Event{{Start: EventTime{DateTime: now.Add(-5 * time.Second)}}},
			want:   true,
		},
		{
			name:   "timed event starting exactly now",
			events: []Event{{Start: EventTime{DateTime: now}}},
			want:   false,
		},
		{
			name:   "timed event in the future",
			events: []Event{{Start: EventTime{DateTime: now.Add(5 * time.Second)}}},
			want:   false,
		},
		{
			name:   "start in another zone",
			events: []Event{{Start: EventTime{DateTime: now.Add(-time.Minute).In(time.FixedZone("CET", 3600))}}},
			want:   true,
		},
		{
			name:   "event without start",
			events: []Event{{ID: "broken"}},
			want:   false,
		},
		{
			name: "only the first event counts",
			events: []Event{
				{Start: EventTime{DateTime: now.Add(time.Hour)}},
				{Start: EventTime{Date: "2024-03-14"}},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusyAt(tt.events, now))
		})
	}
}

func TestChecker_IsBusy(t *testing.T) {
	now := time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)
	lister := &fakeLister{events: []Event{{Start: EventTime{DateTime: now.Add(-time.Minute)}}}}
	checker := NewChecker(lister, "room@example.com", WithClock(func() time.Time { return now }))

	busy, err := checker.IsBusy(context.Background())
	require.NoError(t, err)
	assert.True(t, busy)

	require.Len(t, lister.queries, 1)
	assert.Equal(t, EventQuery{
		CalendarID:   "room@example.com",
		TimeMin:      now,
		MaxResults:   1,
		SingleEvents: true,
		OrderBy:      OrderByStartTime,
	}, lister.queries[0])
	assert.Equal(t, "room@example.com", checker.CalendarID())
}

func TestChecker_IsBusyError(t *testing.T) {
	lister := &fakeLister{err: errors.New("boom")}
	checker := NewChecker(lister, "room@example.com")

	busy, err := checker.IsBusy(context.Background())
	assert.EqualError(t, err, "boom")
	assert.False(t, busy)
}

func TestChecker_DefaultClock(t *testing.T) {
	lister := &fakeLister{}
	checker := NewChecker(lister, "")

	before := time.Now()
	_, err := checker.IsBusy(context.Background())
	require.NoError(t, err)

	require.Len(t, lister.queries, 1)
	assert.False(t, lister.queries[0].TimeMin.Before(before))
	assert.False(t, lister.queries[0].TimeMin.After(time.Now()))
}
