package calendar

import (
	"context"
	"time"
)

// Checker decides whether the resource behind a calendar is reserved right now.
type Checker struct {
	lister     EventLister
	calendarID string
	now        func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithClock replaces the wall clock used as "now".
func WithClock(now func() time.Time) CheckerOption {
	return func(c *Checker) {
		c.now = now
	}
}

// NewChecker creates a Checker querying calendarID through lister.
func NewChecker(lister EventLister, calendarID string, opts ...CheckerOption) *Checker {
	c := &Checker{
		lister:     lister,
		calendarID: calendarID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CalendarID returns the queried calendar.
func (c *Checker) CalendarID() string {
	return c.calendarID
}

// IsBusy fetches the next event that has not ended yet and applies IsBusyAt.
func (c *Checker) IsBusy(ctx context.Context) (bool, error) {
	now := c.now()
	events, err := c.lister.ListEvents(ctx, EventQuery{
		CalendarID:   c.calendarID,
		TimeMin:      now,
		MaxResults:   1,
		SingleEvents: true,
		OrderBy:      OrderByStartTime,
	})
	if err != nil {
		return false, err
	}
	return IsBusyAt(events, now), nil
}

// IsBusyAt reports whether the first of events makes the resource busy at now.
// An all-day event is always busy. A timed event is busy once it has started.
// End times are not consulted; the query already excludes finished events.
func IsBusyAt(events []Event, now time.Time) bool {
	if len(events) == 0 {
		return false
	}

	start := events[0].Start
	switch {
	case start.AllDay():
		return true
	case start.Timed():
		return start.DateTime.Before(now)
	default:
		return false
	}
}
