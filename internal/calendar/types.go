package calendar

import (
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// OrderByStartTime orders expanded events by their start boundary.
const OrderByStartTime = "startTime"

// EventQuery describes an events.list request against one calendar.
type EventQuery struct {
	CalendarID string

	// TimeMin is the lower bound (exclusive) for an event's end time.
	TimeMin time.Time

	// MaxResults caps the number of returned events. Zero leaves the API default.
	MaxResults int64

	// SingleEvents expands recurring events into instances.
	SingleEvents bool

	// OrderBy is either OrderByStartTime or empty. The API only accepts
	// startTime together with SingleEvents.
	OrderBy string
}

// EventTime is the start or end boundary of an event. Exactly one of Date
// and DateTime is set for a well-formed event.
type EventTime struct {
	// Date is a whole-day boundary in YYYY-MM-DD form.
	Date string

	// DateTime is a precise boundary.
	DateTime time.Time
}

// AllDay reports whether the boundary is a whole-day date.
func (t EventTime) AllDay() bool {
	return t.Date != ""
}

// Timed reports whether the boundary is a precise instant.
func (t EventTime) Timed() bool {
	return !t.DateTime.IsZero()
}

// Event represents a simplified calendar event
type Event struct {
	ID      string
	Summary string
	Status  string
	Start   EventTime
	End     EventTime
}

// toEvent converts a Calendar API event. A dateTime that is not RFC 3339 is
// reported as an error rather than dropped.
func toEvent(event *calendar.Event) (Event, error) {
	if event == nil {
		return Event{}, nil
	}

	e := Event{
		ID:      event.Id,
		Summary: event.Summary,
		Status:  event.Status,
	}

	var err error
	if e.Start, err = toEventTime(event.Start); err != nil {
		return Event{}, fmt.Errorf("event %q has invalid start: %w", event.Id, err)
	}
	if e.End, err = toEventTime(event.End); err != nil {
		return Event{}, fmt.Errorf("event %q has invalid end: %w", event.Id, err)
	}

	return e, nil
}

func toEventTime(dt *calendar.EventDateTime) (EventTime, error) {
	if dt == nil {
		return EventTime{}, nil
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err != nil {
			return EventTime{}, err
		}
		return EventTime{DateTime: t}, nil
	}
	return EventTime{Date: dt.Date}, nil
}
