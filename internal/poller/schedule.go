package poller

import (
	"time"

	"github.com/robfig/cron/v3"
)

// intervalSchedule fires every interval after anchor. cron.Every rounds to
// whole seconds and measures from each wake-up, so ticks would drift.
type intervalSchedule struct {
	anchor   time.Time
	interval time.Duration
}

var _ cron.Schedule = intervalSchedule{}

// Next returns the first anchor + k*interval strictly after t.
func (s intervalSchedule) Next(t time.Time) time.Time {
	if t.Before(s.anchor) {
		return s.anchor.Add(s.interval)
	}
	elapsed := t.Sub(s.anchor)
	return s.anchor.Add((elapsed/s.interval + 1) * s.interval)
}
