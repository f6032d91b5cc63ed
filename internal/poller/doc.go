// Package poller runs the availability check on a fixed interval and prints
// Busy, Available or the query error once per tick.
//
// Ticks are scheduled by github.com/robfig/cron/v3, each in its own
// goroutine, so a slow check can overlap the next tick. Output lines are
// written whole and in completion order.
package poller
