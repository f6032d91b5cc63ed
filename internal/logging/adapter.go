package logging

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CronLogger adapts an slog.Logger to the cron.Logger interface.
// The scheduler reports every wake-up and run at info level, so those
// messages are demoted to debug to keep the console quiet.
type CronLogger struct {
	logger *slog.Logger
}

var _ cron.Logger = (*CronLogger)(nil)

// NewCronLogger creates a new CronLogger wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewCronLogger(logger *slog.Logger) *CronLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &CronLogger{logger: logger.With(slog.String("component", "scheduler"))}
}

// Info logs routine scheduler activity at debug level.
// Arguments should be provided as alternating key-value pairs: key1, value1, key2, value2, ...
func (a *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, keysAndValues...)
}

// Error logs a scheduler failure, such as a recovered panic in a job.
func (a *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	args := append([]interface{}{Err(err)}, keysAndValues...)
	a.logger.Error(msg, args...)
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *CronLogger) Logger() *slog.Logger {
	return a.logger
}
