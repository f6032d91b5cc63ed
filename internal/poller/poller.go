package poller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/teemow/reserve-it/internal/instrumentation"
	"github.com/teemow/reserve-it/internal/logging"
)

// Console lines written once per tick.
const (
	StatusBusy      = "Busy"
	StatusAvailable = "Available"
	errorPrefix     = "The API returned an error: "
)

// DefaultInterval is the delay between two availability checks.
const DefaultInterval = time.Second

// Checker reports whether the watched resource is currently reserved.
type Checker interface {
	IsBusy(ctx context.Context) (bool, error)
}

// Config holds the poller configuration.
type Config struct {
	// Checker is queried on every tick. Required.
	Checker Checker

	// Out receives one status line per tick (default: os.Stdout).
	Out io.Writer

	// Interval between ticks (default: DefaultInterval).
	Interval time.Duration

	// Logger receives diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// Metrics records tick outcomes. Optional.
	Metrics *instrumentation.Metrics
}

// Poller runs the availability check on a fixed interval until stopped.
type Poller struct {
	checker  Checker
	interval time.Duration
	logger   *slog.Logger
	metrics  *instrumentation.Metrics

	outMu sync.Mutex
	out   io.Writer

	mu     sync.Mutex
	cron   *cron.Cron
	cancel context.CancelFunc
}

// New creates a Poller. It does not start ticking until Start or Run.
func New(config Config) (*Poller, error) {
	if config.Checker == nil {
		return nil, fmt.Errorf("checker cannot be nil")
	}
	if config.Interval < 0 {
		return nil, fmt.Errorf("interval must not be negative, got %s", config.Interval)
	}
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Poller{
		checker:  config.Checker,
		interval: config.Interval,
		logger:   logging.WithOperation(config.Logger, "poll"),
		metrics:  config.Metrics,
		out:      config.Out,
	}, nil
}

// Start arms the poller. The first tick fires one interval later. Ticks
// receive a context derived from ctx that is cancelled by Stop.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return fmt.Errorf("poller already started")
	}

	tickCtx, cancel := context.WithCancel(ctx)
	cronLogger := logging.NewCronLogger(p.logger)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)
	c.Schedule(intervalSchedule{anchor: time.Now(), interval: p.interval}, cron.FuncJob(func() {
		p.tick(tickCtx)
	}))
	c.Start()

	p.cron = c
	p.cancel = cancel
	p.logger.Debug("poller started", slog.Duration(logging.KeyDuration, p.interval))
	return nil
}

// Stop disarms the poller and cancels in-flight ticks. The returned context
// is done once they have returned. Stopping an idle poller is a no-op.
func (p *Poller) Stop() context.Context {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	done := p.cron.Stop()
	p.cancel()
	p.cron = nil
	p.cancel = nil
	p.logger.Debug("poller stopped")
	return done
}

// Run starts the poller and blocks until ctx is cancelled, then stops it
// and waits for in-flight ticks.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	<-p.Stop().Done()
	return nil
}

// tick performs one availability check and prints its outcome.
func (p *Poller) tick(ctx context.Context) {
	logger := p.logger.With(logging.Tick(uuid.NewString()))
	start := time.Now()

	busy, err := p.checker.IsBusy(ctx)
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			logger.Debug("tick cancelled", logging.Err(err))
			return
		}
		p.metrics.RecordAvailabilityCheck(ctx, instrumentation.CheckResultError, duration)
		logger.Debug("availability check failed",
			logging.Err(err), slog.Duration(logging.KeyDuration, duration))
		p.println(errorPrefix + err.Error())
		return
	}

	line, result := StatusAvailable, instrumentation.CheckResultAvailable
	if busy {
		line, result = StatusBusy, instrumentation.CheckResultBusy
	}
	p.metrics.RecordAvailabilityCheck(ctx, result, duration)
	logger.Debug("availability checked",
		logging.Status(result), slog.Duration(logging.KeyDuration, duration))
	p.println(line)
}

func (p *Poller) println(line string) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintln(p.out, line)
}
