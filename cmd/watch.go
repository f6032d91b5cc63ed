package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/reserve-it/internal/calendar"
	"github.com/teemow/reserve-it/internal/config"
	"github.com/teemow/reserve-it/internal/google"
	"github.com/teemow/reserve-it/internal/instrumentation"
	"github.com/teemow/reserve-it/internal/logging"
	"github.com/teemow/reserve-it/internal/poller"
	"github.com/teemow/reserve-it/internal/server"
)

// pollInterval is the delay between two availability checks.
const pollInterval = poller.DefaultInterval

// watchOptions carries the process surroundings of the watch command.
type watchOptions struct {
	// workDir holds client_secret.json and the optional .env file.
	workDir string

	in     io.Reader
	out    io.Writer
	logOut io.Writer
	debug  bool

	interval     time.Duration
	calendarOpts []calendar.ClientOption
}

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print Busy or Available for the configured calendar every second",
		Long: `Authorizes against Google (prompting once if no token is cached) and then
checks the calendar in CALENDAR_ID every second. Each check prints one line:
"Busy", "Available" or "The API returned an error: <error>".

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runWatch(ctx, watchOptions{
				workDir:  ".",
				in:       cmd.InOrStdin(),
				out:      cmd.OutOrStdout(),
				logOut:   cmd.ErrOrStderr(),
				debug:    debugMode,
				interval: pollInterval,
			})
		},
	}
}

func runWatch(ctx context.Context, opts watchOptions) error {
	cfg, err := config.Load(opts.workDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(opts.logOut, logging.Options{Level: cfg.LogLevel, Debug: opts.debug})
	slog.SetDefault(logger)

	if cfg.CalendarID == "" {
		logger.Warn("CALENDAR_ID is not set, queries will fail")
	}

	instrConfig := cfg.Instrumentation
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	health := server.NewHealthChecker()
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(cfg.MetricsAddr, provider, health, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	oauthConfig, err := google.LoadClientSecret(filepath.Join(opts.workDir, google.DefaultClientSecretFile))
	if err != nil {
		logger.Error("Error loading client secret file", logging.Err(err))
		return err
	}

	store := google.NewFileTokenStore(google.TokenPath(cfg.HomeDir), logger)
	authorizer, err := google.NewAuthorizer(google.AuthorizerConfig{
		Flow:    oauthConfig,
		Store:   store,
		In:      opts.in,
		Out:     opts.out,
		Logger:  logger,
		Metrics: provider.Metrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to create authorizer: %w", err)
	}

	httpClient, err := authorize(ctx, authorizer)
	switch {
	case errors.Is(err, google.ErrTokenExchange):
		logger.Warn("Not polling without a token, press Ctrl+C to exit")
		<-ctx.Done()
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return err
	}

	calendarClient, err := calendar.NewClient(ctx, httpClient,
		append(opts.calendarOpts, calendar.WithMetrics(provider.Metrics()))...)
	if err != nil {
		return err
	}

	p, err := poller.New(poller.Config{
		Checker:  calendar.NewChecker(calendarClient, cfg.CalendarID),
		Out:      opts.out,
		Interval: opts.interval,
		Logger:   logger,
		Metrics:  provider.Metrics(),
	})
	if err != nil {
		return err
	}

	health.SetReady(true)
	logger.Debug("watching calendar", logging.Calendar(cfg.CalendarID))
	return p.Run(ctx)
}

// authorize runs the authorizer but gives up when ctx is cancelled, since the
// terminal prompt cannot be interrupted.
func authorize(ctx context.Context, authorizer *google.Authorizer) (*http.Client, error) {
	type result struct {
		client *http.Client
		err    error
	}
	done := make(chan result, 1)
	go func() {
		client, err := authorizer.Authorize(ctx)
		done <- result{client, err}
	}()

	select {
	case r := <-done:
		return r.client, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, health *server.HealthChecker, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  health,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}
