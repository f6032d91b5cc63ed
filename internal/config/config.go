package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/teemow/reserve-it/internal/instrumentation"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Environment keys.
const (
	KeyCalendarID     = "CALENDAR_ID"
	KeyLogLevel       = "LOG_LEVEL"
	KeyMetricsEnabled = "METRICS_ENABLED"
	KeyMetricsAddr    = "METRICS_ADDR"

	keyInstrumentationEnabled = "INSTRUMENTATION_ENABLED"
	keyMetricsExporter        = "METRICS_EXPORTER"
	keyTracingExporter        = "TRACING_EXPORTER"
	keyOTLPEndpoint           = "OTEL_EXPORTER_OTLP_ENDPOINT"
	keyOTLPInsecure           = "OTEL_EXPORTER_OTLP_INSECURE"
	keyTraceSamplingRate      = "OTEL_TRACES_SAMPLER_ARG"
	keyServiceName            = "OTEL_SERVICE_NAME"
)

// homeKeys are consulted in order for the user's home directory.
var homeKeys = []string{"HOME", "HOMEPATH", "USERPROFILE"}

// DefaultMetricsAddr is where the metrics server listens unless METRICS_ADDR is set.
const DefaultMetricsAddr = ":9090"

// ErrNoHomeDir is returned when none of the home directory variables is set.
var ErrNoHomeDir = errors.New("home directory not set (HOME, HOMEPATH, USERPROFILE)")

// Config is the resolved runtime configuration.
type Config struct {
	// CalendarID is the calendar to watch. Empty is allowed but almost
	// certainly a mistake; callers should warn.
	CalendarID string

	// HomeDir holds the credentials directory.
	HomeDir string

	// LogLevel is the requested log level name.
	LogLevel string

	// MetricsEnabled starts the metrics HTTP server.
	MetricsEnabled bool

	// MetricsAddr is the metrics server listen address.
	MetricsAddr string

	// Instrumentation configures metrics and tracing providers.
	Instrumentation instrumentation.Config
}

// Load resolves the configuration from the process environment, falling
// back to dir/.env for variables that are not set. A missing .env is fine.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, DotEnvFile))
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault(KeyMetricsEnabled, false)
	v.SetDefault(KeyMetricsAddr, DefaultMetricsAddr)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s: %w", DotEnvFile, err)
		}
	}

	cfg := &Config{
		CalendarID:      v.GetString(KeyCalendarID),
		HomeDir:         homeDir(v),
		LogLevel:        v.GetString(KeyLogLevel),
		MetricsEnabled:  v.GetBool(KeyMetricsEnabled),
		MetricsAddr:     v.GetString(KeyMetricsAddr),
		Instrumentation: instrumentationConfig(v),
	}

	if cfg.HomeDir == "" {
		return nil, ErrNoHomeDir
	}

	return cfg, nil
}

func homeDir(v *viper.Viper) string {
	for _, key := range homeKeys {
		if dir := v.GetString(key); dir != "" {
			return dir
		}
	}
	return ""
}

// instrumentationConfig starts from the environment defaults and applies
// values that only come from .env.
func instrumentationConfig(v *viper.Viper) instrumentation.Config {
	cfg := instrumentation.DefaultConfig()

	if v.IsSet(keyServiceName) {
		cfg.ServiceName = v.GetString(keyServiceName)
	}
	if v.IsSet(keyInstrumentationEnabled) {
		cfg.Enabled = v.GetBool(keyInstrumentationEnabled)
	}
	if v.IsSet(keyMetricsExporter) {
		cfg.MetricsExporter = v.GetString(keyMetricsExporter)
	}
	if v.IsSet(keyTracingExporter) {
		cfg.TracingExporter = v.GetString(keyTracingExporter)
	}
	if v.IsSet(keyOTLPEndpoint) {
		cfg.OTLPEndpoint = v.GetString(keyOTLPEndpoint)
	}
	if v.IsSet(keyOTLPInsecure) {
		cfg.OTLPInsecure = v.GetBool(keyOTLPInsecure)
	}
	if v.IsSet(keyTraceSamplingRate) {
		cfg.TraceSamplingRate = v.GetFloat64(keyTraceSamplingRate)
	}

	return cfg
}
