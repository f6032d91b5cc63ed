// Package instrumentation provides OpenTelemetry instrumentation for reserve-it.
//
// This package enables observability of the availability poller through:
//   - OpenTelemetry metrics for availability checks, Calendar API calls and OAuth
//   - Distributed tracing for Calendar API calls
//   - Prometheus metrics export via the optional metrics server
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Availability Metrics:
//   - availability_checks_total: Counter of poll ticks by result (busy, available, error)
//   - availability_check_duration_seconds: Histogram of tick durations
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//
// OAuth Metrics:
//   - oauth_auth_total: Counter of authorizations by result (cached, success, failure)
//
// # Tracing
//
// A client span named google.calendar.events.list is created for every
// calendar query.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: reserve-it)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordAvailabilityCheck(ctx, instrumentation.CheckResultBusy, time.Since(start))
package instrumentation
