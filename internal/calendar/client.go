package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/teemow/reserve-it/internal/instrumentation"
)

// EventLister lists events of a calendar.
type EventLister interface {
	ListEvents(ctx context.Context, query EventQuery) ([]Event, error)
}

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	metrics *instrumentation.Metrics
}

type clientConfig struct {
	metrics     *instrumentation.Metrics
	serviceOpts []option.ClientOption
}

var _ EventLister = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithMetrics records API call outcomes on m.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *clientConfig) {
		c.metrics = m
	}
}

// WithEndpoint sends API requests to endpoint instead of the public Google API.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *clientConfig) {
		c.serviceOpts = append(c.serviceOpts, option.WithEndpoint(endpoint))
	}
}

// NewClient creates a Calendar client that sends requests through
// httpClient, which is expected to carry the OAuth2 token.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("http client cannot be nil")
	}

	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	svcOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, cfg.serviceOpts...)
	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc, metrics: cfg.metrics}, nil
}

// ListEvents lists events in a calendar matching the query
func (c *Client) ListEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	ctx, span := instrumentation.StartGoogleAPISpan(ctx,
		instrumentation.ServiceCalendar, instrumentation.OperationEventsList,
		instrumentation.NewSpanAttributeBuilder().
			WithCalendar(query.CalendarID).
			WithReadOnly(true).
			Build()...)
	defer span.End()

	start := time.Now()
	events, err := c.listEvents(ctx, query)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
	} else {
		span.SetAttributes(attribute.Int(instrumentation.SpanAttrResultCount, len(events)))
		instrumentation.SetSpanSuccess(span)
	}
	c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar,
		instrumentation.OperationEventsList, status, time.Since(start))

	return events, err
}

func (c *Client) listEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	call := c.svc.Events.List(query.CalendarID).
		Context(ctx).
		SingleEvents(query.SingleEvents)

	if !query.TimeMin.IsZero() {
		call = call.TimeMin(query.TimeMin.UTC().Format(time.RFC3339Nano))
	}
	if query.MaxResults > 0 {
		call = call.MaxResults(query.MaxResults)
	}
	if query.OrderBy != "" {
		call = call.OrderBy(query.OrderBy)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		event, err := toEvent(item)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}
