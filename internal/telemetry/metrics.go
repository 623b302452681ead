package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the storefront's instruments.
type Metrics struct {
	requests  metric.Int64Counter
	duration  metric.Float64Histogram
	checkouts metric.Int64Counter
	rollbacks metric.Int64Counter
}

// NewMetrics creates the instruments on the global meter provider. Call it
// after InitMetrics; before that the instruments are no-ops.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("github.com/chefhut/storefront")
	m := &Metrics{}
	var err error
	if m.requests, err = meter.Int64Counter("storefront_http_requests_total",
		metric.WithDescription("HTTP requests served")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("storefront_http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"), metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.checkouts, err = meter.Int64Counter("storefront_checkout_redirects_total",
		metric.WithDescription("Redirects to the hosted checkout page")); err != nil {
		return nil, err
	}
	if m.rollbacks, err = meter.Int64Counter("storefront_optimistic_rollbacks_total",
		metric.WithDescription("Optimistic updates restored after a failed mutation")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

func (m *Metrics) CheckoutRedirect(ctx context.Context) { m.checkouts.Add(ctx, 1) }

func (m *Metrics) OptimisticRollback(ctx context.Context, resource string) {
	m.rollbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}
