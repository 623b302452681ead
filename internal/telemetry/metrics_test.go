package telemetry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	m, err := NewMetrics()
	require.NoError(t, err)
	ctx := context.Background()
	m.ObserveRequest(ctx, http.MethodGet, "/meals", http.StatusOK, 20*time.Millisecond)
	m.CheckoutRedirect(ctx)
	m.OptimisticRollback(ctx, "favorites")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}
	assert.True(t, names["storefront_http_requests_total"])
	assert.True(t, names["storefront_http_request_duration_seconds"])
	assert.True(t, names["storefront_checkout_redirects_total"])
	assert.True(t, names["storefront_optimistic_rollbacks_total"])
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "storefront", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
