package service

import "context"

// Metrics records business counters. telemetry.Metrics implements it.
type Metrics interface {
	CheckoutRedirect(ctx context.Context)
	OptimisticRollback(ctx context.Context, resource string)
}

type nopMetrics struct{}

func (nopMetrics) CheckoutRedirect(context.Context)           {}
func (nopMetrics) OptimisticRollback(context.Context, string) {}

func orNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
