package aggregates

import (
	"time"

	"github.com/yungbote/storefront-backend/internal/observability"
)

// Operation names passed to Hooks.
const (
	OpPlaceOrder       = "Orders.Checkout.PlaceOrder"
	OpTransitionStatus = "Orders.Status.Transition"
)

// metricOperation maps operations to the short label exported on metrics. Anything
// else is reported as "other" so ad-hoc names cannot grow label cardinality.
var metricOperation = map[string]string{
	OpPlaceOrder:       "checkout",
	OpTransitionStatus: "order_status",
}

// Hooks receives the outcome of every aggregate write.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate outcomes to metrics; nil metrics disables it.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func metricLabel(op string) string {
	if label, ok := metricOperation[op]; ok {
		return label
	}
	return "other"
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(metricLabel(name), status, dur)
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(metricLabel(name))
}

func (h metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(metricLabel(name))
}
