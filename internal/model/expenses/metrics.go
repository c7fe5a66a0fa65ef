package expenses

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"max.ks1230/expense-tracker/internal/model/customerr"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "expenses",
			Name:      "mutations_total",
		},
		[]string{"operation", "status"},
	)
	invalidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "expense_tracker",
			Subsystem: "cache",
			Name:      "invalidation_failures_total",
		},
		[]string{"namespace"},
	)
)

func countMutation(op string, err error) {
	mutationsTotal.WithLabelValues(op, status(err)).Inc()
}

func countInvalidationFailure(namespace string) {
	invalidationFailuresTotal.WithLabelValues(namespace).Inc()
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case customerr.IsValidation(err):
		return "invalid"
	case customerr.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
