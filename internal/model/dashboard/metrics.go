package dashboard

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "expense_tracker",
		Subsystem: "dashboard",
		Name:      "cache_lookups_total",
	},
	[]string{"hit"},
)

func countLookup(hit bool) {
	lookupsTotal.WithLabelValues(strconv.FormatBool(hit)).Inc()
}
