package export

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramExportTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "export",
		Name:      "histogram_export_time_seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	},
	[]string{"error"},
)

func observeExport(elapsed time.Duration, err error) {
	histogramExportTime.
		WithLabelValues(strconv.FormatBool(err != nil)).
		Observe(elapsed.Seconds())
}
