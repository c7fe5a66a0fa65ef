package messages

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramResponseTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "expense_tracker",
		Subsystem: "telegram",
		Name:      "histogram_response_time_seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	},
	[]string{"command", "status"},
)

// commandLabel keeps the label set bounded: free text and unknown commands share a value each.
func commandLabel(text string) string {
	cmd, _ := parseCommand(text)
	if !strings.HasPrefix(cmd, "/") {
		return "text"
	}
	switch cmd {
	case startCommand, helpCommand, addCommand, listCommand,
		updateCommand, deleteCommand, dashboardCommand, exportCommand:
		return strings.TrimPrefix(cmd, "/")
	default:
		return "unknown"
	}
}

func observeResponse(command string, elapsed time.Duration, err bool) {
	histogramResponseTime.
		WithLabelValues(command, strconv.FormatBool(err)).
		Observe(elapsed.Seconds())
}
