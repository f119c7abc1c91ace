package api

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricLinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tracesink",
		Subsystem: "tap",
		Name:      "lines_total",
		Help:      "Total number of trace lines written to the live tap",
	})
	metricBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tracesink",
		Subsystem: "tap",
		Name:      "bytes_total",
		Help:      "Total number of trace bytes written to the live tap",
	})
	metricLiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tracesink",
		Subsystem: "live",
		Name:      "clients",
		Help:      "Number of connected live tail clients",
	})
	metricConfigChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracesink",
		Subsystem: "sink",
		Name:      "config_changes_total",
		Help:      "Total number of sink configuration changes through the API",
	}, []string{"setting"})
)

// countingWriter counts each Write as one line.
type countingWriter struct {
	w io.Writer
}

func (c countingWriter) Write(p []byte) (int, error) {
	metricLinesTotal.Inc()
	metricBytesTotal.Add(float64(len(p)))
	return c.w.Write(p)
}
