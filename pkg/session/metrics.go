package session

import (
	"context"

	"github.com/grafana/dskit/instrument"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/atomic"

	"github.com/grafana/cqlwire/pkg/cql"
	"github.com/grafana/cqlwire/pkg/retry"
)

type metrics struct {
	// duration in seconds of Execute calls, retries included
	requestDurationSeconds *prometheus.HistogramVec
	retriesCount           prometheus.Histogram
	inflight               *atomic.Int64
	retry                  *retry.Metrics
}

func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		requestDurationSeconds: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cqlwire",
			Name:      "request_duration_seconds",
			Help:      "Time (in seconds) spent executing requests, retries included.",
			Buckets:   instrument.DefBuckets,
		}, []string{"operation", "status_code"}),
		retriesCount: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
			Namespace: "cqlwire",
			Name:      "request_retries",
			Help:      "Number of times a request is retried.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		inflight: atomic.NewInt64(0),
		retry:    retry.NewMetrics(r),
	}
	promauto.With(r).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cqlwire",
		Name:      "inflight_requests",
		Help:      "Number of requests being executed.",
	}, func() float64 { return float64(m.inflight.Load()) })
	return m
}

// statusCode returns the status_code label of a request outcome.
func statusCode(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case cql.IsInvalidArgument(err):
		return "invalid_argument"
	}
	if e, ok := cql.AsExecutionError(err); ok {
		return e.Code.String()
	}
	return "error"
}
