package cassandra

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/grafana/dskit/instrument"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// observer records every attempt gocql makes to send a query.
type observer struct {
	logger          log.Logger
	requestDuration *prometheus.HistogramVec
}

func newObserver(logger log.Logger, r prometheus.Registerer) *observer {
	return &observer{
		logger: logger,
		requestDuration: promauto.With(r).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cqlwire",
			Name:      "cassandra_query_duration_seconds",
			Help:      "Time spent doing Cassandra requests, per attempt.",
			Buckets:   instrument.DefBuckets,
		}, []string{"keyspace", "status"}),
	}
}

func status(err error) string {
	if err != nil {
		return "500"
	}
	return "200"
}

func (o *observer) ObserveQuery(_ context.Context, q gocql.ObservedQuery) {
	o.requestDuration.WithLabelValues(q.Keyspace, status(q.Err)).Observe(q.End.Sub(q.Start).Seconds())
	if q.Err == nil {
		return
	}
	host := ""
	if q.Host != nil {
		host = q.Host.ConnectAddress().String()
	}
	level.Debug(o.logger).Log("msg", "query attempt failed", "host", host, "attempt", q.Attempt, "duration", q.End.Sub(q.Start), "err", q.Err)
}
