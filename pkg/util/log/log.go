// Package log configures the go-kit logger shared by the cqlwire packages.
package log

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Logger is the logger of the cqlwire command, set by InitLogger.
var Logger = log.NewNopLogger()

// InitLogger initialises the global logger according to the level and
// format, and returns it. format is "logfmt" or "json".
func InitLogger(lvl dslog.Level, format string, reg prometheus.Registerer) log.Logger {
	Logger = NewLogger(os.Stderr, lvl, format, reg)
	return Logger
}

// NewLogger returns a logger writing to w that drops lines below lvl and
// counts the lines it writes per level.
func NewLogger(w io.Writer, lvl dslog.Level, format string, reg prometheus.Registerer) log.Logger {
	var logger log.Logger
	if format == "json" {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	}
	logger = newPrometheusLogger(logger, reg)
	if lvl.Option != nil {
		logger = level.NewFilter(logger, lvl.Option)
	}
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

type prometheusLogger struct {
	baseLogger  log.Logger
	logMessages *prometheus.CounterVec
}

func newPrometheusLogger(l log.Logger, reg prometheus.Registerer) *prometheusLogger {
	logMessages := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "cqlwire",
		Name:      "log_messages_total",
		Help:      "Total number of log messages.",
	}, []string{"level"})
	// Initialise counters for all supported levels:
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		logMessages.WithLabelValues(lvl)
	}
	return &prometheusLogger{
		baseLogger:  l,
		logMessages: logMessages,
	}
}

// Log increments the appropriate Prometheus counter depending on the log level.
func (pl *prometheusLogger) Log(kv ...interface{}) error {
	if err := pl.baseLogger.Log(kv...); err != nil {
		return err
	}
	l := "unknown"
	for i := 1; i < len(kv); i += 2 {
		if v, ok := kv[i].(level.Value); ok {
			l = v.String()
			break
		}
	}
	pl.logMessages.WithLabelValues(l).Inc()
	return nil
}
