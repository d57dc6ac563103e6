package retry

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
)

func readTimeout(received, required int, dataPresent bool) error {
	e := cql.NewExecutionError(cql.ReadTimeout, "read timed out", nil)
	e.Consistency = consistency.Quorum
	e.Received, e.Required, e.DataPresent = received, required, dataPresent
	return e
}

func writeTimeout(writeType string, received int) error {
	e := cql.NewExecutionError(cql.WriteTimeout, "write timed out", nil)
	e.Consistency = consistency.Quorum
	e.WriteType, e.Received, e.Required = writeType, received, 3
	return e
}

func unavailable(cl consistency.Level, alive int) error {
	e := cql.NewExecutionError(cql.Unavailable, "not enough replicas", nil)
	e.Consistency, e.Alive, e.Required = cl, alive, 3
	return e
}

func TestDefault(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		attempt  int
		expected Decision
	}{
		{"read timeout without data", readTimeout(2, 2, false), 0, retrySame()},
		{"read timeout with data", readTimeout(2, 2, true), 0, rethrow()},
		{"read timeout missing replicas", readTimeout(1, 2, false), 0, rethrow()},
		{"read timeout second attempt", readTimeout(2, 2, false), 1, rethrow()},
		{"batch log write timeout", writeTimeout(cql.WriteTypeBatchLog, 0), 0, retrySame()},
		{"simple write timeout", writeTimeout(cql.WriteTypeSimple, 1), 0, rethrow()},
		{"unavailable", unavailable(consistency.Quorum, 1), 0, retryNext()},
		{"unavailable second attempt", unavailable(consistency.Quorum, 1), 1, rethrow()},
		{"overloaded", cql.NewExecutionError(cql.Overloaded, "", nil), 0, retryNext()},
		{"syntax error", cql.NewExecutionError(cql.SyntaxError, "", nil), 0, rethrow()},
		{"invalid argument", cql.InvalidArgumentf("bad"), 0, rethrow()},
		{"context canceled", context.Canceled, 0, rethrow()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Default{}.Decide(tc.err, tc.attempt))
		})
	}
}

func TestFallthrough(t *testing.T) {
	assert.Equal(t, rethrow(), Fallthrough{}.Decide(unavailable(consistency.One, 1), 0))
	assert.Equal(t, rethrow(), Fallthrough{}.Decide(readTimeout(2, 2, false), 0))
}

func TestDowngradingConsistency(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		expected Decision
	}{
		{"read timeout two of three", readTimeout(2, 3, false), retryWith(consistency.Two)},
		{"read timeout one of three", readTimeout(1, 3, false), retryWith(consistency.One)},
		{"read timeout none", readTimeout(0, 3, false), rethrow()},
		{"read timeout without data", readTimeout(3, 3, false), retrySame()},
		{"read timeout with data", readTimeout(3, 3, true), rethrow()},
		{"simple write acknowledged", writeTimeout(cql.WriteTypeSimple, 1), ignore()},
		{"simple write lost", writeTimeout(cql.WriteTypeSimple, 0), rethrow()},
		{"batch write acknowledged", writeTimeout(cql.WriteTypeBatch, 2), ignore()},
		{"unlogged batch", writeTimeout(cql.WriteTypeUnloggedBatch, 2), retryWith(consistency.Two)},
		{"batch log", writeTimeout(cql.WriteTypeBatchLog, 0), retrySame()},
		{"counter write", writeTimeout(cql.WriteTypeCounter, 1), rethrow()},
		{"unavailable four alive", unavailable(consistency.All, 4), retryWith(consistency.Three)},
		{"unavailable one alive", unavailable(consistency.Quorum, 1), retryWith(consistency.One)},
		{"unavailable none alive", unavailable(consistency.Quorum, 0), rethrow()},
		{"unavailable serial", unavailable(consistency.Serial, 2), rethrow()},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DowngradingConsistency{}.Decide(tc.err, 0))
		})
	}

	assert.Equal(t, rethrow(), DowngradingConsistency{}.Decide(unavailable(consistency.Quorum, 2), 1))
	assert.True(t, IsDeprecated(DowngradingConsistency{}))
	assert.False(t, IsDeprecated(Default{}))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)

	p, err := NewLogging(DowngradingConsistency{}, logger)
	require.NoError(t, err)
	assert.True(t, IsDeprecated(p))
	assert.Equal(t, "downgrading", Name(p))

	d := p.Decide(unavailable(consistency.Quorum, 2), 0)
	assert.Equal(t, retryWith(consistency.Two), d)
	assert.Contains(t, buf.String(), "action=retry_same_node")
	assert.Contains(t, buf.String(), "consistency=TWO")

	buf.Reset()
	p.Decide(unavailable(consistency.Quorum, 0), 0)
	assert.Empty(t, buf.String())

	_, err = NewLogging(p, logger)
	require.Error(t, err)
	assert.True(t, cql.IsInvalidArgument(err))

	_, err = NewLogging(nil, logger)
	assert.True(t, cql.IsInvalidArgument(err))
}

func TestNew(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.PanicOnError)
	cfg.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-retry.policy=downgrading"}))
	require.NoError(t, cfg.Validate())

	var buf bytes.Buffer
	p, err := New(cfg, log.NewLogfmtLogger(&buf))
	require.NoError(t, err)
	assert.IsType(t, DowngradingConsistency{}, p)
	assert.Equal(t, 1, strings.Count(buf.String(), "deprecated"))

	cfg.LogDecisions = true
	p, err = New(cfg, log.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &Logging{}, p)

	cfg.Policy = "sometimes"
	require.Error(t, cfg.Validate())
	_, err = New(cfg, log.NewNopLogger())
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Decide(Default{}, unavailable(consistency.One, 1), 0)
	m.Decide(Default{}, unavailable(consistency.One, 1), 1)
	m.Decide(Default{}, unavailable(consistency.One, 1), 1)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.decisions.WithLabelValues("default", "retry_next_node")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.decisions.WithLabelValues("default", "rethrow")))

	var nilMetrics *Metrics
	assert.Equal(t, rethrow(), nilMetrics.Decide(Fallthrough{}, nil, 0))
}
