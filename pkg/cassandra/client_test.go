package cassandra

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
)

func TestToExecutionError(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		check func(t *testing.T, e *cql.ExecutionError)
	}{
		{
			name: "unavailable",
			err:  &gocql.RequestErrUnavailable{Consistency: gocql.Quorum, Required: 3, Alive: 1},
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.Unavailable, e.Code)
				assert.Equal(t, consistency.Quorum, e.Consistency)
				assert.Equal(t, 3, e.Required)
				assert.Equal(t, 1, e.Alive)
			},
		},
		{
			name: "write timeout",
			err:  errors.Wrap(&gocql.RequestErrWriteTimeout{Consistency: gocql.LocalQuorum, Received: 1, BlockFor: 2, WriteType: "BATCH_LOG"}, "query"),
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.WriteTimeout, e.Code)
				assert.Equal(t, consistency.LocalQuorum, e.Consistency)
				assert.Equal(t, 1, e.Received)
				assert.Equal(t, 2, e.Required)
				assert.Equal(t, cql.WriteTypeBatchLog, e.WriteType)
			},
		},
		{
			name: "read timeout",
			err:  &gocql.RequestErrReadTimeout{Consistency: gocql.Two, Received: 2, BlockFor: 2, DataPresent: 0},
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.ReadTimeout, e.Code)
				assert.Equal(t, consistency.Two, e.Consistency)
				assert.False(t, e.DataPresent)
			},
		},
		{
			name: "read failure",
			err:  &gocql.RequestErrReadFailure{Consistency: gocql.One, Received: 0, BlockFor: 1, DataPresent: true},
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.ReadFailure, e.Code)
				assert.True(t, e.DataPresent)
			},
		},
		{
			name: "write failure",
			err:  &gocql.RequestErrWriteFailure{Consistency: gocql.All, Received: 2, BlockFor: 3, WriteType: "SIMPLE"},
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.WriteFailure, e.Code)
				assert.Equal(t, cql.WriteTypeSimple, e.WriteType)
			},
		},
		{
			name: "no response",
			err:  gocql.ErrTimeoutNoResponse,
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.ClientTimeout, e.Code)
			},
		},
		{
			name: "no connections",
			err:  gocql.ErrNoConnections,
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.NoHostAvailable, e.Code)
			},
		},
		{
			name: "connection reset",
			err:  errors.New("read: connection reset by peer"),
			check: func(t *testing.T, e *cql.ExecutionError) {
				assert.Equal(t, cql.TransportError, e.Code)
				assert.Contains(t, e.Message, "connection reset")
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := toExecutionError(tc.err)
			e, ok := cql.AsExecutionError(err)
			require.True(t, ok, "got %T", err)
			tc.check(t, e)
		})
	}
}

func TestToExecutionErrorPassthrough(t *testing.T) {
	require.NoError(t, toExecutionError(nil))

	invalid := cql.InvalidArgumentf("bad")
	assert.Equal(t, invalid, toExecutionError(invalid))

	assert.ErrorIs(t, toExecutionError(context.Canceled), context.Canceled)

	e := cql.NewExecutionError(cql.Overloaded, "busy", nil)
	assert.Equal(t, error(e), toExecutionError(e))
}

func TestCompressors(t *testing.T) {
	payload := []byte(strings.Repeat("SELECT name, address FROM users WHERE id = ?;", 20))
	for _, name := range []string{"snappy", "lz4"} {
		t.Run(name, func(t *testing.T) {
			c, err := newCompressor(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Name())

			for _, data := range [][]byte{payload, {}, []byte("x")} {
				enc, err := c.Encode(data)
				require.NoError(t, err)
				dec, err := c.Decode(enc)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(data, dec))
			}
		})
	}

	_, err := newCompressor("gzip")
	require.Error(t, err)
}

func TestLZ4FramePrefix(t *testing.T) {
	enc, err := LZ4Compressor{}.Encode([]byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 32}, enc[:4])

	_, err = LZ4Compressor{}.Decode([]byte{0, 0})
	require.Error(t, err)
	_, err = LZ4Compressor{}.Decode([]byte{0, 0, 0, 10, 0xff})
	require.Error(t, err)
}

func TestConfig(t *testing.T) {
	var cfg Config
	fs := flag.NewFlagSet("test", flag.PanicOnError)
	cfg.RegisterFlags(fs)
	require.Error(t, cfg.Validate())

	require.NoError(t, fs.Parse([]string{
		"-cassandra.addresses=10.0.0.1,10.0.0.2",
		"-cassandra.keyspace=app",
		"-cassandra.auth",
		"-cassandra.username=cassandra",
		"-cassandra.password=s3cret",
		"-cassandra.compression=lz4",
	}))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, []string(cfg.Addresses))
	assert.Equal(t, 9042, cfg.Port)

	cluster, err := cfg.clusterConfig()
	require.NoError(t, err)
	assert.Equal(t, "app", cluster.Keyspace)
	assert.Equal(t, 4, cluster.ProtoVersion)
	assert.Nil(t, cluster.RetryPolicy)
	assert.Equal(t, "lz4", cluster.Compressor.Name())
	auth, ok := cluster.Authenticator.(gocql.PasswordAuthenticator)
	require.True(t, ok)
	assert.Equal(t, "s3cret", auth.Password)

	for _, mutate := range []func(*Config){
		func(c *Config) { c.ProtocolVersion = 2 },
		func(c *Config) { c.NumConnections = 0 },
		func(c *Config) { c.Compression = "zstd" },
		func(c *Config) { c.Username = "" },
	} {
		bad := cfg
		mutate(&bad)
		require.Error(t, bad.Validate())
	}
}

func TestObserver(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	var buf bytes.Buffer
	o := newObserver(log.NewLogfmtLogger(&buf), reg)

	start := time.Now()
	o.ObserveQuery(context.Background(), gocql.ObservedQuery{Keyspace: "app", Start: start, End: start.Add(time.Millisecond)})
	o.ObserveQuery(context.Background(), gocql.ObservedQuery{
		Keyspace: "app",
		Start:    start,
		End:      start.Add(time.Millisecond),
		Attempt:  1,
		Err:      errors.New("overloaded"),
	})

	assert.Equal(t, 2, testutil.CollectAndCount(o.requestDuration))
	assert.Contains(t, buf.String(), "err=overloaded")
	assert.Contains(t, buf.String(), "attempt=1")
}
