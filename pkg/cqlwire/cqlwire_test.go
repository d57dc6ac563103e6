package cqlwire

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cqlwire/pkg/cfg"
	"github.com/grafana/cqlwire/pkg/codec"
	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
	"github.com/grafana/cqlwire/pkg/session"
)

func parseConfig(t *testing.T, yaml string, args ...string) Config {
	t.Helper()
	file := filepath.Join(t.TempDir(), "cqlwire.yaml")
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o600))

	var c Config
	fs := flag.NewFlagSet(t.Name(), flag.ContinueOnError)
	require.NoError(t, cfg.Parse(&c, append([]string{"-config.file=" + file}, args...), fs))
	return c
}

func TestConfigFromFileAndFlags(t *testing.T) {
	c := parseConfig(t, `
cassandra:
  addresses: cassandra-0,cassandra-1
  keyspace: app
  compression: snappy
execution:
  consistency: QUORUM
  page_size: 100
retry:
  policy: fallthrough
log_level: debug
`, "-execution.page-size=50")

	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"cassandra-0", "cassandra-1"}, []string(c.Cassandra.Addresses))
	assert.Equal(t, 9042, c.Cassandra.Port)
	assert.Equal(t, consistency.Quorum, c.Execution.Consistency)
	assert.Equal(t, consistency.Serial, c.Execution.SerialConsistency)
	assert.Equal(t, 50, c.Execution.PageSize)
	assert.Equal(t, "fallthrough", c.Retry.Policy)
	assert.Equal(t, "debug", c.LogLevel.String())
	assert.Equal(t, "logfmt", c.LogFormat)
}

func TestConfigValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		yaml string
		args []string
	}{
		"no addresses":      {yaml: "cassandra:\n  keyspace: app\n"},
		"unknown policy":    {yaml: "cassandra:\n  addresses: c0\nretry:\n  policy: always\n"},
		"not serial":        {yaml: "cassandra:\n  addresses: c0\nexecution:\n  serial_consistency: ONE\n"},
		"bad log format":    {yaml: "cassandra:\n  addresses: c0\n", args: []string{"-log.format=xml"}},
		"bad compression":   {yaml: "cassandra:\n  addresses: c0\n  compression: zstd\n"},
		"zero backoff":      {yaml: "cassandra:\n  addresses: c0\n", args: []string{"-execution.backoff-min-period=0"}},
		"negative timeout":  {yaml: "cassandra:\n  addresses: c0\n", args: []string{"-execution.timeout=-1s"}},
		"protocol too old":  {yaml: "cassandra:\n  addresses: c0\n  protocol_version: 2\n"},
		"auth without user": {yaml: "cassandra:\n  addresses: c0\n  auth: true\n"},
	} {
		t.Run(name, func(t *testing.T) {
			c := parseConfig(t, tc.yaml, tc.args...)
			require.Error(t, c.Validate())
		})
	}
}

type staticTransport struct {
	requests []session.Request
	resp     *session.Response
}

func (s *staticTransport) Query(_ context.Context, req *session.Request) (*session.Response, error) {
	s.requests = append(s.requests, *req)
	return s.resp, nil
}

func TestClientExecute(t *testing.T) {
	c := parseConfig(t, "cassandra:\n  addresses: c0\nretry:\n  policy: downgrading\n  log_decisions: true\n")
	c.Execution.Backoff.MinBackoff = time.Millisecond
	c.Execution.Backoff.MaxBackoff = time.Millisecond

	name, err := codec.Encode(cql.NewText("Jane"))
	require.NoError(t, err)
	transport := &staticTransport{resp: &session.Response{
		Columns: []session.Column{{Keyspace: "app", Table: "users", Name: "name", Type: cql.TypeText}},
		Rows:    [][][]byte{{name}},
	}}

	var buf bytes.Buffer
	client, err := newClient(c, transport, log.NewLogfmtLogger(&buf), prometheus.NewRegistry())
	require.NoError(t, err)
	defer client.Close()

	rs, err := client.Execute(context.Background(), "SELECT name FROM users WHERE id = ?", session.WithArguments(42))
	require.NoError(t, err)
	row, ok := rs.First()
	require.True(t, ok)
	v, ok := row.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Jane", v.Text())

	require.Len(t, transport.requests, 1)
	assert.Equal(t, consistency.LocalOne, transport.requests[0].Consistency)
	assert.Equal(t, 5000, transport.requests[0].PageSize)
	assert.Contains(t, buf.String(), "deprecated")
}

func TestClientLogLevel(t *testing.T) {
	for _, tc := range []struct {
		level     string
		wantDebug bool
	}{
		{level: "info", wantDebug: false},
		{level: "debug", wantDebug: true},
	} {
		t.Run(tc.level, func(t *testing.T) {
			c := parseConfig(t, "cassandra:\n  addresses: c0\nretry:\n  policy: downgrading\n", "-log.level="+tc.level)
			reg := prometheus.NewRegistry()
			var buf bytes.Buffer
			logger := c.Logger(&buf, reg)

			client, err := newClient(c, &staticTransport{resp: &session.Response{}}, logger, reg)
			require.NoError(t, err)
			defer client.Close()

			assert.Contains(t, buf.String(), "level=warn")
			assert.Contains(t, buf.String(), "deprecated")
			assert.Equal(t, tc.wantDebug, strings.Contains(buf.String(), "session created"))
			// one series per level, no line is logged without one
			n, err := testutil.GatherAndCount(reg, "cqlwire_log_messages_total")
			require.NoError(t, err)
			assert.Equal(t, 4, n)
		})
	}
}

func TestClientLogFormatJSON(t *testing.T) {
	c := parseConfig(t, "cassandra:\n  addresses: c0\n", "-log.format=json", "-log.level=debug")
	var buf bytes.Buffer
	_, err := newClient(c, &staticTransport{resp: &session.Response{}}, c.Logger(&buf, nil), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"session created"`)
}
