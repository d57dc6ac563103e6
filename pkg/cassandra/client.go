// Package cassandra is a session.Transport sending requests to Cassandra
// with gocql.
package cassandra

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/cqlwire/pkg/session"
)

// Client implements session.Transport for Cassandra.
type Client struct {
	cfg     Config
	session *gocql.Session
	logger  log.Logger
}

// NewClient connects to the cluster of cfg.
func NewClient(cfg Config, logger log.Logger, registerer prometheus.Registerer) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid cassandra config")
	}
	cluster, err := cfg.clusterConfig()
	if err != nil {
		return nil, err
	}
	cluster.QueryObserver = newObserver(logger, registerer)

	s, err := cluster.CreateSession()
	if err != nil {
		return nil, errors.Wrap(err, "cluster.CreateSession")
	}
	level.Info(logger).Log("msg", "connected to cassandra", "addresses", cfg.Addresses.String(), "keyspace", cfg.Keyspace, "protocol_version", cluster.ProtoVersion)
	return &Client{cfg: cfg, session: s, logger: logger}, nil
}

// Query sends one page request. Host selection is left to the token aware
// round robin policy of the cluster, which moves to another replica on every
// attempt, so NextNode needs no handling here.
func (c *Client) Query(ctx context.Context, req *session.Request) (*session.Response, error) {
	args := make([]interface{}, len(req.Arguments))
	for i, a := range req.Arguments {
		args[i] = marshaler{arg: a}
	}

	q := c.session.Query(req.Query, args...).WithContext(ctx).
		Consistency(gocql.Consistency(req.Consistency)).
		SerialConsistency(gocql.SerialConsistency(req.SerialConsistency)).
		PageSize(req.PageSize).
		PageState(req.PagingState).
		Idempotent(req.Idempotent).
		RetryPolicy(nil)
	if req.Timestamp != nil {
		q = q.WithTimestamp(*req.Timestamp)
	}

	resp, err := readPage(q.Iter())
	return resp, toExecutionError(err)
}

func readPage(iter *gocql.Iter) (*session.Response, error) {
	infos := iter.Columns()
	columns := make([]session.Column, len(infos))
	for i, info := range infos {
		t, err := typeFromInfo(info.TypeInfo)
		if err != nil {
			_ = iter.Close()
			return nil, errors.Wrapf(err, "column %s", info.Name)
		}
		columns[i] = session.Column{Keyspace: info.Keyspace, Table: info.Table, Name: info.Name, Type: t}
	}

	resp := &session.Response{Columns: columns}
	cells, dest := scanDest(columns)
	for iter.Scan(dest...) {
		row, err := joinRow(columns, cells)
		if err != nil {
			_ = iter.Close()
			return nil, err
		}
		resp.Rows = append(resp.Rows, row)
	}
	resp.PagingState = iter.PageState()
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return resp, nil
}

// Close the client.
func (c *Client) Close() {
	c.session.Close()
}
