// Package session executes CQL statements with typed arguments and decodes
// their results.
package session

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/backoff"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grafana/cqlwire/pkg/cql"
	"github.com/grafana/cqlwire/pkg/retry"
)

// Session executes statements through a Transport.
type Session struct {
	cfg       Config
	transport Transport
	policy    retry.Policy
	logger    log.Logger
	metrics   *metrics
}

// New returns a Session sending requests through transport. policy is the
// retry policy of requests that do not set their own.
func New(cfg Config, transport Transport, policy retry.Policy, logger log.Logger, registerer prometheus.Registerer) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid execution config")
	}
	if transport == nil {
		return nil, errors.New("transport must not be nil")
	}
	if policy == nil {
		policy = retry.Default{}
	}
	return &Session{
		cfg:       cfg,
		transport: transport,
		policy:    policy,
		logger:    logger,
		metrics:   newMetrics(registerer),
	}, nil
}

// Execute binds the arguments of opts to the bind markers of query, sends it
// and decodes the first page of its result. Binding failures are returned as
// *cql.InvalidArgumentError before anything is sent, server and connection
// failures as *cql.ExecutionError.
func (s *Session) Execute(ctx context.Context, query string, opts ...Option) (*ResultSet, error) {
	o, err := NewExecutionOptions(opts...)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, query, o)
}

func (s *Session) execute(ctx context.Context, query string, o *ExecutionOptions) (rs *ResultSet, err error) {
	start := time.Now()
	s.metrics.inflight.Inc()
	defer func() {
		s.metrics.inflight.Dec()
		s.metrics.requestDurationSeconds.WithLabelValues("execute", statusCode(err)).Observe(time.Since(start).Seconds())
	}()

	args, err := bindArguments(query, o)
	if err != nil {
		return nil, err
	}
	req := s.request(query, args, o)

	timeout := s.cfg.Timeout
	if o.timeout > 0 {
		timeout = o.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	policy := s.policy
	if o.retryPolicy != nil {
		policy = o.retryPolicy
	}
	resp, err := s.send(ctx, req, policy)
	if err != nil {
		return nil, err
	}

	rs, err = newResultSet(resp)
	if err != nil {
		return nil, err
	}
	rs.session, rs.query, rs.opts = s, query, *o
	return rs, nil
}

func (s *Session) request(query string, args []interface{}, o *ExecutionOptions) *Request {
	req := &Request{
		Query:             query,
		Arguments:         args,
		Consistency:       s.cfg.Consistency,
		SerialConsistency: s.cfg.SerialConsistency,
		PageSize:          s.cfg.PageSize,
		PagingState:       o.pagingState,
		Timestamp:         o.timestamp,
		Idempotent:        o.idempotent,
	}
	if o.consistency != nil {
		req.Consistency = *o.consistency
	}
	if o.serialConsistency != nil {
		req.SerialConsistency = *o.serialConsistency
	}
	if o.pageSize > 0 {
		req.PageSize = o.pageSize
	}
	return req
}

// send executes req, asking policy what to do with each failure.
func (s *Session) send(ctx context.Context, req *Request, policy retry.Policy) (*Response, error) {
	tries := 0
	defer func() { s.metrics.retriesCount.Observe(float64(tries)) }()

	bk := backoff.New(ctx, s.cfg.Backoff)
	for {
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		req.Attempt = tries
		resp, err := s.transport.Query(ctx, req)
		if err == nil {
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		e, ok := cql.AsExecutionError(err)
		if !ok {
			return nil, err
		}
		if !req.Idempotent && mayHaveBeenApplied(e) {
			return nil, err
		}

		decision := s.metrics.retry.Decide(policy, err, tries)
		switch decision.Action {
		case retry.Rethrow:
			return nil, err
		case retry.Ignore:
			level.Debug(s.logger).Log("msg", "ignoring request error", "code", e.Code, "err", err)
			return &Response{}, nil
		case retry.RetrySameNode:
			req.NextNode = false
		case retry.RetryNextNode:
			req.NextNode = true
		}
		if decision.ChangeConsistency {
			req.Consistency = decision.Consistency
		}

		if !bk.Ongoing() {
			return nil, err
		}
		// NextDelay counts one retry, so it is read once per failure
		delay := bk.NextDelay()
		level.Warn(s.logger).Log(
			"msg", "error executing request",
			"try", tries,
			"action", decision.Action,
			"consistency", req.Consistency,
			"retry_in", delay,
			"err", err,
		)
		select {
		case <-ctx.Done():
			return nil, contextError(ctx.Err())
		case <-time.After(delay):
		}
		tries++
	}
}

// mayHaveBeenApplied reports whether the failed request may have been
// executed by the cluster, so resending it is only safe when it is idempotent.
func mayHaveBeenApplied(e *cql.ExecutionError) bool {
	switch e.Code {
	case cql.WriteTimeout, cql.WriteFailure, cql.ClientTimeout, cql.TransportError, cql.ServerError:
		return true
	}
	return false
}

// contextError reports an expired deadline as a client timeout.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return cql.NewExecutionError(cql.ClientTimeout, "request timed out", err)
	}
	return errors.WithStack(err)
}
