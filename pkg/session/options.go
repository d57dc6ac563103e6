package session

import (
	"strconv"
	"time"

	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
	"github.com/grafana/cqlwire/pkg/retry"
)

// ExecutionOptions are the per request settings of Execute. Unset options
// fall back to the session Config.
type ExecutionOptions struct {
	consistency       *consistency.Level
	serialConsistency *consistency.Level
	pageSize          int
	pagingState       []byte
	timeout           time.Duration
	arguments         []interface{}
	argumentTypes     []*cql.Type
	retryPolicy       retry.Policy
	timestamp         *int64
	idempotent        bool
}

// Option sets an execution option. Options reject invalid input with an
// InvalidArgumentError.
type Option func(*ExecutionOptions) error

// NewExecutionOptions applies opts in order.
func NewExecutionOptions(opts ...Option) (*ExecutionOptions, error) {
	o := &ExecutionOptions{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithConsistency sets the consistency level of the request.
func WithConsistency(cl consistency.Level) Option {
	return func(o *ExecutionOptions) error {
		if !cl.Valid() {
			return cql.InvalidArgumentf("Invalid consistency: %s", cl)
		}
		o.consistency = &cl
		return nil
	}
}

// WithSerialConsistency sets the consistency of the paxos phase of
// conditional updates. Only SERIAL and LOCAL_SERIAL are accepted.
func WithSerialConsistency(cl consistency.Level) Option {
	return func(o *ExecutionOptions) error {
		if !cl.IsSerial() {
			return cql.InvalidArgumentf("Invalid serial consistency: %s, must be SERIAL or LOCAL_SERIAL", cl)
		}
		o.serialConsistency = &cl
		return nil
	}
}

// WithPageSize sets the number of rows fetched per page.
func WithPageSize(n int) Option {
	return func(o *ExecutionOptions) error {
		if n <= 0 {
			return cql.InvalidArgumentf("Invalid page size: %d, must be greater than 0", n)
		}
		o.pageSize = n
		return nil
	}
}

// WithPagingState resumes a query at the page following the one that
// returned state.
func WithPagingState(state []byte) Option {
	return func(o *ExecutionOptions) error {
		o.pagingState = append([]byte(nil), state...)
		return nil
	}
}

// WithTimeout bounds the request, retries included.
func WithTimeout(d time.Duration) Option {
	return func(o *ExecutionOptions) error {
		if d <= 0 {
			return cql.InvalidArgumentf("Invalid timeout: %s, must be greater than 0", d)
		}
		o.timeout = d
		return nil
	}
}

// WithArguments binds args to the bind markers of the query, in order.
func WithArguments(args ...interface{}) Option {
	return func(o *ExecutionOptions) error {
		o.arguments = args
		return nil
	}
}

// WithArgumentTypes declares the types of the bind markers. Arguments are
// converted to these types before the request is sent.
func WithArgumentTypes(types ...*cql.Type) Option {
	return func(o *ExecutionOptions) error {
		for i, t := range types {
			if t == nil {
				return cql.InvalidArgumentf("Argument type %d must not be nil", i)
			}
		}
		o.argumentTypes = types
		return nil
	}
}

// WithRetryPolicy overrides the session retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(o *ExecutionOptions) error {
		if p == nil {
			return cql.InvalidArgumentf("Retry policy must not be nil")
		}
		o.retryPolicy = p
		return nil
	}
}

// WithTimestamp sets the write timestamp in microseconds since the Unix
// epoch. ts is an integer, a numeric string or a time.Time.
func WithTimestamp(ts interface{}) Option {
	return func(o *ExecutionOptions) error {
		var us int64
		switch v := ts.(type) {
		case int64:
			us = v
		case int:
			us = int64(v)
		case string:
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return cql.InvalidArgumentf("Invalid timestamp: '%s'", v)
			}
			us = i
		case time.Time:
			us = v.UnixMicro()
		default:
			return cql.InvalidArgumentf("Invalid timestamp: %T value '%v', expected an integer or a numeric string", ts, ts)
		}
		o.timestamp = &us
		return nil
	}
}

// WithIdempotent marks the request as safe to send more than once. Only
// idempotent requests are retried after a failure that may have been applied.
func WithIdempotent(idempotent bool) Option {
	return func(o *ExecutionOptions) error {
		o.idempotent = idempotent
		return nil
	}
}
