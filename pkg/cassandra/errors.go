package cassandra

import (
	"context"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
)

// toExecutionError converts gocql errors to *cql.ExecutionError. Binding and
// context errors are returned unchanged.
func toExecutionError(err error) error {
	if err == nil || cql.IsInvalidArgument(err) || cql.IsExecutionError(err) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		unavailable  *gocql.RequestErrUnavailable
		writeTimeout *gocql.RequestErrWriteTimeout
		readTimeout  *gocql.RequestErrReadTimeout
		readFailure  *gocql.RequestErrReadFailure
		writeFailure *gocql.RequestErrWriteFailure
		requestErr   gocql.RequestError
	)
	switch {
	case errors.As(err, &unavailable):
		e := newExecutionError(cql.Unavailable, unavailable, err)
		e.Consistency = consistency.Level(unavailable.Consistency)
		e.Required, e.Alive = unavailable.Required, unavailable.Alive
		return e
	case errors.As(err, &writeTimeout):
		e := newExecutionError(cql.WriteTimeout, writeTimeout, err)
		e.Consistency = consistency.Level(writeTimeout.Consistency)
		e.Received, e.Required = writeTimeout.Received, writeTimeout.BlockFor
		e.WriteType = writeTimeout.WriteType
		return e
	case errors.As(err, &readTimeout):
		e := newExecutionError(cql.ReadTimeout, readTimeout, err)
		e.Consistency = consistency.Level(readTimeout.Consistency)
		e.Received, e.Required = readTimeout.Received, readTimeout.BlockFor
		e.DataPresent = readTimeout.DataPresent != 0
		return e
	case errors.As(err, &readFailure):
		e := newExecutionError(cql.ReadFailure, readFailure, err)
		e.Consistency = consistency.Level(readFailure.Consistency)
		e.Received, e.Required = readFailure.Received, readFailure.BlockFor
		e.DataPresent = readFailure.DataPresent
		return e
	case errors.As(err, &writeFailure):
		e := newExecutionError(cql.WriteFailure, writeFailure, err)
		e.Consistency = consistency.Level(writeFailure.Consistency)
		e.Received, e.Required = writeFailure.Received, writeFailure.BlockFor
		e.WriteType = writeFailure.WriteType
		return e
	case errors.As(err, &requestErr):
		return newExecutionError(cql.ErrorCode(requestErr.Code()), requestErr, err)
	case errors.Is(err, gocql.ErrTimeoutNoResponse):
		return cql.NewExecutionError(cql.ClientTimeout, err.Error(), err)
	case errors.Is(err, gocql.ErrNoConnections):
		return cql.NewExecutionError(cql.NoHostAvailable, err.Error(), err)
	}
	return cql.NewExecutionError(cql.TransportError, err.Error(), err)
}

func newExecutionError(code cql.ErrorCode, re gocql.RequestError, cause error) *cql.ExecutionError {
	return cql.NewExecutionError(code, re.Message(), cause)
}
