package cql

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/consistency"
)

// InvalidArgumentError is returned for malformed input detected locally,
// before any request is sent.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string {
	return e.msg
}

// InvalidArgumentf returns an InvalidArgumentError with a stack trace attached.
func InvalidArgumentf(format string, args ...interface{}) error {
	return errors.WithStack(&InvalidArgumentError{msg: fmt.Sprintf(format, args...)})
}

// IsInvalidArgument reports whether err is, or wraps, an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// ErrorCode is a native protocol error code. Codes above 0xFFFF are raised by
// the client and never sent by a server.
type ErrorCode int

const (
	ServerError     ErrorCode = 0x0000
	ProtocolError   ErrorCode = 0x000A
	BadCredentials  ErrorCode = 0x0100
	Unavailable     ErrorCode = 0x1000
	Overloaded      ErrorCode = 0x1001
	IsBootstrapping ErrorCode = 0x1002
	TruncateError   ErrorCode = 0x1003
	WriteTimeout    ErrorCode = 0x1100
	ReadTimeout     ErrorCode = 0x1200
	ReadFailure     ErrorCode = 0x1300
	FunctionFailure ErrorCode = 0x1400
	WriteFailure    ErrorCode = 0x1500
	SyntaxError     ErrorCode = 0x2000
	Unauthorized    ErrorCode = 0x2100
	Invalid         ErrorCode = 0x2200
	ConfigError     ErrorCode = 0x2300
	AlreadyExists   ErrorCode = 0x2400
	Unprepared      ErrorCode = 0x2500

	TransportError  ErrorCode = 0x10001
	ClientTimeout   ErrorCode = 0x10002
	NoHostAvailable ErrorCode = 0x10003
)

var errorCodeNames = map[ErrorCode]string{
	ServerError:     "server_error",
	ProtocolError:   "protocol_error",
	BadCredentials:  "bad_credentials",
	Unavailable:     "unavailable",
	Overloaded:      "overloaded",
	IsBootstrapping: "is_bootstrapping",
	TruncateError:   "truncate_error",
	WriteTimeout:    "write_timeout",
	ReadTimeout:     "read_timeout",
	ReadFailure:     "read_failure",
	FunctionFailure: "function_failure",
	WriteFailure:    "write_failure",
	SyntaxError:     "syntax_error",
	Unauthorized:    "unauthorized",
	Invalid:         "invalid",
	ConfigError:     "config_error",
	AlreadyExists:   "already_exists",
	Unprepared:      "unprepared",
	TransportError:  "transport_error",
	ClientTimeout:   "client_timeout",
	NoHostAvailable: "no_host_available",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("error_0x%04x", int(c))
}

// Write types reported by write timeouts and failures.
const (
	WriteTypeSimple        = "SIMPLE"
	WriteTypeBatch         = "BATCH"
	WriteTypeUnloggedBatch = "UNLOGGED_BATCH"
	WriteTypeCounter       = "COUNTER"
	WriteTypeBatchLog      = "BATCH_LOG"
	WriteTypeCAS           = "CAS"
	WriteTypeView          = "VIEW"
	WriteTypeCDC           = "CDC"
)

// ExecutionError is a server side or transport failure of a request.
// The detail fields are only populated for the codes that carry them.
type ExecutionError struct {
	Code    ErrorCode
	Message string

	Consistency consistency.Level
	Received    int
	Required    int
	Alive       int
	WriteType   string
	DataPresent bool

	cause error
}

// NewExecutionError returns an ExecutionError caused by err.
func NewExecutionError(code ErrorCode, msg string, cause error) *ExecutionError {
	return &ExecutionError{Code: code, Message: msg, cause: cause}
}

func (e *ExecutionError) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *ExecutionError) Unwrap() error { return e.cause }

// AsExecutionError returns the ExecutionError wrapped by err.
func AsExecutionError(err error) (*ExecutionError, bool) {
	var target *ExecutionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsExecutionError reports whether err is, or wraps, an ExecutionError.
func IsExecutionError(err error) bool {
	_, ok := AsExecutionError(err)
	return ok
}
