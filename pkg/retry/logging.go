package retry

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/grafana/cqlwire/pkg/cql"
)

// Logging logs every decision of its child policy that is not a rethrow.
type Logging struct {
	child  Policy
	logger log.Logger
}

// NewLogging wraps child. Wrapping another Logging policy is rejected.
func NewLogging(child Policy, logger log.Logger) (*Logging, error) {
	if child == nil {
		return nil, cql.InvalidArgumentf("child retry policy must not be nil")
	}
	if _, ok := child.(*Logging); ok {
		return nil, cql.InvalidArgumentf("child retry policy must not be a logging policy")
	}
	return &Logging{child: child, logger: logger}, nil
}

func (l *Logging) Name() string { return Name(l.child) }

func (l *Logging) Deprecated() bool { return IsDeprecated(l.child) }

// Child returns the wrapped policy.
func (l *Logging) Child() Policy { return l.child }

func (l *Logging) Decide(err error, attempt int) Decision {
	d := l.child.Decide(err, attempt)
	if d.Action == Rethrow {
		return d
	}
	keyvals := []interface{}{
		"msg", "retry policy decision",
		"policy", Name(l.child),
		"action", d.Action,
		"attempt", attempt,
	}
	if d.ChangeConsistency {
		keyvals = append(keyvals, "consistency", d.Consistency)
	}
	if e, ok := cql.AsExecutionError(err); ok {
		keyvals = append(keyvals, "code", e.Code, "received", e.Received, "required", e.Required)
	}
	keyvals = append(keyvals, "err", err)
	level.Info(l.logger).Log(keyvals...)
	return d
}
