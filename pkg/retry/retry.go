// Package retry decides whether a failed request is sent again.
package retry

import (
	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
)

// Action is what the executor does with a failed request.
type Action int

const (
	Rethrow Action = iota
	RetrySameNode
	RetryNextNode
	Ignore
)

func (a Action) String() string {
	switch a {
	case Rethrow:
		return "rethrow"
	case RetrySameNode:
		return "retry_same_node"
	case RetryNextNode:
		return "retry_next_node"
	case Ignore:
		return "ignore"
	}
	return "unknown"
}

// Decision is the outcome of Policy.Decide.
type Decision struct {
	Action Action

	// Consistency replaces the request consistency of the retry when
	// ChangeConsistency is set.
	Consistency       consistency.Level
	ChangeConsistency bool
}

func rethrow() Decision { return Decision{Action: Rethrow} }

func ignore() Decision { return Decision{Action: Ignore} }

func retrySame() Decision { return Decision{Action: RetrySameNode} }

func retryNext() Decision { return Decision{Action: RetryNextNode} }

func retryWith(cl consistency.Level) Decision {
	return Decision{Action: RetrySameNode, Consistency: cl, ChangeConsistency: true}
}

// Policy decides how to handle the error of a request. attempt is the number
// of retries already made for the request, zero on the first failure.
type Policy interface {
	Decide(err error, attempt int) Decision
}

// deprecated is implemented by policies kept only for compatibility.
type deprecated interface {
	Deprecated() bool
}

// IsDeprecated reports whether p, or the policy it wraps, is deprecated.
func IsDeprecated(p Policy) bool {
	d, ok := p.(deprecated)
	return ok && d.Deprecated()
}

type namer interface {
	Name() string
}

// Name returns the configuration name of p, "custom" for policies defined
// outside this package.
func Name(p Policy) string {
	if n, ok := p.(namer); ok {
		return n.Name()
	}
	return "custom"
}

// Default retries at most once, and only when the retry is likely to succeed:
// a read timeout with enough replicas but no data, a batch log write timeout,
// or an unavailable coordinator which another node may not see.
type Default struct{}

func (Default) Name() string { return "default" }

func (Default) Decide(err error, attempt int) Decision {
	e, ok := cql.AsExecutionError(err)
	if !ok || attempt > 0 {
		return rethrow()
	}
	switch e.Code {
	case cql.ReadTimeout:
		if e.Received >= e.Required && !e.DataPresent {
			return retrySame()
		}
	case cql.WriteTimeout:
		if e.WriteType == cql.WriteTypeBatchLog {
			return retrySame()
		}
	case cql.Unavailable:
		return retryNext()
	default:
		return onRequestError(e)
	}
	return rethrow()
}

// onRequestError handles failures where the coordinator did not process the
// request, which are safe to send to another node.
func onRequestError(e *cql.ExecutionError) Decision {
	switch e.Code {
	case cql.Overloaded, cql.IsBootstrapping, cql.TransportError, cql.ClientTimeout:
		return retryNext()
	}
	return rethrow()
}

// Fallthrough never retries.
type Fallthrough struct{}

func (Fallthrough) Name() string { return "fallthrough" }

func (Fallthrough) Decide(error, int) Decision { return rethrow() }

// DowngradingConsistency retries once at the highest consistency level the
// failure suggests can still succeed.
//
// Deprecated: the downgraded request no longer honours the consistency the
// caller asked for. Pick a lower consistency level up front instead.
type DowngradingConsistency struct{}

func (DowngradingConsistency) Name() string { return "downgrading" }

func (DowngradingConsistency) Deprecated() bool { return true }

func (DowngradingConsistency) Decide(err error, attempt int) Decision {
	e, ok := cql.AsExecutionError(err)
	if !ok || attempt > 0 {
		return rethrow()
	}
	switch e.Code {
	case cql.ReadTimeout:
		if e.Consistency.IsSerial() {
			return rethrow()
		}
		if e.Received < e.Required {
			return maxLikelyToWork(e.Received)
		}
		if !e.DataPresent {
			return retrySame()
		}
	case cql.WriteTimeout:
		switch e.WriteType {
		case cql.WriteTypeSimple, cql.WriteTypeBatch:
			// at least one replica has the write, hinted handoff does the rest
			if e.Received > 0 {
				return ignore()
			}
		case cql.WriteTypeUnloggedBatch:
			return maxLikelyToWork(e.Received)
		case cql.WriteTypeBatchLog:
			return retrySame()
		}
	case cql.Unavailable:
		if e.Consistency.IsSerial() {
			return rethrow()
		}
		return maxLikelyToWork(e.Alive)
	default:
		return onRequestError(e)
	}
	return rethrow()
}

func maxLikelyToWork(replicas int) Decision {
	switch {
	case replicas >= 3:
		return retryWith(consistency.Three)
	case replicas == 2:
		return retryWith(consistency.Two)
	case replicas == 1:
		return retryWith(consistency.One)
	}
	return rethrow()
}
