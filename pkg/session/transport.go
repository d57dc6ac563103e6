package session

import (
	"context"

	"github.com/grafana/cqlwire/pkg/consistency"
	"github.com/grafana/cqlwire/pkg/cql"
)

// Request is a single query sent by a Transport.
type Request struct {
	Query string

	// Arguments are cql.Values when the caller declared argument types, and
	// the caller's values otherwise. Transports convert the latter to the
	// bind marker types reported by the server, see cql.Coerce.
	Arguments []interface{}

	Consistency       consistency.Level
	SerialConsistency consistency.Level
	PageSize          int
	PagingState       []byte
	Timestamp         *int64
	Idempotent        bool

	// Attempt is the number of times the request was sent before.
	Attempt int
	// NextNode asks the transport to prefer a node other than the one that
	// served the previous attempt.
	NextNode bool
}

// Column describes a column of a result.
type Column struct {
	Keyspace string
	Table    string
	Name     string
	Type     *cql.Type
}

// Response is the undecoded result of a Request. Each row holds one encoded
// cell per column, nil for null.
type Response struct {
	Columns     []Column
	Rows        [][][]byte
	PagingState []byte
}

// Transport sends requests to the cluster. Errors returned for server and
// connection failures must be *cql.ExecutionError; invalid arguments detected
// while binding must be *cql.InvalidArgumentError.
type Transport interface {
	Query(ctx context.Context, req *Request) (*Response, error)
}
