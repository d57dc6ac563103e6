package session

import (
	"strings"

	"github.com/grafana/cqlwire/pkg/cql"
)

// countMarkers returns the number of positional bind markers in query.
// Markers inside string literals, quoted identifiers and comments are not
// counted.
func countMarkers(query string) int {
	n := 0
	for i := 0; i < len(query); i++ {
		switch c := query[i]; {
		case c == '?':
			n++
		case c == '\'' || c == '"':
			i = skipQuoted(query, i, c)
		case c == '$' && strings.HasPrefix(query[i:], "$$"):
			if end := strings.Index(query[i+2:], "$$"); end >= 0 {
				i += end + 3
			} else {
				i = len(query)
			}
		case c == '-' && strings.HasPrefix(query[i:], "--"), c == '/' && strings.HasPrefix(query[i:], "//"):
			if end := strings.IndexByte(query[i:], '\n'); end >= 0 {
				i += end
			} else {
				i = len(query)
			}
		case c == '/' && strings.HasPrefix(query[i:], "/*"):
			if end := strings.Index(query[i+2:], "*/"); end >= 0 {
				i += end + 3
			} else {
				i = len(query)
			}
		}
	}
	return n
}

// skipQuoted returns the index of the quote closing the literal opened at
// query[start]. A doubled quote is an escaped quote.
func skipQuoted(query string, start int, quote byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] != quote {
			continue
		}
		if i+1 < len(query) && query[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(query)
}

// bindArguments checks the arguments of o against the bind markers of query.
// Arguments with a declared type are converted to it. The others are checked
// to have a CQL representation and passed on as given, so the transport can
// convert them to the type the server reports for the marker.
func bindArguments(query string, o *ExecutionOptions) ([]interface{}, error) {
	markers := countMarkers(query)
	if len(o.arguments) != markers {
		return nil, cql.InvalidArgumentf("Query has %d bind markers, got %d arguments", markers, len(o.arguments))
	}
	if o.argumentTypes != nil && len(o.argumentTypes) != len(o.arguments) {
		return nil, cql.InvalidArgumentf("Got %d argument types for %d arguments", len(o.argumentTypes), len(o.arguments))
	}

	bound := make([]interface{}, len(o.arguments))
	for i, arg := range o.arguments {
		if o.argumentTypes != nil {
			v, err := cql.Coerce(o.argumentTypes[i], arg)
			if err != nil {
				return nil, err
			}
			bound[i] = v
			continue
		}
		if _, err := cql.Infer(arg); err != nil {
			return nil, err
		}
		bound[i] = arg
	}
	return bound, nil
}
