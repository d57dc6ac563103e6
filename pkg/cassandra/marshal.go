package cassandra

import (
	"github.com/gocql/gocql"

	"github.com/grafana/cqlwire/pkg/codec"
	"github.com/grafana/cqlwire/pkg/cql"
	"github.com/grafana/cqlwire/pkg/session"
)

// marshaler encodes a bound argument as the type the server reports for its
// bind marker.
type marshaler struct {
	arg interface{}
}

func (m marshaler) MarshalCQL(info gocql.TypeInfo) ([]byte, error) {
	t, err := typeFromInfo(info)
	if err != nil {
		return nil, cql.InvalidArgumentf("Unsupported bind marker type %s: %s", info, err)
	}
	v, err := cql.Coerce(t, m.arg)
	if err != nil {
		return nil, err
	}
	return codec.Encode(v)
}

// rawCell keeps the undecoded bytes of a cell. Decoding is left to the
// session so that values are decoded the same way for every transport.
type rawCell struct {
	data []byte
}

func (c *rawCell) UnmarshalCQL(_ gocql.TypeInfo, data []byte) error {
	if data == nil {
		c.data = nil
		return nil
	}
	// the frame buffer is reused once the page is consumed
	c.data = make([]byte, len(data))
	copy(c.data, data)
	return nil
}

// scanDest returns the scan destinations of a row of columns.
func scanDest(columns []session.Column) ([]rawCell, []interface{}) {
	n := 0
	for _, c := range columns {
		n += cellsOf(c.Type)
	}
	cells := make([]rawCell, n)
	dest := make([]interface{}, n)
	for i := range cells {
		dest[i] = &cells[i]
	}
	return cells, dest
}

// joinRow assembles the scanned cells into one encoded cell per column.
// gocql scans each element of a tuple column into its own destination, the
// elements are joined back into the tuple encoding. A tuple whose elements
// are all null is read as a null tuple.
func joinRow(columns []session.Column, cells []rawCell) ([][]byte, error) {
	row := make([][]byte, len(columns))
	k := 0
	for i, c := range columns {
		if c.Type.Kind() != cql.KindTuple {
			row[i] = cells[k].data
			k++
			continue
		}
		n := c.Type.Arity()
		elems := make([][]byte, n)
		null := true
		for j := 0; j < n; j++ {
			elems[j] = cells[k+j].data
			null = null && elems[j] == nil
		}
		k += n
		if null {
			continue
		}
		b, err := codec.JoinElements(elems)
		if err != nil {
			return nil, err
		}
		row[i] = b
	}
	return row, nil
}
