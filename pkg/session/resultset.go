package session

import (
	"context"
	"fmt"

	"github.com/grafana/cqlwire/pkg/codec"
	"github.com/grafana/cqlwire/pkg/cql"
)

// Row is a decoded result row. Cells are addressed by position or by column
// name.
type Row struct {
	columns *columnIndex
	values  []cql.Value
}

type columnIndex struct {
	columns []Column
	byName  map[string]int
}

func newColumnIndex(columns []Column) *columnIndex {
	idx := &columnIndex{columns: columns, byName: make(map[string]int, len(columns))}
	for i, c := range columns {
		// the first of duplicate names wins, as in a SELECT a, a
		if _, ok := idx.byName[c.Name]; !ok {
			idx.byName[c.Name] = i
		}
	}
	return idx
}

// Get returns the value of the named column.
func (r Row) Get(name string) (cql.Value, bool) {
	if r.columns == nil {
		return cql.Value{}, false
	}
	i, ok := r.columns.byName[name]
	if !ok {
		return cql.Value{}, false
	}
	return r.values[i], true
}

// At returns the value of the i-th column. It panics if i is out of range.
func (r Row) At(i int) cql.Value { return r.values[i] }

// Len returns the number of columns.
func (r Row) Len() int { return len(r.values) }

// Values returns the values of the row in column order.
func (r Row) Values() []cql.Value { return append([]cql.Value(nil), r.values...) }

// Columns returns the columns of the row.
func (r Row) Columns() []Column {
	if r.columns == nil {
		return nil
	}
	return append([]Column(nil), r.columns.columns...)
}

// ResultSet is one page of the rows returned by a query.
type ResultSet struct {
	columns     *columnIndex
	rows        []Row
	pagingState []byte

	// used to fetch the following page
	session *Session
	query   string
	opts    ExecutionOptions
}

func newResultSet(resp *Response) (*ResultSet, error) {
	rs := &ResultSet{
		columns:     newColumnIndex(resp.Columns),
		rows:        make([]Row, 0, len(resp.Rows)),
		pagingState: resp.PagingState,
	}
	for i, raw := range resp.Rows {
		if len(raw) != len(resp.Columns) {
			return nil, cql.NewExecutionError(cql.ProtocolError, fmt.Sprintf("row %d has %d cells for %d columns", i, len(raw), len(resp.Columns)), nil)
		}
		values := make([]cql.Value, len(raw))
		for j, cell := range raw {
			v, err := codec.Decode(resp.Columns[j].Type, cell)
			if err != nil {
				return nil, cql.NewExecutionError(cql.ProtocolError, fmt.Sprintf("column %s: %s", resp.Columns[j].Name, err), err)
			}
			values[j] = v
		}
		rs.rows = append(rs.rows, Row{columns: rs.columns, values: values})
	}
	return rs, nil
}

// Count returns the number of rows of the page.
func (rs *ResultSet) Count() int { return len(rs.rows) }

// First returns the first row, false if there is none.
func (rs *ResultSet) First() (Row, bool) {
	return rs.OffsetGet(0)
}

// OffsetGet returns the i-th row of the page, false if there is no such row.
func (rs *ResultSet) OffsetGet(i int) (Row, bool) {
	if i < 0 || i >= len(rs.rows) {
		return Row{}, false
	}
	return rs.rows[i], true
}

// Rows returns the rows of the page.
func (rs *ResultSet) Rows() []Row { return append([]Row(nil), rs.rows...) }

// Columns returns the result columns.
func (rs *ResultSet) Columns() []Column { return append([]Column(nil), rs.columns.columns...) }

// PagingState returns the token to resume the query after this page, nil on
// the last page.
func (rs *ResultSet) PagingState() []byte { return rs.pagingState }

// IsLastPage reports whether the query has no more rows.
func (rs *ResultSet) IsLastPage() bool { return len(rs.pagingState) == 0 }

// NextPage executes the query again for the following page. It returns an
// empty result on the last page.
func (rs *ResultSet) NextPage(ctx context.Context) (*ResultSet, error) {
	if rs.IsLastPage() || rs.session == nil {
		return &ResultSet{columns: rs.columns}, nil
	}
	opts := rs.opts
	opts.pagingState = rs.pagingState
	return rs.session.execute(ctx, rs.query, &opts)
}

// Iterator returns an iterator over the rows of this page and all the pages
// following it.
func (rs *ResultSet) Iterator(ctx context.Context) *RowIterator {
	return &RowIterator{ctx: ctx, page: rs, pos: -1}
}

// RowIterator walks the rows of a query across pages.
type RowIterator struct {
	ctx  context.Context
	page *ResultSet
	pos  int
	err  error
}

// Next advances to the next row, fetching the next page when the current one
// is consumed. It returns false at the end of the rows or on error.
func (it *RowIterator) Next() bool {
	for it.err == nil {
		if it.pos+1 < len(it.page.rows) {
			it.pos++
			return true
		}
		if it.page.IsLastPage() {
			return false
		}
		next, err := it.page.NextPage(it.ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.page, it.pos = next, -1
	}
	return false
}

// Row returns the current row.
func (it *RowIterator) Row() Row { return it.page.rows[it.pos] }

// Err returns the error that stopped the iteration.
func (it *RowIterator) Err() error { return it.err }
