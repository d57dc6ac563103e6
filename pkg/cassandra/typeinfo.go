package cassandra

import (
	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/cql"
)

// typeFromInfo converts the type of a column or bind marker reported by gocql.
func typeFromInfo(info gocql.TypeInfo) (*cql.Type, error) {
	switch t := info.(type) {
	case *gocql.CollectionType:
		return typeFromInfo(*t)
	case *gocql.TupleTypeInfo:
		return typeFromInfo(*t)
	case *gocql.UDTTypeInfo:
		return typeFromInfo(*t)

	case gocql.CollectionType:
		elem, err := typeFromInfo(t.Elem)
		if err != nil {
			return nil, err
		}
		switch t.Type() {
		case gocql.TypeList:
			return cql.ListType(elem), nil
		case gocql.TypeSet:
			return cql.SetType(elem), nil
		case gocql.TypeMap:
			key, err := typeFromInfo(t.Key)
			if err != nil {
				return nil, err
			}
			return cql.MapType(key, elem), nil
		}
		return nil, errors.Errorf("unknown collection type %s", t)

	case gocql.TupleTypeInfo:
		elems := make([]*cql.Type, len(t.Elems))
		for i, e := range t.Elems {
			et, err := typeFromInfo(e)
			if err != nil {
				return nil, err
			}
			elems[i] = et
		}
		return cql.TupleType(elems...), nil

	case gocql.UDTTypeInfo:
		fields := make([]cql.Field, len(t.Elements))
		for i, f := range t.Elements {
			ft, err := typeFromInfo(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = cql.Field{Name: f.Name, Type: ft}
		}
		return cql.UDTType(t.KeySpace, t.Name, fields...), nil
	}

	if info == nil {
		return nil, errors.New("missing type information")
	}
	if info.Type() == gocql.TypeCustom {
		return cql.ParseType(info.Custom())
	}
	return cql.ScalarType(cql.Kind(info.Type()))
}

// cellsOf returns the number of scan destinations gocql expects for a column
// of type t: one per element for tuples, one otherwise.
func cellsOf(t *cql.Type) int {
	if t.Kind() == cql.KindTuple {
		return t.Arity()
	}
	return 1
}
