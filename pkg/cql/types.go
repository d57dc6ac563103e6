package cql

import (
	"fmt"
	"strings"
)

// Kind identifies a CQL type. Values are the native protocol option ids.
type Kind uint16

const (
	KindCustom    Kind = 0x0000
	KindAscii     Kind = 0x0001
	KindBigint    Kind = 0x0002
	KindBlob      Kind = 0x0003
	KindBoolean   Kind = 0x0004
	KindCounter   Kind = 0x0005
	KindDecimal   Kind = 0x0006
	KindDouble    Kind = 0x0007
	KindFloat     Kind = 0x0008
	KindInt       Kind = 0x0009
	KindText      Kind = 0x000A
	KindTimestamp Kind = 0x000B
	KindUuid      Kind = 0x000C
	KindVarchar   Kind = 0x000D
	KindVarint    Kind = 0x000E
	KindTimeuuid  Kind = 0x000F
	KindInet      Kind = 0x0010
	KindDate      Kind = 0x0011
	KindTime      Kind = 0x0012
	KindSmallint  Kind = 0x0013
	KindTinyint   Kind = 0x0014
	KindDuration  Kind = 0x0015
	KindList      Kind = 0x0020
	KindMap       Kind = 0x0021
	KindSet       Kind = 0x0022
	KindUDT       Kind = 0x0030
	KindTuple     Kind = 0x0031
)

var kindNames = map[Kind]string{
	KindCustom:    "custom",
	KindAscii:     "ascii",
	KindBigint:    "bigint",
	KindBlob:      "blob",
	KindBoolean:   "boolean",
	KindCounter:   "counter",
	KindDecimal:   "decimal",
	KindDouble:    "double",
	KindFloat:     "float",
	KindInt:       "int",
	KindText:      "text",
	KindTimestamp: "timestamp",
	KindUuid:      "uuid",
	KindVarchar:   "varchar",
	KindVarint:    "varint",
	KindTimeuuid:  "timeuuid",
	KindInet:      "inet",
	KindDate:      "date",
	KindTime:      "time",
	KindSmallint:  "smallint",
	KindTinyint:   "tinyint",
	KindDuration:  "duration",
	KindList:      "list",
	KindMap:       "map",
	KindSet:       "set",
	KindUDT:       "udt",
	KindTuple:     "tuple",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown_0x%04x", uint16(k))
}

// IsCollection reports whether k is list, set or map.
func (k Kind) IsCollection() bool {
	return k == KindList || k == KindSet || k == KindMap
}

// IsScalar reports whether k is a known non-parametrized kind.
func (k Kind) IsScalar() bool {
	_, ok := scalars[k]
	return ok
}

// Field is a named user defined type field.
type Field struct {
	Name string
	Type *Type
}

// Type describes a CQL type. Types are immutable and may be shared freely.
type Type struct {
	kind   Kind
	custom string

	// list, set: elem. map: key and elem.
	elem *Type
	key  *Type

	elems []*Type

	keyspace string
	name     string
	fields   []Field
}

// Scalar types.
var (
	TypeAscii     = &Type{kind: KindAscii}
	TypeBigint    = &Type{kind: KindBigint}
	TypeBlob      = &Type{kind: KindBlob}
	TypeBoolean   = &Type{kind: KindBoolean}
	TypeCounter   = &Type{kind: KindCounter}
	TypeDecimal   = &Type{kind: KindDecimal}
	TypeDouble    = &Type{kind: KindDouble}
	TypeFloat     = &Type{kind: KindFloat}
	TypeInt       = &Type{kind: KindInt}
	TypeText      = &Type{kind: KindText}
	TypeTimestamp = &Type{kind: KindTimestamp}
	TypeUuid      = &Type{kind: KindUuid}
	TypeVarchar   = &Type{kind: KindVarchar}
	TypeVarint    = &Type{kind: KindVarint}
	TypeTimeuuid  = &Type{kind: KindTimeuuid}
	TypeInet      = &Type{kind: KindInet}
	TypeDate      = &Type{kind: KindDate}
	TypeTime      = &Type{kind: KindTime}
	TypeSmallint  = &Type{kind: KindSmallint}
	TypeTinyint   = &Type{kind: KindTinyint}
	TypeDuration  = &Type{kind: KindDuration}
)

var scalars = map[Kind]*Type{
	KindAscii:     TypeAscii,
	KindBigint:    TypeBigint,
	KindBlob:      TypeBlob,
	KindBoolean:   TypeBoolean,
	KindCounter:   TypeCounter,
	KindDecimal:   TypeDecimal,
	KindDouble:    TypeDouble,
	KindFloat:     TypeFloat,
	KindInt:       TypeInt,
	KindText:      TypeText,
	KindTimestamp: TypeTimestamp,
	KindUuid:      TypeUuid,
	KindVarchar:   TypeVarchar,
	KindVarint:    TypeVarint,
	KindTimeuuid:  TypeTimeuuid,
	KindInet:      TypeInet,
	KindDate:      TypeDate,
	KindTime:      TypeTime,
	KindSmallint:  TypeSmallint,
	KindTinyint:   TypeTinyint,
	KindDuration:  TypeDuration,
}

// ScalarType returns the shared type for a scalar kind.
func ScalarType(k Kind) (*Type, error) {
	t, ok := scalars[k]
	if !ok {
		return nil, InvalidArgumentf("%s is not a scalar type", k)
	}
	return t, nil
}

// ListType returns the type list<elem>.
func ListType(elem *Type) *Type {
	mustNotBeNil(elem)
	return &Type{kind: KindList, elem: elem}
}

// SetType returns the type set<elem>.
func SetType(elem *Type) *Type {
	mustNotBeNil(elem)
	return &Type{kind: KindSet, elem: elem}
}

// MapType returns the type map<key, value>.
func MapType(key, value *Type) *Type {
	mustNotBeNil(key, value)
	return &Type{kind: KindMap, key: key, elem: value}
}

// TupleType returns the type tuple<elems...>.
func TupleType(elems ...*Type) *Type {
	mustNotBeNil(elems...)
	return &Type{kind: KindTuple, elems: append([]*Type(nil), elems...)}
}

// UDTType returns a user defined type.
func UDTType(keyspace, name string, fields ...Field) *Type {
	for _, f := range fields {
		mustNotBeNil(f.Type)
	}
	return &Type{kind: KindUDT, keyspace: keyspace, name: name, fields: append([]Field(nil), fields...)}
}

// CustomType returns a custom type identified by its server side class name.
func CustomType(class string) *Type {
	return &Type{kind: KindCustom, custom: class}
}

func mustNotBeNil(ts ...*Type) {
	for _, t := range ts {
		if t == nil {
			panic("cql: nil type")
		}
	}
}

func (t *Type) Kind() Kind { return t.kind }

// Name returns the CQL name of the type's kind, e.g. "tuple".
func (t *Type) Name() string {
	return t.kind.String()
}

// Elem returns the element type of a list or set, or the value type of a map.
func (t *Type) Elem() *Type { return t.elem }

// Key returns the key type of a map.
func (t *Type) Key() *Type { return t.key }

// Elems returns the element types of a tuple.
func (t *Type) Elems() []*Type { return append([]*Type(nil), t.elems...) }

// Arity is the number of tuple elements or UDT fields.
func (t *Type) Arity() int {
	if t.kind == KindUDT {
		return len(t.fields)
	}
	return len(t.elems)
}

func (t *Type) Keyspace() string { return t.keyspace }

// UDTName returns the name of a user defined type.
func (t *Type) UDTName() string { return t.name }

func (t *Type) Fields() []Field { return append([]Field(nil), t.fields...) }

// FieldIndex returns the position of the named UDT field, or -1.
func (t *Type) FieldIndex(name string) int {
	for i, f := range t.fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// CustomClass returns the class name of a custom type.
func (t *Type) CustomClass() string { return t.custom }

// String returns the CQL representation of the type, e.g. tuple<text, int>.
func (t *Type) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *Type) write(sb *strings.Builder) {
	switch t.kind {
	case KindList, KindSet:
		sb.WriteString(t.kind.String())
		sb.WriteByte('<')
		t.elem.write(sb)
		sb.WriteByte('>')
	case KindMap:
		sb.WriteString("map<")
		t.key.write(sb)
		sb.WriteString(", ")
		t.elem.write(sb)
		sb.WriteByte('>')
	case KindTuple:
		sb.WriteString("tuple<")
		for i, e := range t.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		sb.WriteByte('>')
	case KindUDT:
		if t.keyspace != "" {
			sb.WriteString(t.keyspace)
			sb.WriteByte('.')
		}
		sb.WriteString(t.name)
	case KindCustom:
		sb.WriteByte('\'')
		sb.WriteString(t.custom)
		sb.WriteByte('\'')
	default:
		sb.WriteString(t.kind.String())
	}
}

// Equal reports whether t and o describe the same type.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindList, KindSet:
		return t.elem.Equal(o.elem)
	case KindMap:
		return t.key.Equal(o.key) && t.elem.Equal(o.elem)
	case KindTuple:
		if len(t.elems) != len(o.elems) {
			return false
		}
		for i := range t.elems {
			if !t.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case KindUDT:
		if t.keyspace != o.keyspace || t.name != o.name || len(t.fields) != len(o.fields) {
			return false
		}
		for i := range t.fields {
			if t.fields[i].Name != o.fields[i].Name || !t.fields[i].Type.Equal(o.fields[i].Type) {
				return false
			}
		}
		return true
	case KindCustom:
		return t.custom == o.custom
	default:
		return true
	}
}

// Compatible reports whether a value of type from can be bound where t is
// expected without conversion.
func (t *Type) Compatible(from *Type) bool {
	if t.Equal(from) {
		return true
	}
	if t == nil || from == nil {
		return false
	}
	switch {
	case isText(t.kind) && isText(from.kind):
		// ascii targets are checked against the content during coercion
		return true
	case (t.kind == KindBigint || t.kind == KindCounter) && (from.kind == KindBigint || from.kind == KindCounter):
		return true
	case t.kind == KindUuid && from.kind == KindTimeuuid:
		return true
	}
	switch t.kind {
	case KindList, KindSet:
		return from.kind == t.kind && t.elem.Compatible(from.elem)
	case KindMap:
		return from.kind == KindMap && t.key.Compatible(from.key) && t.elem.Compatible(from.elem)
	case KindTuple:
		if from.kind != KindTuple || len(t.elems) != len(from.elems) {
			return false
		}
		for i := range t.elems {
			if !t.elems[i].Compatible(from.elems[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func isText(k Kind) bool {
	return k == KindText || k == KindVarchar || k == KindAscii
}

// Create builds a value of type t.
//
// Scalars take exactly one argument. Tuples take one argument per element and
// lists and sets any number of elements. Maps take alternating keys and values.
// User defined types take alternating field names and values; omitted fields
// are null.
func (t *Type) Create(values ...interface{}) (Value, error) {
	switch t.kind {
	case KindTuple:
		if len(values) != len(t.elems) {
			return Value{}, InvalidArgumentf("%s expects %d values, %d given", t, len(t.elems), len(values))
		}
		elems := make([]Value, len(values))
		for i, x := range values {
			v, err := Coerce(t.elems[i], x)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return Value{typ: t, elems: elems}, nil
	case KindList, KindSet:
		return Coerce(t, values)
	case KindMap:
		if len(values)%2 != 0 {
			return Value{}, InvalidArgumentf("%s expects an even number of values, %d given", t, len(values))
		}
		keys := make([]Value, 0, len(values)/2)
		vals := make([]Value, 0, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			k, err := Coerce(t.key, values[i])
			if err != nil {
				return Value{}, err
			}
			v, err := Coerce(t.elem, values[i+1])
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return newMap(t, keys, vals)
	case KindUDT:
		if len(values)%2 != 0 {
			return Value{}, InvalidArgumentf("%s expects field name and value pairs", t)
		}
		elems := make([]Value, len(t.fields))
		for i, f := range t.fields {
			elems[i] = Null(f.Type)
		}
		for i := 0; i < len(values); i += 2 {
			name, ok := values[i].(string)
			if !ok {
				return Value{}, InvalidArgumentf("%s field name must be a string, %T given", t, values[i])
			}
			idx := t.FieldIndex(name)
			if idx < 0 {
				return Value{}, InvalidArgumentf("%s has no field %q", t, name)
			}
			v, err := Coerce(t.fields[idx].Type, values[i+1])
			if err != nil {
				return Value{}, err
			}
			elems[idx] = v
		}
		return Value{typ: t, elems: elems}, nil
	default:
		if len(values) != 1 {
			return Value{}, InvalidArgumentf("%s expects 1 value, %d given", t, len(values))
		}
		return Coerce(t, values[0])
	}
}
