package cql

// Tuple is a fixed length sequence of values of heterogeneous types.
type Tuple struct {
	typ   *Type
	elems []Value
}

// NewTuple binds values to the elements of a tuple type.
func NewTuple(t *Type, values ...interface{}) (Tuple, error) {
	if t.kind != KindTuple {
		return Tuple{}, InvalidArgumentf("%s is not a tuple type", t)
	}
	v, err := t.Create(values...)
	if err != nil {
		return Tuple{}, err
	}
	return v.Tuple(), nil
}

// Type returns the tuple type.
func (t Tuple) Type() *Type { return t.typ }

// Count returns the number of elements.
func (t Tuple) Count() int { return len(t.elems) }

// Values returns the elements in order.
func (t Tuple) Values() []Value { return append([]Value(nil), t.elems...) }

// At returns the element at index i. It panics if i is out of range.
func (t Tuple) At(i int) Value { return t.elems[i] }

// Get returns the element at index i.
func (t Tuple) Get(i int) (Value, bool) {
	if i < 0 || i >= len(t.elems) {
		return Value{}, false
	}
	return t.elems[i], true
}

// Value returns t as a Value.
func (t Tuple) Value() Value {
	if t.typ == nil {
		return Value{}
	}
	return Value{typ: t.typ, elems: t.elems}
}

func (t Tuple) String() string {
	return t.Value().String()
}
