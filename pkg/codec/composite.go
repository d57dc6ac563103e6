package codec

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/cql"
)

// appendBytes appends a [int32 length][bytes] element. A nil element is
// written with length -1.
func appendBytes(buf, b []byte) ([]byte, error) {
	if b == nil {
		return binary.BigEndian.AppendUint32(buf, math.MaxUint32), nil
	}
	if len(b) > math.MaxInt32 {
		return nil, errors.Errorf("element of %d bytes exceeds the protocol limit", len(b))
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...), nil
}

// readBytes reads a [int32 length][bytes] element starting at data[0]. It
// returns the element, nil for a null element, and the remaining input.
func readBytes(t *cql.Type, data []byte) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, decodeErrorf(t, "truncated element length")
	}
	n := int32(binary.BigEndian.Uint32(data))
	data = data[4:]
	if n < 0 {
		return nil, data, nil
	}
	if int(n) > len(data) {
		return nil, nil, decodeErrorf(t, "element of %d bytes exceeds the remaining %d", n, len(data))
	}
	return data[:n:n], data[n:], nil
}

// SplitElements splits the encoding of a tuple of arity n into its elements.
// Null elements are returned as nil.
func SplitElements(t *cql.Type, data []byte, n int) ([][]byte, error) {
	elems := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		if len(data) == 0 {
			// values written before fields were added to a user type end early
			if t.Kind() == cql.KindUDT {
				elems = append(elems, nil)
				continue
			}
			return nil, decodeErrorf(t, "expected %d elements, got %d", n, i)
		}
		var (
			elem []byte
			err  error
		)
		elem, data, err = readBytes(t, data)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if len(data) != 0 {
		return nil, decodeErrorf(t, "%d trailing bytes", len(data))
	}
	return elems, nil
}

// JoinElements concatenates already encoded elements in the tuple format.
func JoinElements(elems [][]byte) ([]byte, error) {
	var (
		buf []byte
		err error
	)
	for _, e := range elems {
		if buf, err = appendBytes(buf, e); err != nil {
			return nil, err
		}
	}
	if buf == nil {
		buf = []byte{}
	}
	return buf, nil
}

func encodeElements(values []cql.Value) ([]byte, error) {
	elems := make([][]byte, len(values))
	for i, v := range values {
		b, err := Encode(v)
		if err != nil {
			return nil, err
		}
		elems[i] = b
	}
	return JoinElements(elems)
}

func encodeUDT(v cql.Value) ([]byte, error) {
	fields := v.Type().Fields()
	values := make([]cql.Value, len(fields))
	for i, f := range fields {
		values[i], _ = v.Field(f.Name)
	}
	return encodeElements(values)
}

func decodeTuple(t *cql.Type, data []byte) (cql.Value, error) {
	elemTypes := t.Elems()
	raw, err := SplitElements(t, data, len(elemTypes))
	if err != nil {
		return cql.Value{}, err
	}
	args := make([]interface{}, len(raw))
	for i, b := range raw {
		v, err := Decode(elemTypes[i], b)
		if err != nil {
			return cql.Value{}, err
		}
		args[i] = v
	}
	return t.Create(args...)
}

func decodeUDT(t *cql.Type, data []byte) (cql.Value, error) {
	fields := t.Fields()
	raw, err := SplitElements(t, data, len(fields))
	if err != nil {
		return cql.Value{}, err
	}
	args := make([]interface{}, 0, 2*len(raw))
	for i, b := range raw {
		v, err := Decode(fields[i].Type, b)
		if err != nil {
			return cql.Value{}, err
		}
		args = append(args, fields[i].Name, v)
	}
	return t.Create(args...)
}

func encodeCollection(elems []cql.Value) ([]byte, error) {
	buf := binary.BigEndian.AppendUint32(nil, uint32(len(elems)))
	for _, e := range elems {
		b, err := Encode(e)
		if err != nil {
			return nil, err
		}
		if buf, err = appendBytes(buf, b); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeMap(keys, vals []cql.Value) ([]byte, error) {
	buf := binary.BigEndian.AppendUint32(nil, uint32(len(keys)))
	for i := range keys {
		for _, v := range []cql.Value{keys[i], vals[i]} {
			b, err := Encode(v)
			if err != nil {
				return nil, err
			}
			if buf, err = appendBytes(buf, b); err != nil {
				return nil, err
			}
		}
	}
	return buf, nil
}

func readCount(t *cql.Type, data []byte) (int, []byte, error) {
	if len(data) < 4 {
		return 0, nil, decodeErrorf(t, "truncated collection size")
	}
	n := int32(binary.BigEndian.Uint32(data))
	if n < 0 {
		return 0, nil, decodeErrorf(t, "negative collection size %d", n)
	}
	data = data[4:]
	// every element takes at least its 4 byte length
	if int(n) > len(data)/4 {
		return 0, nil, decodeErrorf(t, "collection size %d exceeds the remaining %d bytes", n, len(data))
	}
	return int(n), data, nil
}

func decodeCollection(t *cql.Type, data []byte) (cql.Value, error) {
	n, data, err := readCount(t, data)
	if err != nil {
		return cql.Value{}, err
	}
	elems := make([]interface{}, n)
	for i := 0; i < n; i++ {
		var b []byte
		if b, data, err = readBytes(t, data); err != nil {
			return cql.Value{}, err
		}
		v, err := Decode(t.Elem(), b)
		if err != nil {
			return cql.Value{}, err
		}
		elems[i] = v
	}
	if len(data) != 0 {
		return cql.Value{}, decodeErrorf(t, "%d trailing bytes", len(data))
	}
	return t.Create(elems...)
}

func decodeMap(t *cql.Type, data []byte) (cql.Value, error) {
	n, data, err := readCount(t, data)
	if err != nil {
		return cql.Value{}, err
	}
	args := make([]interface{}, 0, 2*n)
	for i := 0; i < n; i++ {
		for _, et := range []*cql.Type{t.Key(), t.Elem()} {
			var b []byte
			if b, data, err = readBytes(t, data); err != nil {
				return cql.Value{}, err
			}
			v, err := Decode(et, b)
			if err != nil {
				return cql.Value{}, err
			}
			args = append(args, v)
		}
	}
	if len(data) != 0 {
		return cql.Value{}, decodeErrorf(t, "%d trailing bytes", len(data))
	}
	return t.Create(args...)
}
