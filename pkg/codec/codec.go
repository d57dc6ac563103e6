// Package codec encodes and decodes CQL values in the native protocol
// binary format.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/grafana/cqlwire/pkg/cql"
)

// DecodeError reports bytes that are not a valid encoding of a type.
type DecodeError struct {
	Type *cql.Type
	msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %s", e.Type, e.msg)
}

func decodeErrorf(t *cql.Type, format string, args ...interface{}) error {
	return errors.WithStack(&DecodeError{Type: t, msg: fmt.Sprintf(format, args...)})
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

// Encode serializes v. A null value encodes to nil.
func Encode(v cql.Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}
	t := v.Type()
	switch t.Kind() {
	case cql.KindAscii, cql.KindText, cql.KindVarchar:
		return append([]byte{}, v.Text()...), nil
	case cql.KindBlob, cql.KindCustom:
		return v.Bytes(), nil
	case cql.KindBoolean:
		if v.Bool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case cql.KindBigint, cql.KindCounter:
		return binary.BigEndian.AppendUint64(nil, uint64(v.Int64())), nil
	case cql.KindInt:
		return binary.BigEndian.AppendUint32(nil, uint32(v.Int64())), nil
	case cql.KindSmallint:
		return binary.BigEndian.AppendUint16(nil, uint16(v.Int64())), nil
	case cql.KindTinyint:
		return []byte{byte(v.Int64())}, nil
	case cql.KindDouble:
		return binary.BigEndian.AppendUint64(nil, math.Float64bits(v.Float64())), nil
	case cql.KindFloat:
		return binary.BigEndian.AppendUint32(nil, math.Float32bits(float32(v.Float64()))), nil
	case cql.KindDate:
		return EncodeDate(v.Date()), nil
	case cql.KindTime:
		return EncodeTime(v.Time()), nil
	case cql.KindTimestamp:
		return EncodeTimestamp(v.Timestamp()), nil
	case cql.KindUuid:
		return v.Uuid().Bytes(), nil
	case cql.KindTimeuuid:
		return v.Timeuuid().Bytes(), nil
	case cql.KindVarint:
		return encBigInt2C(v.Varint()), nil
	case cql.KindDecimal:
		return encodeDecimal(v.Decimal()), nil
	case cql.KindDuration:
		d := v.Duration()
		return encVints(d.Months, d.Days, d.Nanoseconds), nil
	case cql.KindInet:
		return []byte(v.Inet()), nil
	case cql.KindList, cql.KindSet:
		return encodeCollection(v.Elements())
	case cql.KindMap:
		keys, vals := v.MapEntries()
		return encodeMap(keys, vals)
	case cql.KindTuple:
		return encodeElements(v.Tuple().Values())
	case cql.KindUDT:
		return encodeUDT(v)
	}
	return nil, errors.Errorf("cannot encode values of type %s", t)
}

// Decode deserializes data as a value of type t. A nil slice decodes to a
// null value.
func Decode(t *cql.Type, data []byte) (cql.Value, error) {
	if data == nil {
		return cql.Null(t), nil
	}
	switch t.Kind() {
	case cql.KindAscii:
		v, err := cql.NewAscii(string(data))
		if err != nil {
			return cql.Value{}, decodeErrorf(t, "non ascii byte")
		}
		return v, nil
	case cql.KindText, cql.KindVarchar:
		if !utf8.Valid(data) {
			return cql.Value{}, decodeErrorf(t, "invalid utf-8")
		}
		return cql.Coerce(t, string(data))
	case cql.KindBlob:
		return cql.NewBlob(data), nil
	case cql.KindCustom:
		return cql.NewCustom(t, data), nil
	case cql.KindBoolean:
		if err := expectLen(t, data, 1); err != nil {
			return cql.Value{}, err
		}
		return cql.NewBoolean(data[0] != 0), nil
	case cql.KindBigint, cql.KindCounter:
		if err := expectLen(t, data, 8); err != nil {
			return cql.Value{}, err
		}
		return cql.Coerce(t, int64(binary.BigEndian.Uint64(data)))
	case cql.KindInt:
		if err := expectLen(t, data, 4); err != nil {
			return cql.Value{}, err
		}
		return cql.NewInt(int32(binary.BigEndian.Uint32(data))), nil
	case cql.KindSmallint:
		if err := expectLen(t, data, 2); err != nil {
			return cql.Value{}, err
		}
		return cql.NewSmallint(int16(binary.BigEndian.Uint16(data))), nil
	case cql.KindTinyint:
		if err := expectLen(t, data, 1); err != nil {
			return cql.Value{}, err
		}
		return cql.NewTinyint(int8(data[0])), nil
	case cql.KindDouble:
		if err := expectLen(t, data, 8); err != nil {
			return cql.Value{}, err
		}
		return cql.NewDouble(math.Float64frombits(binary.BigEndian.Uint64(data))), nil
	case cql.KindFloat:
		if err := expectLen(t, data, 4); err != nil {
			return cql.Value{}, err
		}
		return cql.NewFloat(math.Float32frombits(binary.BigEndian.Uint32(data))), nil
	case cql.KindDate:
		d, err := DecodeDate(data)
		if err != nil {
			return cql.Value{}, err
		}
		return d.Value(), nil
	case cql.KindTime:
		tm, err := DecodeTime(data)
		if err != nil {
			return cql.Value{}, err
		}
		return tm.Value(), nil
	case cql.KindTimestamp:
		ts, err := DecodeTimestamp(data)
		if err != nil {
			return cql.Value{}, err
		}
		return ts.Value(), nil
	case cql.KindUuid:
		if err := expectLen(t, data, 16); err != nil {
			return cql.Value{}, err
		}
		u, err := cql.UuidFromBytes(data)
		if err != nil {
			return cql.Value{}, err
		}
		return u.Value(), nil
	case cql.KindTimeuuid:
		u, err := DecodeTimeuuid(data)
		if err != nil {
			return cql.Value{}, err
		}
		return u.Value(), nil
	case cql.KindVarint:
		if len(data) == 0 {
			return cql.Value{}, decodeErrorf(t, "empty varint")
		}
		return cql.NewVarint(decBigInt2C(data)), nil
	case cql.KindDecimal:
		d, err := decodeDecimal(t, data)
		if err != nil {
			return cql.Value{}, err
		}
		return cql.NewDecimal(d), nil
	case cql.KindDuration:
		months, days, nanos, err := decVints(data)
		if err != nil {
			return cql.Value{}, decodeErrorf(t, "%s", err)
		}
		d, err := cql.NewDuration(months, days, nanos)
		if err != nil {
			return cql.Value{}, decodeErrorf(t, "%s", err)
		}
		return d.Value(), nil
	case cql.KindInet:
		if len(data) != 4 && len(data) != 16 {
			return cql.Value{}, decodeErrorf(t, "expected 4 or 16 bytes, got %d", len(data))
		}
		return cql.NewInet(net.IP(data))
	case cql.KindList, cql.KindSet:
		return decodeCollection(t, data)
	case cql.KindMap:
		return decodeMap(t, data)
	case cql.KindTuple:
		return decodeTuple(t, data)
	case cql.KindUDT:
		return decodeUDT(t, data)
	}
	return cql.Value{}, decodeErrorf(t, "unsupported type")
}

// expectLen rejects any other length, including an empty non-null cell.
func expectLen(t *cql.Type, data []byte, n int) error {
	if len(data) != n {
		return decodeErrorf(t, "expected %d bytes, got %d", n, len(data))
	}
	return nil
}

// EncodeDate returns the big endian wire day of d.
func EncodeDate(d cql.Date) []byte {
	return binary.BigEndian.AppendUint32(nil, d.WireDay())
}

// DecodeDate decodes a 4 byte wire day.
func DecodeDate(data []byte) (cql.Date, error) {
	if err := expectLen(cql.TypeDate, data, 4); err != nil {
		return cql.Date{}, err
	}
	return cql.DateFromWireDay(binary.BigEndian.Uint32(data)), nil
}

// EncodeTime returns the big endian nanoseconds since midnight.
func EncodeTime(t cql.Time) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(t.Nanoseconds()))
}

// DecodeTime decodes 8 bytes of nanoseconds since midnight.
func DecodeTime(data []byte) (cql.Time, error) {
	if err := expectLen(cql.TypeTime, data, 8); err != nil {
		return cql.Time{}, err
	}
	t, err := cql.TimeFromNanoseconds(int64(binary.BigEndian.Uint64(data)))
	if err != nil {
		return cql.Time{}, decodeErrorf(cql.TypeTime, "%s", err)
	}
	return t, nil
}

// EncodeTimestamp returns the big endian milliseconds since the Unix epoch.
func EncodeTimestamp(t cql.Timestamp) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(t.Milliseconds()))
}

// DecodeTimestamp decodes 8 bytes of milliseconds since the Unix epoch.
func DecodeTimestamp(data []byte) (cql.Timestamp, error) {
	if err := expectLen(cql.TypeTimestamp, data, 8); err != nil {
		return cql.Timestamp{}, err
	}
	return cql.TimestampFromMilliseconds(int64(binary.BigEndian.Uint64(data))), nil
}

// DecodeTimeuuid decodes 16 bytes. Any uuid version is accepted.
func DecodeTimeuuid(data []byte) (cql.Timeuuid, error) {
	if err := expectLen(cql.TypeTimeuuid, data, 16); err != nil {
		return cql.Timeuuid{}, err
	}
	return cql.TimeuuidFromBytes(data)
}
