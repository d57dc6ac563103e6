package cql

import (
	"math"
	"math/big"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coerce converts a Go value into a Value of type t. x may be a Value, one of
// the scalar value types of this package, or a native Go value. Numeric
// strings are accepted wherever a number is expected.
func Coerce(t *Type, x interface{}) (Value, error) {
	if t == nil {
		return Infer(x)
	}
	switch v := x.(type) {
	case nil:
		return Null(t), nil
	case Value:
		return coerceValue(t, v)
	case Date:
		return coerceValue(t, v.Value())
	case Time:
		return coerceValue(t, v.Value())
	case Timestamp:
		return coerceValue(t, v.Value())
	case Uuid:
		return coerceValue(t, v.Value())
	case Timeuuid:
		return coerceValue(t, v.Value())
	case Duration:
		return coerceValue(t, v.Value())
	case Tuple:
		return coerceValue(t, v.Value())
	}

	switch t.kind {
	case KindAscii:
		s, ok := x.(string)
		if !ok {
			return Value{}, mismatch(t, x)
		}
		return NewAscii(s)
	case KindText, KindVarchar:
		s, ok := x.(string)
		if !ok {
			return Value{}, mismatch(t, x)
		}
		return Value{typ: t, s: s}, nil
	case KindBlob, KindCustom:
		switch b := x.(type) {
		case []byte:
			return Value{typ: t, b: append([]byte{}, b...)}, nil
		case string:
			return Value{typ: t, b: []byte(b)}, nil
		}
		return Value{}, mismatch(t, x)
	case KindBoolean:
		b, ok := x.(bool)
		if !ok {
			return Value{}, mismatch(t, x)
		}
		v := NewBoolean(b)
		v.typ = t
		return v, nil
	case KindBigint, KindCounter:
		i, err := toInt(t, x, math.MinInt64, math.MaxInt64)
		return Value{typ: t, i: i}, err
	case KindInt:
		i, err := toInt(t, x, math.MinInt32, math.MaxInt32)
		return Value{typ: t, i: i}, err
	case KindSmallint:
		i, err := toInt(t, x, math.MinInt16, math.MaxInt16)
		return Value{typ: t, i: i}, err
	case KindTinyint:
		i, err := toInt(t, x, math.MinInt8, math.MaxInt8)
		return Value{typ: t, i: i}, err
	case KindDouble:
		f, err := toFloat(t, x)
		return Value{typ: t, f: f}, err
	case KindFloat:
		f, err := toFloat(t, x)
		if err == nil && !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			err = InvalidArgumentf("Value %v out of range for %s", x, t)
		}
		return Value{typ: t, f: float64(float32(f))}, err
	case KindVarint:
		return toVarint(t, x)
	case KindDecimal:
		return toDecimal(t, x)
	case KindInet:
		switch ip := x.(type) {
		case net.IP:
			return NewInet(ip)
		case string:
			parsed := net.ParseIP(ip)
			if parsed == nil {
				return Value{}, InvalidArgumentf("Invalid inet value: '%s'", ip)
			}
			return NewInet(parsed)
		}
		return Value{}, mismatch(t, x)
	case KindDate:
		switch d := x.(type) {
		case time.Time:
			date, err := DateFromTime(d)
			return date.Value(), err
		case string:
			date, err := ParseDate(d)
			return date.Value(), err
		}
		sec, err := toInt(t, x, math.MinInt64, math.MaxInt64)
		if err != nil {
			return Value{}, err
		}
		date, err := DateFromSeconds(sec)
		return date.Value(), err
	case KindTime:
		switch tm := x.(type) {
		case time.Time:
			return TimeFromDateTime(tm).Value(), nil
		case time.Duration:
			v, err := TimeFromNanoseconds(int64(tm))
			return v.Value(), err
		case string:
			v, err := ParseTime(tm)
			return v.Value(), err
		}
		ns, err := toInt(t, x, math.MinInt64, math.MaxInt64)
		if err != nil {
			return Value{}, err
		}
		v, err := TimeFromNanoseconds(ns)
		return v.Value(), err
	case KindTimestamp:
		if tm, ok := x.(time.Time); ok {
			return TimestampFromTime(tm).Value(), nil
		}
		ms, err := toInt(t, x, math.MinInt64, math.MaxInt64)
		return Value{typ: t, i: ms}, err
	case KindUuid:
		switch u := x.(type) {
		case string:
			v, err := ParseUuid(u)
			return v.Value(), err
		case []byte:
			v, err := UuidFromBytes(u)
			return v.Value(), err
		}
		return Value{}, mismatch(t, x)
	case KindTimeuuid:
		switch u := x.(type) {
		case string:
			v, err := ParseTimeuuid(u)
			return v.Value(), err
		case time.Time:
			return TimeuuidFromTime(u).Value(), nil
		}
		return Value{}, mismatch(t, x)
	case KindDuration:
		if d, ok := x.(time.Duration); ok {
			return DurationFromStd(d).Value(), nil
		}
		return Value{}, mismatch(t, x)
	case KindList, KindSet:
		rv := reflect.ValueOf(x)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return Value{}, mismatch(t, x)
		}
		elems := make([]Value, rv.Len())
		for i := range elems {
			e, err := Coerce(t.elem, rv.Index(i).Interface())
			if err != nil {
				return Value{}, err
			}
			elems[i] = e
		}
		return newCollection(t, elems), nil
	case KindMap:
		rv := reflect.ValueOf(x)
		if rv.Kind() != reflect.Map {
			return Value{}, mismatch(t, x)
		}
		keys := make([]Value, 0, rv.Len())
		vals := make([]Value, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := Coerce(t.key, iter.Key().Interface())
			if err != nil {
				return Value{}, err
			}
			v, err := Coerce(t.elem, iter.Value().Interface())
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return newMap(t, keys, vals)
	case KindTuple:
		rv := reflect.ValueOf(x)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return Value{}, mismatch(t, x)
		}
		args := make([]interface{}, rv.Len())
		for i := range args {
			args[i] = rv.Index(i).Interface()
		}
		return t.Create(args...)
	case KindUDT:
		m, ok := x.(map[string]interface{})
		if !ok {
			return Value{}, mismatch(t, x)
		}
		args := make([]interface{}, 0, 2*len(m))
		for name, v := range m {
			args = append(args, name, v)
		}
		return t.Create(args...)
	}
	return Value{}, mismatch(t, x)
}

func coerceValue(t *Type, v Value) (Value, error) {
	if v.typ == nil {
		return Null(t), nil
	}
	if !t.Compatible(v.typ) {
		return Value{}, InvalidArgumentf("Cannot bind %s value %s to %s", v.typ, v, t)
	}
	if v.null {
		return Null(t), nil
	}
	if t.kind == KindAscii && v.typ.kind != KindAscii {
		return NewAscii(v.s)
	}
	if t.kind == KindUuid && v.typ.kind == KindTimeuuid {
		return Value{typ: t, u: v.u}, nil
	}
	if t.Equal(v.typ) {
		return v, nil
	}
	switch t.kind {
	case KindList, KindSet, KindMap, KindTuple:
		return coerceElements(t, v)
	}
	if isRetaggable(t.kind) {
		v.typ = t
	}
	return v, nil
}

// coerceElements rebuilds a composite value element by element against the
// child types of t.
func coerceElements(t *Type, v Value) (Value, error) {
	switch t.kind {
	case KindList, KindSet:
		elems := make([]Value, len(v.elems))
		for i, e := range v.elems {
			c, err := coerceValue(t.elem, e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = c
		}
		return newCollection(t, elems), nil
	case KindMap:
		keys := make([]Value, len(v.keys))
		vals := make([]Value, len(v.elems))
		for i := range v.keys {
			k, err := coerceValue(t.key, v.keys[i])
			if err != nil {
				return Value{}, err
			}
			e, err := coerceValue(t.elem, v.elems[i])
			if err != nil {
				return Value{}, err
			}
			keys[i], vals[i] = k, e
		}
		return newMap(t, keys, vals)
	default:
		elems := make([]Value, len(v.elems))
		for i, e := range v.elems {
			c, err := coerceValue(t.elems[i], e)
			if err != nil {
				return Value{}, err
			}
			elems[i] = c
		}
		return Value{typ: t, elems: elems}, nil
	}
}

func isRetaggable(k Kind) bool {
	return isText(k) || k == KindBigint || k == KindCounter
}

func mismatch(t *Type, x interface{}) error {
	return InvalidArgumentf("Cannot convert %T value '%v' to %s", x, x, t)
}

func toInt(t *Type, x interface{}, lo, hi int64) (int64, error) {
	var i int64
	switch v := x.(type) {
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint8:
		i = int64(v)
	case uint16:
		i = int64(v)
	case uint32:
		i = int64(v)
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, InvalidArgumentf("Value %d out of range for %s", v, t)
		}
		i = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return 0, InvalidArgumentf("Value %d out of range for %s", v, t)
		}
		i = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, InvalidArgumentf("Invalid integer value: '%s'", v)
		}
		i = parsed
	default:
		return 0, mismatch(t, x)
	}
	if i < lo || i > hi {
		return 0, InvalidArgumentf("Value %d out of range for %s", i, t)
	}
	return i, nil
}

func toFloat(t *Type, x interface{}) (float64, error) {
	switch v := x.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, InvalidArgumentf("Invalid float value: '%s'", v)
		}
		return f, nil
	}
	return 0, mismatch(t, x)
}

func toVarint(t *Type, x interface{}) (Value, error) {
	switch v := x.(type) {
	case *big.Int:
		if v == nil {
			return Null(t), nil
		}
		return NewVarint(v), nil
	case string:
		i, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
		if !ok {
			return Value{}, InvalidArgumentf("Invalid varint value: '%s'", v)
		}
		return Value{typ: t, varint: i}, nil
	}
	i, err := toInt(t, x, math.MinInt64, math.MaxInt64)
	if err != nil {
		return Value{}, err
	}
	return Value{typ: t, varint: big.NewInt(i)}, nil
}

func toDecimal(t *Type, x interface{}) (Value, error) {
	switch v := x.(type) {
	case decimal.Decimal:
		return NewDecimal(v), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return Value{}, InvalidArgumentf("Invalid decimal value: '%s'", v)
		}
		return NewDecimal(d), nil
	case float64:
		return NewDecimal(decimal.NewFromFloat(v)), nil
	case float32:
		return NewDecimal(decimal.NewFromFloat32(v)), nil
	}
	i, err := toInt(t, x, math.MinInt64, math.MaxInt64)
	if err != nil {
		return Value{}, err
	}
	return NewDecimal(decimal.NewFromInt(i)), nil
}

// Infer returns the Value for a native Go value when no target type is known.
// Integers of type int and int64 map to bigint.
func Infer(x interface{}) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return v, nil
	case Date:
		return v.Value(), nil
	case Time:
		return v.Value(), nil
	case Timestamp:
		return v.Value(), nil
	case Uuid:
		return v.Value(), nil
	case Timeuuid:
		return v.Value(), nil
	case Duration:
		return v.Value(), nil
	case Tuple:
		return v.Value(), nil
	case string:
		return NewText(v), nil
	case int:
		return NewBigint(int64(v)), nil
	case int64:
		return NewBigint(v), nil
	case int32:
		return NewInt(v), nil
	case int16:
		return NewSmallint(v), nil
	case int8:
		return NewTinyint(v), nil
	case float64:
		return NewDouble(v), nil
	case float32:
		return NewFloat(v), nil
	case bool:
		return NewBoolean(v), nil
	case []byte:
		return NewBlob(v), nil
	case time.Time:
		return TimestampFromTime(v).Value(), nil
	case time.Duration:
		return DurationFromStd(v).Value(), nil
	case decimal.Decimal:
		return NewDecimal(v), nil
	case *big.Int:
		if v == nil {
			return Value{}, nil
		}
		return NewVarint(v), nil
	case net.IP:
		return NewInet(v)
	}

	// collections take the type of their Go element type
	rt := reflect.TypeOf(x)
	switch rt.Kind() {
	case reflect.Slice, reflect.Array:
		if elem := inferType(rt.Elem()); elem != nil {
			return Coerce(ListType(elem), x)
		}
	case reflect.Map:
		key, elem := inferType(rt.Key()), inferType(rt.Elem())
		if key != nil && elem != nil {
			return Coerce(MapType(key, elem), x)
		}
	}
	return Value{}, InvalidArgumentf("Cannot infer a CQL type for %T", x)
}

func inferType(rt reflect.Type) *Type {
	v, err := Infer(reflect.Zero(rt).Interface())
	if err != nil {
		return nil
	}
	return v.typ
}
