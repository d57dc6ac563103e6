package cql

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/big"
	"net"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Value is a typed CQL value. The payload is interpreted according to the
// kind of its type. The zero Value is an untyped null.
//
// Accessors return the zero value of their result when v holds a different
// kind or is null.
type Value struct {
	typ  *Type
	null bool

	// bigint, counter, int, smallint, tinyint, boolean, time (ns),
	// timestamp (ms) and date (wire day).
	i int64
	// double, float
	f float64
	// ascii, text, varchar
	s string
	// blob, custom
	b []byte
	// uuid, timeuuid
	u uuid.UUID

	varint *big.Int
	dec    decimal.Decimal
	dur    Duration
	ip     net.IP

	// list, set and tuple elements, udt fields and map values.
	elems []Value
	// map keys
	keys []Value
}

// Null returns the null value of type t.
func Null(t *Type) Value {
	return Value{typ: t, null: true}
}

func NewAscii(s string) (Value, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return Value{}, InvalidArgumentf("Invalid ascii value: '%s'", s)
		}
	}
	return Value{typ: TypeAscii, s: s}, nil
}

func NewText(s string) Value      { return Value{typ: TypeText, s: s} }
func NewVarchar(s string) Value   { return Value{typ: TypeVarchar, s: s} }
func NewBigint(i int64) Value     { return Value{typ: TypeBigint, i: i} }
func NewCounter(i int64) Value    { return Value{typ: TypeCounter, i: i} }
func NewInt(i int32) Value        { return Value{typ: TypeInt, i: int64(i)} }
func NewSmallint(i int16) Value   { return Value{typ: TypeSmallint, i: int64(i)} }
func NewTinyint(i int8) Value     { return Value{typ: TypeTinyint, i: int64(i)} }
func NewDouble(f float64) Value   { return Value{typ: TypeDouble, f: f} }
func NewFloat(f float32) Value    { return Value{typ: TypeFloat, f: float64(f)} }
func NewDecimal(d decimal.Decimal) Value {
	return Value{typ: TypeDecimal, dec: d}
}

func NewBoolean(b bool) Value {
	v := Value{typ: TypeBoolean}
	if b {
		v.i = 1
	}
	return v
}

func NewBlob(b []byte) Value {
	return Value{typ: TypeBlob, b: append([]byte{}, b...)}
}

func NewVarint(i *big.Int) Value {
	return Value{typ: TypeVarint, varint: new(big.Int).Set(i)}
}

// NewInet returns an inet value. IPv4 addresses are stored in their 4 byte form.
func NewInet(ip net.IP) (Value, error) {
	if ip4 := ip.To4(); ip4 != nil {
		return Value{typ: TypeInet, ip: append(net.IP{}, ip4...)}, nil
	}
	if len(ip) != net.IPv6len {
		return Value{}, InvalidArgumentf("Invalid inet value: '%s'", ip)
	}
	return Value{typ: TypeInet, ip: append(net.IP{}, ip...)}, nil
}

// NewCustom returns an opaque value of a custom type.
func NewCustom(t *Type, b []byte) Value {
	return Value{typ: t, b: append([]byte{}, b...)}
}

// NewList returns a list<t> value.
func NewList(t *Type, elems ...Value) (Value, error) {
	return ListType(t).Create(valuesToArgs(elems)...)
}

// NewSet returns a set<t> value. Duplicate elements are dropped.
func NewSet(t *Type, elems ...Value) (Value, error) {
	return SetType(t).Create(valuesToArgs(elems)...)
}

func valuesToArgs(vs []Value) []interface{} {
	args := make([]interface{}, len(vs))
	for i, v := range vs {
		args[i] = v
	}
	return args
}

func newCollection(t *Type, elems []Value) Value {
	if t.kind == KindSet {
		elems = dedupe(elems)
	}
	return Value{typ: t, elems: elems}
}

func newMap(t *Type, keys, vals []Value) (Value, error) {
	seen := map[uint64][]int{}
	outKeys := make([]Value, 0, len(keys))
	outVals := make([]Value, 0, len(vals))
outer:
	for i, k := range keys {
		h := k.Hash()
		for _, j := range seen[h] {
			if outKeys[j].Equal(k) {
				// last write wins, like a CQL map literal
				outVals[j] = vals[i]
				continue outer
			}
		}
		seen[h] = append(seen[h], len(outKeys))
		outKeys = append(outKeys, k)
		outVals = append(outVals, vals[i])
	}
	return Value{typ: t, keys: outKeys, elems: outVals}, nil
}

func dedupe(elems []Value) []Value {
	seen := map[uint64][]int{}
	out := make([]Value, 0, len(elems))
outer:
	for _, e := range elems {
		h := e.Hash()
		for _, j := range seen[h] {
			if out[j].Equal(e) {
				continue outer
			}
		}
		seen[h] = append(seen[h], len(out))
		out = append(out, e)
	}
	return out
}

// Type returns the type of v, nil for an untyped null.
func (v Value) Type() *Type { return v.typ }

// Kind returns the kind of v's type.
func (v Value) Kind() Kind {
	if v.typ == nil {
		return KindCustom
	}
	return v.typ.kind
}

func (v Value) IsNull() bool { return v.null || v.typ == nil }

func (v Value) is(kinds ...Kind) bool {
	if v.IsNull() {
		return false
	}
	for _, k := range kinds {
		if v.typ.kind == k {
			return true
		}
	}
	return false
}

// Int64 returns the value of any integer kind.
func (v Value) Int64() int64 {
	if !v.is(KindBigint, KindCounter, KindInt, KindSmallint, KindTinyint) {
		return 0
	}
	return v.i
}

func (v Value) Float64() float64 {
	if !v.is(KindDouble, KindFloat) {
		return 0
	}
	return v.f
}

func (v Value) Bool() bool {
	return v.is(KindBoolean) && v.i != 0
}

// Text returns the value of any text kind.
func (v Value) Text() string {
	if !v.is(KindAscii, KindText, KindVarchar) {
		return ""
	}
	return v.s
}

// Bytes returns the value of a blob or custom kind.
func (v Value) Bytes() []byte {
	if !v.is(KindBlob, KindCustom) {
		return nil
	}
	return append([]byte{}, v.b...)
}

func (v Value) Varint() *big.Int {
	if !v.is(KindVarint) {
		return nil
	}
	return new(big.Int).Set(v.varint)
}

func (v Value) Decimal() decimal.Decimal {
	if !v.is(KindDecimal) {
		return decimal.Decimal{}
	}
	return v.dec
}

func (v Value) Inet() net.IP {
	if !v.is(KindInet) {
		return nil
	}
	return append(net.IP{}, v.ip...)
}

func (v Value) Date() Date {
	if !v.is(KindDate) {
		return Date{}
	}
	return Date{day: uint32(v.i)}
}

func (v Value) Time() Time {
	if !v.is(KindTime) {
		return Time{}
	}
	return Time{ns: v.i}
}

func (v Value) Timestamp() Timestamp {
	if !v.is(KindTimestamp) {
		return Timestamp{}
	}
	return Timestamp{ms: v.i}
}

// Uuid returns the value of a uuid or timeuuid kind.
func (v Value) Uuid() Uuid {
	if !v.is(KindUuid, KindTimeuuid) {
		return Uuid{}
	}
	return Uuid{u: v.u}
}

func (v Value) Timeuuid() Timeuuid {
	if !v.is(KindTimeuuid) {
		return Timeuuid{}
	}
	return Timeuuid{u: v.u}
}

func (v Value) Duration() Duration {
	if !v.is(KindDuration) {
		return Duration{}
	}
	return v.dur
}

func (v Value) Tuple() Tuple {
	if !v.is(KindTuple) {
		return Tuple{}
	}
	return Tuple{typ: v.typ, elems: v.elems}
}

// Elements returns the elements of a list or set.
func (v Value) Elements() []Value {
	if !v.is(KindList, KindSet) {
		return nil
	}
	return append([]Value(nil), v.elems...)
}

// MapEntries returns the keys and values of a map in insertion order.
func (v Value) MapEntries() (keys, values []Value) {
	if !v.is(KindMap) {
		return nil, nil
	}
	return append([]Value(nil), v.keys...), append([]Value(nil), v.elems...)
}

// MapGet looks up key in a map.
func (v Value) MapGet(key Value) (Value, bool) {
	if !v.is(KindMap) {
		return Value{}, false
	}
	for i, k := range v.keys {
		if k.Equal(key) {
			return v.elems[i], true
		}
	}
	return Value{}, false
}

// Field returns the named field of a user defined type value.
func (v Value) Field(name string) (Value, bool) {
	if !v.is(KindUDT) {
		return Value{}, false
	}
	idx := v.typ.FieldIndex(name)
	if idx < 0 {
		return Value{}, false
	}
	return v.elems[idx], true
}

// Len returns the number of elements of a composite value.
func (v Value) Len() int {
	if v.IsNull() {
		return 0
	}
	if v.typ.kind == KindMap {
		return len(v.keys)
	}
	return len(v.elems)
}

// Equal reports whether v and o have the same type and payload.
func (v Value) Equal(o Value) bool {
	if v.IsNull() || o.IsNull() {
		return v.IsNull() && o.IsNull() && (v.typ == nil || o.typ == nil || v.typ.Equal(o.typ))
	}
	if !v.typ.Equal(o.typ) {
		return false
	}
	switch v.typ.kind {
	case KindAscii, KindText, KindVarchar:
		return v.s == o.s
	case KindBlob, KindCustom:
		return string(v.b) == string(o.b)
	case KindDouble, KindFloat:
		return math.Float64bits(v.f) == math.Float64bits(o.f)
	case KindUuid, KindTimeuuid:
		return v.u == o.u
	case KindVarint:
		return v.varint.Cmp(o.varint) == 0
	case KindDecimal:
		return v.dec.Equal(o.dec) && v.dec.Exponent() == o.dec.Exponent()
	case KindDuration:
		return v.dur == o.dur
	case KindInet:
		return v.ip.Equal(o.ip)
	case KindMap:
		return valuesEqual(v.keys, o.keys) && valuesEqual(v.elems, o.elems)
	case KindList, KindSet, KindTuple, KindUDT:
		return valuesEqual(v.elems, o.elems)
	default:
		return v.i == o.i
	}
}

func valuesEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Hash returns a 64 bit hash of v consistent with Equal.
func (v Value) Hash() uint64 {
	d := xxhash.New()
	v.hash(d)
	return d.Sum64()
}

func (v Value) hash(d *xxhash.Digest) {
	var buf [8]byte
	if v.IsNull() {
		_, _ = d.Write([]byte{0xff})
		return
	}
	binary.BigEndian.PutUint16(buf[:2], uint16(v.typ.kind))
	_, _ = d.Write(buf[:2])
	switch v.typ.kind {
	case KindAscii, KindText, KindVarchar:
		_, _ = d.WriteString(v.s)
	case KindBlob, KindCustom:
		_, _ = d.Write(v.b)
	case KindDouble, KindFloat:
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.f))
		_, _ = d.Write(buf[:])
	case KindUuid, KindTimeuuid:
		_, _ = d.Write(v.u[:])
	case KindVarint:
		_, _ = d.Write(v.varint.Bytes())
		_, _ = d.Write([]byte{byte(v.varint.Sign() + 1)})
	case KindDecimal:
		_, _ = d.WriteString(v.dec.String())
	case KindDuration:
		_, _ = d.WriteString(v.dur.String())
	case KindInet:
		_, _ = d.Write(v.ip)
	case KindMap:
		for i := range v.keys {
			v.keys[i].hash(d)
			v.elems[i].hash(d)
		}
	case KindList, KindSet, KindTuple, KindUDT:
		for _, e := range v.elems {
			e.hash(d)
		}
	default:
		binary.BigEndian.PutUint64(buf[:], uint64(v.i))
		_, _ = d.Write(buf[:])
	}
}

// String returns the canonical textual form of v.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb, false)
	return sb.String()
}

func (v Value) write(sb *strings.Builder, nested bool) {
	if v.IsNull() {
		sb.WriteString("null")
		return
	}
	switch v.typ.kind {
	case KindAscii, KindText, KindVarchar:
		if nested {
			sb.WriteByte('\'')
			sb.WriteString(strings.ReplaceAll(v.s, "'", "''"))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(v.s)
		}
	case KindBlob, KindCustom:
		sb.WriteString("0x")
		sb.WriteString(hex.EncodeToString(v.b))
	case KindBoolean:
		sb.WriteString(strconv.FormatBool(v.i != 0))
	case KindDouble:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 32))
	case KindUuid:
		sb.WriteString(v.u.String())
	case KindTimeuuid:
		sb.WriteString(v.u.String())
	case KindVarint:
		sb.WriteString(v.varint.String())
	case KindDecimal:
		sb.WriteString(v.dec.String())
	case KindDuration:
		sb.WriteString(v.dur.String())
	case KindInet:
		sb.WriteString(v.ip.String())
	case KindDate:
		sb.WriteString(v.Date().String())
	case KindTime:
		sb.WriteString(v.Time().String())
	case KindTimestamp:
		sb.WriteString(v.Timestamp().String())
	case KindList:
		writeSeq(sb, "[", "]", v.elems)
	case KindSet:
		writeSeq(sb, "{", "}", v.elems)
	case KindTuple:
		writeSeq(sb, "(", ")", v.elems)
	case KindMap:
		sb.WriteByte('{')
		for i := range v.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			v.keys[i].write(sb, true)
			sb.WriteString(": ")
			v.elems[i].write(sb, true)
		}
		sb.WriteByte('}')
	case KindUDT:
		sb.WriteByte('{')
		for i, f := range v.typ.fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteString(": ")
			v.elems[i].write(sb, true)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	}
}

func writeSeq(sb *strings.Builder, open, closing string, elems []Value) {
	sb.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		e.write(sb, true)
	}
	sb.WriteString(closing)
}
