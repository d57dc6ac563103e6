package cql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timestamp is an instant with millisecond precision.
type Timestamp struct {
	ms int64
}

// NewTimestamp returns the current time.
func NewTimestamp() Timestamp {
	return TimestampFromTime(time.Now())
}

// TimestampFromParts returns the timestamp sec seconds and usec microseconds
// after the Unix epoch. Sub millisecond precision is truncated.
func TimestampFromParts(sec, usec int64) (Timestamp, error) {
	if usec < 0 || usec > 999999 {
		return Timestamp{}, InvalidArgumentf("Invalid microseconds value: '%d'", usec)
	}
	if sec > math.MaxInt64/1000-1 || sec < math.MinInt64/1000+1 {
		return Timestamp{}, InvalidArgumentf("Invalid seconds value: '%d'", sec)
	}
	return Timestamp{ms: sec*1000 + usec/1000}, nil
}

// TimestampFromMilliseconds returns the timestamp ms milliseconds after the Unix epoch.
func TimestampFromMilliseconds(ms int64) Timestamp {
	return Timestamp{ms: ms}
}

func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{ms: t.UnixMilli()}
}

// ParseTimestamp parses a decimal millisecond count.
func ParseTimestamp(s string) (Timestamp, error) {
	ms, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Timestamp{}, InvalidArgumentf("Invalid timestamp value: '%s'", s)
	}
	return Timestamp{ms: ms}, nil
}

// Milliseconds returns the milliseconds since the Unix epoch.
func (t Timestamp) Milliseconds() int64 { return t.ms }

// Time returns the whole seconds since the Unix epoch.
func (t Timestamp) Time() int64 { return floorDiv(t.ms, 1000) }

// Microseconds returns the sub second part in microseconds.
func (t Timestamp) Microseconds() int64 { return floorMod(t.ms, 1000) * 1000 }

// Microtime formats t as "<fraction> <seconds>" with an 8 digit fraction.
func (t Timestamp) Microtime() string {
	return fmt.Sprintf("%.8f %d", float64(floorMod(t.ms, 1000))/1000, t.Time())
}

// MicrotimeFloat returns the seconds since the Unix epoch as a float.
func (t Timestamp) MicrotimeFloat() float64 {
	return float64(t.ms) / 1000
}

// ToTime returns t in the local time zone.
func (t Timestamp) ToTime() time.Time {
	return time.UnixMilli(t.ms)
}

// Type returns the timestamp type.
func (t Timestamp) Type() *Type { return TypeTimestamp }

// Value returns t as a Value.
func (t Timestamp) Value() Value {
	return Value{typ: TypeTimestamp, i: t.ms}
}

// String returns the decimal millisecond count.
func (t Timestamp) String() string {
	return strconv.FormatInt(t.ms, 10)
}
