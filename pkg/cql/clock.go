package cql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NanosecondsPerDay bounds the Time of day range.
const NanosecondsPerDay = 86_400_000_000_000

// Time is a time of day with nanosecond precision.
type Time struct {
	ns int64
}

// NewTime returns the current UTC time of day.
func NewTime() Time {
	return TimeFromDateTime(time.Now().UTC())
}

// TimeFromNanoseconds returns the time of day ns nanoseconds after midnight.
func TimeFromNanoseconds(ns int64) (Time, error) {
	if ns < 0 || ns >= NanosecondsPerDay {
		return Time{}, InvalidArgumentf("Invalid time value: '%d', must be in [0, %d)", ns, int64(NanosecondsPerDay))
	}
	return Time{ns: ns}, nil
}

// ParseTime parses either a decimal nanosecond count or a CQL time literal
// of the form hh:mm:ss[.fffffffff].
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return TimeFromNanoseconds(ns)
	}
	ns, ok := parseClock(s)
	if !ok {
		return Time{}, InvalidArgumentf("Invalid time value: '%s'", s)
	}
	return TimeFromNanoseconds(ns)
}

func parseClock(s string) (int64, bool) {
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s, frac = s[:i], s[i+1:]
		if len(frac) == 0 || len(frac) > 9 {
			return 0, false
		}
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var hms [3]int64
	for i, p := range parts {
		if len(p) != 2 {
			return 0, false
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		hms[i] = n
	}
	if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return 0, false
	}
	var nanos int64
	if frac != "" {
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		nanos = n
	}
	return ((hms[0]*60+hms[1])*60+hms[2])*int64(time.Second) + nanos, true
}

// TimeFromDateTime returns the time of day of t in its own location.
func TimeFromDateTime(t time.Time) Time {
	h, m, s := t.Clock()
	return Time{ns: (int64(h)*3600+int64(m)*60+int64(s))*int64(time.Second) + int64(t.Nanosecond())}
}

// Nanoseconds returns the nanoseconds since midnight.
func (t Time) Nanoseconds() int64 { return t.ns }

// Seconds returns the whole seconds since midnight.
func (t Time) Seconds() int64 { return t.ns / int64(time.Second) }

// Clock formats t as hh:mm:ss.fffffffff.
func (t Time) Clock() string {
	s := t.ns / int64(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d.%09d", s/3600, s/60%60, s%60, t.ns%int64(time.Second))
}

// Type returns the time type.
func (t Time) Type() *Type { return TypeTime }

// Value returns t as a Value.
func (t Time) Value() Value {
	return Value{typ: TypeTime, i: t.ns}
}

// String returns the decimal nanosecond count.
func (t Time) String() string {
	return strconv.FormatInt(t.ns, 10)
}
