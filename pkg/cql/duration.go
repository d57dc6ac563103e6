package cql

import (
	"strconv"
	"strings"
	"time"
)

// Duration is a CQL duration. All three components share the same sign.
type Duration struct {
	Months      int32
	Days        int32
	Nanoseconds int64
}

// NewDuration validates the components of a duration.
func NewDuration(months, days int32, nanoseconds int64) (Duration, error) {
	if !((months >= 0 && days >= 0 && nanoseconds >= 0) || (months <= 0 && days <= 0 && nanoseconds <= 0)) {
		return Duration{}, InvalidArgumentf("Invalid duration: months, days and nanoseconds must share a sign (%d, %d, %d given)", months, days, nanoseconds)
	}
	return Duration{Months: months, Days: days, Nanoseconds: nanoseconds}, nil
}

// DurationFromStd converts a time.Duration into a Duration with no months or days.
func DurationFromStd(d time.Duration) Duration {
	return Duration{Nanoseconds: int64(d)}
}

func (d Duration) Type() *Type { return TypeDuration }

// Value returns d as a Value.
func (d Duration) Value() Value {
	return Value{typ: TypeDuration, dur: d}
}

// String formats d in the CQL duration literal form, e.g. 1y2mo3d4h5m6s.
func (d Duration) String() string {
	if d == (Duration{}) {
		return "0s"
	}
	var sb strings.Builder
	months, days, ns := int64(d.Months), int64(d.Days), d.Nanoseconds
	if months < 0 || days < 0 || ns < 0 {
		sb.WriteByte('-')
		months, days, ns = -months, -days, -ns
	}
	write := func(n int64, unit string) {
		if n != 0 {
			sb.WriteString(strconv.FormatInt(n, 10))
			sb.WriteString(unit)
		}
	}
	write(months/12, "y")
	write(months%12, "mo")
	write(days, "d")
	for _, u := range []struct {
		size int64
		unit string
	}{
		{int64(time.Hour), "h"},
		{int64(time.Minute), "m"},
		{int64(time.Second), "s"},
		{int64(time.Millisecond), "ms"},
		{int64(time.Microsecond), "us"},
		{1, "ns"},
	} {
		write(ns/u.size, u.unit)
		ns %= u.size
	}
	return sb.String()
}
