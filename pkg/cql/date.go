package cql

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	secondsPerDay = 86400
	// epochWireDay is the wire day of 1970-01-01.
	epochWireDay = 1 << 31
)

// Date is a day without time of day. It is stored as its wire day, the
// number of days since the Unix epoch offset by 2^31.
type Date struct {
	day uint32
}

// NewDate returns today's date in UTC.
func NewDate() Date {
	d, _ := DateFromSeconds(time.Now().Unix())
	return d
}

// DateFromWireDay returns the date with the given wire day.
func DateFromWireDay(day uint32) Date {
	return Date{day: day}
}

// DateFromDays returns the date a number of days after the Unix epoch.
func DateFromDays(days int64) (Date, error) {
	if days < -epochWireDay || days > math.MaxUint32-epochWireDay {
		return Date{}, InvalidArgumentf("Invalid days value: '%d'", days)
	}
	return Date{day: uint32(days + epochWireDay)}, nil
}

// DateFromSeconds returns the date containing the given Unix time. The time
// of day is discarded.
func DateFromSeconds(seconds int64) (Date, error) {
	d, err := DateFromDays(floorDiv(seconds, secondsPerDay))
	if err != nil {
		return Date{}, InvalidArgumentf("Invalid seconds value: '%d'", seconds)
	}
	return d, nil
}

// ParseDate parses a decimal count of seconds since the Unix epoch.
func ParseDate(s string) (Date, error) {
	seconds, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Date{}, InvalidArgumentf("Invalid seconds value: '%s'", s)
	}
	return DateFromSeconds(seconds)
}

// DateFromTime returns the UTC date of t.
func DateFromTime(t time.Time) (Date, error) {
	return DateFromSeconds(t.Unix())
}

// WireDay returns the encoded day.
func (d Date) WireDay() uint32 { return d.day }

// Days returns the number of days since the Unix epoch.
func (d Date) Days() int64 { return int64(d.day) - epochWireDay }

// Seconds returns the Unix time of the date's midnight.
func (d Date) Seconds() int64 { return d.Days() * secondsPerDay }

// ToTime returns the midnight of the date in UTC, plus the time of day if given.
func (d Date) ToTime(tod ...Time) time.Time {
	t := time.Unix(d.Seconds(), 0).UTC()
	if len(tod) > 0 {
		t = t.Add(time.Duration(tod[0].ns))
	}
	return t
}

// Type returns the date type.
func (d Date) Type() *Type { return TypeDate }

// Value returns d as a Value.
func (d Date) Value() Value {
	return Value{typ: TypeDate, i: int64(d.day)}
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.ToTime().Format("2006-01-02")
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
