package cql

import (
	"time"

	"github.com/google/uuid"
)

// ticksToUnixEpoch is the number of 100ns ticks between 1582-10-15 and 1970-01-01.
const ticksToUnixEpoch = 0x01B21DD213814000

func unixNanoToTicks(ns int64) int64 {
	return floorDiv(ns, 100) + ticksToUnixEpoch
}

// Timeuuid is a time based (version 1) Uuid.
type Timeuuid struct {
	u uuid.UUID
}

// NewTimeuuid returns a Timeuuid for the current time from the default generator.
func NewTimeuuid() Timeuuid {
	return DefaultGenerator().Now()
}

// TimeuuidFromTime returns a Timeuuid for t from the default generator.
func TimeuuidFromTime(t time.Time) Timeuuid {
	return DefaultGenerator().FromTime(t)
}

// TimeuuidFromSeconds returns a Timeuuid for the given Unix time.
func TimeuuidFromSeconds(sec int64) Timeuuid {
	return TimeuuidFromTime(time.Unix(sec, 0))
}

// ParseTimeuuid parses the canonical form of a version 1 Uuid.
func ParseTimeuuid(s string) (Timeuuid, error) {
	u, err := ParseUuid(s)
	if err != nil {
		return Timeuuid{}, err
	}
	if v := u.Version(); v != 1 {
		return Timeuuid{}, InvalidArgumentf("UUID must be of type 1, type %d given", v)
	}
	return Timeuuid{u: u.u}, nil
}

// TimeuuidFromBytes returns the Timeuuid with the given 16 bytes. The version
// is not checked; Version reports it.
func TimeuuidFromBytes(b []byte) (Timeuuid, error) {
	u, err := UuidFromBytes(b)
	if err != nil {
		return Timeuuid{}, err
	}
	return Timeuuid{u: u.u}, nil
}

// Ticks returns the 60 bit timestamp field: 100ns ticks since 1582-10-15.
func (t Timeuuid) Ticks() int64 {
	u := t.u
	low := int64(u[0])<<24 | int64(u[1])<<16 | int64(u[2])<<8 | int64(u[3])
	mid := int64(u[4])<<8 | int64(u[5])
	hi := int64(u[6]&0x0f)<<8 | int64(u[7])
	return hi<<48 | mid<<32 | low
}

// Time returns the embedded timestamp as whole seconds since the Unix epoch.
func (t Timeuuid) Time() int64 {
	return floorDiv(t.Ticks()-ticksToUnixEpoch, 10_000_000)
}

// ToTime returns the embedded timestamp in the local time zone.
func (t Timeuuid) ToTime() time.Time {
	ticks := t.Ticks() - ticksToUnixEpoch
	return time.Unix(floorDiv(ticks, 10_000_000), floorMod(ticks, 10_000_000)*100)
}

// Version returns the version nibble.
func (t Timeuuid) Version() int { return int(t.u.Version()) }

// ClockSequence returns the 14 bit clock sequence.
func (t Timeuuid) ClockSequence() int { return t.u.ClockSequence() }

// Node returns the 6 byte node id.
func (t Timeuuid) Node() []byte { return t.u.NodeID() }

// Uuid returns t as a plain Uuid.
func (t Timeuuid) Uuid() Uuid { return Uuid{u: t.u} }

// Bytes returns the 16 bytes of t.
func (t Timeuuid) Bytes() []byte {
	b := t.u
	return b[:]
}

// Equal reports whether t and o hold the same 16 bytes.
func (t Timeuuid) Equal(o Timeuuid) bool { return t.u == o.u }

// Type returns the timeuuid type.
func (t Timeuuid) Type() *Type { return TypeTimeuuid }

// Value returns t as a Value.
func (t Timeuuid) Value() Value {
	return Value{typ: TypeTimeuuid, u: t.u}
}

func (t Timeuuid) String() string { return t.u.String() }
