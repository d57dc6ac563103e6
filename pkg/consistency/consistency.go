package consistency

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Level is a CQL consistency level. Values are the native protocol codes.
type Level uint16

const (
	Any         Level = 0x00
	One         Level = 0x01
	Two         Level = 0x02
	Three       Level = 0x03
	Quorum      Level = 0x04
	All         Level = 0x05
	LocalQuorum Level = 0x06
	EachQuorum  Level = 0x07
	Serial      Level = 0x08
	LocalSerial Level = 0x09
	LocalOne    Level = 0x0A
)

var names = map[Level]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
	LocalOne:    "LOCAL_ONE",
}

func (l Level) String() string {
	if s, ok := names[l]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN_CONSISTENCY_0x%x", uint16(l))
}

// Valid reports whether l is a known consistency level.
func (l Level) Valid() bool {
	_, ok := names[l]
	return ok
}

// IsSerial reports whether l may be used as a serial consistency.
func (l Level) IsSerial() bool {
	return l == Serial || l == LocalSerial
}

// Parse parses a consistency level name. Matching is case insensitive and
// accepts both "local_quorum" and "localquorum".
func Parse(s string) (Level, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for l, name := range names {
		if norm == name || norm == strings.ReplaceAll(name, "_", "") {
			return l, nil
		}
	}
	return 0, errors.Errorf("invalid consistency level %q", s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Level {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// Set implements flag.Value.
func (l *Level) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l Level) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return l.Set(s)
}
