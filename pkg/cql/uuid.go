package cql

import (
	"crypto/rand"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

var canonicalUUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Uuid is a 128 bit universally unique identifier. Uuids compare equal with
// == when their bytes are equal.
type Uuid struct {
	u uuid.UUID
}

// NewUuid returns a random version 4 Uuid from the default generator.
func NewUuid() Uuid {
	u, err := DefaultGenerator().Random()
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUuid parses the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
// Hex digits of either case are accepted.
func ParseUuid(s string) (Uuid, error) {
	if !canonicalUUID.MatchString(s) {
		return Uuid{}, InvalidArgumentf("Invalid UUID: '%s'", s)
	}
	u, err := uuid.Parse(strings.ToLower(s))
	if err != nil {
		return Uuid{}, InvalidArgumentf("Invalid UUID: '%s'", s)
	}
	return Uuid{u: u}, nil
}

// UuidFromBytes returns the Uuid with the given 16 bytes.
func UuidFromBytes(b []byte) (Uuid, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return Uuid{}, InvalidArgumentf("Invalid UUID bytes: length %d", len(b))
	}
	return Uuid{u: u}, nil
}

// Bytes returns the 16 bytes of u.
func (u Uuid) Bytes() []byte {
	b := u.u
	return b[:]
}

// Version returns the version nibble of u.
func (u Uuid) Version() int { return int(u.u.Version()) }

// Equal reports whether u and o hold the same 16 bytes.
func (u Uuid) Equal(o Uuid) bool { return u.u == o.u }

// Type returns the uuid type.
func (u Uuid) Type() *Type { return TypeUuid }

// Value returns u as a Value.
func (u Uuid) Value() Value {
	return Value{typ: TypeUuid, u: u.u}
}

// String returns the canonical lowercase form of u.
func (u Uuid) String() string { return u.u.String() }

// Generator produces random and time based Uuids. It is safe for concurrent
// use.
type Generator struct {
	rand io.Reader

	clockSeq uint16
	node     [6]byte
	lastTick *atomic.Int64

	now func() time.Time
}

var (
	defaultGeneratorOnce sync.Once
	defaultGenerator     *Generator
)

// DefaultGenerator returns the process wide generator. It draws from
// crypto/rand and is created on first use.
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		g, err := NewGenerator(rand.Reader)
		if err != nil {
			panic(err)
		}
		defaultGenerator = g
	})
	return defaultGenerator
}

// NewGenerator returns a generator reading randomness from r. The clock
// sequence and node of time based Uuids are drawn from r once.
func NewGenerator(r io.Reader) (*Generator, error) {
	if r != rand.Reader {
		r = &lockedReader{r: r}
	}
	g := &Generator{
		rand:     r,
		lastTick: atomic.NewInt64(0),
		now:      time.Now,
	}
	var seed [8]byte
	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, errors.Wrap(err, "seeding uuid generator")
	}
	g.clockSeq = (uint16(seed[0])<<8 | uint16(seed[1])) & 0x3fff
	copy(g.node[:], seed[2:])
	// random node ids set the multicast bit so they never collide with a MAC address
	g.node[0] |= 0x01
	return g, nil
}

// Random returns a new version 4 Uuid.
func (g *Generator) Random() (Uuid, error) {
	u, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return Uuid{}, errors.Wrap(err, "generating uuid")
	}
	return Uuid{u: u}, nil
}

// Now returns a version 1 Uuid for the current time. Successive calls
// return strictly increasing timestamps.
func (g *Generator) Now() Timeuuid {
	tick := unixNanoToTicks(g.now().UnixNano())
	for {
		last := g.lastTick.Load()
		next := tick
		if next <= last {
			next = last + 1
		}
		if g.lastTick.CompareAndSwap(last, next) {
			return g.fromTicks(next)
		}
	}
}

// FromTime returns a version 1 Uuid for t.
func (g *Generator) FromTime(t time.Time) Timeuuid {
	return g.fromTicks(unixNanoToTicks(t.UnixNano()))
}

func (g *Generator) fromTicks(ticks int64) Timeuuid {
	var u uuid.UUID
	t := uint64(ticks)
	u[0] = byte(t >> 24)
	u[1] = byte(t >> 16)
	u[2] = byte(t >> 8)
	u[3] = byte(t)
	u[4] = byte(t >> 40)
	u[5] = byte(t >> 32)
	u[6] = byte(t>>56)&0x0f | 0x10
	u[7] = byte(t >> 48)
	u[8] = byte(g.clockSeq>>8)&0x3f | 0x80
	u[9] = byte(g.clockSeq)
	copy(u[10:], g.node[:])
	return Timeuuid{u: u}
}

type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
