package cql

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUuidIsUnique(t *testing.T) {
	seen := make(map[Uuid]struct{}, 10001)
	for i := 0; i < 10001; i++ {
		u := NewUuid()
		_, dup := seen[u]
		require.False(t, dup, "duplicate uuid %s", u)
		seen[u] = struct{}{}
	}
}

func TestNewUuidVersionAndVariant(t *testing.T) {
	for i := 0; i < 100; i++ {
		u := NewUuid()
		assert.Equal(t, 4, u.Version())
		assert.Equal(t, byte(0x80), u.Bytes()[8]&0xc0)
		assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, u.String())
	}
}

func TestParseUuid(t *testing.T) {
	a, err := ParseUuid("2a5072fa-7da4-4ccd-a9b4-f017a3872304")
	require.NoError(t, err)
	b, err := ParseUuid("2A5072FA-7DA4-4CCD-A9B4-F017A3872304")
	require.NoError(t, err)
	c, err := ParseUuid("3a5072fa-7da4-4ccd-a9b4-f017a3872304")
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.True(t, a.Equal(b))
	assert.False(t, a == c)
	assert.Equal(t, "2a5072fa-7da4-4ccd-a9b4-f017a3872304", b.String())
	assert.True(t, a.Value().Equal(b.Value()))
	assert.False(t, a.Value().Equal(c.Value()))
}

func TestParseUuidInvalid(t *testing.T) {
	for _, s := range []string{
		"not-an-uuid-btw",
		"",
		"2a5072fa7da44ccda9b4f017a3872304",
		"{2a5072fa-7da4-4ccd-a9b4-f017a3872304}",
		"urn:uuid:2a5072fa-7da4-4ccd-a9b4-f017a3872304",
		"2a5072fa-7da4-4ccd-a9b4-f017a387230g",
		"2a5072f-a7da4-4ccd-a9b4-f017a3872304",
	} {
		_, err := ParseUuid(s)
		require.Error(t, err, s)
		assert.True(t, IsInvalidArgument(err), s)
		assert.Equal(t, "Invalid UUID: '"+s+"'", err.Error())
	}
}

func TestGeneratorInjectedSource(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0xab}, 8+16*2))
	g, err := NewGenerator(src)
	require.NoError(t, err)

	a, err := g.Random()
	require.NoError(t, err)
	b, err := g.Random()
	require.NoError(t, err)
	assert.Equal(t, a, b, "a deterministic source yields deterministic uuids")
	assert.Equal(t, 4, a.Version())

	_, err = g.Random()
	require.Error(t, err, "exhausted source")

	_, err = NewGenerator(strings.NewReader("short"))
	require.Error(t, err)
}

func TestGeneratorConcurrent(t *testing.T) {
	g := DefaultGenerator()
	var (
		mu   sync.Mutex
		seen = map[Uuid]struct{}{}
		wg   sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Uuid, 0, 500)
			for i := 0; i < 250; i++ {
				u, err := g.Random()
				if err != nil {
					panic(err)
				}
				local = append(local, u, g.Now().Uuid())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, u := range local {
				seen[u] = struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8*500)
}

func TestTimeuuid(t *testing.T) {
	ts := time.Date(2015, 3, 7, 1, 31, 4, 123456700, time.UTC)
	u := TimeuuidFromTime(ts)
	assert.Equal(t, 1, u.Version())
	assert.Equal(t, ts.Unix(), u.Time())
	assert.True(t, ts.Equal(u.ToTime()))
	assert.Equal(t, byte(0x80), u.Bytes()[8]&0xc0)
	assert.Equal(t, byte(0x01), u.Node()[0]&0x01)

	parsed, err := ParseTimeuuid(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, parsed)

	assert.Equal(t, int64(1425691864), TimeuuidFromSeconds(1425691864).Time())
}

func TestTimeuuidKnownValue(t *testing.T) {
	// 2013-04-02 13:38:10.6075 UTC
	u, err := ParseTimeuuid("8f4e3f80-9b9a-11e2-a4fb-f9a1e8a2d6b5")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Version())
	assert.Equal(t, int64(1364909890), u.Time())
}

func TestParseTimeuuidRejectsOtherVersions(t *testing.T) {
	_, err := ParseTimeuuid("2a5072fa-7da4-4ccd-a9b4-f017a3872304")
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
	assert.Equal(t, "UUID must be of type 1, type 4 given", err.Error())

	// decoding does not validate the version
	raw := NewUuid().Bytes()
	u, err := TimeuuidFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, 4, u.Version())
}

func TestTimeuuidNowIsMonotonic(t *testing.T) {
	g, err := NewGenerator(bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	fixed := time.Unix(1425691864, 0)
	g.now = func() time.Time { return fixed }

	prev := g.Now()
	for i := 0; i < 1000; i++ {
		next := g.Now()
		require.Greater(t, next.Ticks(), prev.Ticks())
		prev = next
	}
	assert.Equal(t, fixed.Unix(), prev.Time())
}
